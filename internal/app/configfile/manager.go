package configfile

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/h44z/mariadb-varportal/internal/config"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

type Manager struct {
	cfg        *config.Config
	tplHandler *TemplateHandler

	fsRepo FileSystemRepo // can be nil if storing the configuration is disabled
	db     DatabaseRepo
}

func NewConfigFileManager(cfg *config.Config, db DatabaseRepo, fsRepo FileSystemRepo) (*Manager, error) {
	tplHandler, err := newTemplateHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize template handler: %w", err)
	}

	m := &Manager{
		cfg:        cfg,
		tplHandler: tplHandler,

		fsRepo: fsRepo,
		db:     db,
	}

	return m, nil
}

// GetServerConfig renders the [mysqld] option file with all overrides of the given server.
func (m Manager) GetServerConfig(ctx context.Context, id domain.ServerIdentifier) (io.Reader, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	server, err := m.db.GetDatabaseServer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server %s: %w", id, err)
	}

	overrides, err := m.db.GetServerOverrides(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overrides of server %s: %w", id, err)
	}

	return m.tplHandler.GetServerConfig(server, NewOptions(overrides))
}

// PersistServerConfig writes the rendered option file to the config path of the server.
// It returns false if writing is disabled or the server has no config path.
func (m Manager) PersistServerConfig(ctx context.Context, id domain.ServerIdentifier) (bool, error) {
	if m.fsRepo == nil || !m.cfg.Apply.WriteConfigFiles {
		return false, nil
	}

	server, err := m.db.GetDatabaseServer(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to fetch server %s: %w", id, err)
	}
	if server.ConfigPath == "" {
		slog.Debug("server has no config path, skipping option file", "server", id)
		return false, nil
	}

	cfg, err := m.GetServerConfig(ctx, id)
	if err != nil {
		return false, err
	}

	if err := m.fsRepo.WriteFile(server.ConfigPath, cfg, m.cfg.Apply.ConfigFileMode); err != nil {
		return false, fmt.Errorf("failed to write option file of server %s: %w", id, err)
	}

	slog.Info("option file written", "server", id, "path", server.ConfigPath)

	return true, nil
}
