package variables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/h44z/mariadb-varportal/internal/app"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

func (m Manager) GetAllServers(ctx context.Context) ([]domain.DatabaseServer, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	return m.db.GetAllDatabaseServers(ctx)
}

func (m Manager) GetServer(ctx context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	return m.db.GetDatabaseServer(ctx, id)
}

// CreateServer stores a new database server. A missing identifier is generated.
func (m Manager) CreateServer(ctx context.Context, s *domain.DatabaseServer) (*domain.DatabaseServer, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	if s.Identifier == "" {
		s.Identifier = domain.ServerIdentifier(uuid.NewString())
	}

	existingServer, err := m.db.GetDatabaseServer(ctx, s.Identifier)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("unable to load existing server %s: %w", s.Identifier, err)
	}
	if existingServer != nil {
		return nil, fmt.Errorf("server %s already exists: %w", s.Identifier, domain.ErrNotUnique)
	}

	if err := validateServer(s); err != nil {
		return nil, fmt.Errorf("creation not allowed: %w", err)
	}

	if err := m.saveServer(ctx, s); err != nil {
		return nil, fmt.Errorf("creation failure: %w", err)
	}

	return m.db.GetDatabaseServer(ctx, s.Identifier)
}

// UpdateServer updates an existing database server. An empty dsn keeps the stored one.
func (m Manager) UpdateServer(ctx context.Context, s *domain.DatabaseServer) (*domain.DatabaseServer, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	existingServer, err := m.db.GetDatabaseServer(ctx, s.Identifier)
	if err != nil {
		return nil, fmt.Errorf("unable to load existing server %s: %w", s.Identifier, err)
	}

	if s.Dsn == "" {
		s.Dsn = existingServer.Dsn
	}
	s.CopyCalculatedAttributes(existingServer)

	if err := validateServer(s); err != nil {
		return nil, fmt.Errorf("update not allowed: %w", err)
	}

	if err := m.saveServer(ctx, s); err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	return m.db.GetDatabaseServer(ctx, s.Identifier)
}

// DeleteServer removes the server together with all of its overrides.
func (m Manager) DeleteServer(ctx context.Context, id domain.ServerIdentifier) error {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return err
	}

	if _, err := m.db.GetDatabaseServer(ctx, id); err != nil {
		return fmt.Errorf("unable to find server %s: %w", id, err)
	}

	if err := m.db.DeleteDatabaseServer(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	m.bus.Publish(app.TopicServerDeleted, app.ServerDeletedEvent{
		Server: id,
		User:   domain.GetUserInfo(ctx).UserId(),
	})

	return nil
}

func (m Manager) saveServer(ctx context.Context, s *domain.DatabaseServer) error {
	return m.db.SaveDatabaseServer(ctx, s.Identifier, func(stored *domain.DatabaseServer) (*domain.DatabaseServer, error) {
		stored.DisplayName = s.DisplayName
		stored.Dsn = s.Dsn
		stored.ConfigPath = s.ConfigPath
		return stored, nil
	})
}

func validateServer(s *domain.DatabaseServer) error {
	if strings.TrimSpace(s.DisplayName) == "" {
		return fmt.Errorf("%w: display name of server %s must not be empty", domain.ErrInvalidData, s.Identifier)
	}

	return nil
}
