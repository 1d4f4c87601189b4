package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/h44z/mariadb-varportal/internal/config"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// App bundles all application services.
type App struct {
	Config *config.Config
	bus    evbus.MessageBus

	VariableManager
	ServerManager
	OverrideManager
	ConfigFileManager
	AuditManager
}

// New creates the application and seeds the MariaDB variable catalog from the configuration.
func New(
	cfg *config.Config,
	bus evbus.MessageBus,
	variables VariableManager,
	servers ServerManager,
	overrides OverrideManager,
	cfgFiles ConfigFileManager,
	audit AuditManager,
) (*App, error) {
	a := &App{
		Config: cfg,
		bus:    bus,

		VariableManager:   variables,
		ServerManager:     servers,
		OverrideManager:   overrides,
		ConfigFileManager: cfgFiles,
		AuditManager:      audit,
	}

	timeout := cfg.Advanced.StartupTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	startupContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Switch to admin user context
	startupContext = domain.SetUserInfo(startupContext, domain.SystemAdminContextUserInfo())

	if err := a.seedVariables(startupContext); err != nil {
		return nil, fmt.Errorf("failed to seed variable catalog: %w", err)
	}

	return a, nil
}

func (a *App) seedVariables(ctx context.Context) error {
	seeded := 0
	for _, seed := range a.Config.Core.Variables {
		datatype, err := domain.ParseDatatype(seed.Datatype)
		if err != nil {
			return fmt.Errorf("variable %s: %w", seed.Name, err)
		}

		created, err := a.SeedVariable(ctx, &domain.MariaDBVariable{
			Name:        domain.VariableName(seed.Name),
			Datatype:    datatype,
			Dynamic:     seed.Dynamic,
			DocSection:  seed.DocSection,
			Description: seed.Description,
		}, a.Config.Core.OverwriteVariables)
		if err != nil {
			return fmt.Errorf("variable %s: %w", seed.Name, err)
		}
		if created {
			seeded++
		}
	}

	if seeded > 0 {
		slog.Info("variable catalog seeded", "count", seeded)
	}

	return nil
}
