package variables

import (
	"context"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

type VariableDatabaseRepo interface {
	GetMariaDBVariable(ctx context.Context, name domain.VariableName) (*domain.MariaDBVariable, error)
	GetAllMariaDBVariables(ctx context.Context) ([]domain.MariaDBVariable, error)
	SaveMariaDBVariable(
		ctx context.Context,
		name domain.VariableName,
		updateFunc func(v *domain.MariaDBVariable) (*domain.MariaDBVariable, error),
	) error
	DeleteMariaDBVariable(ctx context.Context, name domain.VariableName) error
	CountVariableOverridesOf(ctx context.Context, name domain.VariableName) (int64, error)
}

type ServerDatabaseRepo interface {
	GetDatabaseServer(ctx context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error)
	GetAllDatabaseServers(ctx context.Context) ([]domain.DatabaseServer, error)
	SaveDatabaseServer(
		ctx context.Context,
		id domain.ServerIdentifier,
		updateFunc func(s *domain.DatabaseServer) (*domain.DatabaseServer, error),
	) error
	DeleteDatabaseServer(ctx context.Context, id domain.ServerIdentifier) error
}

type OverrideDatabaseRepo interface {
	GetVariableOverride(ctx context.Context, id domain.OverrideIdentifier) (*domain.VariableOverride, error)
	GetServerOverrides(ctx context.Context, id domain.ServerIdentifier) ([]domain.VariableOverride, error)
	CreateVariableOverride(ctx context.Context, override *domain.VariableOverride) error
	SaveVariableOverride(
		ctx context.Context,
		id domain.OverrideIdentifier,
		updateFunc func(o *domain.VariableOverride) (*domain.VariableOverride, error),
	) error
	DeleteVariableOverride(ctx context.Context, id domain.OverrideIdentifier) error
}

// DatabaseRepo also serves as the metadata store that overrides are validated against.
type DatabaseRepo interface {
	VariableDatabaseRepo
	ServerDatabaseRepo
	OverrideDatabaseRepo
}

type MariaDBController interface {
	SetGlobalVariables(ctx context.Context, server *domain.DatabaseServer, assignments []domain.VariableAssignment) error
}

type ConfigFilePersister interface {
	PersistServerConfig(ctx context.Context, id domain.ServerIdentifier) (bool, error)
}

type EventBus interface {
	// Publish sends a message to the message bus.
	Publish(topic string, args ...any)
}
