package app

import (
	"context"
	"io"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

type VariableManager interface {
	GetAllVariables(ctx context.Context) ([]domain.MariaDBVariable, error)
	GetVariable(ctx context.Context, name domain.VariableName) (*domain.MariaDBVariable, error)
	SaveVariable(ctx context.Context, v *domain.MariaDBVariable) (*domain.MariaDBVariable, error)
	SeedVariable(ctx context.Context, v *domain.MariaDBVariable, overwrite bool) (bool, error)
	DeleteVariable(ctx context.Context, name domain.VariableName) error
}

type ServerManager interface {
	GetAllServers(ctx context.Context) ([]domain.DatabaseServer, error)
	GetServer(ctx context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error)
	CreateServer(ctx context.Context, s *domain.DatabaseServer) (*domain.DatabaseServer, error)
	UpdateServer(ctx context.Context, s *domain.DatabaseServer) (*domain.DatabaseServer, error)
	DeleteServer(ctx context.Context, id domain.ServerIdentifier) error
	ApplyServerOverrides(ctx context.Context, id domain.ServerIdentifier) (*domain.ApplyResult, error)
}

type OverrideManager interface {
	GetServerOverrides(ctx context.Context, id domain.ServerIdentifier) ([]domain.VariableOverride, error)
	GetOverride(ctx context.Context, id domain.OverrideIdentifier) (*domain.VariableOverride, error)
	CreateOverride(ctx context.Context, o *domain.VariableOverride) (*domain.VariableOverride, error)
	UpdateOverride(ctx context.Context, o *domain.VariableOverride) (*domain.VariableOverride, error)
	DeleteOverride(ctx context.Context, id domain.OverrideIdentifier) error
}

type ConfigFileManager interface {
	GetServerConfig(ctx context.Context, id domain.ServerIdentifier) (io.Reader, error)
}

type AuditManager interface {
	GetAll(ctx context.Context) ([]domain.AuditEntry, error)
	GetServerEntries(ctx context.Context, id domain.ServerIdentifier) ([]domain.AuditEntry, error)
}
