package models

import (
	"time"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

// DatabaseServer is a MariaDB server that owns a set of variable overrides.
type DatabaseServer struct {
	// Identifier is the unique identifier of the server. It is generated if it is empty on creation.
	Identifier string `json:"Identifier" example:"0b7f3c52-8a55-4b3c-9f43-2b3d1f1f4f0e" validate:"omitempty,max=64"`
	// DisplayName is a human-readable name of the server.
	DisplayName string `json:"DisplayName" example:"db-primary" validate:"required,max=64,single_line"`
	// Dsn is the connection string used to apply dynamic variables. It is write only.
	// On update, an empty value keeps the stored connection string.
	Dsn string `json:"Dsn,omitempty" example:"admin:secret@tcp(db1:3306)/" validate:"omitempty,max=1024"`
	// HasDsn is true if a connection string is stored for the server.
	HasDsn bool `json:"HasDsn" readonly:"true"`
	// ConfigPath is the path of the rendered option file. If it is empty, no file is written.
	ConfigPath string `json:"ConfigPath,omitempty" example:"db1/varportal.cnf" validate:"omitempty,max=4096"`

	CreatedAt time.Time `json:"CreatedAt" readonly:"true"`
	UpdatedAt time.Time `json:"UpdatedAt" readonly:"true"`
}

func NewDatabaseServer(src *domain.DatabaseServer) *DatabaseServer {
	return &DatabaseServer{
		Identifier:  string(src.Identifier),
		DisplayName: src.DisplayName,
		HasDsn:      src.Dsn != "",
		ConfigPath:  src.ConfigPath,
		CreatedAt:   src.CreatedAt,
		UpdatedAt:   src.UpdatedAt,
	}
}

func NewDatabaseServers(src []domain.DatabaseServer) []DatabaseServer {
	results := make([]DatabaseServer, len(src))
	for i := range src {
		results[i] = *NewDatabaseServer(&src[i])
	}

	return results
}

func NewDomainDatabaseServer(src *DatabaseServer) *domain.DatabaseServer {
	return &domain.DatabaseServer{
		Identifier:  domain.ServerIdentifier(src.Identifier),
		DisplayName: src.DisplayName,
		Dsn:         src.Dsn,
		ConfigPath:  src.ConfigPath,
	}
}

// ApplyResult summarizes an apply run.
type ApplyResult struct {
	Server         string   `json:"Server"`
	Applied        []string `json:"Applied"`        // Variables changed at runtime.
	PendingRestart []string `json:"PendingRestart"` // Variables that need a server restart.
	Skipped        []string `json:"Skipped"`        // Variables written as skip option.
	ConfigWritten  bool     `json:"ConfigWritten"`
}

func NewApplyResult(src *domain.ApplyResult) *ApplyResult {
	names := func(vars []domain.VariableName) []string {
		result := make([]string, len(vars))
		for i, v := range vars {
			result[i] = string(v)
		}
		return result
	}

	return &ApplyResult{
		Server:         string(src.Server),
		Applied:        names(src.Applied),
		PendingRestart: names(src.PendingRestart),
		Skipped:        names(src.Skipped),
		ConfigWritten:  src.ConfigWritten,
	}
}
