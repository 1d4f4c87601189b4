package configfile

import (
	"context"
	"io"
	"os"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

type DatabaseRepo interface {
	GetDatabaseServer(ctx context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error)
	GetServerOverrides(ctx context.Context, id domain.ServerIdentifier) ([]domain.VariableOverride, error)
}

type FileSystemRepo interface {
	WriteFile(path string, contents io.Reader, mode os.FileMode) error
}
