package variables

import (
	"github.com/h44z/mariadb-varportal/internal/config"
)

// Manager handles the MariaDB variable catalog, database servers and their variable overrides.
type Manager struct {
	cfg *config.Config
	bus EventBus

	db       DatabaseRepo
	mariadb  MariaDBController
	cfgFiles ConfigFilePersister
}

func NewManager(
	cfg *config.Config,
	bus EventBus,
	db DatabaseRepo,
	mariadb MariaDBController,
	cfgFiles ConfigFilePersister,
) (*Manager, error) {
	m := &Manager{
		cfg: cfg,
		bus: bus,

		db:       db,
		mariadb:  mariadb,
		cfgFiles: cfgFiles,
	}

	return m, nil
}
