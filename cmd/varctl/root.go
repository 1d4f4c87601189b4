package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/h44z/mariadb-varportal/internal"
	"github.com/h44z/mariadb-varportal/internal/config"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// store is the part of the database repository used by the offline commands.
type store interface {
	GetAllMariaDBVariables(ctx context.Context) ([]domain.MariaDBVariable, error)
	GetMariaDBVariable(ctx context.Context, name domain.VariableName) (*domain.MariaDBVariable, error)
	GetDatabaseServer(ctx context.Context, id domain.ServerIdentifier) (*domain.DatabaseServer, error)
	GetServerOverrides(ctx context.Context, id domain.ServerIdentifier) ([]domain.VariableOverride, error)
}

type connectFunc func(cfg *config.Config) (store, error)

// varctl holds the state shared by all subcommands.
type varctl struct {
	cfg     *config.Config
	connect connectFunc
	db      store
}

// newRootCommand creates the varctl root command with all subcommands.
func newRootCommand(connect connectFunc) *cobra.Command {
	v := &varctl{connect: connect}

	root := &cobra.Command{
		Use:   "varctl",
		Short: "Offline companion of the MariaDB variable portal",
		Long: `varctl works directly on the database of the MariaDB variable portal.

It lists the variable catalog, checks the overrides of a server and renders
the [mysqld] option file without a running portal.

The configuration is read from the file given by --config, the VARPORTAL_CONFIG
environment variable or config.yaml in the working directory.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Silence usage for application errors, flag errors are reported before this hook
			cmd.SilenceUsage = true

			cfgFile, _ := cmd.Flags().GetString("config")
			if cfgFile != "" {
				if err := os.Setenv("VARPORTAL_CONFIG", cfgFile); err != nil {
					return fmt.Errorf("failed to set config path: %w", err)
				}
			}

			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogPretty, cfg.Advanced.LogJson)
			v.cfg = cfg

			return nil
		},
	}

	root.PersistentFlags().String("config", "", "Path of the configuration file")
	root.SilenceErrors = true

	root.AddCommand(
		newVariablesCommand(v),
		newOverridesCommand(v),
		newConfigCommand(v),
		newHealthCommand(v),
	)

	return root
}

// database connects on first use, the health command never needs it.
func (v *varctl) database() (store, error) {
	if v.db != nil {
		return v.db, nil
	}

	db, err := v.connect(v.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	v.db = db

	return db, nil
}

// adminContext returns a context with the system admin user, all manager operations require it.
func adminContext(ctx context.Context) context.Context {
	return domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())
}
