package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/h44z/mariadb-varportal/internal/adapters"
	"github.com/h44z/mariadb-varportal/internal/app/configfile"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

func newConfigCommand(v *varctl) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with MariaDB option files",
	}

	render := &cobra.Command{
		Use:   "render <server-id>",
		Short: "Render the [mysqld] option file of a server",
		Long: `Render the [mysqld] option file of a server.

The file is written to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := v.database()
			if err != nil {
				return err
			}

			manager, err := configfile.NewConfigFileManager(v.cfg, db, nil)
			if err != nil {
				return err
			}

			cfg, err := manager.GetServerConfig(adminContext(cmd.Context()), domain.ServerIdentifier(args[0]))
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err = io.Copy(cmd.OutOrStdout(), cfg)
				return err
			}

			return writeOptionFile(output, cfg, v.cfg.Apply.ConfigFileMode)
		},
	}
	render.Flags().StringP("output", "o", "", "Write the option file to this path")

	cmd.AddCommand(render)

	return cmd
}

func writeOptionFile(path string, contents io.Reader, mode os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid output path %s: %w", path, err)
	}

	fsRepo, err := adapters.NewFileSystemRepository(filepath.Dir(absPath))
	if err != nil {
		return err
	}

	return fsRepo.WriteFile(absPath, contents, mode)
}
