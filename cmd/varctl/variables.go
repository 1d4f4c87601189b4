package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

func newVariablesCommand(v *varctl) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variables",
		Short: "Inspect the MariaDB variable catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all variables of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := v.database()
			if err != nil {
				return err
			}

			variables, err := db.GetAllMariaDBVariables(adminContext(cmd.Context()))
			if err != nil {
				return fmt.Errorf("failed to load variables: %w", err)
			}

			return writeVariableTable(cmd.OutOrStdout(), variables)
		},
	})

	return cmd
}

func writeVariableTable(w io.Writer, variables []domain.MariaDBVariable) error {
	table := newTable(w)
	table.Header([]string{"Name", "Datatype", "Dynamic", "Description"})

	for _, variable := range variables {
		dynamic := "no"
		if variable.Dynamic {
			dynamic = "yes"
		}
		row := []string{string(variable.Name), string(variable.Datatype), dynamic, strings.TrimSpace(variable.Description)}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(
			renderer.NewBlueprint(tw.Rendition{Symbols: tw.NewSymbols(tw.StyleASCII)})),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithTrimSpace(tw.Off),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}
