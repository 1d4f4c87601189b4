package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

func newOverridesCommand(v *varctl) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Inspect the variable overrides of a server",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <server-id>",
		Short: "Validate all overrides of a server against the variable catalog",
		Long: `Validate all overrides of a server against the variable catalog.

Every override is checked, the command fails if at least one of them is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := v.database()
			if err != nil {
				return err
			}

			ctx := adminContext(cmd.Context())
			id := domain.ServerIdentifier(args[0])

			if _, err := db.GetDatabaseServer(ctx, id); err != nil {
				return fmt.Errorf("unable to find server %s: %w", id, err)
			}
			overrides, err := db.GetServerOverrides(ctx, id)
			if err != nil {
				return fmt.Errorf("unable to load overrides of server %s: %w", id, err)
			}

			ok := color.New(color.FgGreen)
			fail := color.New(color.FgRed, color.Bold)
			out := cmd.OutOrStdout()

			invalid := 0
			for i := range overrides {
				o := &overrides[i]
				err := o.Validate(ctx, db)

				var validationErr *domain.ValidationError
				switch {
				case err == nil:
					_, _ = ok.Fprint(out, "OK     ")
					_, _ = fmt.Fprintln(out, describeOverride(o))
				case errors.As(err, &validationErr):
					invalid++
					_, _ = fail.Fprint(out, "FAIL   ")
					_, _ = fmt.Fprintf(out, "%s: %s\n", o.MariaDBVariable, validationErr.Reason)
				default:
					return err
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d overrides of server %s are invalid", invalid, len(overrides), id)
			}

			return nil
		},
	})

	return cmd
}

func describeOverride(o *domain.VariableOverride) string {
	switch {
	case o.Skip:
		return fmt.Sprintf("%s (skipped)", o.OptionName())
	case o.Value().IsSet():
		return fmt.Sprintf("%s = %s", o.OptionName(), o.Value())
	default:
		return fmt.Sprintf("%s (no value)", o.OptionName())
	}
}
