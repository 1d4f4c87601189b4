package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/h44z/mariadb-varportal/internal"
	"github.com/h44z/mariadb-varportal/internal/adapters"
	"github.com/h44z/mariadb-varportal/internal/config"
)

func main() {
	ctx := internal.SignalAwareContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	root := newRootCommand(connectDatabase)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// connectDatabase opens the configured database. The schema is migrated like on server startup.
func connectDatabase(cfg *config.Config) (store, error) {
	rawDb, err := adapters.NewDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	return adapters.NewSqlRepository(rawDb)
}
