package main

import (
	"context"
	"log/slog"
	"syscall"

	evbus "github.com/vardius/message-bus"

	"github.com/h44z/mariadb-varportal/internal"
	"github.com/h44z/mariadb-varportal/internal/adapters"
	"github.com/h44z/mariadb-varportal/internal/app"
	"github.com/h44z/mariadb-varportal/internal/app/api/core"
	"github.com/h44z/mariadb-varportal/internal/app/api/core/middleware/auth"
	handlersV1 "github.com/h44z/mariadb-varportal/internal/app/api/v1/handlers"
	"github.com/h44z/mariadb-varportal/internal/app/audit"
	"github.com/h44z/mariadb-varportal/internal/app/configfile"
	"github.com/h44z/mariadb-varportal/internal/app/variables"
	"github.com/h44z/mariadb-varportal/internal/config"
)

func main() {
	ctx := internal.SignalAwareContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.GetConfig()
	internal.AssertNoError(err)
	internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogPretty, cfg.Advanced.LogJson)

	slog.Info("Starting MariaDB variable portal", "version", internal.Version)
	cfg.LogStartupValues()

	rawDb, err := adapters.NewDatabase(cfg.Database)
	internal.AssertNoError(err)

	database, err := adapters.NewSqlRepository(rawDb)
	internal.AssertNoError(err)

	queueSize := 100
	eventBus := evbus.New(queueSize)

	var cfgStorage configfile.FileSystemRepo
	if cfg.Apply.WriteConfigFiles {
		fsRepo, err := adapters.NewFileSystemRepository(cfg.Apply.ConfigStoragePath)
		internal.AssertNoError(err)
		if fsRepo != nil {
			cfgStorage = fsRepo
		}
	}

	mariadb := adapters.NewMariaDBController(cfg.Apply)

	cfgFileManager, err := configfile.NewConfigFileManager(cfg, database, cfgStorage)
	internal.AssertNoError(err)

	variableManager, err := variables.NewManager(cfg, eventBus, database, mariadb, cfgFileManager)
	internal.AssertNoError(err)

	_, err = audit.NewAuditRecorder(eventBus, database)
	internal.AssertNoError(err)
	auditManager := audit.NewManager(database)

	backend, err := app.New(cfg, eventBus,
		variableManager, variableManager, variableManager, cfgFileManager, auditManager)
	internal.AssertNoError(err)

	if cfg.Metrics.Enabled {
		metricsServer := adapters.NewMetricsServer(cfg)
		internal.AssertNoError(metricsServer.ConnectToMessageBus(eventBus))
		go metricsServer.Run(ctx)
	}

	validator, err := handlersV1.NewValidator()
	internal.AssertNoError(err)

	authenticator, err := auth.New(cfg.Core.AdminUser, cfg.Core.AdminPassword)
	internal.AssertNoError(err)

	apiV1 := handlersV1.NewRestApi(authenticator,
		handlersV1.NewVariableEndpoint(backend, validator),
		handlersV1.NewServerEndpoint(backend, backend, validator),
		handlersV1.NewOverrideEndpoint(backend, validator),
		handlersV1.NewAuditEndpoint(backend),
	)

	webSrv, err := core.NewServer(cfg, apiV1)
	internal.AssertNoError(err)

	go webSrv.Run(ctx, cfg.Web.ListeningAddress)

	// wait until context gets cancelled
	<-ctx.Done()

	slog.Info("Stopped MariaDB variable portal")
}
