package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	evbus "github.com/vardius/message-bus"

	"github.com/h44z/mariadb-varportal/internal"
	"github.com/h44z/mariadb-varportal/internal/app"
	"github.com/h44z/mariadb-varportal/internal/config"
)

type MetricsServer struct {
	*http.Server
	registry *prometheus.Registry

	overrideChangesTotal      *prometheus.CounterVec
	validationFailuresTotal   *prometheus.CounterVec
	applyRunsTotal            *prometheus.CounterVec
	serverAppliedVariables    *prometheus.GaugeVec
	serverPendingRestart      *prometheus.GaugeVec
	serverSkippedVariables    *prometheus.GaugeVec
	serverConfigWritten       *prometheus.GaugeVec
	serverLastApplyTimeSecond *prometheus.GaugeVec
}

// Metric labels
var (
	serverLabels   = []string{"server"}
	overrideLabels = []string{"server", "variable", "action"}
	invalidLabels  = []string{"server", "variable"}
	applyLabels    = []string{"server", "result"}
)

// NewMetricsServer returns a new prometheus server
func NewMetricsServer(cfg *config.Config) *MetricsServer {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		Server: &http.Server{
			Addr:    cfg.Metrics.ListeningAddress,
			Handler: mux,
		},
		registry: reg,

		overrideChangesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "varportal_override_changes_total",
				Help: "Number of created, updated or deleted variable overrides.",
			}, overrideLabels,
		),
		validationFailuresTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "varportal_override_validation_failures_total",
				Help: "Number of variable overrides that were rejected by validation.",
			}, invalidLabels,
		),
		applyRunsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "varportal_apply_runs_total",
				Help: "Number of apply runs, partitioned by result (success or error).",
			}, applyLabels,
		),
		serverAppliedVariables: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "varportal_server_applied_variables",
				Help: "Variables changed at runtime during the last apply run.",
			}, serverLabels,
		),
		serverPendingRestart: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "varportal_server_pending_restart_variables",
				Help: "Variables that need a server restart after the last apply run.",
			}, serverLabels,
		),
		serverSkippedVariables: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "varportal_server_skipped_variables",
				Help: "Variables written as skip option during the last apply run.",
			}, serverLabels,
		),
		serverConfigWritten: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "varportal_server_config_written",
				Help: "Option file written during the last apply run (boolean: 1/0).",
			}, serverLabels,
		),
		serverLastApplyTimeSecond: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "varportal_server_last_apply_timestamp_seconds",
				Help: "Unix timestamp of the last apply run.",
			}, serverLabels,
		),
	}
}

// ConnectToMessageBus registers the metric collectors for all relevant events.
func (m *MetricsServer) ConnectToMessageBus(bus evbus.MessageBus) error {
	subscriptions := map[string]any{
		app.TopicOverrideSaved:   m.handleOverrideEvent,
		app.TopicOverrideDeleted: m.handleOverrideEvent,
		app.TopicOverrideInvalid: m.handleOverrideInvalidEvent,
		app.TopicServerApplied:   m.handleServerAppliedEvent,
		app.TopicServerDeleted:   m.handleServerDeletedEvent,
	}

	for topic, fn := range subscriptions {
		if err := bus.Subscribe(topic, fn); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}

	return nil
}

// Run starts the metrics server
func (m *MetricsServer) Run(ctx context.Context) {
	// Run the metrics server in a goroutine
	go func() {
		if err := m.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics service exited", "address", m.Addr, "error", err)
		}
	}()

	slog.Info("started metrics service", "address", m.Addr)

	// Wait for the context to be done
	<-ctx.Done()

	// Create a context with timeout for the shutdown process
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt to gracefully shutdown the metrics server
	if err := m.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics service shutdown failed", "address", m.Addr, "error", err)
	} else {
		slog.Info("metrics service shutdown gracefully", "address", m.Addr)
	}
}

func (m *MetricsServer) handleOverrideEvent(event app.OverrideEvent) {
	m.overrideChangesTotal.WithLabelValues(
		string(event.Override.Parent),
		string(event.Override.MariaDBVariable),
		event.Action,
	).Inc()
}

func (m *MetricsServer) handleOverrideInvalidEvent(event app.OverrideInvalidEvent) {
	m.validationFailuresTotal.WithLabelValues(
		string(event.Override.Parent),
		string(event.Override.MariaDBVariable),
	).Inc()
}

func (m *MetricsServer) handleServerAppliedEvent(event app.ServerAppliedEvent) {
	server := string(event.Result.Server)

	result := "success"
	if event.Error != "" {
		result = "error"
	}
	m.applyRunsTotal.WithLabelValues(server, result).Inc()

	m.serverAppliedVariables.WithLabelValues(server).Set(float64(len(event.Result.Applied)))
	m.serverPendingRestart.WithLabelValues(server).Set(float64(len(event.Result.PendingRestart)))
	m.serverSkippedVariables.WithLabelValues(server).Set(float64(len(event.Result.Skipped)))
	m.serverConfigWritten.WithLabelValues(server).Set(internal.BoolToFloat64(event.Result.ConfigWritten))
	m.serverLastApplyTimeSecond.WithLabelValues(server).SetToCurrentTime()
}

func (m *MetricsServer) handleServerDeletedEvent(event app.ServerDeletedEvent) {
	labels := prometheus.Labels{"server": string(event.Server)}

	m.serverAppliedVariables.DeletePartialMatch(labels)
	m.serverPendingRestart.DeletePartialMatch(labels)
	m.serverSkippedVariables.DeletePartialMatch(labels)
	m.serverConfigWritten.DeletePartialMatch(labels)
	m.serverLastApplyTimeSecond.DeletePartialMatch(labels)
}
