package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/h44z/mariadb-varportal/internal/app"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

const (
	originOverrideChange     = "override-change"
	originOverrideValidation = "override-validation"
	originServerDeletion     = "server-deletion"
	originServerApply        = "server-apply"
)

// Recorder persists an audit trail of all override changes, rejected overrides and apply runs.
type Recorder struct {
	bus EventBus
	db  DatabaseRepo
}

func NewAuditRecorder(bus EventBus, db DatabaseRepo) (*Recorder, error) {
	r := &Recorder{
		bus: bus,
		db:  db,
	}

	err := r.connectToMessageBus()
	if err != nil {
		return nil, fmt.Errorf("failed to setup message bus: %w", err)
	}

	return r, nil
}

func (r *Recorder) connectToMessageBus() error {
	subscriptions := []struct {
		topic string
		fn    any
	}{
		{app.TopicOverrideSaved, r.handleOverrideEvent},
		{app.TopicOverrideDeleted, r.handleOverrideEvent},
		{app.TopicOverrideInvalid, r.handleOverrideInvalidEvent},
		{app.TopicServerDeleted, r.handleServerDeletedEvent},
		{app.TopicServerApplied, r.handleServerAppliedEvent},
	}

	for _, s := range subscriptions {
		if err := r.bus.Subscribe(s.topic, s.fn); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", s.topic, err)
		}
	}

	return nil
}

func (r *Recorder) handleOverrideEvent(event app.OverrideEvent) {
	severity := domain.AuditSeverityLevelLow
	if event.Action == "deleted" {
		severity = domain.AuditSeverityLevelMedium
	}

	r.record(severity, originOverrideChange, event.Override.Parent, event.User,
		fmt.Sprintf("override of %s on server %s %s",
			event.Override.MariaDBVariable, event.Override.Parent, event.Action))
}

func (r *Recorder) handleOverrideInvalidEvent(event app.OverrideInvalidEvent) {
	r.record(domain.AuditSeverityLevelMedium, originOverrideValidation, event.Override.Parent, event.User,
		fmt.Sprintf("override of %s on server %s rejected: %s",
			event.Override.MariaDBVariable, event.Override.Parent, event.Reason))
}

func (r *Recorder) handleServerDeletedEvent(event app.ServerDeletedEvent) {
	r.record(domain.AuditSeverityLevelHigh, originServerDeletion, event.Server, event.User,
		fmt.Sprintf("server %s and all of its overrides deleted", event.Server))
}

func (r *Recorder) handleServerAppliedEvent(event app.ServerAppliedEvent) {
	if event.Error != "" {
		r.record(domain.AuditSeverityLevelHigh, originServerApply, event.Result.Server, event.User,
			fmt.Sprintf("apply to server %s failed: %s", event.Result.Server, event.Error))
		return
	}

	r.record(domain.AuditSeverityLevelMedium, originServerApply, event.Result.Server, event.User,
		fmt.Sprintf("applied %d variables to server %s, %d pending restart, %d skipped",
			len(event.Result.Applied), event.Result.Server, len(event.Result.PendingRestart),
			len(event.Result.Skipped)))
}

func (r *Recorder) record(
	severity domain.AuditSeverityLevel,
	origin string,
	server domain.ServerIdentifier,
	user, message string,
) {
	err := r.db.SaveAuditEntry(context.Background(), &domain.AuditEntry{
		CreatedAt:   time.Now(),
		Severity:    severity,
		Server:      server,
		Origin:      origin,
		ContextUser: user,
		Message:     message,
	})
	if err != nil {
		slog.Error("failed to create audit entry", "origin", origin, "error", err)
		return
	}
}
