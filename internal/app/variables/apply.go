package variables

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/h44z/mariadb-varportal/internal/app"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

// ApplyServerOverrides validates all overrides of the server and pushes them to it.
// Dynamic variables are changed at runtime, if the server has a dsn. All other variables
// only reach the option file and need a restart of the server.
// Nothing is applied if one of the overrides is invalid.
func (m Manager) ApplyServerOverrides(ctx context.Context, id domain.ServerIdentifier) (*domain.ApplyResult, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	server, err := m.db.GetDatabaseServer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to find server %s: %w", id, err)
	}

	overrides, err := m.db.GetServerOverrides(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load overrides of server %s: %w", id, err)
	}

	result := &domain.ApplyResult{
		Server:         id,
		Applied:        []domain.VariableName{},
		PendingRestart: []domain.VariableName{},
		Skipped:        []domain.VariableName{},
	}
	var assignments []domain.VariableAssignment

	for i := range overrides {
		o := &overrides[i]
		if err := m.validateOverride(ctx, o); err != nil {
			return nil, fmt.Errorf("apply not allowed: %w", err)
		}

		if o.Skip {
			result.Skipped = append(result.Skipped, o.MariaDBVariable)
			continue
		}
		if !o.Value().IsSet() {
			continue // nothing to set
		}

		dynamic, err := o.Dynamic(ctx, m.db)
		if err != nil {
			return nil, err
		}
		if !dynamic || server.Dsn == "" {
			result.PendingRestart = append(result.PendingRestart, o.MariaDBVariable)
			continue
		}

		// SET GLOBAL only knows the underscore form of a name
		assignments = append(assignments, domain.VariableAssignment{
			Name:  domain.VariableName(o.OptionName()),
			Value: o.Value(),
		})
		result.Applied = append(result.Applied, o.MariaDBVariable)
	}

	if err := m.mariadb.SetGlobalVariables(ctx, server, assignments); err != nil {
		m.publishApplyEvent(ctx, domain.ApplyResult{Server: id}, err)
		return nil, fmt.Errorf("failed to apply dynamic variables: %w", err)
	}

	written, err := m.cfgFiles.PersistServerConfig(ctx, id)
	if err != nil {
		result.ConfigWritten = false
		m.publishApplyEvent(ctx, *result, err)
		return nil, fmt.Errorf("failed to persist option file: %w", err)
	}
	result.ConfigWritten = written

	slog.Info("applied overrides",
		"server", id,
		"applied", len(result.Applied),
		"pending_restart", len(result.PendingRestart),
		"skipped", len(result.Skipped),
		"config_written", result.ConfigWritten)

	m.publishApplyEvent(ctx, *result, nil)

	return result, nil
}

func (m Manager) publishApplyEvent(ctx context.Context, result domain.ApplyResult, err error) {
	event := app.ServerAppliedEvent{
		Result: result,
		User:   domain.GetUserInfo(ctx).UserId(),
	}
	if err != nil {
		event.Error = err.Error()
	}

	m.bus.Publish(app.TopicServerApplied, event)
}
