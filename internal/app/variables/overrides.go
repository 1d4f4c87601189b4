package variables

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/h44z/mariadb-varportal/internal/app"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

const (
	overrideActionCreated = "created"
	overrideActionUpdated = "updated"
	overrideActionDeleted = "deleted"
)

func (m Manager) GetServerOverrides(ctx context.Context, id domain.ServerIdentifier) ([]domain.VariableOverride, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	if _, err := m.db.GetDatabaseServer(ctx, id); err != nil {
		return nil, fmt.Errorf("unable to find server %s: %w", id, err)
	}

	return m.db.GetServerOverrides(ctx, id)
}

func (m Manager) GetOverride(ctx context.Context, id domain.OverrideIdentifier) (*domain.VariableOverride, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	return m.db.GetVariableOverride(ctx, id)
}

// CreateOverride validates and stores a new override for the server referenced by its parent.
// A second override of the same variable for the same server fails with domain.ErrNotUnique.
func (m Manager) CreateOverride(ctx context.Context, o *domain.VariableOverride) (*domain.VariableOverride, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	if _, err := m.db.GetDatabaseServer(ctx, o.Parent); err != nil {
		return nil, fmt.Errorf("unable to find server %s: %w", o.Parent, err)
	}

	if o.Identifier == "" {
		o.Identifier = domain.OverrideIdentifier(uuid.NewString())
	}

	if err := m.validateOverride(ctx, o); err != nil {
		return nil, err
	}

	if err := m.db.CreateVariableOverride(ctx, o); err != nil {
		return nil, fmt.Errorf("creation failure: %w", err)
	}

	m.publishOverrideEvent(ctx, app.TopicOverrideSaved, *o, overrideActionCreated)

	return m.db.GetVariableOverride(ctx, o.Identifier)
}

// UpdateOverride validates and stores the editable fields of an existing override.
// The parent of an override never changes.
func (m Manager) UpdateOverride(ctx context.Context, o *domain.VariableOverride) (*domain.VariableOverride, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	existingOverride, err := m.db.GetVariableOverride(ctx, o.Identifier)
	if err != nil {
		return nil, fmt.Errorf("unable to load existing override %s: %w", o.Identifier, err)
	}

	candidate := *existingOverride
	candidate.CopyValues(o)

	if err := m.validateOverride(ctx, &candidate); err != nil {
		return nil, err
	}

	err = m.db.SaveVariableOverride(ctx, o.Identifier,
		func(stored *domain.VariableOverride) (*domain.VariableOverride, error) {
			stored.CopyValues(&candidate)
			return stored, nil
		})
	if err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	m.publishOverrideEvent(ctx, app.TopicOverrideSaved, candidate, overrideActionUpdated)

	return m.db.GetVariableOverride(ctx, o.Identifier)
}

func (m Manager) DeleteOverride(ctx context.Context, id domain.OverrideIdentifier) error {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return err
	}

	existingOverride, err := m.db.GetVariableOverride(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to find override %s: %w", id, err)
	}

	if err := m.db.DeleteVariableOverride(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	m.publishOverrideEvent(ctx, app.TopicOverrideDeleted, *existingOverride, overrideActionDeleted)

	return nil
}

// validateOverride runs the domain validation against the variable catalog.
// Rejected overrides are announced on the message bus.
func (m Manager) validateOverride(ctx context.Context, o *domain.VariableOverride) error {
	err := o.Validate(ctx, m.db)
	if err == nil {
		return nil
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		slog.Debug("override rejected", "variable", o.MariaDBVariable, "server", o.Parent, "reason", err)
		m.bus.Publish(app.TopicOverrideInvalid, app.OverrideInvalidEvent{
			Override: *o,
			Reason:   validationErr.Error(),
			User:     domain.GetUserInfo(ctx).UserId(),
		})
		return err
	}

	return fmt.Errorf("failed to validate override of %s: %w", o.MariaDBVariable, err)
}

func (m Manager) publishOverrideEvent(ctx context.Context, topic string, o domain.VariableOverride, action string) {
	m.bus.Publish(topic, app.OverrideEvent{
		Override: o,
		Action:   action,
		User:     domain.GetUserInfo(ctx).UserId(),
	})
}
