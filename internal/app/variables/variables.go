package variables

import (
	"context"
	"errors"
	"fmt"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

func (m Manager) GetAllVariables(ctx context.Context) ([]domain.MariaDBVariable, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	return m.db.GetAllMariaDBVariables(ctx)
}

func (m Manager) GetVariable(ctx context.Context, name domain.VariableName) (*domain.MariaDBVariable, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	return m.db.GetMariaDBVariable(ctx, name)
}

// SaveVariable creates or updates a catalog entry.
// The datatype of a variable can only be changed while no override references it.
func (m Manager) SaveVariable(ctx context.Context, v *domain.MariaDBVariable) (*domain.MariaDBVariable, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	v.Datatype = v.Datatype.Normalized()
	if err := v.Validate(); err != nil {
		return nil, err
	}

	existing, err := m.db.GetMariaDBVariable(ctx, v.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("unable to load existing variable %s: %w", v.Name, err)
	}
	if existing != nil && existing.Datatype.Normalized() != v.Datatype {
		usages, err := m.db.CountVariableOverridesOf(ctx, v.Name)
		if err != nil {
			return nil, fmt.Errorf("unable to count overrides of %s: %w", v.Name, err)
		}
		if usages > 0 {
			return nil, fmt.Errorf("%w: datatype of %s cannot change, it is used by %d overrides",
				domain.ErrInvalidData, v.Name, usages)
		}
	}

	if err := m.saveVariable(ctx, v); err != nil {
		return nil, err
	}

	return m.db.GetMariaDBVariable(ctx, v.Name)
}

// SeedVariable adds the variable to the catalog if it does not exist yet.
// Existing entries are only replaced if overwrite is set. It returns true if the catalog was changed.
func (m Manager) SeedVariable(ctx context.Context, v *domain.MariaDBVariable, overwrite bool) (bool, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return false, err
	}

	v.Datatype = v.Datatype.Normalized()
	if err := v.Validate(); err != nil {
		return false, err
	}

	existing, err := m.db.GetMariaDBVariable(ctx, v.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("unable to load existing variable %s: %w", v.Name, err)
	}
	if existing != nil && !overwrite {
		return false, nil
	}

	if err := m.saveVariable(ctx, v); err != nil {
		return false, err
	}

	return true, nil
}

// DeleteVariable removes a catalog entry. Variables that are still referenced by overrides cannot be deleted.
func (m Manager) DeleteVariable(ctx context.Context, name domain.VariableName) error {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return err
	}

	if _, err := m.db.GetMariaDBVariable(ctx, name); err != nil {
		return fmt.Errorf("unable to find variable %s: %w", name, err)
	}

	usages, err := m.db.CountVariableOverridesOf(ctx, name)
	if err != nil {
		return fmt.Errorf("unable to count overrides of %s: %w", name, err)
	}
	if usages > 0 {
		return fmt.Errorf("%w: variable %s is used by %d overrides", domain.ErrInvalidData, name, usages)
	}

	if err := m.db.DeleteMariaDBVariable(ctx, name); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	return nil
}

func (m Manager) saveVariable(ctx context.Context, v *domain.MariaDBVariable) error {
	err := m.db.SaveMariaDBVariable(ctx, v.Name, func(stored *domain.MariaDBVariable) (*domain.MariaDBVariable, error) {
		stored.Datatype = v.Datatype
		stored.Dynamic = v.Dynamic
		stored.DocSection = v.DocSection
		stored.Description = v.Description
		return stored, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save variable %s: %w", v.Name, err)
	}

	return nil
}
