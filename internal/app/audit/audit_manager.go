package audit

import (
	"context"
	"fmt"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

// Manager gives administrators read access to the audit trail.
type Manager struct {
	db ManagerDatabaseRepo
}

func NewManager(db ManagerDatabaseRepo) *Manager {
	return &Manager{db: db}
}

// GetAll returns the complete audit trail, newest entries first.
func (m *Manager) GetAll(ctx context.Context) ([]domain.AuditEntry, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	entries, err := m.db.GetAllAuditEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}

	return entries, nil
}

// GetServerEntries returns the audit trail of one server. Entries of deleted servers are kept.
func (m *Manager) GetServerEntries(ctx context.Context, id domain.ServerIdentifier) ([]domain.AuditEntry, error) {
	if err := domain.ValidateAdminAccess(ctx); err != nil {
		return nil, err
	}

	entries, err := m.db.GetServerAuditEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries of server %s: %w", id, err)
	}

	return entries, nil
}
