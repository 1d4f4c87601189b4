package domain

import "time"

type AuditSeverityLevel string

const AuditSeverityLevelLow AuditSeverityLevel = "low"
const AuditSeverityLevelMedium AuditSeverityLevel = "medium"
const AuditSeverityLevelHigh AuditSeverityLevel = "high"

// AuditEntry is a single row of the audit trail. Every entry belongs to the server it concerns.
type AuditEntry struct {
	UniqueId  uint64    `gorm:"primaryKey;autoIncrement:true;column:id"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_au_created"`

	Severity AuditSeverityLevel `gorm:"column:severity;index:idx_au_severity"`
	Server   ServerIdentifier   `gorm:"column:server_id;size:64;index:idx_au_server"`

	Origin      string `gorm:"column:origin"` // override-change, override-validation, server-deletion or server-apply
	ContextUser string `gorm:"column:context_user"`
	Message     string `gorm:"column:message"`
}
