package models

import (
	"time"

	"github.com/h44z/mariadb-varportal/internal/domain"
)

// AuditEntry records a change or a rejected change.
type AuditEntry struct {
	Id          uint64    `json:"Id"`
	Timestamp   time.Time `json:"Timestamp"`
	Severity    string    `json:"Severity" example:"low"`
	Server      string    `json:"Server" example:"0b7f3c52-8a55-4b3c-9f43-2b3d1f1f4f0e"`
	Origin      string    `json:"Origin" example:"override-change"`
	ContextUser string    `json:"ContextUser" example:"admin"`
	Message     string    `json:"Message"`
}

func NewAuditEntries(src []domain.AuditEntry) []AuditEntry {
	results := make([]AuditEntry, len(src))
	for i, e := range src {
		results[i] = AuditEntry{
			Id:          e.UniqueId,
			Timestamp:   e.CreatedAt,
			Severity:    string(e.Severity),
			Server:      string(e.Server),
			Origin:      e.Origin,
			ContextUser: e.ContextUser,
			Message:     e.Message,
		}
	}

	return results
}
