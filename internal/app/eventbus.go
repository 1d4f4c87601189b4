package app

import "github.com/h44z/mariadb-varportal/internal/domain"

const TopicOverrideSaved = "override:saved"
const TopicOverrideDeleted = "override:deleted"
const TopicOverrideInvalid = "override:invalid"
const TopicServerDeleted = "server:deleted"
const TopicServerApplied = "server:applied"

// OverrideEvent is published on TopicOverrideSaved and TopicOverrideDeleted.
type OverrideEvent struct {
	Override domain.VariableOverride
	Action   string // created, updated or deleted
	User     string
}

// OverrideInvalidEvent is published on TopicOverrideInvalid if a validation failed.
type OverrideInvalidEvent struct {
	Override domain.VariableOverride
	Reason   string
	User     string
}

// ServerAppliedEvent is published on TopicServerApplied after overrides were applied to a server.
type ServerAppliedEvent struct {
	Result domain.ApplyResult
	Error  string
	User   string
}

// ServerDeletedEvent is published on TopicServerDeleted, all overrides of the server are gone as well.
type ServerDeletedEvent struct {
	Server domain.ServerIdentifier
	User   string
}
