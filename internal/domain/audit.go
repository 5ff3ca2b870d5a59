package domain

import "time"

// Audit action tags.
const (
	AuditActionLogin             = "login"
	AuditActionLogout            = "logout"
	AuditActionUserCreated       = "user_created"
	AuditActionUserDeactivated   = "user_deactivated"
	AuditActionPasswordChanged   = "password_changed"
	AuditActionClientAdded       = "client_added"
	AuditActionClientStatusSet   = "client_status_set"
	AuditActionProjectCreated    = "project_created"
	AuditActionProjectActivated  = "project_activated"
	AuditActionProjectDelivered  = "project_delivered"
	AuditActionDeveloperAssigned = "developer_assigned"
	AuditActionPhaseAdvanced     = "phase_advanced"
	AuditActionDeveloperCreated  = "developer_created"
)

// SystemActor attributes audit entries with no authenticated session.
const SystemActor = "system"

// AuditEntry is an immutable record of a privileged action.
type AuditEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	UserRole    string    `json:"userRole"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
}

// AuditRetentionLimit bounds the audit log; oldest entries beyond the cap
// are evicted FIFO.
const AuditRetentionLimit = 1000
