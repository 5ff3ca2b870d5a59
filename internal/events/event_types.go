package events

import (
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProjectCreated    EventType = "project_created"
	EventProjectActivated  EventType = "project_activated"
	EventProjectDelivered  EventType = "project_delivered"
	EventDeveloperAssigned EventType = "developer_assigned"
	EventPhaseAdvanced     EventType = "phase_advanced"
	EventIssueReported     EventType = "issue_reported"
	EventUserCreated       EventType = "user_created"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID   string      `json:"user_id,omitempty"`
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ProjectID string      `json:"project_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProjectActivatedPayload payload.
type ProjectActivatedPayload struct {
	ManagerID     string  `json:"manager_id"`
	Earnings      float64 `json:"earnings"`
	PortalAccount string  `json:"portal_account"`
}

// ProjectDeliveredPayload payload.
type ProjectDeliveredPayload struct {
	DeliveredAt time.Time `json:"delivered_at"`
}

// DeveloperAssignedPayload payload.
type DeveloperAssignedPayload struct {
	PhaseID     string `json:"phase_id"`
	DeveloperID string `json:"developer_id"`
}

// PhaseAdvancedPayload payload.
type PhaseAdvancedPayload struct {
	PhaseID   string             `json:"phase_id"`
	OldStatus domain.PhaseStatus `json:"old_status"`
	NewStatus domain.PhaseStatus `json:"new_status"`
}

// IssueReportedPayload payload.
type IssueReportedPayload struct {
	IssueID string           `json:"issue_id"`
	Type    domain.IssueType `json:"issue_type"`
	Title   string           `json:"title"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}
