package domain

import "time"

// IssueType classifies a reported issue.
type IssueType string

const (
	IssueTypeBug     IssueType = "BUG"
	IssueTypeBlocker IssueType = "BLOCKER"
	IssueTypeQuery   IssueType = "QUERY"
)

// IssueStatus enumerates resolution states.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
)

// Issue is reported against a project by a developer or client.
type Issue struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"projectId"`
	ReporterID  string      `json:"reporterId"`
	Type        IssueType   `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      IssueStatus `json:"status"`
	Attachments []string    `json:"attachments,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	ResolvedAt  *time.Time  `json:"resolvedAt,omitempty"`
}
