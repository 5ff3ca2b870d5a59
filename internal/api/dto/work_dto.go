package dto

import "github.com/spec-kit/crm-service/internal/domain"

// CreateTaskRequest payload for task creation.
type CreateTaskRequest struct {
	ProjectID   string              `json:"project_id"`
	DeveloperID string              `json:"developer_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.TaskPriority `json:"priority"`
}

// TaskStatusRequest payload for task status updates.
type TaskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// RecordProgressRequest payload for daily progress logging.
type RecordProgressRequest struct {
	ProjectID   string  `json:"project_id"`
	DeveloperID string  `json:"developer_id"`
	Update      string  `json:"short_update"`
	Hours       float64 `json:"time_tracking"`
	Date        string  `json:"date"`
}

// ReportIssueRequest payload for issue reports.
type ReportIssueRequest struct {
	ProjectID   string           `json:"project_id"`
	Type        domain.IssueType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Attachments []string         `json:"attachments"`
}

// IssueStatusRequest payload for issue status updates.
type IssueStatusRequest struct {
	Status domain.IssueStatus `json:"status"`
}
