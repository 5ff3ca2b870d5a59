package domain

import "time"

// ProgressLog is an immutable daily progress record.
type ProgressLog struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	DeveloperID string    `json:"developerId"`
	Update      string    `json:"shortUpdate"`
	Hours       float64   `json:"timeTracking"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}
