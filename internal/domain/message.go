package domain

import "time"

// Message is a direct message between two users, optionally tied to a project.
type Message struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	ProjectID  string    `json:"projectId,omitempty"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	Read       bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}
