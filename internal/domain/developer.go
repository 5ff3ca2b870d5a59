package domain

import "time"

// Developer is the roster record paired with a developer-role User.
// UserID points at the paired account; both must stay username-consistent.
type Developer struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Specialization string    `json:"specialization"`
	ManagerID      string    `json:"managerId"`
	ProjectIDs     []string  `json:"projectIds"`
	Active         bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}
