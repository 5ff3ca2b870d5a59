package domain

import "time"

// Role enumerates the four actor roles.
type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleManager   Role = "MANAGER"
	RoleDeveloper Role = "DEVELOPER"
	RoleClient    Role = "CLIENT"
)

// Valid reports whether the role is one of the known four.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleDeveloper, RoleClient:
		return true
	}
	return false
}

// User is the identity record for any actor.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	// ProjectID links client-role users to the single project their
	// portal access resolves to.
	ProjectID string    `json:"projectId,omitempty"`
	Active    bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
