package domain

import "time"

// ProjectStatus enumerates the delivery lifecycle.
type ProjectStatus string

const (
	ProjectStatusPending   ProjectStatus = "PENDING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusDelivered ProjectStatus = "DELIVERED"
)

// PhaseStatus enumerates per-phase progress.
type PhaseStatus string

const (
	PhaseStatusNotStarted PhaseStatus = "NOT_STARTED"
	PhaseStatusInProgress PhaseStatus = "IN_PROGRESS"
	PhaseStatusCompleted  PhaseStatus = "COMPLETED"
)

// PhaseCount is the fixed number of phases seeded on every project.
const PhaseCount = 4

// ClientCredentials is the portal credential copy embedded on an active
// project. SecretHash is the bcrypt hash of the portal secret; the
// authoritative record is the client-role User referenced by ClientUserID.
type ClientCredentials struct {
	Username   string `json:"username"`
	SecretHash string `json:"secretHash"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// Phase is owned by a project and not independently addressable.
type Phase struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Status             PhaseStatus `json:"status"`
	AssignedDevelopers []string    `json:"assignedDevelopers"`
	StartDate          *time.Time  `json:"startDate,omitempty"`
	EndDate            *time.Time  `json:"endDate,omitempty"`
}

// Project is the unit of delivery.
type Project struct {
	ID                string             `json:"id"`
	ClientID          string             `json:"clientId"`
	ManagerID         string             `json:"managerId,omitempty"`
	Status            ProjectStatus      `json:"status"`
	Earnings          *float64           `json:"earnings,omitempty"`
	AssignedAt        *time.Time         `json:"assignedAt,omitempty"`
	DeliveredAt       *time.Time         `json:"deliveredAt,omitempty"`
	Phases            []Phase            `json:"phases"`
	ClientCredentials *ClientCredentials `json:"clientCredentials,omitempty"`
	ClientUserID      string             `json:"clientUserId,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// PhaseByID returns the phase with the given id, or nil.
func (p *Project) PhaseByID(phaseID string) *Phase {
	for i := range p.Phases {
		if p.Phases[i].ID == phaseID {
			return &p.Phases[i]
		}
	}
	return nil
}
