package dto

import (
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// CreateProjectRequest payload for project intake.
type CreateProjectRequest struct {
	ClientID string `json:"client_id"`
}

// ActivateProjectRequest payload for activation.
type ActivateProjectRequest struct {
	ManagerID string  `json:"manager_id"`
	Earnings  float64 `json:"earnings"`
	Username  string  `json:"client_username"`
	Secret    string  `json:"client_password"`
	Email     string  `json:"client_email"`
	Name      string  `json:"client_name"`
}

// AssignDeveloperRequest payload for phase staffing.
type AssignDeveloperRequest struct {
	DeveloperID string `json:"developer_id"`
}

// PhaseStatusRequest payload for phase advancement.
type PhaseStatusRequest struct {
	Status domain.PhaseStatus `json:"status"`
}

// CreateDeveloperRequest payload for roster additions.
type CreateDeveloperRequest struct {
	Name           string `json:"name"`
	Username       string `json:"username"`
	Secret         string `json:"password"`
	Specialization string `json:"specialization"`
}

// DeveloperActiveRequest payload for roster toggles.
type DeveloperActiveRequest struct {
	Active bool `json:"is_active"`
}

// PhaseResponse is the public view of a phase.
type PhaseResponse struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Status             domain.PhaseStatus `json:"status"`
	AssignedDevelopers []string           `json:"assigned_developers"`
	StartDate          *time.Time         `json:"start_date,omitempty"`
	EndDate            *time.Time         `json:"end_date,omitempty"`
}

// PortalCredentials is the credential view with the secret hash stripped.
type PortalCredentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// ProjectResponse is the public view of a project. Credential material
// never leaves the service layer.
type ProjectResponse struct {
	ID          string               `json:"id"`
	ClientID    string               `json:"client_id"`
	ManagerID   string               `json:"manager_id,omitempty"`
	Status      domain.ProjectStatus `json:"status"`
	Earnings    *float64             `json:"earnings,omitempty"`
	AssignedAt  *time.Time           `json:"assigned_at,omitempty"`
	DeliveredAt *time.Time           `json:"delivered_at,omitempty"`
	Phases      []PhaseResponse      `json:"phases"`
	Credentials *PortalCredentials   `json:"portal_credentials,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewProjectResponse maps a project, dropping the embedded secret hash.
func NewProjectResponse(p *domain.Project) ProjectResponse {
	phases := make([]PhaseResponse, 0, len(p.Phases))
	for _, ph := range p.Phases {
		phases = append(phases, PhaseResponse{
			ID:                 ph.ID,
			Name:               ph.Name,
			Status:             ph.Status,
			AssignedDevelopers: ph.AssignedDevelopers,
			StartDate:          ph.StartDate,
			EndDate:            ph.EndDate,
		})
	}
	resp := ProjectResponse{
		ID:          p.ID,
		ClientID:    p.ClientID,
		ManagerID:   p.ManagerID,
		Status:      p.Status,
		Earnings:    p.Earnings,
		AssignedAt:  p.AssignedAt,
		DeliveredAt: p.DeliveredAt,
		Phases:      phases,
		CreatedAt:   p.CreatedAt,
	}
	if p.ClientCredentials != nil {
		resp.Credentials = &PortalCredentials{
			Username: p.ClientCredentials.Username,
			Email:    p.ClientCredentials.Email,
			Name:     p.ClientCredentials.Name,
		}
	}
	return resp
}
