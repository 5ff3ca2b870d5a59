package dto

import "github.com/spec-kit/crm-service/internal/domain"

// AddClientRequest payload for lead intake.
type AddClientRequest struct {
	FullName           string              `json:"full_name"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	Company            string              `json:"company"`
	Website            string              `json:"website"`
	ServicesNeeded     string              `json:"services_needed"`
	ProjectDescription string              `json:"project_description"`
	CompanySummary     string              `json:"company_summary"`
	Source             domain.ClientSource `json:"source"`
	SourceID           string              `json:"source_id"`
}

// ClientStatusRequest payload for the validity verdict.
type ClientStatusRequest struct {
	Status domain.ClientStatus `json:"status"`
}

// ClientActiveRequest payload for active toggles.
type ClientActiveRequest struct {
	Active bool `json:"is_active"`
}
