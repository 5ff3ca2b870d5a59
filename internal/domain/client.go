package domain

import "time"

// ClientSource tells how a lead entered the system.
type ClientSource string

const (
	ClientSourceWebhook ClientSource = "WEBHOOK"
	ClientSourceManual  ClientSource = "MANUAL"
)

// ClientStatus is the one-shot validity verdict on a lead.
type ClientStatus string

const (
	ClientStatusValid ClientStatus = "VALID"
	ClientStatusSpam  ClientStatus = "SPAM"
)

// Client is a prospect or customer record (a lead).
type Client struct {
	ID                 string       `json:"id"`
	FullName           string       `json:"fullName"`
	Email              string       `json:"email"`
	Phone              string       `json:"phone"`
	Company            string       `json:"company"`
	Website            string       `json:"website,omitempty"`
	ServicesNeeded     string       `json:"servicesNeeded"`
	ProjectDescription string       `json:"projectDescription"`
	CompanySummary     string       `json:"companySummary,omitempty"`
	Source             ClientSource `json:"source"`
	SourceID           string       `json:"sourceId,omitempty"`
	Status             ClientStatus `json:"status"`
	Active             bool         `json:"isActive"`
	SubmittedAt        time.Time    `json:"submittedAt"`
}
