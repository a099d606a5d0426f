package models

import "time"

// Process is a production step (sawing, planing, drying...) owned by an organisation
type Process struct {
	ID             int       `json:"id"`
	OrganisationID int       `json:"organisation_id"`
	Code           string    `json:"code"` // Short alphanumeric code used in package numbers
	Name           string    `json:"name"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateProcessRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NextNumberPreview shows the next package number without consuming it
type NextNumberPreview struct {
	ProcessID   int    `json:"process_id"`
	ProcessCode string `json:"process_code"`
	Next        string `json:"next"`
	Sequence    int    `json:"sequence"`
}
