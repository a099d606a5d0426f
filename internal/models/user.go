package models

import "time"

// User roles
const (
	RoleAdmin    = "admin"
	RoleProducer = "producer"
	RoleViewer   = "viewer"
)

type User struct {
	ID             int       `json:"id"`
	OrganisationID int       `json:"organisation_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`    // Never expose in JSON
	Role           string    `json:"role"` // admin, producer or viewer
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
