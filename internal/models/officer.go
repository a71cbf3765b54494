package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleViewer  = "viewer"
	RoleOfficer = "officer"
	RoleAdmin   = "admin"
)

// Officer is an agriculture officer authenticated via OIDC.
type Officer struct {
	ID        uuid.UUID `json:"id"`
	Sub       string    `json:"sub"` // OIDC subject identifier
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // viewer, officer, admin
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin returns true if the officer is an admin.
func (o *Officer) IsAdmin() bool {
	return o.Role == RoleAdmin
}

// CanResolveMessages returns true if the officer may close contact messages.
func (o *Officer) CanResolveMessages() bool {
	return o.Role == RoleOfficer || o.Role == RoleAdmin
}
