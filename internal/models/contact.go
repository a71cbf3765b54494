package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact message status constants
const (
	ContactOpen     = "open"
	ContactResolved = "resolved"
)

// ContactMessage is a message a farmer sent through the contact form.
type ContactMessage struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Village    string     `json:"village"`
	Language   string     `json:"language"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	ResolvedBy *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsOpen returns true if no officer has resolved the message yet.
func (m *ContactMessage) IsOpen() bool {
	return m.Status != ContactResolved
}
