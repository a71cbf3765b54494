package models

import "time"

// Chat roles
const (
	RoleUserMessage      = "user"
	RoleAssistantMessage = "assistant"
)

// Profile is what a farmer enters at login. It lives only in the session.
type Profile struct {
	Name     string  `json:"name"`
	Village  string  `json:"village"`
	Phone    string  `json:"phone"`
	LandSize float64 `json:"land_size"` // Acres
	Language string  `json:"language"`  // Language code
}

// ChatMessage is one entry of a chat transcript.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Rule      string    `json:"rule,omitempty"` // Advisory rule behind an assistant reply
	Notice    string    `json:"notice,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IsUser returns true for messages the farmer typed.
func (m ChatMessage) IsUser() bool {
	return m.Role == RoleUserMessage
}
