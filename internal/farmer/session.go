// Package farmer holds the per-session state of a signed-in farmer: the
// profile entered at login, the chat transcript, applied schemes and the
// selected language. It is stored as one JSON value in the Fiber session.
package farmer

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"kisansense/internal/models"
)

const (
	sessionKey = "farmer"
	localsKey  = "farmer"
)

// ErrNoSession is returned when the session middleware isn't installed.
var ErrNoSession = errors.New("session not available")

// Session is the state kept for one farmer between requests.
type Session struct {
	Profile        *models.Profile      `json:"profile,omitempty"`
	Language       string               `json:"language"`
	Transcript     []models.ChatMessage `json:"transcript"`
	AppliedSchemes []string             `json:"applied_schemes"`

	limit int
}

// New creates a session for a profile. limit caps the transcript length,
// zero keeps everything.
func New(profile models.Profile, limit int) *Session {
	return &Session{
		Profile:  &profile,
		Language: profile.Language,
		limit:    limit,
	}
}

// SignedIn returns true once a profile has been set.
func (s *Session) SignedIn() bool {
	return s != nil && s.Profile != nil
}

// SetLimit changes the transcript cap and trims if needed.
func (s *Session) SetLimit(limit int) {
	s.limit = limit
	s.trim()
}

// Append adds a message to the transcript, dropping the oldest entries once
// the cap is reached.
func (s *Session) Append(msg models.ChatMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.Transcript = append(s.Transcript, msg)
	s.trim()
}

func (s *Session) trim() {
	if s.limit > 0 && len(s.Transcript) > s.limit {
		s.Transcript = slices.Clone(s.Transcript[len(s.Transcript)-s.limit:])
	}
}

// ClearTranscript empties the chat history.
func (s *Session) ClearTranscript() {
	s.Transcript = nil
}

// Apply records an applied scheme. Returns false if it was already applied.
func (s *Session) Apply(schemeID string) bool {
	if s.HasApplied(schemeID) {
		return false
	}
	s.AppliedSchemes = append(s.AppliedSchemes, schemeID)
	return true
}

// HasApplied returns true if the scheme was applied in this session.
func (s *Session) HasApplied(schemeID string) bool {
	return slices.Contains(s.AppliedSchemes, schemeID)
}

// SetLanguage switches the answer language for the rest of the session.
func (s *Session) SetLanguage(code string) {
	s.Language = code
	if s.Profile != nil {
		s.Profile.Language = code
	}
}

// Load reads the farmer session for the current request. A request without
// stored state yields an empty, signed-out session.
func Load(c fiber.Ctx, limit int) (*Session, error) {
	sess := session.FromContext(c)
	if sess == nil {
		return nil, ErrNoSession
	}

	s := &Session{limit: limit}
	raw, ok := sess.Get(sessionKey).(string)
	if !ok || raw == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		return nil, fmt.Errorf("failed to decode farmer session: %w", err)
	}
	s.trim()
	return s, nil
}

// Save writes the farmer session back to the store.
func Save(c fiber.Ctx, s *Session) error {
	sess := session.FromContext(c)
	if sess == nil {
		return ErrNoSession
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode farmer session: %w", err)
	}
	sess.Set(sessionKey, string(data))
	return nil
}

// Start begins a fresh session after login with a new session id.
func Start(c fiber.Ctx, s *Session) error {
	sess := session.FromContext(c)
	if sess == nil {
		return ErrNoSession
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Delete(sessionKey)
	Attach(c, s)
	return Save(c, s)
}

// Destroy drops all state for the current session.
func Destroy(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return ErrNoSession
	}
	c.Locals(localsKey, nil)
	return sess.Destroy()
}

// Attach exposes s to downstream handlers.
func Attach(c fiber.Ctx, s *Session) {
	c.Locals(localsKey, s)
}

// FromContext returns the session attached by the middleware, or nil.
func FromContext(c fiber.Ctx) *Session {
	s, _ := c.Locals(localsKey).(*Session)
	return s
}
