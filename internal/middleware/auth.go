package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"kisansense/internal/farmer"
	"kisansense/internal/models"
)

// OfficerSessionKey holds the OIDC subject of a signed-in officer.
const OfficerSessionKey = "officer_sub"

// FarmerMiddleware loads the farmer session around each request.
type FarmerMiddleware struct {
	historyLimit int
}

// NewFarmerMiddleware creates a farmer session middleware. historyLimit caps
// the chat transcript, zero keeps everything.
func NewFarmerMiddleware(historyLimit int) *FarmerMiddleware {
	return &FarmerMiddleware{historyLimit: historyLimit}
}

// RequireFarmer ensures a profile has been entered, redirecting to /login
// if not. The session is saved after the handler returns.
func (m *FarmerMiddleware) RequireFarmer(c fiber.Ctx) error {
	s, err := farmer.Load(c, m.historyLimit)
	if err != nil {
		slog.Error("failed to load farmer session", "error", err)
		return redirectToLogin(c)
	}
	if !s.SignedIn() {
		return redirectToLogin(c)
	}

	farmer.Attach(c, s)
	if err := c.Next(); err != nil {
		return err
	}

	// Logout clears the locals; nothing left to save
	if cur := farmer.FromContext(c); cur != nil {
		return farmer.Save(c, cur)
	}
	return nil
}

// OptionalFarmer loads the farmer session if there is one but lets anonymous
// requests through.
func (m *FarmerMiddleware) OptionalFarmer(c fiber.Ctx) error {
	s, err := farmer.Load(c, m.historyLimit)
	if err == nil && s.SignedIn() {
		farmer.Attach(c, s)
	}
	return c.Next()
}

func redirectToLogin(c fiber.Ctx) error {
	if c.Get("HX-Request") == "true" {
		c.Set("HX-Redirect", "/login")
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	return c.Redirect().To("/login")
}

// OfficerStore looks up officer accounts.
type OfficerStore interface {
	GetOfficerBySub(ctx context.Context, sub string) (*models.Officer, error)
}

// OfficerMiddleware handles officer authentication via sessions.
type OfficerMiddleware struct {
	store OfficerStore
}

// NewOfficerMiddleware creates a new officer middleware instance.
func NewOfficerMiddleware(store OfficerStore) *OfficerMiddleware {
	return &OfficerMiddleware{store: store}
}

// RequireOfficer ensures an officer is signed in, redirecting to
// /officer/login if not.
func (m *OfficerMiddleware) RequireOfficer(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return c.Redirect().To("/officer/login")
	}

	sub, _ := sess.Get(OfficerSessionKey).(string)
	if sub == "" {
		sess.Set("redirect_after_login", c.OriginalURL())
		return c.Redirect().To("/officer/login")
	}

	officer, err := m.store.GetOfficerBySub(c.Context(), sub)
	if err != nil {
		sess.Delete(OfficerSessionKey)
		return c.Redirect().To("/officer/login")
	}

	c.Locals("officer", officer)
	return c.Next()
}

// RequireResolver rejects officers who may only view messages.
func RequireResolver(c fiber.Ctx) error {
	officer, ok := c.Locals("officer").(*models.Officer)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if !officer.CanResolveMessages() {
		return fiber.NewError(fiber.StatusForbidden, "you do not have permission to resolve messages")
	}
	return c.Next()
}
