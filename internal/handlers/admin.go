package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"kisansense/internal/advisory"
	"kisansense/internal/config"
	"kisansense/internal/db"
	"kisansense/internal/models"
)

// AdminStore is the persistence the officer console reads.
type AdminStore interface {
	ListContactMessages(ctx context.Context, status string, limit int) ([]models.ContactMessage, error)
	CountOpenContactMessages(ctx context.Context) (int, error)
	ResolveContactMessage(ctx context.Context, id, officerID uuid.UUID) error
	GetAllAdvisoryLookups(ctx context.Context) ([]models.AdvisoryLookup, error)
}

// RuleStats is one advisory rule with its hit count across languages.
type RuleStats struct {
	Key      string
	Keywords []string
	Hits     int64
}

// MessageRow is a contact message as shown to one officer.
type MessageRow struct {
	models.ContactMessage
	CanResolve bool
}

// AdminHandler handles the officer console.
type AdminHandler struct {
	cfg   *config.Config
	table *advisory.Table
	store AdminStore
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(cfg *config.Config, table *advisory.Table, store AdminStore) *AdminHandler {
	return &AdminHandler{cfg: cfg, table: table, store: store}
}

// Messages lists contact messages, open ones by default.
func (h *AdminHandler) Messages(c fiber.Ctx) error {
	officer, _ := c.Locals("officer").(*models.Officer)

	status := c.Query("status", models.ContactOpen)
	if status == "all" {
		status = ""
	}

	messages, err := h.store.ListContactMessages(c.Context(), status, 200)
	if err != nil {
		return err
	}
	open, err := h.store.CountOpenContactMessages(c.Context())
	if err != nil {
		return err
	}

	canResolve := officer != nil && officer.CanResolveMessages()
	rows := make([]MessageRow, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, MessageRow{ContactMessage: m, CanResolve: canResolve && m.IsOpen()})
	}

	return c.Render("admin/messages", MergeBranding(fiber.Map{
		"Title":    "Messages",
		"Officer":  officer,
		"Messages": rows,
		"Status":   c.Query("status", models.ContactOpen),
		"Open":     open,
	}, h.cfg))
}

// Resolve marks a contact message handled by the current officer.
func (h *AdminHandler) Resolve(c fiber.Ctx) error {
	officer, ok := c.Locals("officer").(*models.Officer)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid message id")
	}

	err = h.store.ResolveContactMessage(c.Context(), id, officer.ID)
	switch {
	case errors.Is(err, db.ErrContactMessageNotFound):
		return fiber.NewError(fiber.StatusNotFound, "message not found")
	case errors.Is(err, db.ErrAlreadyResolved):
		if isHTMX(c) {
			return htmxError(c, "Already resolved by another officer")
		}
	case err != nil:
		slog.Error("failed to resolve message", "id", id, "error", err)
		return err
	}

	if isHTMX(c) {
		return c.SendString(`<span class="text-green-700">Resolved</span>`)
	}
	return c.Redirect().To("/admin/messages")
}

// Advisory shows how often each rule and the fallback were hit, so officers
// can see which questions the content file does not cover.
func (h *AdminHandler) Advisory(c fiber.Ctx) error {
	officer, _ := c.Locals("officer").(*models.Officer)

	lookups, err := h.store.GetAllAdvisoryLookups(c.Context())
	if err != nil {
		return err
	}

	return c.Render("admin/advisory", MergeBranding(fiber.Map{
		"Title":   "Advisory usage",
		"Officer": officer,
		"Rules":   ruleStats(h.table, lookups),
		"Lookups": lookups,
	}, h.cfg))
}

// ruleStats totals lookups per rule in table order, including rules nobody
// has hit yet, with the fallback last.
func ruleStats(table *advisory.Table, lookups []models.AdvisoryLookup) []RuleStats {
	hits := make(map[string]int64)
	for _, l := range lookups {
		hits[l.Outcome] += l.Count
	}

	rules := table.Rules()
	stats := make([]RuleStats, 0, len(rules)+1)
	for _, r := range rules {
		stats = append(stats, RuleStats{Key: r.Key, Keywords: r.Keywords, Hits: hits[r.Key]})
	}
	return append(stats, RuleStats{Key: advisory.FallbackOutcome, Hits: hits[advisory.FallbackOutcome]})
}
