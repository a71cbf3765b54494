package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/farmer"
	"kisansense/internal/models"
	"kisansense/internal/validation"
)

// ContactStore persists contact form messages.
type ContactStore interface {
	CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error
}

// ContactNotifier tells officers about new messages.
type ContactNotifier interface {
	NotifyContactMessage(ctx context.Context, msg *models.ContactMessage)
}

// ContactHandler handles the contact-an-officer form.
type ContactHandler struct {
	*Site
	store    ContactStore
	notifier ContactNotifier
}

// NewContactHandler creates a new contact handler. notifier may be nil.
func NewContactHandler(site *Site, store ContactStore, notifier ContactNotifier) *ContactHandler {
	return &ContactHandler{Site: site, store: store, notifier: notifier}
}

// Page renders the form, prefilled from the farmer profile when signed in.
func (h *ContactHandler) Page(c fiber.Ctx) error {
	form := models.ContactMessage{}
	if s := farmer.FromContext(c); s != nil {
		form.Name = s.Profile.Name
		form.Phone = s.Profile.Phone
		form.Village = s.Profile.Village
	}
	return c.Render("contact", h.Site.Page(c, "Contact an officer", fiber.Map{"Form": form}))
}

// Submit stores the message and notifies officers.
func (h *ContactHandler) Submit(c fiber.Ctx) error {
	lang := h.Lang(c)
	msg := &models.ContactMessage{
		Name:     strings.TrimSpace(c.FormValue("name")),
		Village:  strings.TrimSpace(c.FormValue("village")),
		Message:  strings.TrimSpace(c.FormValue("message")),
		Language: lang,
	}

	errs := map[string]string{}
	if ok, m := validation.ValidateName(msg.Name); !ok {
		errs["name"] = m
	}
	if ok, m := validation.ValidateMessage(msg.Message); !ok {
		errs["message"] = m
	}
	phone, ok := validation.NormalizePhone(c.FormValue("phone"))
	if !ok {
		errs["phone"] = "Enter a 10 digit mobile number"
	}
	msg.Phone = phone

	if len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).Render("contact", h.Site.Page(c, "Contact an officer", fiber.Map{
			"Form":   msg,
			"Errors": errs,
		}))
	}

	if err := h.store.CreateContactMessage(c.Context(), msg); err != nil {
		slog.Error("failed to store contact message", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not send your message, please try again")
	}
	if h.notifier != nil {
		h.notifier.NotifyContactMessage(c.Context(), msg)
	}

	return c.Render("contact", h.Site.Page(c, "Contact an officer", fiber.Map{
		"Form": models.ContactMessage{},
		"Sent": h.Content.Message("contact.sent", lang),
	}))
}
