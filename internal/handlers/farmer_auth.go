package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/farmer"
	"kisansense/internal/models"
	"kisansense/internal/validation"
)

// FarmerAuthHandler handles the profile form that starts a farmer session.
type FarmerAuthHandler struct {
	*Site
}

// NewFarmerAuthHandler creates a new farmer login handler.
func NewFarmerAuthHandler(site *Site) *FarmerAuthHandler {
	return &FarmerAuthHandler{Site: site}
}

// LoginPage renders the profile form.
func (h *FarmerAuthHandler) LoginPage(c fiber.Ctx) error {
	if s, err := farmer.Load(c, 0); err == nil && s.SignedIn() {
		return c.Redirect().To("/")
	}
	return c.Render("login", h.Page(c, "Welcome", fiber.Map{
		"Form":   validation.ProfileInput{Language: h.Responder.Table().Source().Code},
		"Errors": validation.ProfileErrors{},
	}))
}

// Login validates the profile form and starts a new session.
func (h *FarmerAuthHandler) Login(c fiber.Ctx) error {
	in := validation.ProfileInput{
		Name:     strings.TrimSpace(c.FormValue("name")),
		Village:  strings.TrimSpace(c.FormValue("village")),
		Phone:    c.FormValue("phone"),
		LandSize: c.FormValue("land_size"),
		Language: c.FormValue("language"),
	}

	phone, land, errs := validation.ValidateProfile(in)
	lang, ok := h.Responder.Table().ResolveLanguage(in.Language)
	if !ok {
		errs["language"] = "Choose a language"
	}

	if len(errs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).Render("login", h.Page(c, "Welcome", fiber.Map{
			"Form":   in,
			"Errors": errs,
		}))
	}

	profile := models.Profile{
		Name:     in.Name,
		Village:  in.Village,
		Phone:    phone,
		LandSize: land,
		Language: lang.Code,
	}
	if err := farmer.Start(c, farmer.New(profile, h.Cfg.ChatHistoryLimit)); err != nil {
		slog.Error("failed to start farmer session", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not start session")
	}

	return c.Redirect().To("/")
}

// Logout clears the farmer session.
func (h *FarmerAuthHandler) Logout(c fiber.Ctx) error {
	if err := farmer.Destroy(c); err != nil {
		slog.Warn("failed to destroy farmer session", "error", err)
	}
	return c.Redirect().To("/login")
}
