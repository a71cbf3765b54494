package handlers

import (
	"github.com/gofiber/fiber/v3"

	"kisansense/internal/config"
	"kisansense/internal/farmer"
)

// SchemeView is a scheme with the farmer's application state.
type SchemeView struct {
	config.SchemeConfig
	Applied bool
	Message string // Shown after applying
}

// SchemeHandler handles government scheme listings.
type SchemeHandler struct {
	*Site
}

// NewSchemeHandler creates a new scheme handler.
func NewSchemeHandler(site *Site) *SchemeHandler {
	return &SchemeHandler{Site: site}
}

// List renders all schemes.
func (h *SchemeHandler) List(c fiber.Ctx) error {
	s := farmer.FromContext(c)
	views := make([]SchemeView, 0, len(h.Content.Schemes))
	for _, sc := range h.Content.Schemes {
		views = append(views, SchemeView{SchemeConfig: sc, Applied: s.HasApplied(sc.ID)})
	}
	return c.Render("schemes", h.Page(c, "Schemes", fiber.Map{
		"Schemes": views,
	}))
}

// Apply records an application. Applying twice is a no-op.
func (h *SchemeHandler) Apply(c fiber.Ctx) error {
	scheme := h.Content.GetSchemeByID(c.Params("id"))
	if scheme == nil {
		return fiber.NewError(fiber.StatusNotFound, "scheme not found")
	}
	farmer.FromContext(c).Apply(scheme.ID)

	if isHTMX(c) {
		return c.Render("partials/scheme_card", SchemeView{
			SchemeConfig: *scheme,
			Applied:      true,
			Message:      h.Content.Message("scheme.applied", h.Lang(c)),
		}, "")
	}
	return c.Redirect().To("/schemes")
}
