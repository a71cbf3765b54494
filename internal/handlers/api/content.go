package api

import (
	"cmp"
	"slices"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/config"
)

// ContentHandler serves the schemes and news from the content file.
type ContentHandler struct {
	content *config.ContentConfig
}

// NewContentHandler creates a new API content handler.
func NewContentHandler(content *config.ContentConfig) *ContentHandler {
	return &ContentHandler{content: content}
}

// Schemes returns all government schemes.
func (h *ContentHandler) Schemes(c fiber.Ctx) error {
	return jsonSuccess(c, h.content.Schemes)
}

// Scheme returns a single scheme by ID.
func (h *ContentHandler) Scheme(c fiber.Ctx) error {
	scheme := h.content.GetSchemeByID(c.Params("id"))
	if scheme == nil {
		return jsonError(c, fiber.StatusNotFound, "scheme not found")
	}
	return jsonSuccess(c, scheme)
}

// News returns news items, newest first.
func (h *ContentHandler) News(c fiber.Ctx) error {
	items := slices.Clone(h.content.News)
	slices.SortStableFunc(items, func(a, b config.NewsConfig) int {
		return cmp.Compare(b.Published, a.Published)
	})
	return jsonSuccess(c, items)
}
