package handlers

import (
	"cmp"
	"slices"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/config"
)

// NewsHandler handles the agriculture news page.
type NewsHandler struct {
	*Site
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(site *Site) *NewsHandler {
	return &NewsHandler{Site: site}
}

// List renders all news items, newest first.
func (h *NewsHandler) List(c fiber.Ctx) error {
	return c.Render("news", h.Page(c, "News", fiber.Map{
		"News": latestNews(h.Content.News, 0),
	}))
}

// latestNews sorts by published date, newest first, and keeps at most n
// items when n > 0.
func latestNews(items []config.NewsConfig, n int) []config.NewsConfig {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b config.NewsConfig) int {
		return cmp.Compare(b.Published, a.Published)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
