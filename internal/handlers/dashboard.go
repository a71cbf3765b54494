package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/farmer"
)

// DashboardHandler renders the farmer home page.
type DashboardHandler struct {
	*Site
	weather WeatherService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(site *Site, weather WeatherService) *DashboardHandler {
	return &DashboardHandler{Site: site, weather: weather}
}

// Show renders the dashboard with a weather card for the farmer's village,
// the latest news and the applied scheme count.
func (h *DashboardHandler) Show(c fiber.Ctx) error {
	s := farmer.FromContext(c)
	lang := h.Lang(c)

	data := fiber.Map{
		"News":         latestNews(h.Content.News, 3),
		"AppliedCount": len(s.AppliedSchemes),
		"SchemeCount":  len(h.Content.Schemes),
		"ChatCount":    len(s.Transcript),
	}

	if village := s.Profile.Village; village != "" {
		report, err := h.weather.Current(c.Context(), village)
		if err != nil {
			slog.Warn("dashboard weather failed", "village", village, "error", err)
			data["WeatherError"] = h.ServiceMessage("weather", err, lang)
		} else {
			data["Weather"] = report
		}
	}

	return c.Render("dashboard", h.Page(c, "Home", data))
}
