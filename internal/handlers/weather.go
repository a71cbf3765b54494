package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/farmer"
)

// WeatherHandler handles the weather page.
type WeatherHandler struct {
	*Site
	weather WeatherService
}

// NewWeatherHandler creates a new weather handler.
func NewWeatherHandler(site *Site, weather WeatherService) *WeatherHandler {
	return &WeatherHandler{Site: site, weather: weather}
}

// Show renders current weather for ?city=, defaulting to the farmer's village.
func (h *WeatherHandler) Show(c fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		if s := farmer.FromContext(c); s != nil && s.Profile != nil {
			city = s.Profile.Village
		}
	}

	data := fiber.Map{"City": city}
	if city != "" {
		report, err := h.weather.Current(c.Context(), city)
		if err != nil {
			slog.Warn("weather lookup failed", "city", city, "error", err)
			data["Error"] = h.ServiceMessage("weather", err, h.Lang(c))
		} else {
			data["Weather"] = report
		}
	}

	return c.Render("weather", h.Page(c, "Weather", data))
}
