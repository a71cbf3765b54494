package api

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/models"
)

// WeatherService returns current weather for a place.
type WeatherService interface {
	Current(ctx context.Context, city string) (*models.WeatherReport, error)
}

// WeatherHandler serves current weather over JSON.
type WeatherHandler struct {
	weather WeatherService
}

// NewWeatherHandler creates a new API weather handler.
func NewWeatherHandler(weather WeatherService) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

// Current returns the weather for ?city=.
func (h *WeatherHandler) Current(c fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		return jsonError(c, fiber.StatusBadRequest, "city is required")
	}

	report, err := h.weather.Current(c.Context(), city)
	if err != nil {
		return jsonServiceError(c, "weather", err)
	}
	return jsonSuccess(c, report)
}
