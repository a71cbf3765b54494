package handlers

import (
	"context"
	"html"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/advisory"
	"kisansense/internal/config"
	"kisansense/internal/farmer"
	"kisansense/internal/models"
	"kisansense/internal/services"
)

// WeatherService returns current weather for a place.
type WeatherService interface {
	Current(ctx context.Context, city string) (*models.WeatherReport, error)
}

// DiagnosisService classifies a leaf photo and attaches advice.
type DiagnosisService interface {
	Diagnose(ctx context.Context, image []byte, contentType, language string) (*models.Diagnosis, error)
}

// Site carries what every farmer-facing page needs: configuration, the
// content file and the advisory responder.
type Site struct {
	Cfg       *config.Config
	Content   *config.ContentConfig
	Responder *advisory.Responder
}

// Page merges branding, the signed-in farmer and the language list into data.
func (s *Site) Page(c fiber.Ctx, title string, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["Path"] = c.Path()
	data["Farmer"] = farmer.FromContext(c)
	data["Languages"] = s.Responder.Table().Languages()
	data["Lang"] = s.Lang(c)
	return MergeBranding(data, s.Cfg)
}

// Lang returns the language code of the current farmer, or the source
// language for anonymous requests.
func (s *Site) Lang(c fiber.Ctx) string {
	if f := farmer.FromContext(c); f != nil && f.Language != "" {
		return f.Language
	}
	return s.Responder.Table().Source().Code
}

// ServiceMessage returns the user-facing text for a remote service failure
// in the given language.
func (s *Site) ServiceMessage(service string, err error, lang string) string {
	key := service + "." + services.ReasonCode(err)
	if msg := s.Content.Message(key, lang); msg != key {
		return msg
	}
	return s.Content.Message(service+".unavailable", lang)
}

func isHTMX(c fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	return c.SendString(
		`<div class="p-3 rounded-lg bg-red-50 text-red-700 text-sm">` + html.EscapeString(message) + `</div>`,
	)
}
