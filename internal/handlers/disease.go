package handlers

import (
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/validation"
)

// DiseaseHandler handles leaf photo diagnosis.
type DiseaseHandler struct {
	*Site
	diagnoser DiagnosisService
}

// NewDiseaseHandler creates a new disease handler.
func NewDiseaseHandler(site *Site, diagnoser DiagnosisService) *DiseaseHandler {
	return &DiseaseHandler{Site: site, diagnoser: diagnoser}
}

// Page renders the upload form.
func (h *DiseaseHandler) Page(c fiber.Ctx) error {
	return c.Render("disease", h.Site.Page(c, "Crop doctor", fiber.Map{
		"MaxUploadMB": h.Cfg.MaxUploadMB,
	}))
}

// Diagnose classifies an uploaded photo and renders the result or a
// message naming why it failed.
func (h *DiseaseHandler) Diagnose(c fiber.Ctx) error {
	lang := h.Lang(c)
	data := fiber.Map{"MaxUploadMB": h.Cfg.MaxUploadMB}

	image, err := readUpload(c, "image", int64(h.Cfg.MaxUploadBytes()))
	if err != nil {
		data["Error"] = "Please choose a photo"
		return h.renderResult(c, fiber.StatusBadRequest, data)
	}

	contentType, ok, msg := validation.ValidateImage(image, int64(h.Cfg.MaxUploadBytes()))
	if !ok {
		data["Error"] = msg
		return h.renderResult(c, fiber.StatusBadRequest, data)
	}

	diag, err := h.diagnoser.Diagnose(c.Context(), image, contentType, lang)
	if err != nil {
		slog.Warn("diagnosis failed", "error", err)
		data["Error"] = h.ServiceMessage("disease", err, lang)
		return h.renderResult(c, fiber.StatusOK, data)
	}

	data["Diagnosis"] = diag
	return h.renderResult(c, fiber.StatusOK, data)
}

func (h *DiseaseHandler) renderResult(c fiber.Ctx, status int, data fiber.Map) error {
	if isHTMX(c) {
		// HTMX only swaps 2xx responses
		return c.Render("partials/diagnosis", data, "")
	}
	return c.Status(status).Render("disease", h.Site.Page(c, "Crop doctor", data))
}

// readUpload reads a multipart file field, allowing one byte over max so
// oversized files are detected rather than truncated.
func readUpload(c fiber.Ctx, field string, max int64) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, max+1))
}
