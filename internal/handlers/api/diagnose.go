package api

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/models"
	"kisansense/internal/validation"
)

// DiagnosisService classifies a leaf photo and attaches advice.
type DiagnosisService interface {
	Diagnose(ctx context.Context, image []byte, contentType, language string) (*models.Diagnosis, error)
}

// DiagnoseHandler classifies uploaded leaf photos over JSON.
type DiagnoseHandler struct {
	diagnoser DiagnosisService
	maxBytes  int64
}

// NewDiagnoseHandler creates a new API diagnose handler.
func NewDiagnoseHandler(diagnoser DiagnosisService, maxBytes int64) *DiagnoseHandler {
	return &DiagnoseHandler{diagnoser: diagnoser, maxBytes: maxBytes}
}

// Diagnose expects a multipart "image" field and an optional "language".
func (h *DiagnoseHandler) Diagnose(c fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "image is required")
	}
	f, err := fh.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "failed to read image")
	}
	defer f.Close()

	image, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "failed to read image")
	}

	contentType, ok, msg := validation.ValidateImage(image, h.maxBytes)
	if !ok {
		status := fiber.StatusBadRequest
		if int64(len(image)) > h.maxBytes {
			status = fiber.StatusRequestEntityTooLarge
		}
		return jsonError(c, status, msg)
	}

	diag, err := h.diagnoser.Diagnose(c.Context(), image, contentType, c.FormValue("language"))
	if err != nil {
		return jsonServiceError(c, "disease", err)
	}
	return jsonSuccess(c, diag)
}
