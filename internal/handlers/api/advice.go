package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/advisory"
	"kisansense/internal/models"
	"kisansense/internal/validation"
)

// AdviceHandler answers farming questions over JSON.
type AdviceHandler struct {
	responder *advisory.Responder
}

// NewAdviceHandler creates a new API advice handler.
func NewAdviceHandler(responder *advisory.Responder) *AdviceHandler {
	return &AdviceHandler{responder: responder}
}

// Ask answers one question. An empty language means the source language.
func (h *AdviceHandler) Ask(c fiber.Ctx) error {
	var body models.AdviceRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if ok, msg := validation.ValidateQuery(body.Query); !ok {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	language := body.Language
	if language == "" {
		language = h.responder.Table().Source().Code
	}
	ans := h.responder.Respond(c.Context(), body.Query, language)

	resp := models.AdviceResponse{
		Answer:     ans.Text,
		Rule:       ans.Rule,
		Matched:    ans.Matched(),
		Language:   ans.Language.Code,
		Requested:  ans.Requested.Code,
		Translated: ans.Translated,
	}
	if ans.Notice != nil {
		resp.Notice = ans.Notice.Error()
	}
	return jsonSuccess(c, resp)
}

// Languages lists the selectable answer languages, source language first.
func (h *AdviceHandler) Languages(c fiber.Ctx) error {
	table := h.responder.Table()
	return jsonSuccess(c, fiber.Map{
		"source":    table.Source().Code,
		"languages": table.Languages(),
	})
}
