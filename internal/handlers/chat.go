package handlers

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"kisansense/internal/advisory"
	"kisansense/internal/farmer"
	"kisansense/internal/models"
	"kisansense/internal/validation"
)

// ChatHandler handles the advisory chat.
type ChatHandler struct {
	*Site
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(site *Site) *ChatHandler {
	return &ChatHandler{Site: site}
}

// Show renders the chat page with the session transcript.
func (h *ChatHandler) Show(c fiber.Ctx) error {
	s := farmer.FromContext(c)
	return c.Render("chat", h.Page(c, "Ask", fiber.Map{
		"Messages": s.Transcript,
	}))
}

// Send answers a question and appends both sides to the transcript.
// HTMX requests get the transcript partial, others are redirected back.
func (h *ChatHandler) Send(c fiber.Ctx) error {
	s := farmer.FromContext(c)
	query := strings.TrimSpace(c.FormValue("message"))

	if ok, msg := validation.ValidateQuery(query); !ok {
		if isHTMX(c) {
			return htmxError(c, msg)
		}
		return c.Redirect().To("/chat")
	}

	s.Append(models.ChatMessage{
		Role:      models.RoleUserMessage,
		Content:   query,
		Timestamp: time.Now(),
	})

	ans := h.Responder.Respond(c.Context(), query, s.Language)
	reply := models.ChatMessage{
		Role:      models.RoleAssistantMessage,
		Content:   ans.Text,
		Rule:      ans.Rule,
		Timestamp: time.Now(),
	}
	if ans.Notice != nil {
		reply.Notice = h.Content.Message(noticeKey(ans.Notice), s.Language)
		if !errors.Is(ans.Notice, advisory.ErrUnsupportedLanguage) && !errors.Is(ans.Notice, advisory.ErrNotLocalized) {
			slog.Warn("advisory answer not translated", "language", s.Language, "error", ans.Notice)
		}
	}
	s.Append(reply)

	if isHTMX(c) {
		return c.Render("partials/chat_messages", fiber.Map{"Messages": s.Transcript}, "")
	}
	return c.Redirect().To("/chat")
}

// Clear empties the transcript.
func (h *ChatHandler) Clear(c fiber.Ctx) error {
	farmer.FromContext(c).ClearTranscript()
	if isHTMX(c) {
		return c.Render("partials/chat_messages", fiber.Map{"Messages": nil}, "")
	}
	return c.Redirect().To("/chat")
}

// SetLanguage switches the session language.
func (h *ChatHandler) SetLanguage(c fiber.Ctx) error {
	lang, ok := h.Responder.Table().ResolveLanguage(c.FormValue("language"))
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "unknown language")
	}
	farmer.FromContext(c).SetLanguage(lang.Code)

	next := validation.SafeRedirect(c.FormValue("next"), "/")
	if isHTMX(c) {
		c.Set("HX-Redirect", next)
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect().To(next)
}

// noticeKey picks the message explaining why an answer is not in the
// farmer's language.
func noticeKey(notice error) string {
	switch {
	case errors.Is(notice, advisory.ErrUnsupportedLanguage):
		return "chat.language_unsupported"
	case errors.Is(notice, advisory.ErrNotLocalized):
		return "chat.untranslated"
	default:
		return "chat.translation_failed"
	}
}
