package advisory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Translator translates text between language codes.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Responder answers queries from a table, optionally using a translator for
// languages the table doesn't cover.
type Responder struct {
	table      *Table
	translator Translator
	observe    func(Answer)
}

// Option configures a Responder.
type Option func(*Responder)

// WithTranslator enables translation of queries and answers.
func WithTranslator(t Translator) Option {
	return func(r *Responder) { r.translator = t }
}

// WithObserver registers a callback invoked with every answer.
func WithObserver(fn func(Answer)) Option {
	return func(r *Responder) { r.observe = fn }
}

// NewResponder creates a responder over the given table.
func NewResponder(table *Table, opts ...Option) *Responder {
	r := &Responder{table: table}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the underlying keyword table.
func (r *Responder) Table() *Table {
	return r.table
}

// CanTranslate reports whether a translator is configured.
func (r *Responder) CanTranslate() bool {
	return r.translator != nil
}

// Respond answers a query in the requested language. The answer always has
// text; if translation was needed and failed, Notice says why and the text is
// in the source language.
//
// With a translator, a query that matches nothing is translated to the source
// language and matched once more, and an answer the table has no text for is
// translated into the requested language.
func (r *Responder) Respond(ctx context.Context, query, language string) Answer {
	ans := r.table.Lookup(query, language)

	if r.translator != nil {
		source := r.table.Source()
		requested, known := r.table.ResolveLanguage(language)

		if known && !ans.Matched() && requested.Code != source.Code && strings.TrimSpace(query) != "" {
			translated, err := r.translator.Translate(ctx, query, requested.Code, source.Code)
			if err != nil {
				// The fallback may already be in the requested language, so
				// this is not a notice on the answer.
				slog.Warn("advisory query translation failed", "language", requested.Code, "error", err)
			} else if retry := r.table.Lookup(translated, language); retry.Matched() {
				ans = retry
			}
		}

		if known && ans.Language.Code != requested.Code {
			text, err := r.translator.Translate(ctx, ans.Text, source.Code, requested.Code)
			if err != nil {
				ans.Notice = fmt.Errorf("translate answer to %s: %w", requested.Code, err)
			} else {
				ans.Text = text
				ans.Language = requested
				ans.Translated = true
				ans.Notice = nil
			}
		}
	}

	if r.observe != nil {
		r.observe(ans)
	}
	return ans
}
