package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"

	"kisansense/internal/metrics"
)

const translateService = "translate"

// Translator translates text using the Google Cloud Translation v2 API.
type Translator struct {
	svc *translate.Service
}

// NewTranslator creates a translator authenticated with an API key. Extra
// options are passed to the API client.
func NewTranslator(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Translator, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation client: %w", err)
	}
	return &Translator{svc: svc}, nil
}

// Translate translates text from source to target language codes.
func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if text == "" || source == target {
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := time.Now()
	out, err := t.translate(ctx, text, source, target)
	metrics.ObserveRemoteCall(translateService, ReasonCode(err), time.Since(start))
	return out, err
}

func (t *Translator) translate(ctx context.Context, text, source, target string) (string, error) {
	call := t.svc.Translations.List([]string{text}, target).Format("text").Context(ctx)
	if source != "" {
		call = call.Source(source)
	}

	resp, err := call.Do()
	if err != nil {
		return "", fail(translateService, translateReason(err), err)
	}
	if resp == nil || len(resp.Translations) == 0 {
		return "", fail(translateService, ErrMalformed, errors.New("empty translation list"))
	}
	out := resp.Translations[0].TranslatedText
	if out == "" {
		return "", fail(translateService, ErrNoData, nil)
	}
	return html.UnescapeString(out), nil
}

func translateReason(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return ErrUnavailable
	}
	switch apiErr.Code {
	case http.StatusBadRequest:
		return ErrInvalidInput
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrNotConfigured
	default:
		return ErrUnavailable
	}
}
