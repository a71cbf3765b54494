package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"kisansense/internal/advisory"
	"kisansense/internal/config"
	"kisansense/internal/metrics"
	"kisansense/internal/models"
)

const diseaseService = "disease"

// Classifier labels a leaf photo with ranked plant disease predictions.
type Classifier interface {
	Classify(ctx context.Context, image []byte, contentType string) ([]models.Prediction, error)
}

// NewClassifier builds the classifier selected by configuration. When no
// backend has credentials the returned classifier always fails with
// ErrNotConfigured. The returned close function releases client resources.
func NewClassifier(ctx context.Context, cfg *config.Config) (Classifier, func(), error) {
	switch cfg.ResolvedDiseaseBackend() {
	case "huggingface":
		return NewHuggingFaceClassifier(cfg.HFAPIKey, cfg.HFBaseURL, cfg.HFModel), func() {}, nil
	case "gemini":
		g, err := NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		return disabledClassifier{}, func() {}, nil
	}
}

type disabledClassifier struct{}

func (disabledClassifier) Classify(context.Context, []byte, string) ([]models.Prediction, error) {
	return nil, fail(diseaseService, ErrNotConfigured, nil)
}

// HuggingFaceClassifier calls a hosted image-classification model on the
// Hugging Face inference API.
type HuggingFaceClassifier struct {
	apiKey string
	url    string
	client *http.Client
}

// NewHuggingFaceClassifier creates a classifier for the given model id.
func NewHuggingFaceClassifier(apiKey, baseURL, model string) *HuggingFaceClassifier {
	return &HuggingFaceClassifier{
		apiKey: apiKey,
		url:    strings.TrimRight(baseURL, "/") + "/models/" + model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type hfError struct {
	Error string `json:"error"`
}

// Classify posts the raw image bytes and returns predictions, highest first.
func (h *HuggingFaceClassifier) Classify(ctx context.Context, image []byte, contentType string) ([]models.Prediction, error) {
	if h.apiKey == "" {
		return nil, fail(diseaseService, ErrNotConfigured, nil)
	}
	if len(image) == 0 {
		return nil, fail(diseaseService, ErrInvalidInput, errors.New("empty image"))
	}

	start := time.Now()
	preds, err := h.classify(ctx, image, contentType)
	metrics.ObserveRemoteCall(diseaseService, ReasonCode(err), time.Since(start))
	return preds, err
}

func (h *HuggingFaceClassifier) classify(ctx context.Context, image []byte, contentType string) ([]models.Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(image))
	if err != nil {
		return nil, fail(diseaseService, ErrInvalidInput, err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fail(diseaseService, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fail(diseaseService, ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		_ = json.Unmarshal(body, &apiErr)
		cause := fmt.Errorf("HTTP %s: %s", resp.Status, apiErr.Error)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fail(diseaseService, ErrNotConfigured, cause)
		case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
			return nil, fail(diseaseService, ErrInvalidInput, cause)
		default:
			return nil, fail(diseaseService, ErrUnavailable, cause)
		}
	}

	var preds []models.Prediction
	if err := json.Unmarshal(body, &preds); err != nil {
		return nil, fail(diseaseService, ErrMalformed, err)
	}
	return rank(preds)
}

// rank drops unlabeled predictions and sorts the rest by score.
func rank(preds []models.Prediction) ([]models.Prediction, error) {
	out := preds[:0]
	for _, p := range preds {
		if strings.TrimSpace(p.Label) != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fail(diseaseService, ErrNoData, nil)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

const geminiPrompt = `You are a plant pathologist. Identify the crop and disease in this leaf photo.
Reply with JSON only: {"label": "<Crop>___<Disease>", "confidence": <0..1>}.
Use "healthy" as the disease for a healthy leaf and "unknown" as the label if this is not a plant leaf.`

// GeminiClassifier asks a Gemini vision model to name the disease.
type GeminiClassifier struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClassifier creates a Gemini-backed classifier.
func NewGeminiClassifier(ctx context.Context, apiKey, modelName string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	return &GeminiClassifier{client: client, model: model}, nil
}

// Close releases the Gemini client.
func (g *GeminiClassifier) Close() {
	g.client.Close()
}

// Classify sends the image with an instruction prompt and parses the label.
func (g *GeminiClassifier) Classify(ctx context.Context, image []byte, contentType string) ([]models.Prediction, error) {
	if len(image) == 0 {
		return nil, fail(diseaseService, ErrInvalidInput, errors.New("empty image"))
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	preds, err := g.classify(ctx, image, contentType)
	metrics.ObserveRemoteCall(diseaseService, ReasonCode(err), time.Since(start))
	return preds, err
}

func (g *GeminiClassifier) classify(ctx context.Context, image []byte, contentType string) ([]models.Prediction, error) {
	format := strings.TrimPrefix(contentType, "image/")
	resp, err := g.model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(geminiPrompt))
	if err != nil {
		return nil, fail(diseaseService, ErrUnavailable, err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return parseGeminiLabel(sb.String())
}

func parseGeminiLabel(raw string) ([]models.Prediction, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "```"), "```")

	var out struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return nil, fail(diseaseService, ErrMalformed, err)
	}
	if strings.EqualFold(strings.TrimSpace(out.Label), "unknown") {
		return nil, fail(diseaseService, ErrNoData, nil)
	}
	return rank([]models.Prediction{{Label: out.Label, Score: out.Confidence}})
}

// Diagnoser classifies a leaf photo and attaches advisory text for the top
// label, found by running the label through the responder.
type Diagnoser struct {
	classifier Classifier
	responder  *advisory.Responder
}

// NewDiagnoser creates a diagnoser.
func NewDiagnoser(classifier Classifier, responder *advisory.Responder) *Diagnoser {
	return &Diagnoser{classifier: classifier, responder: responder}
}

// Diagnose classifies the image and answers in the given language.
func (d *Diagnoser) Diagnose(ctx context.Context, image []byte, contentType, language string) (*models.Diagnosis, error) {
	preds, err := d.classifier.Classify(ctx, image, contentType)
	if err != nil {
		return nil, err
	}

	diag := &models.Diagnosis{Predictions: preds}
	ans := d.responder.Respond(ctx, models.HumanizeLabel(diag.Top().Label), language)
	diag.Advice = ans.Text
	diag.AdviceRule = ans.Rule
	return diag, nil
}
