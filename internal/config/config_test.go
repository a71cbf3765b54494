package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		fallback int
		expected int
	}{
		{"parses integer", "42", 10, 42},
		{"uses fallback for empty", "", 10, 10},
		{"uses fallback for non-numeric", "abc", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KISAN_TEST_INT", tt.envValue)
			if got := getEnvInt("KISAN_TEST_INT", tt.fallback); got != tt.expected {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("KISAN_TEST_DURATION", "90s")
	if got := getEnvDuration("KISAN_TEST_DURATION", time.Minute); got != 90*time.Second {
		t.Errorf("getEnvDuration() = %v, want 90s", got)
	}

	t.Setenv("KISAN_TEST_DURATION", "soon")
	if got := getEnvDuration("KISAN_TEST_DURATION", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration() with invalid value = %v, want fallback", got)
	}

	for _, v := range []string{"0s", "-5m"} {
		t.Setenv("KISAN_TEST_DURATION", v)
		if got := getEnvDuration("KISAN_TEST_DURATION", time.Minute); got != time.Minute {
			t.Errorf("getEnvDuration(%q) = %v, want fallback", v, got)
		}
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("KISAN_TEST_LIST", " Guntur, ,Nashik ,Madurai")
	want := []string{"Guntur", "Nashik", "Madurai"}
	if diff := cmp.Diff(want, getEnvList("KISAN_TEST_LIST")); diff != "" {
		t.Errorf("getEnvList() mismatch (-want +got):\n%s", diff)
	}

	t.Setenv("KISAN_TEST_LIST", "")
	if got := getEnvList("KISAN_TEST_LIST"); got != nil {
		t.Errorf("getEnvList() on empty = %v, want nil", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("CHAT_HISTORY_LIMIT", "")
	t.Setenv("SITE_TITLE", "")

	cfg := Load()
	if cfg.ServerAddr != ":3000" {
		t.Errorf("ServerAddr = %q, want :3000", cfg.ServerAddr)
	}
	if cfg.ChatHistoryLimit != 200 {
		t.Errorf("ChatHistoryLimit = %d, want 200", cfg.ChatHistoryLimit)
	}
	if cfg.SiteTitle != "KisanSense" {
		t.Errorf("SiteTitle = %q, want KisanSense", cfg.SiteTitle)
	}
}

func TestResolvedDiseaseBackend(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{"nothing configured", Config{}, ""},
		{"hugging face key", Config{HFAPIKey: "hf"}, "huggingface"},
		{"gemini key", Config{GeminiAPIKey: "g"}, "gemini"},
		{"hugging face preferred when both", Config{HFAPIKey: "hf", GeminiAPIKey: "g"}, "huggingface"},
		{"explicit backend wins", Config{DiseaseBackend: "gemini", GeminiAPIKey: "g", HFAPIKey: "hf"}, "gemini"},
		{"explicit gemini without key", Config{DiseaseBackend: "gemini", HFAPIKey: "hf"}, ""},
		{"explicit hugging face without key", Config{DiseaseBackend: "huggingface"}, ""},
		{"unknown backend falls back to keys", Config{DiseaseBackend: "magic", GeminiAPIKey: "g"}, "gemini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ResolvedDiseaseBackend(); got != tt.expected {
				t.Errorf("ResolvedDiseaseBackend() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMaxUploadBytes(t *testing.T) {
	if got := (&Config{MaxUploadMB: 2}).MaxUploadBytes(); got != 2<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", got, 2<<20)
	}
	if got := (&Config{}).MaxUploadBytes(); got != 5<<20 {
		t.Errorf("MaxUploadBytes() default = %d, want %d", got, 5<<20)
	}
}

func TestDefaultContent(t *testing.T) {
	content, err := DefaultContent()
	if err != nil {
		t.Fatalf("DefaultContent() error = %v", err)
	}

	if content.SourceLanguage != "en" {
		t.Errorf("SourceLanguage = %q, want en", content.SourceLanguage)
	}

	var keys []string
	for _, a := range content.Advisories {
		keys = append(keys, a.Key)
	}
	if len(keys) < 3 || keys[0] != "aphid" || keys[1] != "fertilizer" || keys[2] != "scheme" {
		t.Errorf("advisory order = %v, want aphid, fertilizer, scheme first", keys)
	}

	if content.GetSchemeByID("pm-kisan") == nil {
		t.Error("GetSchemeByID(pm-kisan) = nil")
	}
	if content.GetSchemeByID("missing") != nil {
		t.Error("GetSchemeByID(missing) should be nil")
	}
	if lang := content.GetLanguageByCode("hi"); lang == nil || lang.Name != "Hindi" {
		t.Errorf("GetLanguageByCode(hi) = %+v", lang)
	}
}

func TestLoadContent_MissingFileUsesDefault(t *testing.T) {
	content, err := LoadContent(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadContent() error = %v", err)
	}
	if len(content.Advisories) == 0 {
		t.Error("LoadContent() on missing file returned no advisories")
	}
}

func TestLoadContent_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	data := []byte(`
languages:
  - code: en
    name: English
advisories:
  - key: weeds
    keywords: [weed]
    responses:
      en: Pull them early.
fallback:
  en: Ask again.
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	content, err := LoadContent(path)
	if err != nil {
		t.Fatalf("LoadContent() error = %v", err)
	}
	if content.SourceLanguage != "en" {
		t.Errorf("SourceLanguage default = %q, want en", content.SourceLanguage)
	}
	if len(content.Advisories) != 1 || content.Advisories[0].Key != "weeds" {
		t.Errorf("Advisories = %+v", content.Advisories)
	}
}

func TestParseContent_Invalid(t *testing.T) {
	if _, err := ParseContent([]byte("advisories: [")); err == nil {
		t.Error("ParseContent() expected error for malformed YAML")
	}
}

func TestMessage(t *testing.T) {
	content := &ContentConfig{
		SourceLanguage: "en",
		Messages: map[string]Strings{
			"weather.no_data": {"en": "No weather", "hi": "मौसम नहीं"},
		},
	}

	tests := []struct {
		key, lang, want string
	}{
		{"weather.no_data", "hi", "मौसम नहीं"},
		{"weather.no_data", "ta", "No weather"},
		{"unknown.key", "en", "unknown.key"},
	}
	for _, tt := range tests {
		if got := content.Message(tt.key, tt.lang); got != tt.want {
			t.Errorf("Message(%q, %q) = %q, want %q", tt.key, tt.lang, got, tt.want)
		}
	}
}
