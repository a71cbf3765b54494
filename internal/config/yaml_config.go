package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_content.yaml
var defaultContent []byte

// ContentConfig represents the structure of the content file.
// Advisory text, schemes and news are data, not code, so they live in YAML.
type ContentConfig struct {
	SourceLanguage string             `yaml:"source_language"`
	Languages      []LanguageConfig   `yaml:"languages"`
	Advisories     []AdvisoryConfig   `yaml:"advisories"`
	Fallback       map[string]string  `yaml:"fallback"`
	Schemes        []SchemeConfig     `yaml:"schemes"`
	News           []NewsConfig       `yaml:"news"`
	Messages       map[string]Strings `yaml:"messages,omitempty"`
}

// Strings maps a language code to localized text.
type Strings map[string]string

// LanguageConfig defines a selectable language.
type LanguageConfig struct {
	Code   string `yaml:"code"`   // ISO 639-1, e.g. "hi"
	Name   string `yaml:"name"`   // English name, e.g. "Hindi"
	Native string `yaml:"native"` // Endonym, e.g. "हिन्दी"
}

// AdvisoryConfig defines one keyword rule. Rules are matched in file order.
type AdvisoryConfig struct {
	Key       string            `yaml:"key"`
	Keywords  []string          `yaml:"keywords"`
	Responses map[string]string `yaml:"responses"` // Language code -> text
}

// SchemeConfig defines a government scheme listing.
type SchemeConfig struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Benefit     string `yaml:"benefit" json:"benefit"`
	Link        string `yaml:"link" json:"link"`
}

// NewsConfig defines a news card.
type NewsConfig struct {
	Title     string `yaml:"title" json:"title"`
	Summary   string `yaml:"summary" json:"summary"`
	Source    string `yaml:"source" json:"source"`
	URL       string `yaml:"url" json:"url"`
	Published string `yaml:"published" json:"published"` // YYYY-MM-DD
}

// LoadContent loads the content file at path. The embedded default content is
// used when the file doesn't exist.
func LoadContent(path string) (*ContentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		data = defaultContent
	}
	return ParseContent(data)
}

// DefaultContent returns the embedded content.
func DefaultContent() (*ContentConfig, error) {
	return ParseContent(defaultContent)
}

// ParseContent decodes content YAML and applies defaults.
func ParseContent(data []byte) (*ContentConfig, error) {
	var cfg ContentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	// Set defaults
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = "en"
	}

	return &cfg, nil
}

// GetSchemeByID finds a scheme by its id.
func (c *ContentConfig) GetSchemeByID(id string) *SchemeConfig {
	if c == nil {
		return nil
	}
	for i := range c.Schemes {
		if c.Schemes[i].ID == id {
			return &c.Schemes[i]
		}
	}
	return nil
}

// GetLanguageByCode finds a language by its code.
func (c *ContentConfig) GetLanguageByCode(code string) *LanguageConfig {
	if c == nil {
		return nil
	}
	for i := range c.Languages {
		if c.Languages[i].Code == code {
			return &c.Languages[i]
		}
	}
	return nil
}

// Message returns a UI message in the given language, falling back to the
// source language and then to the key itself.
func (c *ContentConfig) Message(key, lang string) string {
	if c == nil {
		return key
	}
	texts, ok := c.Messages[key]
	if !ok {
		return key
	}
	if text, ok := texts[lang]; ok && text != "" {
		return text
	}
	if text, ok := texts[c.SourceLanguage]; ok && text != "" {
		return text
	}
	return key
}
