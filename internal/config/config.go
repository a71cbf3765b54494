package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr  string
	BaseURL     string
	TLSCertFile string
	TLSKeyFile  string

	// Database
	DatabaseURL string

	// Redis backs sessions, rate limiting and the weather cache when set.
	RedisURL string

	// Session
	SessionSecret    string // Used for signing cookies (min 32 chars)
	ChatHistoryLimit int    // Max transcript entries per session, 0 = unbounded

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// OIDC (officer console)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Content
	ContentFile string // YAML with languages, advisories, schemes and news

	// Weather
	OpenWeatherAPIKey       string
	OpenWeatherBaseURL      string
	WeatherCacheTTL         time.Duration
	WeatherPrefetchCities   []string
	WeatherPrefetchInterval time.Duration

	// Translation
	TranslateAPIKey string

	// Disease detection
	DiseaseBackend string // "huggingface" or "gemini"; empty picks whichever key is set
	HFAPIKey       string
	HFModel        string
	HFBaseURL      string
	GeminiAPIKey   string
	GeminiModel    string
	MaxUploadMB    int

	// SMTP
	SMTPEnabled     bool
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPFromName    string
	SMTPTLS         string // "tls", "starttls" or "none"
	ContactNotifyTo []string

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "KisanSense"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
	SiteLogoURL string // env: SITE_LOGO_URL, default: "" (no logo, text only)
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:              getEnv("ENV", "development"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:3000"),
		TLSCertFile:      getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:       getEnv("TLS_KEY_FILE", ""),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/kisansense?sslmode=disable"),
		RedisURL:         getEnv("REDIS_URL", ""),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", 200),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/officer/callback"),
		ContentFile:      getEnv("CONTENT_FILE", "content.yaml"),

		OpenWeatherAPIKey:       getEnv("OPENWEATHER_API_KEY", ""),
		OpenWeatherBaseURL:      getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		WeatherCacheTTL:         getEnvDuration("WEATHER_CACHE_TTL", 10*time.Minute),
		WeatherPrefetchCities:   getEnvList("WEATHER_PREFETCH_CITIES"),
		WeatherPrefetchInterval: getEnvDuration("WEATHER_PREFETCH_INTERVAL", 30*time.Minute),

		TranslateAPIKey: getEnv("TRANSLATE_API_KEY", ""),

		DiseaseBackend: strings.ToLower(getEnv("DISEASE_BACKEND", "")),
		HFAPIKey:       getEnv("HF_API_KEY", ""),
		HFModel:        getEnv("HF_MODEL", "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification"),
		HFBaseURL:      getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 5),

		SMTPEnabled:     getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:        getEnv("SMTP_FROM", ""),
		SMTPFromName:    getEnv("SMTP_FROM_NAME", "KisanSense"),
		SMTPTLS:         getEnv("SMTP_TLS", "starttls"),
		ContactNotifyTo: getEnvList("CONTACT_NOTIFY_TO"),

		SiteTitle:   getEnv("SITE_TITLE", "KisanSense"),
		SiteTagline: getEnv("SITE_TAGLINE", "Multilingual agricultural advisory assistant"),
		SiteFooter:  getEnv("SITE_FOOTER", "KisanSense - advisory for every farmer"),
		SiteLogoURL: getEnv("SITE_LOGO_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsTLSEnabled returns true if a certificate and key are configured.
func (c *Config) IsTLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// IsEmailEnabled returns true if SMTP is switched on and minimally configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsOfficerConsoleEnabled returns true if OIDC is configured for officers.
func (c *Config) IsOfficerConsoleEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// ResolvedDiseaseBackend returns the disease backend to use, or "" when none
// has credentials. An explicit DISEASE_BACKEND wins over key detection but
// still needs its own key.
func (c *Config) ResolvedDiseaseBackend() string {
	switch c.DiseaseBackend {
	case "huggingface":
		if c.HFAPIKey == "" {
			return ""
		}
		return c.DiseaseBackend
	case "gemini":
		if c.GeminiAPIKey == "" {
			return ""
		}
		return c.DiseaseBackend
	}
	if c.HFAPIKey != "" {
		return "huggingface"
	}
	if c.GeminiAPIKey != "" {
		return "gemini"
	}
	return ""
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int {
	if c.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return c.MaxUploadMB << 20
}
