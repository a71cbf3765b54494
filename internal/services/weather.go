package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kisansense/internal/metrics"
	"kisansense/internal/models"
)

const weatherService = "weather"

// WeatherClient fetches current weather from the OpenWeatherMap API.
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   Cache
	ttl     time.Duration
	now     func() time.Time
}

// NewWeatherClient creates a weather client. An empty apiKey yields a client
// whose calls fail with ErrNotConfigured. cache may be nil.
func NewWeatherClient(apiKey, baseURL string, cache Cache, ttl time.Duration) *WeatherClient {
	return &WeatherClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Enabled returns true if an API key is set.
func (w *WeatherClient) Enabled() bool {
	return w.apiKey != ""
}

type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
}

// Current returns the current weather for a city, from cache when fresh.
func (w *WeatherClient) Current(ctx context.Context, city string) (*models.WeatherReport, error) {
	return w.get(ctx, city, true)
}

// Refresh fetches the weather for a city bypassing the cache and stores it.
func (w *WeatherClient) Refresh(ctx context.Context, city string) error {
	_, err := w.get(ctx, city, false)
	return err
}

func (w *WeatherClient) get(ctx context.Context, city string, useCache bool) (*models.WeatherReport, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fail(weatherService, ErrInvalidInput, errors.New("city is required"))
	}
	if !w.Enabled() {
		return nil, fail(weatherService, ErrNotConfigured, nil)
	}

	key := "weather:" + strings.ToLower(city)
	if useCache {
		if report := w.cached(key); report != nil {
			return report, nil
		}
	}

	start := time.Now()
	report, err := w.fetch(ctx, city)
	metrics.ObserveRemoteCall(weatherService, ReasonCode(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	if w.cache != nil && w.ttl > 0 {
		if data, err := json.Marshal(report); err == nil {
			if err := w.cache.Set(key, data, w.ttl); err != nil {
				slog.Warn("failed to cache weather", "city", city, "error", err)
			}
		}
	}
	return report, nil
}

func (w *WeatherClient) cached(key string) *models.WeatherReport {
	if w.cache == nil {
		return nil
	}
	data, err := w.cache.Get(key)
	if err != nil || len(data) == 0 {
		return nil
	}
	var report models.WeatherReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}

func (w *WeatherClient) fetch(ctx context.Context, city string) (*models.WeatherReport, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", w.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fail(weatherService, ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", "KisanSense/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fail(weatherService, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fail(weatherService, ErrNoData, fmt.Errorf("city %q not found", city))
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fail(weatherService, ErrNotConfigured, errors.New("API key rejected"))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fail(weatherService, ErrUnavailable, fmt.Errorf("HTTP %s", resp.Status))
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fail(weatherService, ErrMalformed, err)
	}
	if body.Main == nil {
		return nil, fail(weatherService, ErrMalformed, errors.New("missing main block"))
	}

	report := &models.WeatherReport{
		City:        body.Name,
		Temperature: body.Main.Temp,
		Humidity:    body.Main.Humidity,
		FetchedAt:   w.now(),
	}
	if report.City == "" {
		report.City = city
	}
	if len(body.Weather) > 0 {
		report.Condition = body.Weather[0].Description
	}
	return report, nil
}
