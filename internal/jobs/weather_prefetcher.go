package jobs

import (
	"context"
	"log"
	"time"

	"kisansense/internal/services"
)

// WeatherRefresher fetches fresh weather for a city into the cache.
type WeatherRefresher interface {
	Refresh(ctx context.Context, city string) error
}

// FailureNotifier is told about cities that started failing.
type FailureNotifier interface {
	NotifyPrefetchFailures(ctx context.Context, failures map[string]string)
}

// WeatherPrefetcher keeps the weather cache warm for the villages farmers
// ask about most, so dashboard loads don't wait on the weather API.
type WeatherPrefetcher struct {
	weather  WeatherRefresher
	notifier FailureNotifier
	cities   []string
	interval time.Duration
	pause    time.Duration
	failing  map[string]bool
}

// DefaultPrefetchInterval is used when the configured interval isn't positive.
const DefaultPrefetchInterval = 30 * time.Minute

// NewWeatherPrefetcher creates a new prefetcher. notifier may be nil.
func NewWeatherPrefetcher(weather WeatherRefresher, notifier FailureNotifier, cities []string, interval time.Duration) *WeatherPrefetcher {
	if interval <= 0 {
		interval = DefaultPrefetchInterval
	}
	return &WeatherPrefetcher{
		weather:  weather,
		notifier: notifier,
		cities:   cities,
		interval: interval,
		pause:    500 * time.Millisecond,
		failing:  make(map[string]bool),
	}
}

// Start begins the prefetch loop. It returns when ctx is cancelled.
func (p *WeatherPrefetcher) Start(ctx context.Context) {
	log.Printf("Weather prefetcher started (interval: %v, cities: %d)", p.interval, len(p.cities))

	// Run immediately on start
	p.refreshAll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Weather prefetcher stopped")
			return
		case <-ticker.C:
			p.refreshAll(ctx)
		}
	}
}

// refreshAll refreshes every city and returns the failures keyed by city.
// Only cities that were healthy on the previous run are reported to the
// notifier.
func (p *WeatherPrefetcher) refreshAll(ctx context.Context) map[string]string {
	failures := make(map[string]string)
	fresh := make(map[string]string)

	for i, city := range p.cities {
		select {
		case <-ctx.Done():
			return failures
		default:
		}

		if err := p.weather.Refresh(ctx, city); err != nil {
			reason := services.ReasonCode(err)
			failures[city] = reason
			if !p.failing[city] {
				fresh[city] = reason
			}
			log.Printf("Weather prefetcher: %s: %v", city, err)
		}

		// Spread calls out to stay under the API rate limit
		if i < len(p.cities)-1 && p.pause > 0 {
			select {
			case <-ctx.Done():
				return failures
			case <-time.After(p.pause):
			}
		}
	}

	clear(p.failing)
	for city := range failures {
		p.failing[city] = true
	}

	if len(fresh) > 0 && p.notifier != nil {
		p.notifier.NotifyPrefetchFailures(ctx, fresh)
	}
	return failures
}
