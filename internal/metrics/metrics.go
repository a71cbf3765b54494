package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"kisansense/internal/models"
)

var (
	advisoryLookupDesc = prometheus.NewDesc(
		"kisansense_advisory_lookups_total",
		"Total advisory lookups by matched rule and language",
		[]string{"outcome", "language"},
		nil,
	)

	remoteCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kisansense_remote_calls_total",
		Help: "Remote API calls by service and result reason",
	}, []string{"service", "reason"})

	remoteCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kisansense_remote_call_duration_seconds",
		Help:    "Remote API call latency by service",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
)

// LookupStore persists advisory lookup counters.
type LookupStore interface {
	IncrementAdvisoryLookup(ctx context.Context, outcome, language string) error
	GetAllAdvisoryLookups(ctx context.Context) ([]models.AdvisoryLookup, error)
}

// AdvisoryCollector is a custom Prometheus collector that reads advisory
// lookup counts from the database on each scrape, so counts survive restarts
// and add up across replicas.
type AdvisoryCollector struct {
	store LookupStore
}

// Describe sends the metric descriptor to the channel.
func (c *AdvisoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- advisoryLookupDesc
}

// Collect queries the store for all advisory lookups and emits them as counters.
func (c *AdvisoryCollector) Collect(ch chan<- prometheus.Metric) {
	lookups, err := c.store.GetAllAdvisoryLookups(context.Background())
	if err != nil {
		slog.Error("failed to collect advisory lookup metrics", "error", err)
		return
	}
	for _, l := range lookups {
		ch <- prometheus.MustNewConstMetric(
			advisoryLookupDesc,
			prometheus.CounterValue,
			float64(l.Count),
			l.Outcome,
			l.Language,
		)
	}
}

// Recorder provides async advisory lookup recording.
type Recorder struct {
	store LookupStore
	wg    sync.WaitGroup
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the custom collector and initializes the recorder.
// Must be called once at startup.
func Init(store LookupStore) {
	recorderOnce.Do(func() {
		recorder = &Recorder{store: store}
		prometheus.MustRegister(&AdvisoryCollector{store: store})
	})
}

// RecordAdvisoryLookup asynchronously records an advisory lookup outcome.
func RecordAdvisoryLookup(outcome, language string) {
	if recorder == nil {
		return
	}
	recorder.wg.Add(1)
	go func() {
		defer recorder.wg.Done()
		if err := recorder.store.IncrementAdvisoryLookup(context.Background(), outcome, language); err != nil {
			slog.Error("failed to record advisory lookup", "outcome", outcome, "language", language, "error", err)
		}
	}()
}

// Flush waits for in-flight lookup recordings to finish.
func Flush() {
	if recorder != nil {
		recorder.wg.Wait()
	}
}

// ObserveRemoteCall counts a remote API call and its latency.
func ObserveRemoteCall(service, reason string, elapsed time.Duration) {
	remoteCalls.WithLabelValues(service, reason).Inc()
	remoteCallDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}
