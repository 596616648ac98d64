package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions      prometheus.Gauge
	CacheLookups        *prometheus.CounterVec
	ProviderAttempts    *prometheus.CounterVec
	SynthesisLatency    *prometheus.HistogramVec
	PlaybackPreemptions prometheus.Counter
	GreetingsSpoken     prometheus.Counter
	TransitLookups      *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active client tab sessions.",
		}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phrase_cache_lookups_total",
			Help:      "Phrase cache lookups by outcome (hit, memo_hit, miss).",
		}, []string{"outcome"}),
		ProviderAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "TTS provider attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		SynthesisLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_latency_ms",
			Help:      "Per-provider synthesis latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000},
		}, []string{"provider"}),
		PlaybackPreemptions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_preemptions_total",
			Help:      "Times a new exclusive playback stopped an active one.",
		}),
		GreetingsSpoken: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "greetings_spoken_total",
			Help:      "Greetings that passed the policy and were spoken.",
		}),
		TransitLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transit_lookups_total",
			Help:      "Transit dataset lookups by kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObserveSynthesisLatency(provider string, d time.Duration) {
	m.SynthesisLatency.WithLabelValues(provider).Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
