package metrics

import "github.com/prometheus/client_golang/prometheus"

// Embedding provider and cache collectors.
var (
	// EmbeddingCallsTotal counts provider calls by outcome: ok or error.
	EmbeddingCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "calls_total",
		Help:      "Embedding provider calls by model and outcome.",
	}, []string{"provider", "model", "outcome"})

	EmbeddingCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "call_duration_seconds",
		Help:      "Latency of successful embedding provider calls.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider", "model"})

	// EmbeddingTokensTotal splits usage into prompt and total tokens.
	EmbeddingTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "tokens_total",
		Help:      "Tokens billed by the embedding provider.",
	}, []string{"provider", "model", "kind"})

	// EmbeddingFailuresTotal counts failed calls by reason: api, count_mismatch, bad_index.
	EmbeddingFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "failures_total",
		Help:      "Failed embedding provider calls by reason.",
	}, []string{"provider", "model", "reason"})

	// EmbeddingCacheLookupsTotal counts cached-vector lookups: hit, miss or error.
	EmbeddingCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "cache_lookups_total",
		Help:      "Embedding cache lookups by result.",
	}, []string{"result"})
)
