package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector field catalog metrics.
var (
	CatalogLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_lookups_total",
			Help:      "Vector field catalog lookups by outcome",
		},
		[]string{"result"}, // "hit" / "miss" / "skipped" / "error"
	)

	CatalogInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_invalidations_total",
			Help:      "Vector field catalog invalidations",
		},
		[]string{"scope"}, // "namespace" / "all"
	)

	ConnectionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_events_total",
			Help:      "Database connection lifecycle events",
		},
		[]string{"event"},
	)
)
