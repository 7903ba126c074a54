// Package metrics holds the Prometheus collectors of vecmcp. Collectors are
// package globals; Register attaches them to a registry.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vecmcp"

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestDuration, httpRequestsTotal,
		ToolCallsTotal, ToolCallDuration, ValidationViolationsTotal,
		CatalogLookupsTotal, CatalogInvalidationsTotal, ConnectionEventsTotal,
		EmbeddingCallsTotal, EmbeddingCallDuration, EmbeddingTokensTotal, EmbeddingFailuresTotal,
		EmbeddingCacheLookupsTotal,
	}
}

// Register attaches every collector to reg. Collectors already present in
// reg are skipped, so repeated calls are harmless.
func Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) && are.ExistingCollector == c {
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
