package health

import (
	"context"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status is the overall verdict of a Report.
type Status string

// Overall verdicts.
const (
	Healthy  Status = "ok"
	Degraded Status = "degraded"
)

// CheckResult is the outcome of one component probe.
type CheckResult string

// Probe outcomes. Disconnected and unsupported describe state, not failure.
const (
	CheckOK           CheckResult = "ok"
	CheckError        CheckResult = "error"
	CheckDisconnected CheckResult = "disconnected"
	CheckUnsupported  CheckResult = "unsupported"
)

// Report is the health payload served on /health and by the SDK.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service probes the database connection and the embedding provider.
type Service struct {
	conns     Connections
	embedding EmbeddingChecker
}

// New creates a Service. embedding may be nil when no provider is configured.
func New(conns Connections, embedding EmbeddingChecker) *Service {
	return &Service{conns: conns, embedding: embedding}
}

// Check probes every component concurrently. Only CheckError degrades the
// status: a server without a connection is still usable for connect.
func (s *Service) Check(ctx context.Context) Report {
	var mu sync.Mutex
	checks := make(map[string]CheckResult, 3)
	set := func(name string, r CheckResult) {
		mu.Lock()
		checks[name] = r
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		s.probeDatabase(ctx, set)
		return nil
	})
	if s.embedding != nil {
		g.Go(func() error {
			set("embedding", verdict(s.embedding.HealthCheck(ctx)))
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	if slices.Contains(slices.Collect(maps.Values(checks)), CheckError) {
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func (s *Service) probeDatabase(ctx context.Context, set func(string, CheckResult)) {
	h, ok := s.conns.Current()
	if !ok {
		set("database", CheckDisconnected)
		return
	}
	if err := h.Store().Ping(ctx); err != nil {
		set("database", CheckError)
		return
	}
	set("database", CheckOK)
	if h.IsVectorSearchSupported(ctx) {
		set("vector_search", CheckOK)
	} else {
		set("vector_search", CheckUnsupported)
	}
}

func verdict(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
