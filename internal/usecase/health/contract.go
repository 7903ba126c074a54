package health

import (
	"context"

	"github.com/kailas-cloud/vecmcp/internal/connection"
)

// Connections exposes the active database connection.
type Connections interface {
	Current() (connection.Handle, bool)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
