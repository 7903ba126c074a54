package embedding

import (
	"context"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// Catalog gates generation on the vector field definitions of a namespace.
type Catalog interface {
	Disabled() bool
	Available(ctx context.Context) bool
	DefinitionsFor(ctx context.Context, ns domain.Namespace) ([]vectorindex.Definition, error)
}
