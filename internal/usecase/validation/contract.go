package validation

import (
	"context"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// Catalog supplies the vector field definitions of a namespace.
type Catalog interface {
	Disabled() bool
	DefinitionsFor(ctx context.Context, ns domain.Namespace) ([]vectorindex.Definition, error)
}
