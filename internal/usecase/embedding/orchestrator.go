// Package embedding turns raw text into vectors for indexed document fields.
package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// Request asks for embeddings of RawValues destined for Path in Namespace.
type Request struct {
	Namespace  domain.Namespace
	Path       string
	RawValues  []string
	Parameters domain.EmbeddingParameters
	InputType  domain.InputType
}

// Orchestrator checks that generation makes sense for a field and delegates to the provider.
type Orchestrator struct {
	catalog  Catalog
	provider domain.Embedder
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator. provider may be nil when no backend is configured.
func NewOrchestrator(catalog Catalog, provider domain.Embedder, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{catalog: catalog, provider: provider, logger: logger}
}

// Configured reports whether an embeddings provider is available.
func (o *Orchestrator) Configured() bool { return o.provider != nil }

// GenerateEmbeddings returns one vector per raw value, in input order.
// With validation enabled the namespace must have a vector index on req.Path.
// The matched definition only gates the call; parameters are passed through.
func (o *Orchestrator) GenerateEmbeddings(ctx context.Context, req Request) ([][]float32, error) {
	if !o.catalog.Available(ctx) {
		return nil, domain.ErrVectorSearchNotSupported
	}
	if o.provider == nil {
		return nil, domain.ErrNoEmbeddingsProvider
	}

	if !o.catalog.Disabled() {
		defs, err := o.catalog.DefinitionsFor(ctx, req.Namespace)
		if err != nil {
			return nil, fmt.Errorf("resolve vector index for %s: %w", req.Path, err)
		}
		found := false
		for _, d := range defs {
			if d.Path() == req.Path {
				found = true
				break
			}
		}
		if !found {
			return nil, &domain.VectorIndexNotFoundError{Namespace: req.Namespace, Path: req.Path}
		}
	}

	if len(req.RawValues) == 0 {
		return [][]float32{}, nil
	}

	res, err := o.provider.Embed(ctx, req.RawValues, req.Parameters.WithInputType(req.InputType))
	if err != nil {
		return nil, fmt.Errorf("generate embeddings for %s: %w", req.Path, err)
	}
	if len(res.Embeddings) != len(req.RawValues) {
		return nil, fmt.Errorf("generate embeddings for %s: expected %d vectors, got %d: %w",
			req.Path, len(req.RawValues), len(res.Embeddings), domain.ErrEmbeddingProviderError)
	}

	o.logger.Debug("Embeddings generated",
		zap.String("namespace", req.Namespace.String()),
		zap.String("path", req.Path),
		zap.Int("count", len(res.Embeddings)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res.Embeddings, nil
}
