package vecmcp

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// Embedder converts texts to vector embeddings, one vector per text in input order.
type Embedder interface {
	Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResult, error)
}

// EmbeddingRequest carries the texts and the per-call parameters of one request.
// Zero values mean the provider default.
type EmbeddingRequest struct {
	Texts           []string
	InputType       string // "document" or "query"
	Model           string
	OutputDimension int
	OutputDType     string
}

// EmbeddingResult carries the embedding vectors and token counts.
type EmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(
	ctx context.Context, texts []string, params domain.EmbeddingParameters,
) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, EmbeddingRequest{
		Texts:           texts,
		InputType:       string(params.InputType),
		Model:           params.Model,
		OutputDimension: params.OutputDimension,
		OutputDType:     string(params.OutputDType),
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(r.Embeddings) != len(texts) {
		return domain.EmbeddingResult{}, fmt.Errorf(
			"embed: %w: got %d vectors for %d texts", domain.ErrEmbeddingProviderError, len(r.Embeddings), len(texts),
		)
	}
	return domain.EmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
