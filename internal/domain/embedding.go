package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
// Output order matches the order of texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string, params EmbeddingParameters) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries embedding vectors and token usage through the decorator chain.
type EmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// InstructionEmbedder is a domain decorator that prepends an input-type specific
// instruction before embedding.
type InstructionEmbedder struct {
	inner        Embedder
	instructions map[InputType]string
}

// NewInstructionEmbedder creates a decorator. Input types without an entry are passed through.
func NewInstructionEmbedder(inner Embedder, instructions map[InputType]string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instructions: instructions}
}

// Embed prepends the instruction for params.InputType and delegates to the inner embedder.
func (e *InstructionEmbedder) Embed(
	ctx context.Context, texts []string, params EmbeddingParameters,
) (EmbeddingResult, error) {
	prefixed := texts
	if instruction := e.instructions[params.InputType]; instruction != "" {
		prefixed = make([]string, len(texts))
		for i, t := range texts {
			prefixed[i] = instruction + t
		}
	}

	res, err := e.inner.Embed(ctx, prefixed, params)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return res, nil
}
