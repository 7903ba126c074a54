package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// DefaultMaxAPIBatchSize is the largest number of inputs sent in one provider request.
const DefaultMaxAPIBatchSize = 128

// InstrumentedEmbedder splits large inputs into provider-sized chunks and logs each call.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	provider  string
	batchSize int
	logger    *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with chunking and observability.
func NewInstrumentedEmbedder(inner domain.Embedder, provider string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:     inner,
		provider:  provider,
		batchSize: DefaultMaxAPIBatchSize,
		logger:    logger,
	}
}

// WithBatchSize overrides the chunk size.
func (p *InstrumentedEmbedder) WithBatchSize(n int) *InstrumentedEmbedder {
	if n > 0 {
		p.batchSize = n
	}
	return p
}

// Embed delegates in chunks and concatenates the results in input order.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, texts []string, params domain.EmbeddingParameters,
) (domain.EmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.EmbeddingResult{}, nil
	}

	start := time.Now()
	result := domain.EmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += p.batchSize {
		end := min(offset+p.batchSize, len(texts))
		chunk := texts[offset:end]

		res, err := p.inner.Embed(ctx, chunk, params)
		if err != nil {
			p.logger.Error("Embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", params.Model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return domain.EmbeddingResult{}, fmt.Errorf("embed chunk %d: %w", offset, err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.EmbeddingResult{}, fmt.Errorf("embed chunk %d: expected %d embeddings, got %d",
				offset, len(chunk), len(res.Embeddings))
		}

		result.Embeddings = append(result.Embeddings, res.Embeddings...)
		result.PromptTokens += res.PromptTokens
		result.TotalTokens += res.TotalTokens
	}

	p.logger.Debug("Embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", params.Model),
		zap.String("input_type", string(params.InputType)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
