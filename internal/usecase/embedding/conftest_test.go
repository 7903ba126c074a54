package embedding

import (
	"context"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

type mockEmbedder struct {
	err        error
	calls      int
	chunks     [][]string
	lastParams domain.EmbeddingParameters
	tokens     int
}

// Embed returns [len(text)] per text so tests can check ordering.
func (m *mockEmbedder) Embed(
	_ context.Context, texts []string, params domain.EmbeddingParameters,
) (domain.EmbeddingResult, error) {
	m.calls++
	m.chunks = append(m.chunks, texts)
	m.lastParams = params
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return domain.EmbeddingResult{
		Embeddings:   out,
		PromptTokens: m.tokens * len(texts),
		TotalTokens:  m.tokens * len(texts),
	}, nil
}

type mockCatalog struct {
	disabled    bool
	unavailable bool
	defs        []vectorindex.Definition
	err         error
	lookups     int
}

func (m *mockCatalog) Disabled() bool { return m.disabled }

func (m *mockCatalog) Available(_ context.Context) bool { return !m.unavailable }

func (m *mockCatalog) DefinitionsFor(_ context.Context, _ domain.Namespace) ([]vectorindex.Definition, error) {
	m.lookups++
	return m.defs, m.err
}
