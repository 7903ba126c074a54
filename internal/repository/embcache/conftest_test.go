package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// mockEmbedder returns vec for every text and counts calls.
type mockEmbedder struct {
	vec        []float32
	tokens     int
	err        error
	calls      int
	lastTexts  []string
	lastParams domain.EmbeddingParameters
}

func (m *mockEmbedder) Embed(
	_ context.Context, texts []string, params domain.EmbeddingParameters,
) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastTexts = texts
	m.lastParams = params
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = m.vec
	}
	return domain.EmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.tokens * len(texts),
		TotalTokens:  m.tokens * len(texts),
	}, nil
}

// memStore is an in-memory cache keyed like the real one.
type memStore struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	lastTTL time.Duration
	writes  int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *memStore) MSetWithTTL(_ context.Context, entries []db.CacheEntry, ttl time.Duration) error {
	m.lastTTL = ttl
	if m.setErr != nil {
		return m.setErr
	}
	for _, e := range entries {
		m.data[e.Key] = e.Value
		m.writes++
	}
	return nil
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *memStore) {
	t.Helper()
	ms := newMemStore()
	return New(inner, ms, Options{Prefix: "vecmcp:", TTL: time.Hour, Logger: zap.NewNop()}), ms
}
