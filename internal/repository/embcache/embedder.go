// Package embcache is a domain.Embedder decorator that keeps computed vectors in the database.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
)

type store interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	MSetWithTTL(ctx context.Context, entries []db.CacheEntry, ttl time.Duration) error
}

// Options configures a CachedEmbedder.
type Options struct {
	// Prefix is the storage key prefix; entries live under {Prefix}emb_cache:.
	Prefix string
	// TTL of each entry. Zero keeps entries forever.
	TTL time.Duration
	// Lookups counts results by label "result": hit, miss, error. Optional.
	Lookups *prometheus.CounterVec
	Logger  *zap.Logger
}

// CachedEmbedder serves repeated texts from the cache and forwards the rest in one call.
type CachedEmbedder struct {
	inner   domain.Embedder
	store   store
	keyBase string
	ttl     time.Duration
	lookups *prometheus.CounterVec
	logger  *zap.Logger
}

// New wraps inner.
func New(inner domain.Embedder, s store, opts Options) *CachedEmbedder {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:   inner,
		store:   s,
		keyBase: opts.Prefix + "emb_cache:",
		ttl:     opts.TTL,
		lookups: opts.Lookups,
		logger:  logger,
	}
}

// Embed implements domain.Embedder. Token usage covers the forwarded texts only.
// Cache failures degrade to misses.
func (c *CachedEmbedder) Embed(
	ctx context.Context, texts []string, params domain.EmbeddingParameters,
) (domain.EmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.EmbeddingResult{}, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.cacheKey(t, params)
	}
	vectors := c.lookup(ctx, keys)

	var pending []int
	for i, v := range vectors {
		if v == nil {
			pending = append(pending, i)
		}
	}
	c.count("hit", len(texts)-len(pending))
	c.count("miss", len(pending))
	if len(pending) == 0 {
		return domain.EmbeddingResult{Embeddings: vectors}, nil
	}

	forward := make([]string, len(pending))
	for j, i := range pending {
		forward[j] = texts[i]
	}
	res, err := c.inner.Embed(ctx, forward, params)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed texts: %w", err)
	}
	if len(res.Embeddings) != len(forward) {
		return domain.EmbeddingResult{}, fmt.Errorf("embed texts: expected %d embeddings, got %d",
			len(forward), len(res.Embeddings))
	}

	entries := make([]db.CacheEntry, len(pending))
	for j, i := range pending {
		vectors[i] = res.Embeddings[j]
		entries[j] = db.CacheEntry{Key: keys[i], Value: encodeVector(res.Embeddings[j])}
	}
	if err := c.store.MSetWithTTL(ctx, entries, c.ttl); err != nil {
		c.logger.Warn("Failed to cache embeddings", zap.Int("count", len(entries)), zap.Error(err))
	}

	return domain.EmbeddingResult{
		Embeddings:   vectors,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// lookup returns one slot per key; nil marks a miss or an unreadable entry.
func (c *CachedEmbedder) lookup(ctx context.Context, keys []string) [][]float32 {
	out := make([][]float32, len(keys))
	raw, err := c.store.MGet(ctx, keys)
	if err != nil {
		c.count("error", 1)
		c.logger.Warn("Failed to read embedding cache", zap.Int("keys", len(keys)), zap.Error(err))
		return out
	}
	for i, b := range raw {
		if len(b) == 0 {
			continue
		}
		v, err := decodeVector(b)
		if err != nil {
			c.logger.Warn("Dropping corrupt cached embedding", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out[i] = v
	}
	return out
}

func (c *CachedEmbedder) count(result string, n int) {
	if c.lookups != nil && n > 0 {
		c.lookups.WithLabelValues(result).Add(float64(n))
	}
}

// cacheKey covers every parameter that changes the produced vector.
func (c *CachedEmbedder) cacheKey(text string, p domain.EmbeddingParameters) string {
	h := sha256.New()
	for _, part := range []string{
		p.Model, strconv.Itoa(p.OutputDimension), string(p.OutputDType), string(p.InputType), text,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return c.keyBase + hex.EncodeToString(h.Sum(nil))
}

// encodeVector packs v as little-endian float32.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 0, 4*len(v))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("cached embedding has %d bytes, not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
