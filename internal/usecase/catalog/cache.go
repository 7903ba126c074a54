// Package catalog caches the vector field definitions of each namespace.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
	"github.com/kailas-cloud/vecmcp/internal/metrics"
)

// listTimeout bounds a shared listing fetch, which outlives the caller that started it.
const listTimeout = 10 * time.Second

// Cache maps namespaces to the vector field definitions of their indexes.
// Entries are fetched lazily and dropped by Invalidate or a connection close,
// never on a timer. An empty list is a cached state.
type Cache struct {
	conns    Connections
	disabled bool
	logger   *zap.Logger

	mu      sync.RWMutex
	entries map[string][]vectorindex.Definition
	gens    map[string]uint64
	epoch   uint64

	group       singleflight.Group
	unsubscribe func()
}

// New creates a cache bound to conns. It clears itself on every close event until Dispose.
// With disabled set every lookup returns an empty list.
func New(conns Connections, disabled bool, logger *zap.Logger) *Cache {
	c := &Cache{
		conns:    conns,
		disabled: disabled,
		logger:   logger,
		entries:  make(map[string][]vectorindex.Definition),
		gens:     make(map[string]uint64),
	}
	c.unsubscribe = conns.Subscribe(func(ev connection.Event) {
		if ev.Type == connection.EventClose {
			c.ClearAll()
		}
	})
	return c
}

// Disabled reports whether validation against the catalog is turned off.
func (c *Cache) Disabled() bool { return c.disabled }

// Available reports whether lookups can reach a vector-search-capable connection.
// The capability is probed on every call.
func (c *Cache) Available(ctx context.Context) bool {
	h, ok := c.conns.Current()
	return ok && h.IsVectorSearchSupported(ctx)
}

// DefinitionsFor returns the vector field definitions of ns in index order.
// Listing errors propagate; nothing is cached for them.
func (c *Cache) DefinitionsFor(ctx context.Context, ns domain.Namespace) ([]vectorindex.Definition, error) {
	if c.disabled {
		metrics.CatalogLookupsTotal.WithLabelValues("skipped").Inc()
		return []vectorindex.Definition{}, nil
	}
	// The epoch is read before the handle: a flight keyed with the current
	// epoch never lists through a connection closed before it.
	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()

	h, ok := c.conns.Current()
	if !ok || !h.IsVectorSearchSupported(ctx) {
		metrics.CatalogLookupsTotal.WithLabelValues("skipped").Inc()
		return []vectorindex.Definition{}, nil
	}

	key := ns.String()
	c.mu.RLock()
	defs, cached := c.entries[key]
	gen := c.gens[key]
	c.mu.RUnlock()
	if cached {
		metrics.CatalogLookupsTotal.WithLabelValues("hit").Inc()
		return defs, nil
	}

	metrics.CatalogLookupsTotal.WithLabelValues("miss").Inc()
	ch := c.group.DoChan(flightKey(epoch, key), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listTimeout)
		defer cancel()

		indexes, err := h.ListVectorIndexes(fetchCtx, ns)
		if err != nil {
			return nil, err
		}
		fetched := []vectorindex.Definition{}
		for _, idx := range indexes {
			fetched = append(fetched, idx.VectorDefinitions()...)
		}

		c.mu.Lock()
		// Skip the store when an invalidation raced the fetch.
		if c.gens[key] == gen && c.epoch == epoch {
			c.entries[key] = fetched
		}
		c.mu.Unlock()

		c.logger.Debug("Vector field catalog loaded",
			zap.String("namespace", key),
			zap.Int("indexes", len(indexes)),
			zap.Int("vector_fields", len(fetched)),
		)
		return fetched, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			metrics.CatalogLookupsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("vector field catalog %s: %w", key, res.Err)
		}
		return res.Val.([]vectorindex.Definition), nil
	case <-ctx.Done():
		metrics.CatalogLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vector field catalog %s: %w", key, ctx.Err())
	}
}

// Invalidate drops the entry of ns so the next lookup refetches.
func (c *Cache) Invalidate(ns domain.Namespace) {
	key := ns.String()
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	epoch := c.epoch
	c.mu.Unlock()
	c.group.Forget(flightKey(epoch, key))

	metrics.CatalogInvalidationsTotal.WithLabelValues("namespace").Inc()
}

// ClearAll drops every entry. Safe on an empty cache. Flights started before
// the clear keep running but can neither be joined nor store their result.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string][]vectorindex.Definition)
	c.epoch++
	c.mu.Unlock()

	metrics.CatalogInvalidationsTotal.WithLabelValues("all").Inc()
	c.logger.Debug("Vector field catalog cleared", zap.Int("namespaces", n))
}

// Dispose stops listening to connection events. Idempotent.
func (c *Cache) Dispose() {
	c.unsubscribe()
}

func flightKey(epoch uint64, ns string) string {
	return fmt.Sprintf("%d/%s", epoch, ns)
}
