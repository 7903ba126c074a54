// Package bootstrap assembles the tool service from its parts. The server
// binary and the embedded SDK share it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/db"
	dbRedis "github.com/kailas-cloud/vecmcp/internal/db/redis"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	documentrepo "github.com/kailas-cloud/vecmcp/internal/repository/document"
	"github.com/kailas-cloud/vecmcp/internal/repository/searchindex"
	"github.com/kailas-cloud/vecmcp/internal/usecase/catalog"
	embeddinguc "github.com/kailas-cloud/vecmcp/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/vecmcp/internal/usecase/health"
	"github.com/kailas-cloud/vecmcp/internal/usecase/tools"
	"github.com/kailas-cloud/vecmcp/internal/usecase/validation"
)

// DefaultKeyPrefix namespaces every key written to the cluster.
const DefaultKeyPrefix = "vecmcp:"

// Options configures the assembled service.
type Options struct {
	Driver            string // valkey or redis; both dial through rueidis
	KeyPrefix         string
	HNSW              searchindex.HNSWConfig
	ReadinessTimeout  time.Duration
	DisableValidation bool
	Policy            tools.Policy
}

func (o Options) withDefaults() Options {
	if o.Driver == "" {
		o.Driver = "valkey"
	}
	if o.KeyPrefix == "" {
		o.KeyPrefix = DefaultKeyPrefix
	}
	if o.ReadinessTimeout <= 0 {
		o.ReadinessTimeout = 10 * time.Second
	}
	return o
}

// App is the assembled tool surface and its lifecycle owners.
type App struct {
	Conns   *connection.Manager
	Catalog *catalog.Cache
	Tools   *tools.Service
	Health  *healthuc.Service
}

// NewManager creates a connection manager whose dialer opens rueidis stores.
func NewManager(opts Options, logger *zap.Logger) *connection.Manager {
	return connection.NewManager(NewDialer(opts, logger), logger)
}

// New wires the catalog, validation, embedding orchestration and the tool
// service around conns. provider and embChecker may be nil when no embeddings
// backend is configured.
func New(
	conns *connection.Manager,
	provider domain.Embedder,
	embChecker healthuc.EmbeddingChecker,
	opts Options,
	logger *zap.Logger,
) *App {
	opts = opts.withDefaults()

	indexCatalog := catalog.New(conns, opts.DisableValidation, logger)
	orchestrator := embeddinguc.NewOrchestrator(indexCatalog, provider, logger)

	toolSvc := tools.New(
		conns,
		NewRepositories(opts),
		indexCatalog,
		validation.New(indexCatalog, logger),
		orchestrator,
		opts.Policy,
		logger,
	)

	return &App{
		Conns:   conns,
		Catalog: indexCatalog,
		Tools:   toolSvc,
		Health:  healthuc.New(conns, embChecker),
	}
}

// Close disposes the catalog and closes the active connection.
func (a *App) Close() {
	a.Catalog.Dispose()
	a.Conns.Close()
}

// NewDialer opens a rueidis store for a target and waits until it answers.
// Redis 8 and Valkey with the search module speak the same FT.* dialect.
func NewDialer(opts Options, logger *zap.Logger) connection.Dialer {
	opts = opts.withDefaults()

	return func(ctx context.Context, target connection.Target) (connection.Handle, error) {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    target.Addrs,
			Username: target.Username,
			Password: target.Password,
			DB:       target.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", opts.Driver, err)
		}

		if err := store.WaitForReady(ctx, opts.ReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		logger.Debug("Store ready", zap.Stringer("target", target), zap.String("driver", opts.Driver))

		lister := searchindex.New(store, opts.KeyPrefix).WithHNSW(opts.HNSW)
		return connection.NewHandle(store, lister, target), nil
	}
}

// Repositories binds repositories to the store of a connection handle.
type Repositories struct {
	prefix string
	hnsw   searchindex.HNSWConfig
}

var _ tools.Repositories = Repositories{}

// NewRepositories creates the repository factory used by the tool service.
func NewRepositories(opts Options) Repositories {
	opts = opts.withDefaults()
	return Repositories{prefix: opts.KeyPrefix, hnsw: opts.HNSW}
}

func (r Repositories) Indexes(h connection.Handle) tools.IndexRepository {
	return searchindex.New(h.Store(), r.prefix).WithHNSW(r.hnsw)
}

func (r Repositories) Documents(h connection.Handle) tools.DocumentRepository {
	return documentrepo.New(h.Store(), r.prefix)
}

// Current exposes the active connection.
type Current interface {
	Current() (connection.Handle, bool)
}

// ActiveStore routes embedding cache traffic to the current connection.
// Without one every lookup misses and writes are dropped.
type ActiveStore struct {
	Conns Current
}

func (s ActiveStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	h, ok := s.Conns.Current()
	if !ok {
		return make([][]byte, len(keys)), nil
	}
	return h.Store().MGet(ctx, keys)
}

func (s ActiveStore) MSetWithTTL(ctx context.Context, entries []db.CacheEntry, ttl time.Duration) error {
	h, ok := s.Conns.Current()
	if !ok {
		return nil
	}
	return h.Store().MSetWithTTL(ctx, entries, ttl)
}

// HealthCheckerFor wraps an embedder to implement health.EmbeddingChecker.
// Returns a nil interface (not typed nil pointer!) for a nil embedder.
func HealthCheckerFor(embedder domain.Embedder) healthuc.EmbeddingChecker {
	if embedder == nil {
		return nil
	}
	return embeddingHealthChecker{embedder: embedder}
}

type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
