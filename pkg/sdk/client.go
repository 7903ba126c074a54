package vecmcp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/bootstrap"
	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/metrics"
	"github.com/kailas-cloud/vecmcp/internal/repository/searchindex"
	"github.com/kailas-cloud/vecmcp/internal/usecase/tools"
)

// Internal interfaces for substitution in tests.
type toolService interface {
	Connect(ctx context.Context, args tools.ConnectArgs) (*tools.ConnectResult, error)
	InsertMany(ctx context.Context, args tools.InsertManyArgs) (*tools.InsertManyResult, error)
	VectorSearch(ctx context.Context, args tools.VectorSearchArgs) (*tools.VectorSearchResult, error)
	CreateIndex(ctx context.Context, args tools.CreateIndexArgs) (*tools.CreateIndexResult, error)
	DropIndex(ctx context.Context, args tools.DropIndexArgs) (*tools.DropIndexResult, error)
	CollectionIndexes(ctx context.Context, args tools.NamespaceArgs) (*tools.CollectionIndexesResult, error)
	Count(ctx context.Context, args tools.NamespaceArgs) (*tools.CountResult, error)
}

type healthService interface {
	Check(ctx context.Context) HealthReport
}

// Client is the vecmcp SDK entry point.
type Client struct {
	tools  toolService
	health healthService
	closer func()
	obs    *observer
}

// New creates a Client. With WithValkey or WithRedis it connects before
// returning; otherwise it starts disconnected until Connect.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.metricsReg != nil {
		if err := metrics.Register(cfg.metricsReg); err != nil {
			return nil, fmt.Errorf("vecmcp: register metrics: %w", err)
		}
	}

	bopts := bootstrap.Options{
		Driver:    cfg.driver,
		KeyPrefix: cfg.keyPrefix,
		HNSW: searchindex.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		},
		ReadinessTimeout:  cfg.readinessTimeout,
		DisableValidation: cfg.disableValidation,
		Policy: tools.Policy{
			ReadOnly:              cfg.readOnly,
			DisabledTools:         cfg.disabledTools,
			PreviewFeatures:       cfg.previewFeatures,
			CallTimeout:           cfg.callTimeout,
			MaxDocumentsPerInsert: cfg.maxInsert,
		},
	}

	// Pass nil interface (not typed nil pointer!) if no embedder is configured.
	var provider domain.Embedder
	if cfg.embedder != nil {
		provider = &embedderAdapter{inner: cfg.embedder}
	}

	conns := bootstrap.NewManager(bopts, logger)
	app := bootstrap.New(conns, provider, nil, bopts, logger)

	if len(cfg.addrs) > 0 {
		target := connection.Target{Addrs: cfg.addrs, Username: cfg.username, Password: cfg.password}
		if err := conns.Connect(ctx, target); err != nil {
			app.Close()
			return nil, fmt.Errorf("vecmcp: connect %s: %w", target, err)
		}
	}

	return &Client{
		tools:  app.Tools,
		health: app.Health,
		closer: app.Close,
		obs:    newObserver(cfg.logger),
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Health reports database, vector search and embedding provider status.
func (c *Client) Health(ctx context.Context) HealthReport {
	return c.health.Check(ctx)
}

// Connect replaces the active connection. An established one is closed first.
func (c *Client) Connect(ctx context.Context, args ConnectArgs) (_ *ConnectResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(tools.ToolConnect, start, err) }()

	return c.tools.Connect(ctx, args)
}

// InsertMany validates and stores documents, generating embeddings first
// when args carry embedding parameters.
func (c *Client) InsertMany(ctx context.Context, args InsertManyArgs) (_ *InsertManyResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(tools.ToolInsertMany, start, err) }()

	return c.tools.InsertMany(ctx, args)
}

// VectorSearch runs a KNN query on the vector index covering args.Path.
func (c *Client) VectorSearch(ctx context.Context, args VectorSearchArgs) (_ *VectorSearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(tools.ToolVectorSearch, start, err) }()

	return c.tools.VectorSearch(ctx, args)
}

// CreateIndex creates a search index on a namespace.
func (c *Client) CreateIndex(ctx context.Context, args CreateIndexArgs) (_ *CreateIndexResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(tools.ToolCreateIndex, start, err) }()

	return c.tools.CreateIndex(ctx, args)
}

// DropIndex drops a search index. Documents stay in place.
func (c *Client) DropIndex(ctx context.Context, args DropIndexArgs) (_ *DropIndexResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(tools.ToolDropIndex, start, err) }()

	return c.tools.DropIndex(ctx, args)
}

// CollectionIndexes lists the search indexes of a namespace.
func (c *Client) CollectionIndexes(ctx context.Context, args NamespaceArgs) (_ *CollectionIndexesResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(tools.ToolCollectionIndexes, start, err) }()

	return c.tools.CollectionIndexes(ctx, args)
}

// Count returns the number of documents in a namespace.
func (c *Client) Count(ctx context.Context, args NamespaceArgs) (_ *CountResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(tools.ToolCount, start, err) }()

	return c.tools.Count(ctx, args)
}
