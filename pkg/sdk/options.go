package vecmcp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	username string
	password string

	embedder Embedder

	keyPrefix         string
	hnswM             int
	hnswEFConstruct   int
	readinessTimeout  time.Duration
	disableValidation bool

	readOnly        bool
	disabledTools   []string
	previewFeatures []string
	callTimeout     time.Duration
	maxInsert       int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithValkey connects the client to a Valkey instance on New.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis connects the client to a Redis instance on New.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithUsername sets the ACL user of the initial connection.
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithEmbedder sets the text embedding provider.
// Without one, inserts with embedding parameters and text queries fail.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithKeyPrefix namespaces every key written to the cluster. Default: "vecmcp:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithReadinessTimeout bounds the wait for a new connection to answer PING.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithoutEmbeddingsValidation skips vector field checks on insert.
func WithoutEmbeddingsValidation() Option {
	return optionFunc(func(c *clientConfig) {
		c.disableValidation = true
	})
}

// WithReadOnly rejects insert-many, create-index and drop-index.
func WithReadOnly() Option {
	return optionFunc(func(c *clientConfig) {
		c.readOnly = true
	})
}

// WithDisabledTools rejects the named tools.
func WithDisabledTools(names ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.disabledTools = append(c.disabledTools, names...)
	})
}

// WithPreviewFeatures enables preview features such as PreviewVectorSearch.
func WithPreviewFeatures(features ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.previewFeatures = append(c.previewFeatures, features...)
	})
}

// WithCallTimeout bounds every call. Zero disables the timeout (default).
func WithCallTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.callTimeout = d
	})
}

// WithMaxDocumentsPerInsert bounds InsertMany batches. Zero means unlimited (default).
func WithMaxDocumentsPerInsert(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxInsert = n
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers the vecmcp collectors (tool calls, embedding
// provider, catalog and connection events) on reg. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
