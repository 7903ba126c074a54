// Package db defines the storage contract of vecmcp: JSON documents, index
// metadata hashes, cached embeddings and FT search over them.
package db

import (
	"context"
	"time"
)

// Store is everything one database connection offers.
//
//nolint:interfacebloat // facade; repositories declare their own narrow slices of it
type Store interface {
	KeyStore
	MetadataStore
	DocumentStore
	CacheStore
	SearchStore
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// KeyStore covers key-level operations shared by every data kind.
type KeyStore interface {
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// MetadataStore keeps index metadata as flat hashes.
type MetadataStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// JSONSetItem is one document write of a pipelined insert. An empty Path means the root.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// DocumentStore keeps documents as RedisJSON values.
type DocumentStore interface {
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// CacheEntry is one value of a pipelined cache write.
type CacheEntry struct {
	Key   string
	Value []byte
}

// CacheStore holds expiring byte values.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one slot per key; a nil slot is a miss.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	MSetWithTTL(ctx context.Context, entries []CacheEntry, ttl time.Duration) error
}

// SearchStore manages FT indexes and queries them.
type SearchStore interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	ListIndexes(ctx context.Context) ([]string, error)
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}
