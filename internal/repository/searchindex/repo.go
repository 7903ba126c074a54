// Package searchindex persists search index definitions: a metadata hash per
// index next to the FT index built from it.
package searchindex

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// store is the consumer interface for search indexes (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores search indexes of namespaces.
type Repo struct {
	store store
	keys  Keys
	hnsw  HNSWConfig
}

// New creates a search index repository under the given key prefix.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, keys: Keys{Prefix: prefix}, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Keys returns the key layout used by the repository.
func (r *Repo) Keys() Keys { return r.keys }

// Create stores an index: HSET metadata then FT.CREATE.
// On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, ns domain.Namespace, idx vectorindex.SearchIndex) error {
	metaKey := r.keys.Meta(ns, idx.Name)
	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return fmt.Errorf("search index %s on %s: %w", idx.Name, ns, domain.ErrAlreadyExists)
	}

	def, err := buildIndex(r.keys, ns, idx, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	hashData, err := indexToHash(ns, idx)
	if err != nil {
		return err
	}

	if err := r.store.HSet(ctx, metaKey, hashData); err != nil {
		return fmt.Errorf("hset search index %s: %w", idx.Name, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		cleanupErr := r.store.Del(ctx, metaKey)
		if errors.Is(err, db.ErrIndexExists) {
			err = fmt.Errorf("search index %s on %s: %w", idx.Name, ns, domain.ErrAlreadyExists)
		}
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// Get retrieves an index by name.
func (r *Repo) Get(ctx context.Context, ns domain.Namespace, name string) (vectorindex.SearchIndex, error) {
	m, err := r.store.HGetAll(ctx, r.keys.Meta(ns, name))
	if err != nil {
		return vectorindex.SearchIndex{}, fmt.Errorf("hgetall search index %s: %w", name, err)
	}
	if len(m) == 0 {
		return vectorindex.SearchIndex{}, fmt.Errorf("search index %s on %s: %w", name, ns, domain.ErrNotFound)
	}
	return indexFromHash(m)
}

// List returns all indexes of a namespace sorted by creation time.
func (r *Repo) List(ctx context.Context, ns domain.Namespace) ([]vectorindex.SearchIndex, error) {
	keys, err := r.store.Scan(ctx, r.keys.Meta(ns, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan search indexes: %w", err)
	}
	if len(keys) == 0 {
		return []vectorindex.SearchIndex{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi search indexes: %w", err)
	}

	indexes := make([]vectorindex.SearchIndex, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		idx, err := indexFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse search index %s: %w", keys[i], err)
		}
		indexes = append(indexes, idx)
	}

	sort.Slice(indexes, func(i, j int) bool {
		if indexes[i].CreatedAt != indexes[j].CreatedAt {
			return indexes[i].CreatedAt < indexes[j].CreatedAt
		}
		return indexes[i].Name < indexes[j].Name
	})

	return indexes, nil
}

// Delete removes an index: backup metadata, DEL hash, FT.DROPINDEX (rollback HSET on error).
// An FT index already missing on the server is not an error once the metadata is gone.
func (r *Repo) Delete(ctx context.Context, ns domain.Namespace, name string) error {
	metaKey := r.keys.Meta(ns, name)

	metaBackup, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("hgetall search index %s: %w", name, err)
	}
	if len(metaBackup) == 0 {
		return fmt.Errorf("search index %s on %s: %w", name, ns, domain.ErrNotFound)
	}

	if err := r.store.Del(ctx, metaKey); err != nil {
		return fmt.Errorf("del search index %s: %w", name, err)
	}

	if err := r.store.DropIndex(ctx, r.keys.Index(ns, name)); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		cleanupErr := r.store.HSet(ctx, metaKey, metaBackup)
		return errors.Join(err, cleanupErr)
	}

	return nil
}
