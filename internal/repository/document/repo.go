// Package document stores extended-JSON documents of a namespace as JSON keys
// and runs KNN queries over them.
package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	domdoc "github.com/kailas-cloud/vecmcp/internal/domain/document"
	"github.com/kailas-cloud/vecmcp/internal/repository/searchindex"
)

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo stores documents under {prefix}{db}.{coll}:{id}.
type Repo struct {
	store  store
	prefix string
	keys   searchindex.Keys
}

// New creates a document repository under the given key prefix.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix, keys: searchindex.Keys{Prefix: prefix}}
}

// InsertMany writes documents in one pipeline. Documents without an _id get a UUID.
// Returns the ids in input order.
func (r *Repo) InsertMany(ctx context.Context, ns domain.Namespace, docs []domdoc.Document) ([]string, error) {
	items := make([]db.JSONSetItem, 0, len(docs))
	ids := make([]string, 0, len(docs))
	for i, doc := range docs {
		id, err := doc.EnsureID(uuid.NewString)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w: %w", i, domain.ErrInvalidArgument, err)
		}
		data, err := json.Marshal(domdoc.ToStorage(doc))
		if err != nil {
			return nil, fmt.Errorf("marshal document %s: %w", id, err)
		}
		items = append(items, db.JSONSetItem{Key: r.docKey(ns, id), Path: "$", Data: data})
		ids = append(ids, id)
	}
	if len(items) == 0 {
		return ids, nil
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return nil, fmt.Errorf("json.set %s: %w", ns, err)
	}
	return ids, nil
}

// Get returns a document by id.
func (r *Repo) Get(ctx context.Context, ns domain.Namespace, id string) (domdoc.Document, error) {
	key := r.docKey(ns, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("document %s in %s: %w", id, ns, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}

	// JSON.GET with a "$" path answers with an array of matches.
	var matches []json.RawMessage
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("document %s in %s: %w", id, ns, domain.ErrNotFound)
	}
	return domdoc.Decode(matches[0])
}

// Count returns the number of documents in a namespace. With an index name the
// count comes from FT.SEARCH over that index, otherwise from a key scan.
func (r *Repo) Count(ctx context.Context, ns domain.Namespace, index string) (int, error) {
	if index != "" {
		n, err := r.store.SearchCount(ctx, r.keys.Index(ns, index), "*")
		if err != nil {
			return 0, fmt.Errorf("search count %s: %w", ns, err)
		}
		return n, nil
	}

	keys, err := r.store.Scan(ctx, ns.KeyPrefix(r.prefix)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", ns, err)
	}
	return len(keys), nil
}

// KNNRequest is a nearest-neighbour query over one vector field of an index.
type KNNRequest struct {
	Index     string // index name within the namespace
	Path      string // vector field path
	Vector    []float32
	Limit     int
	Filters   map[string]string // filter field path -> exact value
	RawScores bool
}

// Hit is one search result.
type Hit struct {
	ID       string
	Score    float64
	Document domdoc.Document
}

// Search runs a KNN query and decodes the matched documents.
func (r *Repo) Search(ctx context.Context, ns domain.Namespace, req KNNRequest) ([]Hit, error) {
	if req.Limit <= 0 {
		req.Limit = 10
	}

	paths := make([]string, 0, len(req.Filters))
	for p := range req.Filters {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	filters := make([]db.TagMatch, 0, len(paths))
	for _, p := range paths {
		filters = append(filters, db.TagMatch{Field: searchindex.FieldAlias(p), Value: req.Filters[p]})
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.keys.Index(ns, req.Index),
		VectorField:  searchindex.FieldAlias(req.Path),
		Filters:      filters,
		Vector:       req.Vector,
		K:            req.Limit,
		ReturnFields: []string{"$"},
		RawScores:    req.RawScores,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("index %s: %w", req.Index, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("knn search %s: %w", ns, err)
	}

	prefix := ns.KeyPrefix(r.prefix)
	hits := make([]Hit, 0, len(result.Entries))
	for _, entry := range result.Entries {
		hit := Hit{ID: strings.TrimPrefix(entry.Key, prefix), Score: entry.Score}
		if raw := entry.Fields["$"]; raw != "" {
			doc, err := domdoc.Decode([]byte(raw))
			if err != nil {
				return nil, fmt.Errorf("decode hit %s: %w", entry.Key, err)
			}
			hit.Document = doc
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (r *Repo) docKey(ns domain.Namespace, id string) string {
	return ns.KeyPrefix(r.prefix) + id
}
