package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// Handle is an established connection and its capabilities.
type Handle interface {
	// IsVectorSearchSupported probes the cluster on every call. Only a missing
	// search module reports false; other FT._LIST failures surface on the next command.
	IsVectorSearchSupported(ctx context.Context) bool
	// ListVectorIndexes lists the search indexes of a namespace, vector and text kinds alike.
	ListVectorIndexes(ctx context.Context, ns domain.Namespace) ([]vectorindex.SearchIndex, error)
	// Store exposes the underlying store for document and index operations.
	Store() db.Store
	// Target describes what the handle is connected to.
	Target() Target
	Close()
}

// IndexLister lists the search indexes of a namespace.
type IndexLister interface {
	List(ctx context.Context, ns domain.Namespace) ([]vectorindex.SearchIndex, error)
}

type storeHandle struct {
	store  db.Store
	lister IndexLister
	target Target
}

// NewHandle wraps a store and an index lister into a Handle.
func NewHandle(store db.Store, lister IndexLister, target Target) Handle {
	return &storeHandle{store: store, lister: lister, target: target}
}

// IsVectorSearchSupported returns false only when FT._LIST is an unknown command.
func (h *storeHandle) IsVectorSearchSupported(ctx context.Context) bool {
	_, err := h.store.ListIndexes(ctx)
	return !errors.Is(err, db.ErrSearchNotEnabled)
}

func (h *storeHandle) ListVectorIndexes(ctx context.Context, ns domain.Namespace) ([]vectorindex.SearchIndex, error) {
	indexes, err := h.lister.List(ctx, ns)
	if err != nil {
		if errors.Is(err, db.ErrSearchNotEnabled) {
			return nil, domain.ErrVectorSearchNotSupported
		}
		return nil, fmt.Errorf("list search indexes of %s: %w", ns, err)
	}
	return indexes, nil
}

func (h *storeHandle) Store() db.Store { return h.store }

func (h *storeHandle) Target() Target { return h.target }

func (h *storeHandle) Close() { h.store.Close() }
