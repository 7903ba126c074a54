package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
	logpkg "github.com/kailas-cloud/vecmcp/internal/logger"
)

// CreateIndex stores the index definition, creates the FT index and
// invalidates the namespace in the catalog.
func (s *Service) CreateIndex(ctx context.Context, args CreateIndexArgs) (*CreateIndexResult, error) {
	return invoke(ctx, s, ToolCreateIndex, args.Confirm, nil, func(ctx context.Context) (*CreateIndexResult, error) {
		ns, err := domain.NewNamespace(args.Database, args.Collection)
		if err != nil {
			return nil, err
		}
		idx := vectorindex.SearchIndex{
			Name:      args.Name,
			Kind:      args.Type,
			Fields:    args.Fields,
			CreatedAt: time.Now().UnixMilli(),
		}
		if err := idx.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
		}
		h, err := s.conns.Require()
		if err != nil {
			return nil, err
		}
		if idx.Kind == vectorindex.KindVectorSearch && !h.IsVectorSearchSupported(ctx) {
			return nil, domain.ErrVectorSearchNotSupported
		}

		if err := s.repos.Indexes(h).Create(ctx, ns, idx); err != nil {
			return nil, fmt.Errorf("create index %s on %s: %w", idx.Name, ns, err)
		}
		s.catalog.Invalidate(ns)

		return &CreateIndexResult{
			Name:    idx.Name,
			Message: fmt.Sprintf("Created %s index %q on %s.", idx.Kind, idx.Name, ns),
		}, nil
	})
}

// DropIndex drops an index and invalidates the namespace in the catalog.
// When confirmation is required the prompt carries an advisory document count.
func (s *Service) DropIndex(ctx context.Context, args DropIndexArgs) (*DropIndexResult, error) {
	prompt := func(ctx context.Context) string {
		return s.dropIndexPrompt(ctx, args)
	}
	return invoke(ctx, s, ToolDropIndex, args.Confirm, prompt, func(ctx context.Context) (*DropIndexResult, error) {
		ns, err := domain.NewNamespace(args.Database, args.Collection)
		if err != nil {
			return nil, err
		}
		if args.Name == "" {
			return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidArgument)
		}
		h, err := s.conns.Require()
		if err != nil {
			return nil, err
		}

		if err := s.repos.Indexes(h).Delete(ctx, ns, args.Name); err != nil {
			return nil, fmt.Errorf("drop index %s on %s: %w", args.Name, ns, err)
		}
		s.catalog.Invalidate(ns)

		return &DropIndexResult{
			Name:    args.Name,
			Message: fmt.Sprintf("Dropped index %q on %s.", args.Name, ns),
		}, nil
	})
}

func (s *Service) dropIndexPrompt(ctx context.Context, args DropIndexArgs) string {
	count := "an unknown number of"
	if n := OrUndefined(s.countIndexed(ctx, args.Database, args.Collection, args.Name)); n != nil {
		count = fmt.Sprintf("%d", *n)
	}
	return fmt.Sprintf(
		"You are about to drop the index %q on %s.%s, which currently covers %s documents. "+
			"Call drop-index again with confirm set to true to proceed.",
		args.Name, args.Database, args.Collection, count)
}

func (s *Service) countIndexed(ctx context.Context, database, collection, index string) (int, error) {
	ns, err := domain.NewNamespace(database, collection)
	if err != nil {
		return 0, err
	}
	h, err := s.conns.Require()
	if err != nil {
		return 0, err
	}
	n, err := s.repos.Documents(h).Count(ctx, ns, index)
	if err != nil {
		logpkg.FromContext(ctx).Debug("advisory count failed", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// CollectionIndexes lists the search indexes of a namespace.
func (s *Service) CollectionIndexes(ctx context.Context, args NamespaceArgs) (*CollectionIndexesResult, error) {
	return invoke(ctx, s, ToolCollectionIndexes, args.Confirm, nil, func(ctx context.Context) (*CollectionIndexesResult, error) {
		ns, err := domain.NewNamespace(args.Database, args.Collection)
		if err != nil {
			return nil, err
		}
		h, err := s.conns.Require()
		if err != nil {
			return nil, err
		}
		indexes, err := s.repos.Indexes(h).List(ctx, ns)
		if err != nil {
			return nil, fmt.Errorf("list indexes of %s: %w", ns, err)
		}
		if indexes == nil {
			indexes = []vectorindex.SearchIndex{}
		}
		return &CollectionIndexesResult{Indexes: indexes}, nil
	})
}

// Count returns the document count of a namespace. The first index of the
// namespace answers when one exists, otherwise the keys are scanned.
func (s *Service) Count(ctx context.Context, args NamespaceArgs) (*CountResult, error) {
	return invoke(ctx, s, ToolCount, args.Confirm, nil, func(ctx context.Context) (*CountResult, error) {
		ns, err := domain.NewNamespace(args.Database, args.Collection)
		if err != nil {
			return nil, err
		}
		h, err := s.conns.Require()
		if err != nil {
			return nil, err
		}
		indexes, err := s.repos.Indexes(h).List(ctx, ns)
		if err != nil {
			return nil, fmt.Errorf("list indexes of %s: %w", ns, err)
		}
		index := ""
		if len(indexes) > 0 {
			index = indexes[0].Name
		}
		n, err := s.repos.Documents(h).Count(ctx, ns, index)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", ns, err)
		}
		return &CountResult{Count: n}, nil
	})
}
