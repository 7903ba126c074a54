package tools

import (
	"context"

	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	domdoc "github.com/kailas-cloud/vecmcp/internal/domain/document"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
	docrepo "github.com/kailas-cloud/vecmcp/internal/repository/document"
	"github.com/kailas-cloud/vecmcp/internal/usecase/embedding"
	"github.com/kailas-cloud/vecmcp/internal/usecase/validation"
)

// Connections is the consumer interface of the connection manager (ISP).
type Connections interface {
	Connect(ctx context.Context, target connection.Target) error
	Require() (connection.Handle, error)
}

// IndexRepository stores search index definitions of a connection.
type IndexRepository interface {
	Create(ctx context.Context, ns domain.Namespace, idx vectorindex.SearchIndex) error
	List(ctx context.Context, ns domain.Namespace) ([]vectorindex.SearchIndex, error)
	Delete(ctx context.Context, ns domain.Namespace, name string) error
}

// DocumentRepository stores and searches documents of a connection.
type DocumentRepository interface {
	InsertMany(ctx context.Context, ns domain.Namespace, docs []domdoc.Document) ([]string, error)
	Count(ctx context.Context, ns domain.Namespace, index string) (int, error)
	Search(ctx context.Context, ns domain.Namespace, req docrepo.KNNRequest) ([]docrepo.Hit, error)
}

// Repositories binds repositories to the store of a connection handle.
type Repositories interface {
	Indexes(h connection.Handle) IndexRepository
	Documents(h connection.Handle) DocumentRepository
}

// Catalog is invalidated after index changes.
type Catalog interface {
	Invalidate(ns domain.Namespace)
}

// Validator finds vector field violations in a batch of documents.
type Validator interface {
	FindViolationsMany(ctx context.Context, ns domain.Namespace, docs []domdoc.Document) (map[int][]validation.Violation, error)
}

// Embeddings generates vectors for indexed fields.
type Embeddings interface {
	GenerateEmbeddings(ctx context.Context, req embedding.Request) ([][]float32, error)
}
