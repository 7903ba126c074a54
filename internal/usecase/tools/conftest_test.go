package tools

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	domdoc "github.com/kailas-cloud/vecmcp/internal/domain/document"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
	docrepo "github.com/kailas-cloud/vecmcp/internal/repository/document"
	"github.com/kailas-cloud/vecmcp/internal/usecase/embedding"
	"github.com/kailas-cloud/vecmcp/internal/usecase/validation"
)

var testNS = domain.Namespace{Database: "mflix", Collection: "movies"}

// --- connection ---

type fakeHandle struct {
	unsupported bool
}

func (h *fakeHandle) IsVectorSearchSupported(_ context.Context) bool { return !h.unsupported }

func (h *fakeHandle) ListVectorIndexes(_ context.Context, _ domain.Namespace) ([]vectorindex.SearchIndex, error) {
	return nil, nil
}

func (h *fakeHandle) Store() db.Store { return nil }

func (h *fakeHandle) Target() connection.Target { return connection.Target{} }

func (h *fakeHandle) Close() {}

type fakeConns struct {
	handle     connection.Handle
	connectErr error
	targets    []connection.Target
}

func (c *fakeConns) Connect(_ context.Context, target connection.Target) error {
	c.targets = append(c.targets, target)
	return c.connectErr
}

func (c *fakeConns) Require() (connection.Handle, error) {
	if c.handle == nil {
		return nil, domain.ErrNotConnected
	}
	return c.handle, nil
}

// --- repositories ---

type mockIndexRepo struct {
	createFn func(ctx context.Context, ns domain.Namespace, idx vectorindex.SearchIndex) error
	listFn   func(ctx context.Context, ns domain.Namespace) ([]vectorindex.SearchIndex, error)
	deleteFn func(ctx context.Context, ns domain.Namespace, name string) error
}

func (m *mockIndexRepo) Create(ctx context.Context, ns domain.Namespace, idx vectorindex.SearchIndex) error {
	if m.createFn != nil {
		return m.createFn(ctx, ns, idx)
	}
	return nil
}

func (m *mockIndexRepo) List(ctx context.Context, ns domain.Namespace) ([]vectorindex.SearchIndex, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ns)
	}
	return nil, nil
}

func (m *mockIndexRepo) Delete(ctx context.Context, ns domain.Namespace, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ns, name)
	}
	return nil
}

type mockDocRepo struct {
	insertManyFn func(ctx context.Context, ns domain.Namespace, docs []domdoc.Document) ([]string, error)
	countFn      func(ctx context.Context, ns domain.Namespace, index string) (int, error)
	searchFn     func(ctx context.Context, ns domain.Namespace, req docrepo.KNNRequest) ([]docrepo.Hit, error)
}

func (m *mockDocRepo) InsertMany(ctx context.Context, ns domain.Namespace, docs []domdoc.Document) ([]string, error) {
	if m.insertManyFn != nil {
		return m.insertManyFn(ctx, ns, docs)
	}
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = fmt.Sprintf("id%d", i)
	}
	return ids, nil
}

func (m *mockDocRepo) Count(ctx context.Context, ns domain.Namespace, index string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, ns, index)
	}
	return 0, nil
}

func (m *mockDocRepo) Search(ctx context.Context, ns domain.Namespace, req docrepo.KNNRequest) ([]docrepo.Hit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, ns, req)
	}
	return nil, nil
}

type fakeRepos struct {
	indexes *mockIndexRepo
	docs    *mockDocRepo
}

func (r *fakeRepos) Indexes(_ connection.Handle) IndexRepository { return r.indexes }

func (r *fakeRepos) Documents(_ connection.Handle) DocumentRepository { return r.docs }

// --- use case collaborators ---

type fakeCatalog struct {
	invalidated []string
}

func (c *fakeCatalog) Invalidate(ns domain.Namespace) {
	c.invalidated = append(c.invalidated, ns.String())
}

type mockValidator struct {
	fn   func(ctx context.Context, ns domain.Namespace, docs []domdoc.Document) (map[int][]validation.Violation, error)
	seen []domdoc.Document
}

func (m *mockValidator) FindViolationsMany(
	ctx context.Context, ns domain.Namespace, docs []domdoc.Document,
) (map[int][]validation.Violation, error) {
	m.seen = docs
	if m.fn != nil {
		return m.fn(ctx, ns, docs)
	}
	return map[int][]validation.Violation{}, nil
}

type mockEmbeddings struct {
	mu       sync.Mutex
	fn       func(ctx context.Context, req embedding.Request) ([][]float32, error)
	requests []embedding.Request
}

func (m *mockEmbeddings) GenerateEmbeddings(ctx context.Context, req embedding.Request) ([][]float32, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx, req)
	}
	// one vector per text: [len(text), 0, 0]
	out := make([][]float32, len(req.RawValues))
	for i, t := range req.RawValues {
		out[i] = []float32{float32(len(t)), 0, 0}
	}
	return out, nil
}

// --- fixture ---

type fixture struct {
	conns      *fakeConns
	handle     *fakeHandle
	indexes    *mockIndexRepo
	docs       *mockDocRepo
	catalog    *fakeCatalog
	validator  *mockValidator
	embeddings *mockEmbeddings
}

func newFixture() *fixture {
	h := &fakeHandle{}
	return &fixture{
		conns:      &fakeConns{handle: h},
		handle:     h,
		indexes:    &mockIndexRepo{},
		docs:       &mockDocRepo{},
		catalog:    &fakeCatalog{},
		validator:  &mockValidator{},
		embeddings: &mockEmbeddings{},
	}
}

func (f *fixture) service(policy Policy) *Service {
	return New(f.conns, &fakeRepos{indexes: f.indexes, docs: f.docs},
		f.catalog, f.validator, f.embeddings, policy, zap.NewNop())
}

func previewPolicy() Policy {
	return Policy{PreviewFeatures: []string{PreviewVectorSearch}}
}

func plotIndex() vectorindex.SearchIndex {
	return vectorindex.SearchIndex{
		Name: "plots",
		Kind: vectorindex.KindVectorSearch,
		Fields: []vectorindex.Field{
			{Type: vectorindex.FieldVector, Path: "plot.embedding", NumDimensions: 3, Similarity: vectorindex.SimilarityCosine},
			{Type: vectorindex.FieldFilter, Path: "genre"},
		},
	}
}
