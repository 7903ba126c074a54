package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// fakeHandle serves index listings from memory and counts calls.
type fakeHandle struct {
	mu         sync.Mutex
	supported  bool
	indexes    map[string][]vectorindex.SearchIndex
	listErr    error
	listCalls  map[string]int
	probeCalls int

	// hold, when set, parks the next listing call until closed. started
	// receives once that call has snapshotted its result.
	hold    chan struct{}
	started chan struct{}
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		supported: true,
		indexes:   make(map[string][]vectorindex.SearchIndex),
		listCalls: make(map[string]int),
	}
}

func (h *fakeHandle) IsVectorSearchSupported(_ context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probeCalls++
	return h.supported
}

func (h *fakeHandle) ListVectorIndexes(ctx context.Context, ns domain.Namespace) ([]vectorindex.SearchIndex, error) {
	h.mu.Lock()
	h.listCalls[ns.String()]++
	indexes, err := h.indexes[ns.String()], h.listErr
	hold, started := h.hold, h.started
	h.hold = nil
	h.mu.Unlock()

	if hold != nil {
		started <- struct{}{}
		<-hold
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return indexes, nil
}

// holdNextList parks the next listing call and returns its release func
// once the call is in flight.
func (h *fakeHandle) holdNextList(t *testing.T, lookup func()) (release func()) {
	t.Helper()
	hold := make(chan struct{})
	h.mu.Lock()
	h.hold, h.started = hold, make(chan struct{}, 1)
	started := h.started
	h.mu.Unlock()

	go lookup()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("listing call never started")
	}
	return func() { close(hold) }
}

func (h *fakeHandle) setIndexes(ns domain.Namespace, indexes ...vectorindex.SearchIndex) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.indexes[ns.String()] = indexes
}

func (h *fakeHandle) calls(ns domain.Namespace) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.listCalls[ns.String()]
}

func (h *fakeHandle) Store() db.Store { return nil }

func (h *fakeHandle) Target() connection.Target {
	return connection.Target{Addrs: []string{"localhost:6379"}}
}

func (h *fakeHandle) Close() {}

// newSequence returns a manager connected to handles[0]; each later Connect
// dials the next handle.
func newSequence(t *testing.T, handles ...connection.Handle) *connection.Manager {
	t.Helper()
	var (
		mu   sync.Mutex
		next int
	)
	m := connection.NewManager(func(_ context.Context, _ connection.Target) (connection.Handle, error) {
		mu.Lock()
		defer mu.Unlock()
		h := handles[next]
		next++
		return h, nil
	}, zap.NewNop())
	if err := m.Connect(context.Background(), handles[0].Target()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return m
}

// ftListStore answers FT._LIST with err and nothing else.
type ftListStore struct {
	db.Store
	err error
}

func (s ftListStore) ListIndexes(context.Context) ([]string, error) { return nil, s.err }
func (s ftListStore) Close()                                       {}

type failingLister struct{ err error }

func (l failingLister) List(context.Context, domain.Namespace) ([]vectorindex.SearchIndex, error) {
	return nil, l.err
}

// newConnected returns a manager connected to h.
func newConnected(t *testing.T, h *fakeHandle) *connection.Manager {
	t.Helper()
	m := connection.NewManager(func(_ context.Context, _ connection.Target) (connection.Handle, error) {
		return h, nil
	}, zap.NewNop())
	if err := m.Connect(context.Background(), h.Target()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return m
}

func vectorIndex(name, path string, dims int, q vectorindex.Quantization) vectorindex.SearchIndex {
	return vectorindex.SearchIndex{
		Name: name,
		Kind: vectorindex.KindVectorSearch,
		Fields: []vectorindex.Field{
			{Type: vectorindex.FieldFilter, Path: "genre"},
			{
				Type: vectorindex.FieldVector, Path: path, NumDimensions: dims,
				Quantization: q, Similarity: vectorindex.SimilarityCosine,
			},
		},
	}
}

var (
	nsMovies = domain.Namespace{Database: "mflix", Collection: "movies"}
	nsUsers  = domain.Namespace{Database: "mflix", Collection: "users"}
)
