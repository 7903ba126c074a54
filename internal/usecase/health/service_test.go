package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/db"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// --- Mocks ---

type pingStore struct {
	db.Store
	err error
}

func (s *pingStore) Ping(_ context.Context) error { return s.err }

type mockHandle struct {
	store     *pingStore
	supported bool
}

func (h *mockHandle) IsVectorSearchSupported(_ context.Context) bool { return h.supported }

func (h *mockHandle) ListVectorIndexes(_ context.Context, _ domain.Namespace) ([]vectorindex.SearchIndex, error) {
	return nil, nil
}

func (h *mockHandle) Store() db.Store { return h.store }

func (h *mockHandle) Target() connection.Target { return connection.Target{} }

func (h *mockHandle) Close() {}

type mockConnections struct {
	handle connection.Handle
}

func (m *mockConnections) Current() (connection.Handle, bool) {
	return m.handle, m.handle != nil
}

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

func connected(pingErr error, supported bool) *mockConnections {
	return &mockConnections{handle: &mockHandle{store: &pingStore{err: pingErr}, supported: supported}}
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(connected(nil, true), &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"database", "vector_search", "embedding"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(connected(errors.New("conn refused"), true), &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if _, ok := r.Checks["vector_search"]; ok {
		t.Error("vector search must not be probed on a failing database")
	}
}

func TestCheck_Disconnected(t *testing.T) {
	svc := New(&mockConnections{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckDisconnected {
		t.Errorf("expected database %q, got %q", CheckDisconnected, r.Checks["database"])
	}
}

func TestCheck_VectorSearchUnsupported(t *testing.T) {
	svc := New(connected(nil, false), nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy || r.Checks["vector_search"] != CheckUnsupported {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	svc := New(connected(nil, true), &mockEmbeddingChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
}

func TestCheck_NoEmbedding(t *testing.T) {
	svc := New(connected(nil, true), nil)
	r := svc.Check(context.Background())

	if _, ok := r.Checks["embedding"]; ok {
		t.Error("embedding check should be absent when embedding is nil")
	}
}
