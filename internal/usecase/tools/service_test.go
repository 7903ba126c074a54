package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

func TestDisabledToolIsRejected(t *testing.T) {
	f := newFixture()
	svc := f.service(Policy{DisabledTools: []string{ToolCount}})

	_, err := svc.Count(context.Background(), NamespaceArgs{Database: "mflix", Collection: "movies"})
	if !errors.Is(err, domain.ErrToolDisabled) {
		t.Fatalf("expected ErrToolDisabled, got %v", err)
	}
}

func TestReadOnlyBlocksWriteTools(t *testing.T) {
	f := newFixture()
	created := false
	f.indexes.createFn = func(_ context.Context, _ domain.Namespace, _ vectorindex.SearchIndex) error {
		created = true
		return nil
	}
	svc := f.service(Policy{ReadOnly: true})
	ctx := context.Background()

	if _, err := svc.CreateIndex(ctx, CreateIndexArgs{
		Database: "mflix", Collection: "movies", Name: "plots",
		Type: vectorindex.KindVectorSearch, Fields: plotIndex().Fields,
	}); !errors.Is(err, domain.ErrToolDisabled) {
		t.Errorf("create-index: expected ErrToolDisabled, got %v", err)
	}
	if _, err := svc.DropIndex(ctx, DropIndexArgs{Database: "mflix", Collection: "movies", Name: "plots"}); !errors.Is(err, domain.ErrToolDisabled) {
		t.Errorf("drop-index: expected ErrToolDisabled, got %v", err)
	}
	if _, err := svc.InsertMany(ctx, InsertManyArgs{
		Database: "mflix", Collection: "movies", Documents: []map[string]any{{"title": "Heat"}},
	}); !errors.Is(err, domain.ErrToolDisabled) {
		t.Errorf("insert-many: expected ErrToolDisabled, got %v", err)
	}
	if created {
		t.Error("write reached the repository in read-only mode")
	}

	if _, err := svc.Count(ctx, NamespaceArgs{Database: "mflix", Collection: "movies"}); err != nil {
		t.Errorf("count must stay available in read-only mode: %v", err)
	}
}

func TestVectorSearchRequiresPreview(t *testing.T) {
	f := newFixture()
	svc := f.service(Policy{})

	_, err := svc.VectorSearch(context.Background(), VectorSearchArgs{
		Database: "mflix", Collection: "movies", Path: "plot.embedding", QueryVector: []float64{1, 0, 0},
	})
	if !errors.Is(err, domain.ErrToolDisabled) {
		t.Fatalf("expected ErrToolDisabled, got %v", err)
	}
}

func TestTools_FiltersByPolicy(t *testing.T) {
	f := newFixture()

	names := func(ds []Descriptor) string {
		var out []string
		for _, d := range ds {
			out = append(out, d.Name)
		}
		return strings.Join(out, ",")
	}

	all := names(f.service(previewPolicy()).Tools())
	want := "connect,insert-many,vector-search,create-index,drop-index,collection-indexes,count"
	if all != want {
		t.Errorf("Tools() = %s, want %s", all, want)
	}

	got := names(f.service(Policy{ReadOnly: true, DisabledTools: []string{ToolConnect}}).Tools())
	if got != "collection-indexes,count" {
		t.Errorf("Tools() = %s, want collection-indexes,count", got)
	}
}

func TestConfirmationRequired_DefaultPrompt(t *testing.T) {
	f := newFixture()
	svc := f.service(Policy{ConfirmationRequired: []string{ToolCount}})

	_, err := svc.Count(context.Background(), NamespaceArgs{Database: "mflix", Collection: "movies"})
	var cre *ConfirmationRequiredError
	if !errors.As(err, &cre) {
		t.Fatalf("expected ConfirmationRequiredError, got %v", err)
	}
	if !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Error("expected ErrConfirmationRequired in chain")
	}
	if cre.Tool != ToolCount || !strings.Contains(cre.Message, "confirm") {
		t.Errorf("unexpected confirmation: %+v", cre)
	}

	if _, err := svc.Count(context.Background(), NamespaceArgs{Database: "mflix", Collection: "movies", Confirm: true}); err != nil {
		t.Fatalf("confirmed call failed: %v", err)
	}
}

func TestCallTimeoutIsApplied(t *testing.T) {
	f := newFixture()
	var hasDeadline bool
	f.docs.countFn = func(ctx context.Context, _ domain.Namespace, _ string) (int, error) {
		_, hasDeadline = ctx.Deadline()
		return 1, nil
	}

	svc := f.service(Policy{CallTimeout: time.Second})
	if _, err := svc.Count(context.Background(), NamespaceArgs{Database: "mflix", Collection: "movies"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasDeadline {
		t.Error("expected a deadline on the call context")
	}
}

func TestNotConnected(t *testing.T) {
	f := newFixture()
	f.conns.handle = nil
	svc := f.service(Policy{})

	_, err := svc.CollectionIndexes(context.Background(), NamespaceArgs{Database: "mflix", Collection: "movies"})
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if ErrorCode(err) != CodeNotConnected {
		t.Errorf("ErrorCode = %s", ErrorCode(err))
	}
}

func TestInvalidNamespace(t *testing.T) {
	f := newFixture()
	svc := f.service(Policy{})

	_, err := svc.Count(context.Background(), NamespaceArgs{Database: "", Collection: "movies"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrToolDisabled, CodeToolDisabled},
		{&ConfirmationRequiredError{Tool: "x", Message: "m"}, CodeConfirmationRequired},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidArgument), CodeInvalidArgument},
		{&domain.VectorIndexNotFoundError{Namespace: testNS, Path: "p"}, CodeVectorIndexNotFound},
		{&domain.ValidationFailedError{Documents: map[int][]string{0: {"x"}}}, CodeValidationFailed},
		{fmt.Errorf("embed: %w", domain.ErrEmbeddingProviderError), CodeEmbeddingProviderError},
		{domain.ErrNoEmbeddingsProvider, CodeNoEmbeddingsProvider},
		{domain.ErrVectorSearchNotSupported, CodeVectorSearchNotSupported},
		{fmt.Errorf("connect: %w: %w", domain.ErrConnectionFailed, errors.New("refused")), CodeConnectionFailed},
		{domain.ErrAlreadyExists, CodeAlreadyExists},
		{domain.ErrNotFound, CodeNotFound},
		{context.DeadlineExceeded, CodeTimeout},
		{errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestSafeMessage_HidesInternals(t *testing.T) {
	if got := SafeMessage(errors.New("dial tcp 10.0.0.1: secret")); got != "internal error" {
		t.Errorf("SafeMessage = %q", got)
	}
	err := fmt.Errorf("name is required: %w", domain.ErrInvalidArgument)
	if got := SafeMessage(err); got != err.Error() {
		t.Errorf("SafeMessage = %q", got)
	}
}

func TestOrUndefined(t *testing.T) {
	if v := OrUndefined(42, nil); v == nil || *v != 42 {
		t.Errorf("OrUndefined(42, nil) = %v", v)
	}
	if v := OrUndefined(42, errors.New("boom")); v != nil {
		t.Errorf("OrUndefined on error = %v, want nil", *v)
	}
}

func TestDispatch_RoutesDecodedArguments(t *testing.T) {
	f := newFixture()
	f.docs.countFn = func(_ context.Context, ns domain.Namespace, _ string) (int, error) {
		if ns != testNS {
			t.Errorf("unexpected namespace %s", ns)
		}
		return 7, nil
	}
	svc := f.service(Policy{})

	res, err := svc.Dispatch(context.Background(), ToolCount, []byte(`{"database":"mflix","collection":"movies"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cr, ok := res.(*CountResult)
	if !ok || cr.Count != 7 {
		t.Errorf("unexpected result: %#v", res)
	}
}

func TestDispatch_Errors(t *testing.T) {
	f := newFixture()
	svc := f.service(Policy{})

	if _, err := svc.Dispatch(context.Background(), "drop-database", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown tool: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Dispatch(context.Background(), ToolCount, []byte(`{"database":`)); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("bad json: expected ErrInvalidArgument, got %v", err)
	}

	res, err := svc.Dispatch(context.Background(), ToolCount, []byte(`{}`))
	if err == nil || res != nil {
		t.Errorf("expected nil result with error, got %#v, %v", res, err)
	}
}

func TestConnect(t *testing.T) {
	f := newFixture()
	svc := f.service(Policy{})
	ctx := context.Background()

	if _, err := svc.Connect(ctx, ConnectArgs{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument without addrs, got %v", err)
	}

	res, err := svc.Connect(ctx, ConnectArgs{Addrs: []string{"a:6379", "b:6379"}, Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Target != "a:6379,b:6379" {
		t.Errorf("Target = %s", res.Target)
	}
	if len(f.conns.targets) != 1 || f.conns.targets[0].Password != "pw" {
		t.Errorf("unexpected targets: %+v", f.conns.targets)
	}

	f.conns.connectErr = errors.New("connection refused")
	_, err = svc.Connect(ctx, ConnectArgs{Addrs: []string{"c:6379"}})
	if !errors.Is(err, domain.ErrConnectionFailed) {
		t.Errorf("expected ErrConnectionFailed, got %v", err)
	}
}
