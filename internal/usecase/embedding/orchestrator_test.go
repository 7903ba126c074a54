package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

var testNS = domain.Namespace{Database: "mflix", Collection: "movies"}

func plotDefs() []vectorindex.Definition {
	return []vectorindex.Definition{
		vectorindex.Reconstruct("plot_embedding", 1536, vectorindex.QuantizationScalar, vectorindex.SimilarityCosine),
	}
}

func TestGenerateEmbeddings_Success(t *testing.T) {
	provider := &mockEmbedder{}
	o := NewOrchestrator(&mockCatalog{defs: plotDefs()}, provider, zap.NewNop())

	vecs, err := o.GenerateEmbeddings(context.Background(), Request{
		Namespace:  testNS,
		Path:       "plot_embedding",
		RawValues:  []string{"a", "bbb", "cc"},
		Parameters: domain.EmbeddingParameters{Model: "m", OutputDimension: 256},
		InputType:  domain.InputTypeDocument,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 3 || vecs[0][0] != 1 || vecs[1][0] != 3 || vecs[2][0] != 2 {
		t.Errorf("output must follow input order, got %v", vecs)
	}
	want := domain.EmbeddingParameters{Model: "m", OutputDimension: 256, InputType: domain.InputTypeDocument}
	if provider.lastParams != want {
		t.Errorf("parameters = %+v, want %+v", provider.lastParams, want)
	}
}

func TestGenerateEmbeddings_IndexNotFoundSkipsProvider(t *testing.T) {
	provider := &mockEmbedder{}
	o := NewOrchestrator(&mockCatalog{defs: plotDefs()}, provider, zap.NewNop())

	_, err := o.GenerateEmbeddings(context.Background(), Request{
		Namespace: testNS,
		Path:      "title_embedding",
		RawValues: []string{"x"},
		InputType: domain.InputTypeQuery,
	})
	if !errors.Is(err, domain.ErrVectorIndexNotFound) {
		t.Fatalf("expected ErrVectorIndexNotFound, got %v", err)
	}
	var nf *domain.VectorIndexNotFoundError
	if !errors.As(err, &nf) || nf.Path != "title_embedding" {
		t.Errorf("expected path in error, got %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider must not be called, got %d calls", provider.calls)
	}
}

func TestGenerateEmbeddings_NotSupportedEvenWhenDisabled(t *testing.T) {
	for _, disabled := range []bool{false, true} {
		provider := &mockEmbedder{}
		o := NewOrchestrator(&mockCatalog{disabled: disabled, unavailable: true}, provider, zap.NewNop())

		_, err := o.GenerateEmbeddings(context.Background(), Request{Namespace: testNS, Path: "v", RawValues: []string{"x"}})
		if !errors.Is(err, domain.ErrVectorSearchNotSupported) {
			t.Fatalf("disabled=%v: expected ErrVectorSearchNotSupported, got %v", disabled, err)
		}
		if provider.calls != 0 {
			t.Errorf("provider must not be called")
		}
	}
}

func TestGenerateEmbeddings_NoProvider(t *testing.T) {
	o := NewOrchestrator(&mockCatalog{defs: plotDefs()}, nil, zap.NewNop())
	if o.Configured() {
		t.Error("Configured must be false without a provider")
	}

	_, err := o.GenerateEmbeddings(context.Background(), Request{Namespace: testNS, Path: "plot_embedding"})
	if !errors.Is(err, domain.ErrNoEmbeddingsProvider) {
		t.Fatalf("expected ErrNoEmbeddingsProvider, got %v", err)
	}
}

func TestGenerateEmbeddings_DisabledSkipsLookup(t *testing.T) {
	cat := &mockCatalog{disabled: true}
	provider := &mockEmbedder{}
	o := NewOrchestrator(cat, provider, zap.NewNop())

	vecs, err := o.GenerateEmbeddings(context.Background(), Request{
		Namespace: testNS, Path: "anything", RawValues: []string{"q"}, InputType: domain.InputTypeQuery,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 1 || cat.lookups != 0 {
		t.Errorf("expected direct delegation, vecs=%v lookups=%d", vecs, cat.lookups)
	}
	if provider.lastParams.InputType != domain.InputTypeQuery {
		t.Errorf("input type must be merged, got %+v", provider.lastParams)
	}
}

func TestGenerateEmbeddings_LookupErrorPropagates(t *testing.T) {
	boom := errors.New("listing failed")
	provider := &mockEmbedder{}
	o := NewOrchestrator(&mockCatalog{err: boom}, provider, zap.NewNop())

	_, err := o.GenerateEmbeddings(context.Background(), Request{Namespace: testNS, Path: "v", RawValues: []string{"x"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected listing error, got %v", err)
	}
	if provider.calls != 0 {
		t.Error("provider must not be called")
	}
}

func TestGenerateEmbeddings_ProviderError(t *testing.T) {
	boom := errors.New("rate limited")
	o := NewOrchestrator(&mockCatalog{defs: plotDefs()}, &mockEmbedder{err: boom}, zap.NewNop())

	_, err := o.GenerateEmbeddings(context.Background(), Request{
		Namespace: testNS, Path: "plot_embedding", RawValues: []string{"x"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
