package vectorindex

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	d, err := New("plot.embedding", 1536, "", SimilarityCosine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Path() != "plot.embedding" || d.NumDimensions() != 1536 {
		t.Errorf("unexpected definition: %+v", d)
	}
	if d.Quantization() != QuantizationNone {
		t.Errorf("empty quantization should default to none, got %q", d.Quantization())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		path string
		dims int
		q    Quantization
		s    Similarity
	}{
		{"zero dims", "v", 0, QuantizationNone, SimilarityCosine},
		{"too many dims", "v", MaxDimensions + 1, QuantizationNone, SimilarityCosine},
		{"bad quantization", "v", 4, "product", SimilarityCosine},
		{"bad similarity", "v", 4, QuantizationNone, "hamming"},
		{"empty path", "", 4, QuantizationNone, SimilarityCosine},
		{"empty segment", "a..b", 4, QuantizationNone, SimilarityCosine},
		{"dollar path", "$.v", 4, QuantizationNone, SimilarityCosine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.path, tt.dims, tt.q, tt.s); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func validIndex() SearchIndex {
	return SearchIndex{
		Name: "vector_idx",
		Kind: KindVectorSearch,
		Fields: []Field{
			{Type: FieldVector, Path: "a", NumDimensions: 4, Similarity: SimilarityCosine},
			{Type: FieldFilter, Path: "year"},
			{Type: FieldVector, Path: "b.c", NumDimensions: 16, Quantization: QuantizationBinary, Similarity: SimilarityEuclidean},
		},
	}
}

func TestSearchIndex_Validate(t *testing.T) {
	if err := validIndex().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SearchIndex)
		want   string
	}{
		{"empty name", func(i *SearchIndex) { i.Name = "" }, "required"},
		{"bad name", func(i *SearchIndex) { i.Name = "has space" }, "alphanumeric"},
		{"long name", func(i *SearchIndex) { i.Name = strings.Repeat("x", 65) }, "alphanumeric"},
		{"bad kind", func(i *SearchIndex) { i.Kind = "atlas" }, "invalid index type"},
		{"no fields", func(i *SearchIndex) { i.Fields = nil }, "at least one field"},
		{"duplicate path", func(i *SearchIndex) { i.Fields[1].Path = "a" }, "duplicate"},
		{"text in vector index", func(i *SearchIndex) { i.Fields[1].Type = FieldText }, "not allowed"},
		{"filter only", func(i *SearchIndex) { i.Fields = i.Fields[1:2] }, "at least one vector"},
		{"bad vector", func(i *SearchIndex) { i.Fields[0].NumDimensions = 0 }, "numDimensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := validIndex()
			tt.mutate(&idx)
			err := idx.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestSearchIndex_ValidateTextIndex(t *testing.T) {
	idx := SearchIndex{Name: "text", Kind: KindSearch, Fields: []Field{{Type: FieldText, Path: "title"}}}
	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx.Fields[0].Type = FieldVector
	if err := idx.Validate(); err == nil {
		t.Error("vector fields must be rejected in search indexes")
	}
}

func TestSearchIndex_VectorDefinitions(t *testing.T) {
	defs := validIndex().VectorDefinitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Path() != "a" || defs[0].Quantization() != QuantizationNone {
		t.Errorf("unexpected first definition: %+v", defs[0])
	}
	if defs[1].Path() != "b.c" || defs[1].NumDimensions() != 16 || defs[1].Quantization() != QuantizationBinary {
		t.Errorf("unexpected second definition: %+v", defs[1])
	}

	text := SearchIndex{Kind: KindSearch, Fields: []Field{{Type: FieldText, Path: "a"}}}
	if got := text.VectorDefinitions(); len(got) != 0 {
		t.Errorf("search index should contribute nothing, got %v", got)
	}
}

func TestSearchIndex_HasPath(t *testing.T) {
	idx := validIndex()
	if !idx.HasPath("b.c") || idx.HasPath("b") {
		t.Error("HasPath must match exact paths")
	}
}
