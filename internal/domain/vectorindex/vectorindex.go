// Package vectorindex holds search index definitions and the vector field
// contract (dimensions and quantization) documents are validated against.
package vectorindex

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxDimensions is the largest numDimensions a vector field may declare.
const MaxDimensions = 8192

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Quantization is the on-disk/wire encoding committed to by a vector field.
type Quantization string

// Quantization values.
const (
	QuantizationNone   Quantization = "none"
	QuantizationScalar Quantization = "scalar"
	QuantizationBinary Quantization = "binary"
)

// IsValid checks if the quantization is supported.
func (q Quantization) IsValid() bool {
	return q == QuantizationNone || q == QuantizationScalar || q == QuantizationBinary
}

// Similarity is the distance metric of a vector field.
type Similarity string

// Similarity values.
const (
	SimilarityCosine     Similarity = "cosine"
	SimilarityEuclidean  Similarity = "euclidean"
	SimilarityDotProduct Similarity = "dotProduct"
)

// IsValid checks if the similarity is supported.
func (s Similarity) IsValid() bool {
	return s == SimilarityCosine || s == SimilarityEuclidean || s == SimilarityDotProduct
}

// Kind distinguishes vector search indexes from plain full-text search indexes.
type Kind string

// Index kinds.
const (
	KindVectorSearch Kind = "vectorSearch"
	KindSearch       Kind = "search"
)

// FieldType is the type of one entry in an index definition.
type FieldType string

// Field types. Vector and filter belong to vectorSearch indexes, text to search indexes.
const (
	FieldVector FieldType = "vector"
	FieldFilter FieldType = "filter"
	FieldText   FieldType = "text"
)

// Definition is an immutable vector field definition of a search index.
type Definition struct {
	path          string
	numDimensions int
	quantization  Quantization
	similarity    Similarity
}

// New validates and creates a Definition. An empty quantization means none.
func New(path string, numDimensions int, q Quantization, s Similarity) (Definition, error) {
	if q == "" {
		q = QuantizationNone
	}
	if err := validatePath(path); err != nil {
		return Definition{}, err
	}
	if numDimensions < 1 || numDimensions > MaxDimensions {
		return Definition{}, fmt.Errorf("numDimensions for %q must be between 1 and %d, got %d",
			path, MaxDimensions, numDimensions)
	}
	if !q.IsValid() {
		return Definition{}, fmt.Errorf("invalid quantization %q for %q", q, path)
	}
	if !s.IsValid() {
		return Definition{}, fmt.Errorf("invalid similarity %q for %q", s, path)
	}
	return Definition{path: path, numDimensions: numDimensions, quantization: q, similarity: s}, nil
}

// Reconstruct creates a Definition without validation (storage hydration).
func Reconstruct(path string, numDimensions int, q Quantization, s Similarity) Definition {
	if q == "" {
		q = QuantizationNone
	}
	return Definition{path: path, numDimensions: numDimensions, quantization: q, similarity: s}
}

// Path returns the dot-separated document path.
func (d Definition) Path() string { return d.path }

// NumDimensions returns the fixed vector length.
func (d Definition) NumDimensions() int { return d.numDimensions }

// Quantization returns the committed encoding.
func (d Definition) Quantization() Quantization { return d.quantization }

// Similarity returns the distance metric.
func (d Definition) Similarity() Similarity { return d.similarity }

// Field is one entry of a search index definition as listed by the cluster.
type Field struct {
	Type          FieldType    `json:"type"`
	Path          string       `json:"path"`
	NumDimensions int          `json:"numDimensions,omitempty"`
	Quantization  Quantization `json:"quantization,omitempty"`
	Similarity    Similarity   `json:"similarity,omitempty"`
}

// SearchIndex is a search index of a namespace.
type SearchIndex struct {
	Name      string  `json:"name"`
	Kind      Kind    `json:"type"`
	Fields    []Field `json:"fields"`
	CreatedAt int64   `json:"createdAt,omitempty"` // unix millis
}

// Validate checks the index before creation.
func (i SearchIndex) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("index name is required")
	}
	if len(i.Name) > 64 || !nameRegex.MatchString(i.Name) {
		return fmt.Errorf("index name %q must be 1-64 alphanumeric characters, underscores or hyphens", i.Name)
	}
	if i.Kind != KindVectorSearch && i.Kind != KindSearch {
		return fmt.Errorf("invalid index type %q", i.Kind)
	}
	if len(i.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}

	seen := make(map[string]bool, len(i.Fields))
	vectors := 0
	for _, f := range i.Fields {
		if err := validatePath(f.Path); err != nil {
			return err
		}
		if seen[f.Path] {
			return fmt.Errorf("duplicate field path: %s", f.Path)
		}
		seen[f.Path] = true

		switch {
		case i.Kind == KindVectorSearch && f.Type == FieldVector:
			if _, err := New(f.Path, f.NumDimensions, f.Quantization, f.Similarity); err != nil {
				return err
			}
			vectors++
		case i.Kind == KindVectorSearch && f.Type == FieldFilter:
		case i.Kind == KindSearch && f.Type == FieldText:
		default:
			return fmt.Errorf("field type %q is not allowed in a %s index", f.Type, i.Kind)
		}
	}
	if i.Kind == KindVectorSearch && vectors == 0 {
		return fmt.Errorf("a vectorSearch index needs at least one vector field")
	}
	return nil
}

// VectorDefinitions returns the vector-typed field definitions in declaration order.
// Plain search indexes contribute nothing.
func (i SearchIndex) VectorDefinitions() []Definition {
	if i.Kind != KindVectorSearch {
		return nil
	}
	var defs []Definition
	for _, f := range i.Fields {
		if f.Type != FieldVector {
			continue
		}
		defs = append(defs, Reconstruct(f.Path, f.NumDimensions, f.Quantization, f.Similarity))
	}
	return defs
}

// HasPath reports whether any field of the index covers path.
func (i SearchIndex) HasPath(path string) bool {
	for _, f := range i.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("field path is required")
	}
	if strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
		return fmt.Errorf("field path %q has an empty segment", path)
	}
	if strings.ContainsAny(path, " $") {
		return fmt.Errorf("field path %q contains invalid characters", path)
	}
	return nil
}
