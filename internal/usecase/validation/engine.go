// Package validation checks documents against the vector field definitions of
// their namespace before they are written.
package validation

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	domdoc "github.com/kailas-cloud/vecmcp/internal/domain/document"
	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
	"github.com/kailas-cloud/vecmcp/internal/metrics"
)

// Engine finds vector field violations in documents.
type Engine struct {
	catalog Catalog
	logger  *zap.Logger
}

// New creates a validation engine.
func New(catalog Catalog, logger *zap.Logger) *Engine {
	return &Engine{catalog: catalog, logger: logger}
}

// FindViolations returns at most one violation per definition, in definition order.
// Fields missing from the document are not checked. Listing errors propagate.
func (e *Engine) FindViolations(ctx context.Context, ns domain.Namespace, doc domdoc.Document) ([]Violation, error) {
	if e.catalog.Disabled() {
		return []Violation{}, nil
	}
	defs, err := e.catalog.DefinitionsFor(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("find violations: %w", err)
	}
	return check(defs, doc), nil
}

// FindViolationsMany validates a batch against one catalog lookup.
// The result holds only documents with violations, keyed by batch position.
func (e *Engine) FindViolationsMany(
	ctx context.Context, ns domain.Namespace, docs []domdoc.Document,
) (map[int][]Violation, error) {
	out := make(map[int][]Violation)
	if e.catalog.Disabled() || len(docs) == 0 {
		return out, nil
	}
	defs, err := e.catalog.DefinitionsFor(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("find violations: %w", err)
	}
	for i, doc := range docs {
		if vs := check(defs, doc); len(vs) > 0 {
			out[i] = vs
		}
	}
	if len(out) > 0 {
		e.logger.Debug("Documents violate vector field definitions",
			zap.String("namespace", ns.String()),
			zap.Int("documents", len(docs)),
			zap.Int("invalid", len(out)),
		)
	}
	return out, nil
}

// AsError converts batch violations into a *domain.ValidationFailedError, or nil when empty.
func AsError(byDoc map[int][]Violation) error {
	if len(byDoc) == 0 {
		return nil
	}
	rendered := make(map[int][]string, len(byDoc))
	for i, vs := range byDoc {
		for _, v := range vs {
			rendered[i] = append(rendered[i], v.String())
		}
	}
	return &domain.ValidationFailedError{Documents: rendered}
}

func check(defs []vectorindex.Definition, doc domdoc.Document) []Violation {
	violations := []Violation{}
	for _, def := range defs {
		value, ok := doc.Lookup(def.Path())
		if !ok {
			continue
		}
		if v, bad := checkField(def, value); bad {
			metrics.ValidationViolationsTotal.WithLabelValues(string(v.Error)).Inc()
			violations = append(violations, v)
		}
	}
	return violations
}

func checkField(def vectorindex.Definition, value any) (Violation, bool) {
	switch def.Quantization() {
	case vectorindex.QuantizationScalar, vectorindex.QuantizationBinary:
	default:
		// Unquantized vectors publish no contract.
		return Violation{}, false
	}

	if b, ok := value.(domdoc.Binary); ok {
		decoded := domdoc.DecodeVector(b)
		if !decoded.OK() {
			return newViolation(def, ErrNotAVector), true
		}
		if decoded.Length != def.NumDimensions() {
			return newViolation(def, ErrDimensionMismatch).withActual(decoded.Length), true
		}
		return Violation{}, false
	}

	seq, ok := asSequence(value)
	if !ok {
		return newViolation(def, ErrNotAVector), true
	}
	if len(seq) != def.NumDimensions() {
		return newViolation(def, ErrDimensionMismatch).withActual(len(seq)), true
	}
	for _, el := range seq {
		if !domdoc.IsNumeric(el) {
			return newViolation(def, ErrNotNumeric).withActual(len(seq)), true
		}
	}
	return Violation{}, false
}

// asSequence accepts []any and typed slices such as []float32.
func asSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
