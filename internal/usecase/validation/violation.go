package validation

import (
	"fmt"

	"github.com/kailas-cloud/vecmcp/internal/domain/vectorindex"
)

// ErrorKind names what is wrong with a vector field.
type ErrorKind string

// Violation kinds.
const (
	ErrDimensionMismatch    ErrorKind = "dimension-mismatch"
	ErrQuantizationMismatch ErrorKind = "quantization-mismatch"
	ErrNotAVector           ErrorKind = "not-a-vector"
	ErrNotNumeric           ErrorKind = "not-numeric"
)

// Unknown is reported for actual values that could not be determined.
const Unknown = "unknown"

// Violation describes one vector field that breaks its index definition.
type Violation struct {
	Path                  string                   `json:"path"`
	ExpectedNumDimensions int                      `json:"expectedNumDimensions"`
	ExpectedQuantization  vectorindex.Quantization `json:"expectedQuantization"`
	// ActualNumDimensions is an int or Unknown.
	ActualNumDimensions any `json:"actualNumDimensions"`
	// ActualQuantization echoes the expected quantization or is Unknown.
	ActualQuantization any       `json:"actualQuantization"`
	Error              ErrorKind `json:"error"`
}

// String renders the violation as a single line.
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (expected %d dimensions, %s; got %v, %v)",
		v.Path, v.Error, v.ExpectedNumDimensions, v.ExpectedQuantization,
		v.ActualNumDimensions, v.ActualQuantization)
}

func newViolation(def vectorindex.Definition, kind ErrorKind) Violation {
	return Violation{
		Path:                  def.Path(),
		ExpectedNumDimensions: def.NumDimensions(),
		ExpectedQuantization:  def.Quantization(),
		ActualNumDimensions:   Unknown,
		ActualQuantization:    Unknown,
		Error:                 kind,
	}
}

func (v Violation) withActual(n int) Violation {
	v.ActualNumDimensions = n
	v.ActualQuantization = v.ExpectedQuantization
	return v
}
