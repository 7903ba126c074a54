package domain

import (
	"fmt"
	"math"
)

// InputType tells the embedding model whether a text is a stored document or a query.
type InputType string

const (
	// InputTypeQuery marks texts embedded for searching.
	InputTypeQuery InputType = "query"
	// InputTypeDocument marks texts embedded for storage.
	InputTypeDocument InputType = "document"
)

// OutputDType is the numeric encoding requested for generated embeddings.
type OutputDType string

// Supported output encodings. Non-float encodings are still returned as float32 values.
const (
	OutputFloat   OutputDType = "float"
	OutputInt8    OutputDType = "int8"
	OutputUint8   OutputDType = "uint8"
	OutputBinary  OutputDType = "binary"
	OutputUbinary OutputDType = "ubinary"
)

// MaxOutputDimension bounds outputDimension to the largest index dimension.
const MaxOutputDimension = 8192

// EmbeddingParameters is a request-scoped value object for embedding generation.
type EmbeddingParameters struct {
	InputType       InputType   `json:"inputType,omitempty"`
	Model           string      `json:"model,omitempty"`
	OutputDimension int         `json:"outputDimension,omitempty"`
	OutputDType     OutputDType `json:"outputDType,omitempty"`
}

// ParseEmbeddingParameters builds parameters from loosely typed tool arguments.
// Keys outside the accepted set are dropped; accepted keys with bad values fail.
func ParseEmbeddingParameters(raw map[string]any) (EmbeddingParameters, error) {
	var p EmbeddingParameters
	for key, val := range raw {
		switch key {
		case "inputType":
			s, ok := val.(string)
			if !ok {
				return EmbeddingParameters{}, fmt.Errorf("inputType must be a string: %w", ErrInvalidArgument)
			}
			p.InputType = InputType(s)
		case "model":
			s, ok := val.(string)
			if !ok {
				return EmbeddingParameters{}, fmt.Errorf("model must be a string: %w", ErrInvalidArgument)
			}
			p.Model = s
		case "outputDimension":
			n, err := toInt(val)
			if err != nil {
				return EmbeddingParameters{}, fmt.Errorf("outputDimension: %w: %w", ErrInvalidArgument, err)
			}
			p.OutputDimension = n
		case "outputDType":
			s, ok := val.(string)
			if !ok {
				return EmbeddingParameters{}, fmt.Errorf("outputDType must be a string: %w", ErrInvalidArgument)
			}
			p.OutputDType = OutputDType(s)
		}
	}
	if err := p.Validate(); err != nil {
		return EmbeddingParameters{}, err
	}
	return p, nil
}

// Validate checks enumerated fields and bounds. Zero values mean "backend default".
func (p EmbeddingParameters) Validate() error {
	switch p.InputType {
	case "", InputTypeQuery, InputTypeDocument:
	default:
		return fmt.Errorf("inputType must be query or document, got %q: %w", p.InputType, ErrInvalidArgument)
	}
	switch p.OutputDType {
	case "", OutputFloat, OutputInt8, OutputUint8, OutputBinary, OutputUbinary:
	default:
		return fmt.Errorf("unsupported outputDType %q: %w", p.OutputDType, ErrInvalidArgument)
	}
	if p.OutputDimension < 0 || p.OutputDimension > MaxOutputDimension {
		return fmt.Errorf("outputDimension must be between 1 and %d: %w", MaxOutputDimension, ErrInvalidArgument)
	}
	return nil
}

// WithInputType returns a copy with the input type set.
func (p EmbeddingParameters) WithInputType(t InputType) EmbeddingParameters {
	p.InputType = t
	return p
}

// WithDefaults fills an empty model and dtype.
func (p EmbeddingParameters) WithDefaults(model string) EmbeddingParameters {
	if p.Model == "" {
		p.Model = model
	}
	if p.OutputDType == "" {
		p.OutputDType = OutputFloat
	}
	return p
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("parse number: %w", err)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("%T is not a number", v)
	}
}
