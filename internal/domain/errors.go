package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument signals a malformed tool argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotConnected signals that no database connection is established.
	ErrNotConnected = errors.New("not connected to a database")
	// ErrConnectionFailed signals that a connect attempt was rejected by the cluster.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrVectorSearchNotSupported signals that the connected cluster lacks vector search.
	ErrVectorSearchNotSupported = errors.New("vector search is not supported by the connected cluster")
	// ErrNoEmbeddingsProvider signals that no embedding backend is configured.
	ErrNoEmbeddingsProvider = errors.New("no embeddings provider configured")
	// ErrVectorIndexNotFound signals that no vector index covers the requested path.
	ErrVectorIndexNotFound = errors.New("vector search index not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")

	// ErrValidationFailed signals that documents violate vector index definitions.
	ErrValidationFailed = errors.New("vector field validation failed")
	// ErrToolDisabled signals a tool blocked by configuration.
	ErrToolDisabled = errors.New("tool is disabled")
	// ErrConfirmationRequired signals a tool call that must be confirmed first.
	ErrConfirmationRequired = errors.New("confirmation required")
)

// VectorIndexNotFoundError wraps ErrVectorIndexNotFound with the namespace and path.
type VectorIndexNotFoundError struct {
	Namespace Namespace
	Path      string
}

func (e *VectorIndexNotFoundError) Error() string {
	return fmt.Sprintf("%s: no vector index on %s covers path %q",
		ErrVectorIndexNotFound.Error(), e.Namespace, e.Path)
}

func (e *VectorIndexNotFoundError) Unwrap() error { return ErrVectorIndexNotFound }

// ValidationFailedError carries rendered violations per document position.
type ValidationFailedError struct {
	// Documents maps the batch position to rendered violation lines.
	Documents map[int][]string
}

func (e *ValidationFailedError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidationFailed.Error())
	positions := make([]int, 0, len(e.Documents))
	for i := range e.Documents {
		positions = append(positions, i)
	}
	sort.Ints(positions)
	for _, i := range positions {
		fmt.Fprintf(&b, "; document %d: %s", i, strings.Join(e.Documents[i], ", "))
	}
	return b.String()
}

func (e *ValidationFailedError) Unwrap() error { return ErrValidationFailed }
