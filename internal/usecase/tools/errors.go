package tools

import (
	"context"
	"errors"

	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// Stable error codes returned to tool callers.
const (
	CodeToolDisabled             = "tool_disabled"
	CodeConfirmationRequired     = "confirmation_required"
	CodeInvalidArgument          = "invalid_argument"
	CodeNotConnected             = "not_connected"
	CodeConnectionFailed         = "connection_failed"
	CodeVectorSearchNotSupported = "vector_search_not_supported"
	CodeNoEmbeddingsProvider     = "no_embeddings_provider"
	CodeVectorIndexNotFound      = "vector_index_not_found"
	CodeValidationFailed         = "validation_failed"
	CodeEmbeddingProviderError   = "embedding_provider_error"
	CodeAlreadyExists            = "already_exists"
	CodeNotFound                 = "not_found"
	CodeTimeout                  = "timeout"
	CodeInternal                 = "internal_error"
)

var errorCodes = []struct {
	sentinel error
	code     string
}{
	{domain.ErrToolDisabled, CodeToolDisabled},
	{domain.ErrConfirmationRequired, CodeConfirmationRequired},
	{domain.ErrInvalidArgument, CodeInvalidArgument},
	{domain.ErrNotConnected, CodeNotConnected},
	{domain.ErrConnectionFailed, CodeConnectionFailed},
	{domain.ErrVectorSearchNotSupported, CodeVectorSearchNotSupported},
	{domain.ErrNoEmbeddingsProvider, CodeNoEmbeddingsProvider},
	{domain.ErrVectorIndexNotFound, CodeVectorIndexNotFound},
	{domain.ErrValidationFailed, CodeValidationFailed},
	{domain.ErrEmbeddingProviderError, CodeEmbeddingProviderError},
	{domain.ErrAlreadyExists, CodeAlreadyExists},
	{domain.ErrNotFound, CodeNotFound},
	{context.DeadlineExceeded, CodeTimeout},
}

// ErrorCode maps an error to its stable code.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.sentinel) {
			return ec.code
		}
	}
	return CodeInternal
}

// SafeMessage returns the error message when it carries a known sentinel,
// otherwise a generic message that does not expose internals.
func SafeMessage(err error) string {
	if ErrorCode(err) == CodeInternal {
		return "internal error"
	}
	return err.Error()
}
