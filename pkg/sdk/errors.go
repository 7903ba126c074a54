package vecmcp

import (
	"github.com/kailas-cloud/vecmcp/internal/domain"
	"github.com/kailas-cloud/vecmcp/internal/usecase/tools"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                 = domain.ErrNotFound
	ErrAlreadyExists            = domain.ErrAlreadyExists
	ErrInvalidArgument          = domain.ErrInvalidArgument
	ErrNotConnected             = domain.ErrNotConnected
	ErrConnectionFailed         = domain.ErrConnectionFailed
	ErrVectorSearchNotSupported = domain.ErrVectorSearchNotSupported
	ErrNoEmbeddingsProvider     = domain.ErrNoEmbeddingsProvider
	ErrVectorIndexNotFound      = domain.ErrVectorIndexNotFound
	ErrEmbeddingProviderError   = domain.ErrEmbeddingProviderError
	ErrValidationFailed         = domain.ErrValidationFailed
	ErrToolDisabled             = domain.ErrToolDisabled
	ErrConfirmationRequired     = domain.ErrConfirmationRequired
)

// Typed errors carrying details. Use errors.As() to extract.
type (
	ValidationFailedError     = domain.ValidationFailedError
	VectorIndexNotFoundError  = domain.VectorIndexNotFoundError
	ConfirmationRequiredError = tools.ConfirmationRequiredError
)

// ErrorCode returns the stable code of err as reported by the MCP and HTTP transports.
func ErrorCode(err error) string { return tools.ErrorCode(err) }
