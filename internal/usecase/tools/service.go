// Package tools implements the agent-facing tool surface: access control,
// confirmation gating, per-call timeouts, telemetry and the tool operations.
package tools

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	logpkg "github.com/kailas-cloud/vecmcp/internal/logger"
	"github.com/kailas-cloud/vecmcp/internal/metrics"
)

// Tool names.
const (
	ToolConnect           = "connect"
	ToolInsertMany        = "insert-many"
	ToolVectorSearch      = "vector-search"
	ToolCreateIndex       = "create-index"
	ToolDropIndex         = "drop-index"
	ToolCollectionIndexes = "collection-indexes"
	ToolCount             = "count"
)

// PreviewVectorSearch is the preview feature that exposes vector search and
// embedding parameters.
const PreviewVectorSearch = "vectorSearch"

// Transports recorded in metrics.
const (
	TransportMCP    = "mcp"
	TransportHTTP   = "http"
	TransportDirect = "direct"
)

// Descriptor describes a tool for registration on a transport.
type Descriptor struct {
	Name        string
	Description string
	// Write tools are blocked in read-only mode.
	Write bool
	// Preview names the preview feature the tool requires, if any.
	Preview string
}

var descriptors = []Descriptor{
	{Name: ToolConnect, Description: "Connect to a Valkey/Redis cluster. Closes the current connection first."},
	{Name: ToolInsertMany, Description: "Insert documents into a collection, optionally generating embeddings for indexed vector fields.", Write: true},
	{Name: ToolVectorSearch, Description: "Run a nearest-neighbour search over the vector index covering a path.", Preview: PreviewVectorSearch},
	{Name: ToolCreateIndex, Description: "Create a vectorSearch or search index on a collection.", Write: true},
	{Name: ToolDropIndex, Description: "Drop a search index from a collection.", Write: true},
	{Name: ToolCollectionIndexes, Description: "List the search indexes of a collection."},
	{Name: ToolCount, Description: "Count the documents of a collection."},
}

// Policy is the access control configuration of the tool surface.
type Policy struct {
	ReadOnly             bool
	DisabledTools        []string
	ConfirmationRequired []string
	PreviewFeatures      []string
	// CallTimeout bounds every tool call. Zero disables the timeout.
	CallTimeout time.Duration
	// MaxDocumentsPerInsert bounds insert-many batches. Zero means unlimited.
	MaxDocumentsPerInsert int
}

// Service dispatches tool calls.
type Service struct {
	conns      Connections
	repos      Repositories
	catalog    Catalog
	validator  Validator
	embeddings Embeddings
	policy     Policy
	logger     *zap.Logger
}

// New creates a tool service.
func New(
	conns Connections,
	repos Repositories,
	catalog Catalog,
	validator Validator,
	embeddings Embeddings,
	policy Policy,
	logger *zap.Logger,
) *Service {
	return &Service{
		conns:      conns,
		repos:      repos,
		catalog:    catalog,
		validator:  validator,
		embeddings: embeddings,
		policy:     policy,
		logger:     logger,
	}
}

// Tools returns the descriptors of the tools enabled by the policy, in registration order.
func (s *Service) Tools() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if s.allowed(d) == nil {
			out = append(out, d)
		}
	}
	return out
}

func (s *Service) previewEnabled(feature string) bool {
	return slices.Contains(s.policy.PreviewFeatures, feature)
}

func (s *Service) allowed(d Descriptor) error {
	if slices.Contains(s.policy.DisabledTools, d.Name) {
		return fmt.Errorf("%s: %w", d.Name, domain.ErrToolDisabled)
	}
	if d.Write && s.policy.ReadOnly {
		return fmt.Errorf("%s is a write tool and the server is read-only: %w", d.Name, domain.ErrToolDisabled)
	}
	if d.Preview != "" && !s.previewEnabled(d.Preview) {
		return fmt.Errorf("%s requires the %s preview feature: %w", d.Name, d.Preview, domain.ErrToolDisabled)
	}
	return nil
}

func descriptor(name string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

type transportKey struct{}

// WithTransport tags the context with the transport a call arrived on.
func WithTransport(ctx context.Context, transport string) context.Context {
	return context.WithValue(ctx, transportKey{}, transport)
}

// TransportFrom returns the transport tag of ctx, TransportDirect when unset.
func TransportFrom(ctx context.Context) string {
	if t, ok := ctx.Value(transportKey{}).(string); ok {
		return t
	}
	return TransportDirect
}

// ConfirmationRequiredError carries the prompt shown to the caller before a
// gated tool runs.
type ConfirmationRequiredError struct {
	Tool    string
	Message string
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrConfirmationRequired.Error(), e.Message)
}

func (e *ConfirmationRequiredError) Unwrap() error { return domain.ErrConfirmationRequired }

// prompter builds a confirmation message. It runs only when confirmation is required.
type prompter func(ctx context.Context) string

// invoke runs fn under the access, confirmation, timeout, logging and metrics wrapper.
func invoke[R any](
	ctx context.Context, s *Service, tool string, confirmed bool, prompt prompter,
	fn func(ctx context.Context) (R, error),
) (R, error) {
	var zero R
	start := time.Now()
	transport := TransportFrom(ctx)
	ctx = logpkg.WithCall(ctx, s.logger, tool, uuid.NewString())
	ctx = logpkg.With(ctx, zap.String("transport", transport))
	log := logpkg.FromContext(ctx)

	if s.policy.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.policy.CallTimeout)
		defer cancel()
	}

	res, err := func() (R, error) {
		d, ok := descriptor(tool)
		if !ok {
			return zero, fmt.Errorf("unknown tool %q: %w", tool, domain.ErrNotFound)
		}
		if err := s.allowed(d); err != nil {
			return zero, err
		}
		if !confirmed && slices.Contains(s.policy.ConfirmationRequired, tool) {
			msg := fmt.Sprintf("%s requires confirmation. Call it again with confirm set to true to proceed.", tool)
			if prompt != nil {
				msg = prompt(ctx)
			}
			return zero, &ConfirmationRequiredError{Tool: tool, Message: msg}
		}
		return fn(ctx)
	}()

	status := "ok"
	if err != nil {
		status = ErrorCode(err)
	}
	metrics.ToolCallsTotal.WithLabelValues(tool, transport, status).Inc()
	metrics.ToolCallDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())

	fields := []zap.Field{
		zap.String("status", status),
		zap.Duration("latency", time.Since(start)),
	}
	switch {
	case err == nil:
		log.Info("tool_call", fields...)
	case errors.Is(err, domain.ErrConfirmationRequired), errors.Is(err, domain.ErrToolDisabled):
		log.Info("tool_call", fields...)
	case status == CodeInternal:
		log.Error("tool_call", append(fields, zap.Error(err))...)
	default:
		log.Warn("tool_call", append(fields, zap.Error(err))...)
	}
	return res, err
}

// OrUndefined turns a failed advisory lookup into nil. Only non-critical
// informational values go through it.
func OrUndefined[T any](v T, err error) *T {
	if err != nil {
		return nil
	}
	return &v
}
