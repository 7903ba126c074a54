// Package chi exposes the tool surface over HTTP: POST /tools/{name} runs a
// tool with a JSON argument object, plus health and metrics endpoints.
package chi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/domain"
	healthuc "github.com/kailas-cloud/vecmcp/internal/usecase/health"
	"github.com/kailas-cloud/vecmcp/internal/usecase/tools"
)

// maxBodyBytes bounds a tool call request body.
const maxBodyBytes = 16 << 20

// ToolService runs tools by name.
type ToolService interface {
	Tools() []tools.Descriptor
	Dispatch(ctx context.Context, name string, raw []byte) (any, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server serves tool calls over HTTP.
type Server struct {
	tools         ToolService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP tool server.
func NewServer(toolSvc ToolService, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		tools:  toolSvc,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		confirmationHandler,
		validationFailedHandler,
		sentinelHandler(domain.ErrToolDisabled, http.StatusForbidden, tools.CodeToolDisabled),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, tools.CodeInvalidArgument),
		sentinelHandler(domain.ErrNotConnected, http.StatusServiceUnavailable, tools.CodeNotConnected),
		sentinelHandler(domain.ErrConnectionFailed, http.StatusBadGateway, tools.CodeConnectionFailed),
		sentinelHandler(domain.ErrVectorSearchNotSupported, http.StatusNotImplemented, tools.CodeVectorSearchNotSupported),
		sentinelHandler(domain.ErrNoEmbeddingsProvider, http.StatusNotImplemented, tools.CodeNoEmbeddingsProvider),
		sentinelHandler(domain.ErrVectorIndexNotFound, http.StatusNotFound, tools.CodeVectorIndexNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, tools.CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, tools.CodeAlreadyExists),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, tools.CodeNotFound),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, tools.CodeTimeout),
	}
	return s
}

// Register mounts the routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/tools", s.ListTools)
	r.Post("/tools/{name}", s.CallTool)
}

// ListTools handles GET /tools.
func (s *Server) ListTools(w http.ResponseWriter, _ *http.Request) {
	type toolInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	ds := s.tools.Tools()
	out := make([]toolInfo, 0, len(ds))
	for _, d := range ds {
		out = append(out, toolInfo{Name: d.Name, Description: d.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

// CallTool handles POST /tools/{name}.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, tools.CodeInvalidArgument, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, tools.CodeInvalidArgument, "invalid request body")
		return
	}

	ctx := tools.WithTransport(r.Context(), tools.TransportHTTP)
	res, err := s.tools.Dispatch(ctx, name, body)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// confirmationHandler answers a gated call with the confirmation prompt.
func confirmationHandler(w http.ResponseWriter, err error, _ string) bool {
	var cre *tools.ConfirmationRequiredError
	if !errors.As(err, &cre) {
		return false
	}
	writeJSON(w, http.StatusPreconditionRequired, map[string]any{
		"code":         tools.CodeConfirmationRequired,
		"message":      cre.Message,
		"tool":         cre.Tool,
		"confirmation": true,
	})
	return true
}

// validationFailedHandler lists violations per document position.
func validationFailedHandler(w http.ResponseWriter, err error, msg string) bool {
	var vfe *domain.ValidationFailedError
	if !errors.As(err, &vfe) {
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"code":      tools.CodeValidationFailed,
		"message":   msg,
		"documents": vfe.Documents,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := tools.SafeMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, tools.CodeInternal, "internal error")
}
