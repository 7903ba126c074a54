package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/bootstrap"
	"github.com/kailas-cloud/vecmcp/internal/config"
	"github.com/kailas-cloud/vecmcp/internal/connection"
	"github.com/kailas-cloud/vecmcp/internal/domain"
	logpkg "github.com/kailas-cloud/vecmcp/internal/logger"
	"github.com/kailas-cloud/vecmcp/internal/metrics"
	"github.com/kailas-cloud/vecmcp/internal/repository/embcache"
	"github.com/kailas-cloud/vecmcp/internal/repository/searchindex"
	chiTransport "github.com/kailas-cloud/vecmcp/internal/transport/chi"
	mcpTransport "github.com/kailas-cloud/vecmcp/internal/transport/mcp"
	openaiEmb "github.com/kailas-cloud/vecmcp/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/vecmcp/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/vecmcp/internal/usecase/health"
	"github.com/kailas-cloud/vecmcp/internal/usecase/tools"
	"github.com/kailas-cloud/vecmcp/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vecmcp server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("mcp_stdio", cfg.Transport.MCPStdio),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("read_only", cfg.Tools.ReadOnly),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := bootstrap.Options{
		Driver:    cfg.Database.Driver,
		KeyPrefix: cfg.Storage.KeyPrefix,
		HNSW: searchindex.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		},
		ReadinessTimeout:  time.Duration(cfg.Database.ReadinessTimeout) * time.Second,
		DisableValidation: cfg.Tools.DisableEmbeddingsValidation,
		Policy: tools.Policy{
			ReadOnly:              cfg.Tools.ReadOnly,
			DisabledTools:         cfg.Tools.DisabledTools,
			ConfirmationRequired:  cfg.Tools.ConfirmationRequiredTools,
			PreviewFeatures:       cfg.Tools.PreviewFeatures,
			CallTimeout:           cfg.Tools.CallTimeout(),
			MaxDocumentsPerInsert: cfg.Tools.MaxDocumentsPerInsert,
		},
	}

	// One active cluster at a time, swapped by the connect tool
	conns := bootstrap.NewManager(opts, logger)

	provider, base := buildEmbedder(cfg.Embedding, conns, cfg.Storage.KeyPrefix, logger)
	app := bootstrap.New(conns, provider, bootstrap.HealthCheckerFor(base), opts, logger)
	defer app.Close()

	if len(cfg.Database.Addrs) > 0 {
		target := connection.Target{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		}
		if err := conns.Connect(ctx, target); err != nil {
			// The server stays usable: the agent can still call connect.
			logger.Warn("Initial connection failed", zap.Stringer("target", target), zap.Error(err))
		} else {
			logger.Info("Connected to database", zap.Stringer("target", target))
		}
	}

	var srv *http.Server
	if cfg.HTTP.Port > 0 {
		srv = newHTTPServer(cfg, app.Tools, app.Health, logger)
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", zap.Error(err))
				stop()
			}
		}()
	}

	if cfg.Transport.MCPStdio {
		mcpSrv := mcpTransport.NewServer(app.Tools, logger)
		go func() {
			if err := mcpSrv.Serve(ctx); err != nil {
				logger.Error("MCP server error", zap.Error(err))
			}
			// stdin closed: the client is gone.
			stop()
		}()
	}

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
}

func newHTTPServer(
	cfg config.Config,
	toolSvc *tools.Service,
	healthSvc *healthuc.Service,
	logger *zap.Logger,
) *http.Server {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	names := make([]string, 0, 8)
	for _, d := range toolSvc.Tools() {
		names = append(names, d.Name)
	}
	r.Use(metrics.Middleware(names...))
	chiTransport.NewServer(toolSvc, healthSvc, logger).Register(r)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// It also returns the bare provider for health checks. Both are nil when no provider is configured.
func buildEmbedder(
	cfg config.EmbeddingConfig,
	conns *connection.Manager,
	prefix string,
	logger *zap.Logger,
) (embedder, base domain.Embedder) {
	provider, err := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		ProxyURL: cfg.ProxyURL,
		Model:    cfg.Model,
		Provider: cfg.Provider,
		Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:   logger,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNoEmbeddingsProvider) {
			logger.Error("Failed to create embeddings provider", zap.Error(err))
		}
		logger.Info("Embedding generation disabled")
		return nil, nil
	}

	embedder = provider
	if cfg.Cache.Enabled {
		embedder = embcache.New(provider, bootstrap.ActiveStore{Conns: conns}, embcache.Options{
			Prefix:  prefix,
			TTL:     time.Duration(cfg.Cache.TTLSec) * time.Second,
			Lookups: metrics.EmbeddingCacheLookupsTotal,
			Logger:  logger,
		})
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, logger).
		WithBatchSize(cfg.MaxBatchSize)

	// Instruction prefix (outermost: cache key includes instruction)
	instructions := map[domain.InputType]string{}
	if cfg.DocumentInstruction != "" {
		instructions[domain.InputTypeDocument] = cfg.DocumentInstruction
	}
	if cfg.QueryInstruction != "" {
		instructions[domain.InputTypeQuery] = cfg.QueryInstruction
	}
	if len(instructions) > 0 {
		embedder = domain.NewInstructionEmbedder(embedder, instructions)
	}

	logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return embedder, provider
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    tools.CodeInternal,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line: one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
