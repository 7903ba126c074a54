// Package mcp registers the tool surface on a Model Context Protocol server
// speaking JSON-RPC over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/localrivet/gomcp/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecmcp/internal/usecase/tools"
	"github.com/kailas-cloud/vecmcp/internal/version"
)

// ServerName is announced to MCP clients.
const ServerName = "vecmcp"

// Server binds the tool service to a gomcp server.
type Server struct {
	tools  *tools.Service
	logger *zap.Logger
	base   context.Context
	mcp    server.Server
	names  []string
}

// NewServer registers every tool enabled by the service policy.
func NewServer(svc *tools.Service, logger *zap.Logger) *Server {
	s := &Server{tools: svc, logger: logger, base: context.Background()}
	srv := server.NewServer(ServerName)

	for _, d := range svc.Tools() {
		h := s.handlerFor(d.Name)
		if h == nil {
			logger.Warn("tool has no MCP binding", zap.String("tool", d.Name))
			continue
		}
		srv = srv.Tool(d.Name, d.Description, h)
		s.names = append(s.names, d.Name)
	}
	s.mcp = srv
	return s
}

// Tools returns the names of the registered tools.
func (s *Server) Tools() []string { return s.names }

// Serve runs the stdio transport until stdin closes. Tool calls inherit ctx.
func (s *Server) Serve(ctx context.Context) error {
	s.base = ctx
	s.logger.Info("Starting MCP stdio server",
		zap.String("version", version.String()),
		zap.Strings("tools", s.names),
	)
	if err := s.mcp.AsStdio().Run(); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) handlerFor(name string) any {
	switch name {
	case tools.ToolConnect:
		return bind(s, s.tools.Connect)
	case tools.ToolInsertMany:
		return bind(s, s.tools.InsertMany)
	case tools.ToolVectorSearch:
		return bind(s, s.tools.VectorSearch)
	case tools.ToolCreateIndex:
		return bind(s, s.tools.CreateIndex)
	case tools.ToolDropIndex:
		return bind(s, s.tools.DropIndex)
	case tools.ToolCollectionIndexes:
		return bind(s, s.tools.CollectionIndexes)
	case tools.ToolCount:
		return bind(s, s.tools.Count)
	default:
		return nil
	}
}

func (s *Server) callContext() context.Context {
	return tools.WithTransport(s.base, tools.TransportMCP)
}

// bind adapts a tool method to the gomcp handler signature.
func bind[A any, R any](s *Server, fn func(context.Context, A) (R, error)) func(*server.Context, A) (R, error) {
	return func(_ *server.Context, args A) (R, error) {
		res, err := fn(s.callContext(), args)
		if err != nil {
			var zero R
			return zero, toolError(err)
		}
		return res, nil
	}
}

// toolError renders an error for the agent: the stable code plus a message
// that never exposes internals. Confirmation prompts pass through verbatim.
func toolError(err error) error {
	var cre *tools.ConfirmationRequiredError
	if errors.As(err, &cre) {
		return fmt.Errorf("%s: %s", tools.CodeConfirmationRequired, cre.Message)
	}
	return fmt.Errorf("%s: %s", tools.ErrorCode(err), tools.SafeMessage(err))
}
