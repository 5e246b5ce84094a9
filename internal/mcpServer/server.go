// Package mcpServer exposes book search and question answering as MCP tools
// so assistants can query the book directly.
package mcpServer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/BookRAG/internal/rag"
	"github.com/akolanti/BookRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "bookrag"

var ErrMissingAnswerService = errors.New("answer service is required")

type Server struct {
	answers rag.Service
	server  *mcp.Server
	logger  *logger_i.Logger
}

func NewServer(answers rag.Service, version string) (*Server, error) {
	if answers == nil {
		return nil, ErrMissingAnswerService
	}
	s := &Server{
		answers: answers,
		server:  mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
		logger:  logger_i.NewLogger("MCP Server"),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("MCP server shutdown", "err", err)
		}
	}()

	s.logger.Info("Serving MCP over HTTP", "address", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
