// Package mcpserver exposes the operation registry as MCP tools over stdio
// or streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/mort-lab/excel-mcp/pkg/excelmcp/registry"
)

// Name is the server name reported during initialization.
const Name = "excel-mcp"

const shutdownTimeout = 10 * time.Second

const instructions = `Tools for reading and editing .xlsx workbooks on the server's file system.
Paths must end in .xlsx. Cell references use A1 notation; ranges use A1:C10.
Every tool returns a JSON object with "success" and "message"; failures add an "error" code.
Strings starting with "=" are formulas. Sheet names are case-sensitive when looked up.`

// Server serves registry tools over MCP.
type Server struct {
	mcp    *server.MCPServer
	reg    *registry.Registry
	logger *slog.Logger
}

// New registers every tool of reg on a new MCP server.
func New(reg *registry.Registry, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp: server.NewMCPServer(
			Name,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
			server.WithInstructions(instructions),
		),
		reg:    reg,
		logger: logger,
	}
	for _, t := range reg.Tools() {
		s.mcp.AddTool(Tool(t), s.handle(t.Name))
	}
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func (s *Server) handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := s.reg.Dispatch(ctx, name, req.GetArguments())
		body, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("failed to encode response", err), nil
		}
		res := mcp.NewToolResultText(string(body))
		res.IsError = !resp.OK()
		return res, nil
	}
}

// ServeStdio reads JSON-RPC messages from in and writes responses to out
// until ctx is cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("serving MCP over stdio")
	err := stdio.Listen(ctx, in, out)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)) {
		return nil
	}
	return err
}

// Router returns the HTTP handler: the MCP endpoint at /mcp and a health
// check at /healthz.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "tools": len(s.reg.Tools())})
	})
	r.Handle("/mcp", server.NewStreamableHTTPServer(s.mcp, server.WithLogger(logAdapter{s.logger})))
	return r
}

// ServeHTTP listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving MCP over http", "addr", addr, "endpoint", "/mcp")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// logAdapter routes mcp-go transport logs into slog.
type logAdapter struct {
	logger *slog.Logger
}

func (l logAdapter) Infof(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l logAdapter) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
