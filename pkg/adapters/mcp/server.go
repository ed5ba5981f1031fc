package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolsURI is the resource listing every tool as Markdown.
const ToolsURI = "elicitation://tools"

// Server exposes a tool registry over MCP. A tool called with arguments
// validates them directly; a tool called without arguments elicits the value
// from the client, one question per round.
type Server struct {
	registry  *tool.Registry
	mcpServer *server.MCPServer
	elicitor  Elicitor
	logger    *slog.Logger
	session   []elicit.Option
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithSessionOptions applies opts to every elicitation the server runs.
func WithSessionOptions(opts ...elicit.Option) Option {
	return func(s *Server) {
		s.session = append(s.session, opts...)
	}
}

// WithElicitor replaces the MCP server as the source of answers.
func WithElicitor(e Elicitor) Option {
	return func(s *Server) {
		s.elicitor = e
	}
}

// NewServer registers one MCP tool per registry entry.
func NewServer(registry *tool.Registry, name, version string, opts ...Option) *Server {
	s := &Server{
		registry: registry,
		mcpServer: server.NewMCPServer(name, strings.TrimSpace(version),
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, false),
			server.WithElicitation(),
		),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.elicitor = s.mcpServer
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	for _, t := range s.registry.List() {
		schema, err := json.Marshal(inputSchema(t.Schema))
		if err != nil {
			s.logger.Error("skipping tool with unencodable schema", "tool", t.Name, "err", err)
			continue
		}
		s.mcpServer.AddTool(mcp.NewToolWithRawSchema(t.Name, t.Description, schema), s.handler(t))
	}
}

// inputSchema makes every argument optional so the tool can be called
// empty. Non-object schemas are wrapped under "value".
func inputSchema(schema map[string]any) map[string]any {
	if !isObject(schema) {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{valueKey: schema},
		}
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		if k != "required" {
			out[k] = v
		}
	}
	return out
}

func (s *Server) handler(t tool.Tool) server.ToolHandlerFunc {
	wrapped := !isObject(t.Schema)
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		var (
			value any
			err   error
		)
		if len(args) == 0 {
			s.logger.Debug("eliciting tool input from client", "tool", t.Name)
			value, err = t.Call(ctx, NewChannel(s.elicitor), s.session...)
		} else {
			var raw any = args
			if wrapped {
				raw = args[valueKey]
			}
			value, err = t.Construct(raw)
		}
		if err != nil {
			s.logger.Warn("tool call failed", "tool", t.Name, "outcome", elicit.OutcomeOf(err), "err", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, err := json.Marshal(value)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ToolsURI, "Elicitation tools",
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		var b strings.Builder
		for _, t := range s.registry.List() {
			b.WriteString(t.Markdown())
			b.WriteString("\n")
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ToolsURI,
				MIMEType: "text/markdown",
				Text:     b.String(),
			},
		}, nil
	})
}
