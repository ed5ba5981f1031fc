package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/elicitation"
	httpAdapter "github.com/aretw0/elicitation/pkg/adapters/http"
	"github.com/aretw0/elicitation/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var (
	serveTransport string
	servePort      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tool catalog over MCP or HTTP",
	Long: `Exposes every registered type as a tool.

Supported Transports:
- stdio (default): MCP over Standard Input/Output. Ideal for local agents.
- sse: MCP over Server-Sent Events.
- http: JSON API with replayed answers, an OpenAPI document and /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		transport := a.cfg.Server.Transport
		if cmd.Flags().Changed("transport") {
			transport = serveTransport
		}
		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		switch transport {
		case "stdio", "sse":
			srv := mcp.NewServer(a.registry, "elicitation", elicitation.Version,
				mcp.WithLogger(a.logger),
				mcp.WithSessionOptions(a.sessionOptions(store)...),
			)
			if transport == "stdio" {
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				a.logger.Info("Starting MCP server (stdio)", "tools", len(a.registry.List()))
				return srv.ServeStdio()
			}
			a.logger.Info("Starting MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.logger.Info("MCP server stopped gracefully")
			return nil
		case "http":
			opts := []httpAdapter.Option{
				httpAdapter.WithStore(store),
				httpAdapter.WithLogger(a.logger),
				httpAdapter.WithSessionOptions(a.baseOptions()...),
				httpAdapter.WithInfo("elicitation", elicitation.Version),
			}
			if a.metrics != nil {
				opts = append(opts, httpAdapter.WithMetrics(a.metrics))
			}
			return serveHTTP(ctx, a, port, httpAdapter.NewHandler(a.registry, opts...))
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse, http", transport)
	},
}

func serveHTTP(ctx context.Context, a *app, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		a.logger.Info("HTTP server stopped gracefully")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "Transport: stdio, sse or http (overrides server.transport)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port for sse and http (overrides server.port)")
}
