package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foomo/devguide/api"
	"github.com/foomo/devguide/config"
	"github.com/foomo/devguide/content"
	"github.com/foomo/devguide/mcp"
	"github.com/foomo/devguide/metrics"
	"github.com/foomo/devguide/router"
	"github.com/foomo/devguide/service"
	"github.com/foomo/devguide/session"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:], nil)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	table := router.DefaultTable()
	if cfg.TableFile != "" {
		var err error
		if table, err = router.LoadTableFile(cfg.TableFile); err != nil {
			return err
		}
	}
	r := router.New(table)

	var store content.Store = content.Embedded()
	if cfg.ContentURL != "" {
		logger.Info("Scraping documents", zap.String("url", cfg.ContentURL), zap.String("selector", cfg.ContentSelector))
		store = content.NewHTTPStore(http.DefaultClient, cfg.ContentURL, cfg.ContentSelector)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc := service.NewService(logger, r, store, metrics.New(registry))
	s := mcp.NewServer(http.DefaultClient, svc)

	if cfg.HTTPAddr != "" {
		return serveHTTP(ctx, cfg, logger, r, svc, s, registry)
	}

	if cfg.Stdio {
		logger.Info("Starting MCP server in stdio mode...")
	} else {
		logger.Info("Starting MCP server in stdio mode (default)...")
	}
	return server.ServeStdio(s)
}

func serveHTTP(ctx context.Context, cfg config.Config, logger *zap.Logger, r *router.Router, svc service.Service, s *server.MCPServer, registry *prometheus.Registry) error {
	sessions := session.NewStore(r, cfg.MaxSessions, cfg.SessionTTL)
	stopCleanup := sessions.StartCleanup(time.Minute)
	defer stopCleanup()

	sseServer := mcp.NewSSEServer(logger, nil, sessions)
	defer sseServer.Close()

	apiServer := api.NewServer(logger, svc, sessions, sseServer)
	mcpHandler := mcp.NewHandler(s, sseServer, cfg.MCPEndpoint)

	root := chi.NewRouter()
	root.Handle(cfg.MCPEndpoint, mcpHandler)
	root.Handle(cfg.MCPEndpoint+"/*", mcpHandler)
	root.Handle("/metrics", metrics.Handler(registry))
	root.Handle("/healthz", apiServer)
	root.Handle("/api/*", apiServer)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting MCP server on HTTP address", zap.String("addr", cfg.HTTPAddr), zap.String("endpoint", cfg.MCPEndpoint))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
