// Expert Consult - two-persona LLM consultation server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/expert-consult/internal/agent"
	"github.com/ashureev/expert-consult/internal/config"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
	)

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:   cfg.ConversationLog.Enabled,
		Dir:       cfg.ConversationLog.Dir,
		QueueSize: cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := conversationLogger.Close(); closeErr != nil {
			slog.Error("Failed to close conversation logger", "error", closeErr)
		}
	}()

	app, err := newApplication(cfg, logger, conversationLogger)
	if err != nil {
		slog.Error("Failed to initialize LLM client", "error", err)
		_ = conversationLogger.Close()
		os.Exit(1)
	}

	// Generation calls have no deadline of their own, so no WriteTimeout.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     app.router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Optional gRPC health endpoint.
	if app.grpcHealth != nil {
		g.Go(func() error {
			return app.grpcHealth.ListenAndServe(gctx, cfg.GRPCHealthAddr)
		})
	}

	// Wait for a shutdown signal or a server failure.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		_ = conversationLogger.Close()
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
