package main

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/expert-consult/internal/agent"
	"github.com/ashureev/expert-consult/internal/api"
	"github.com/ashureev/expert-consult/internal/config"
	"github.com/ashureev/expert-consult/internal/health"
	"github.com/ashureev/expert-consult/internal/middleware"
	"github.com/ashureev/expert-consult/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// application is the wired server: router, generator state and the optional
// gRPC health server.
type application struct {
	router     http.Handler
	generator  api.Generator
	grpcHealth *health.Server
}

// ready reports whether consultations can reach the model.
func (a *application) ready() bool {
	return a.generator != nil
}

// newApplication builds the generator and routes. A config failure (e.g. no
// API key) leaves the server up in degraded mode; every submission then
// reports it. Any other generator failure is returned.
func newApplication(cfg *config.Config, logger *slog.Logger, conversationLogger agent.ConversationLogger) (*application, error) {
	var generator api.Generator
	svc, genErr := agent.NewServiceFromConfig(cfg.LLM, logger)
	switch {
	case genErr == nil:
		generator = svc
		logger.Info("LLM client initialized", "provider", svc.GetStats().Provider)
	case agent.KindOf(genErr) == agent.ErrorKindConfig:
		logger.Warn("LLM client unavailable, consultations will fail", "error", genErr)
	default:
		return nil, genErr
	}

	// Initialize handlers.
	consultHandler := api.NewHandler(generator, web.Templates(), api.Options{
		GeneratorErr:       genErr,
		ConversationLogger: conversationLogger,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})
	healthHandler := api.NewHealthHandler(generator)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.SecurityHeaders)

	healthHandler.RegisterHealth(r)
	consultHandler.RegisterRoutes(r)
	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	app := &application{router: r, generator: generator}
	if cfg.GRPCHealthAddr != "" {
		app.grpcHealth = health.NewServer(logger)
		app.grpcHealth.SetServing(app.ready())
	}
	return app, nil
}
