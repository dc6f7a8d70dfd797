// Package api provides HTTP handlers for the consultation page and JSON API.
package api

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ashureev/expert-consult/internal/agent"
	"github.com/ashureev/expert-consult/internal/domain"
	"github.com/ashureev/expert-consult/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20

// Generator produces an expert answer. Implemented by *agent.Service.
type Generator interface {
	Generate(ctx context.Context, userText string, persona domain.Persona) (string, error)
	GetStats() agent.Stats
}

// Handler serves the consultation form and API.
type Handler struct {
	generator      Generator
	templates      *template.Template
	generatorErr   error
	log            agent.ConversationLogger
	allowedOrigins []string
	maxBodySize    int64
}

// Options configures optional Handler behaviour.
type Options struct {
	// GeneratorErr is reported for every consultation when generator is nil.
	GeneratorErr       error
	ConversationLogger agent.ConversationLogger
	AllowedOrigins     []string
	MaxRequestBodySize int64
}

// NewHandler creates a Handler around generator, rendering pages with templates.
func NewHandler(generator Generator, templates *template.Template, opts Options) *Handler {
	if opts.ConversationLogger == nil {
		opts.ConversationLogger, _ = agent.NewConversationLogger(agent.ConversationLogConfig{}, nil)
	}
	if opts.MaxRequestBodySize <= 0 {
		opts.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if generator == nil && opts.GeneratorErr == nil {
		opts.GeneratorErr = agent.ErrMissingAPIKey
	}
	return &Handler{
		generator:      generator,
		generatorErr:   opts.GeneratorErr,
		templates:      templates,
		log:            opts.ConversationLogger,
		allowedOrigins: opts.AllowedOrigins,
		maxBodySize:    opts.MaxRequestBodySize,
	}
}

// RegisterRoutes registers the page and API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ShowForm)
	r.Post("/", h.SubmitForm)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(h.allowedOrigins))
		r.Get("/personas", h.ListPersonas)
		r.Post("/consult", h.Consult)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode JSON response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
