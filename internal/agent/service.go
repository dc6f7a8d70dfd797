package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ashureev/expert-consult/internal/domain"
)

// Service is the response generator: it pairs a persona instruction with the
// user's text and forwards both to the Processor.
type Service struct {
	processor   Processor
	model       string
	temperature float64
	logger      *slog.Logger
}

// ServiceConfig fixes the model parameters used for every request.
type ServiceConfig struct {
	Model       string
	Temperature float64
}

// NewService creates a generator over processor.
func NewService(processor Processor, cfg ServiceConfig, logger *slog.Logger) (*Service, error) {
	if processor == nil {
		return nil, &GenerateError{Kind: ErrorKindConfig, Err: errors.New("processor is required")}
	}
	if cfg.Model == "" {
		return nil, &GenerateError{Kind: ErrorKindConfig, Err: errors.New("model is required")}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		processor:   processor,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// BuildMessages returns the ordered [system instruction, user text] sequence.
func BuildMessages(userText string, persona domain.Persona) []Message {
	return []Message{
		{Role: RoleSystem, Content: persona.Instruction()},
		{Role: RoleUser, Content: userText},
	}
}

// Generate asks the model to answer userText as persona and returns the reply
// verbatim. Failures from the processor are returned, not recovered; untyped
// ones are wrapped as ErrorKindUnknown.
func (s *Service) Generate(ctx context.Context, userText string, persona domain.Persona) (string, error) {
	req := CompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages:    BuildMessages(userText, persona),
	}

	start := time.Now()
	answer, err := s.processor.Complete(ctx, req)
	if err != nil {
		var genErr *GenerateError
		if !errors.As(err, &genErr) {
			err = &GenerateError{Kind: ErrorKindUnknown, Err: err}
		}
		s.logger.Warn("Generation failed",
			"provider", s.processor.Name(),
			"persona", persona.Slug(),
			"kind", KindOf(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", err
	}

	s.logger.Info("Generation complete",
		"provider", s.processor.Name(),
		"persona", persona.Slug(),
		"input_length", len(userText),
		"answer_length", len(answer),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return answer, nil
}

// GenerateFor resolves personaID with the default fallback and calls Generate.
func (s *Service) GenerateFor(ctx context.Context, userText, personaID string) (string, error) {
	return s.Generate(ctx, userText, domain.ResolvePersona(personaID))
}

// GetStats returns the generator settings.
func (s *Service) GetStats() Stats {
	return Stats{
		Provider:    s.processor.Name(),
		Model:       s.model,
		Temperature: s.temperature,
	}
}
