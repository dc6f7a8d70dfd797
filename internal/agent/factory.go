package agent

import (
	"fmt"
	"log/slog"

	"github.com/ashureev/expert-consult/internal/config"
)

// NewProcessor builds the Processor selected by cfg.Provider.
func NewProcessor(cfg config.LLMConfig, logger *slog.Logger) (Processor, error) {
	clientCfg := OpenAIClientConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	}

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		client, err := NewOpenAIClient(clientCfg, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderLangChain:
		client, err := NewLangChainClient(clientCfg, cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, &GenerateError{Kind: ErrorKindConfig, Err: fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)}
	}
}

// NewServiceFromConfig wires a Processor and a Service from configuration.
func NewServiceFromConfig(cfg config.LLMConfig, logger *slog.Logger) (*Service, error) {
	processor, err := NewProcessor(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewService(processor, ServiceConfig{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	}, logger)
}
