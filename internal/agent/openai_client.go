package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	client openai.Client
	logger *slog.Logger
}

// OpenAIClientConfig holds the credentials and endpoint for OpenAIClient.
type OpenAIClientConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint; empty means the library default.
	BaseURL string
}

// NewOpenAIClient builds a client and fails fast when no API key is set.
// Retries are disabled so each call performs exactly one request.
func NewOpenAIClient(cfg OpenAIClientConfig, logger *slog.Logger) (*OpenAIClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	logger.Info("OpenAI client configured", "base_url", cfg.BaseURL)

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		logger: logger,
	}, nil
}

// Name implements Processor.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Complete implements Processor.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		default:
			return "", &GenerateError{Kind: ErrorKindConfig, Err: fmt.Errorf("unsupported message role %q", m.Role)}
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(completion.Choices) == 0 {
		return "", &GenerateError{Kind: ErrorKindUpstream, Err: ErrEmptyResponse}
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", &GenerateError{Kind: ErrorKindUpstream, Err: ErrEmptyResponse}
	}

	c.logger.Debug("OpenAI completion received",
		"model", completion.Model,
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
	)
	return content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &GenerateError{Kind: ErrorKindUpstream, StatusCode: apiErr.StatusCode, Err: err}
	}
	if genErr, ok := classifyTransport(err); ok {
		return genErr
	}
	return &GenerateError{Kind: ErrorKindUnknown, Err: err}
}
