package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// statusPattern extracts the HTTP status from langchaingo's error text; the
// library does not expose it as a field.
var statusPattern = regexp.MustCompile(`status code: (\d{3})`)

// LangChainClient calls an OpenAI-compatible endpoint through langchaingo.
type LangChainClient struct {
	llm    llms.Model
	model  string
	logger *slog.Logger
}

// NewLangChainClient builds a langchaingo-backed client for model.
// Like NewOpenAIClient it fails fast when no API key is set.
func NewLangChainClient(cfg OpenAIClientConfig, model string, logger *slog.Logger) (*LangChainClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []lcopenai.Option{
		lcopenai.WithToken(apiKey),
		lcopenai.WithModel(model),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}

	llm, err := lcopenai.New(opts...)
	if err != nil {
		return nil, &GenerateError{Kind: ErrorKindConfig, Err: fmt.Errorf("create langchain openai client: %w", err)}
	}

	logger.Info("LangChain client configured", "model", model, "base_url", cfg.BaseURL)

	return &LangChainClient{llm: llm, model: model, logger: logger}, nil
}

// Name implements Processor.
func (c *LangChainClient) Name() string {
	return "langchain"
}

// Complete implements Processor.
func (c *LangChainClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	content := make([]llms.MessageContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case RoleUser:
			content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		default:
			return "", &GenerateError{Kind: ErrorKindConfig, Err: fmt.Errorf("unsupported message role %q", m.Role)}
		}
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.llm.GenerateContent(ctx, content,
		llms.WithModel(model),
		llms.WithTemperature(req.Temperature),
	)
	if err != nil {
		return "", classifyLangChainError(err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", &GenerateError{Kind: ErrorKindUpstream, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Content, nil
}

func classifyLangChainError(err error) error {
	if genErr, ok := classifyTransport(err); ok {
		return genErr
	}
	if errors.Is(err, lcopenai.ErrEmptyResponse) {
		return &GenerateError{Kind: ErrorKindUpstream, Err: err}
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return &GenerateError{Kind: ErrorKindUpstream, StatusCode: code, Err: err}
	}
	return &GenerateError{Kind: ErrorKindUnknown, Err: err}
}
