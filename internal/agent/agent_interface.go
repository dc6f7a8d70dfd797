package agent

import "context"

// Processor sends one message sequence to a remote text-generation endpoint.
// Implemented by OpenAIClient and LangChainClient.
type Processor interface {
	// Complete performs one blocking call and returns the generated text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Name identifies the provider in logs and health output.
	Name() string
}

// Ensure the clients implement Processor.
var (
	_ Processor = (*OpenAIClient)(nil)
	_ Processor = (*LangChainClient)(nil)
)
