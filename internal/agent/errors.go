package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrorKind classifies generator failures so callers can pick a message
// without inspecting error text.
type ErrorKind int

const (
	// ErrorKindUnknown is an unclassified failure.
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindConfig means the client is not usable as configured.
	ErrorKindConfig
	// ErrorKindTransport means the endpoint could not be reached.
	ErrorKindTransport
	// ErrorKindUpstream means the endpoint rejected the request or replied
	// with something unusable.
	ErrorKindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindConfig:
		return "config"
	case ErrorKindTransport:
		return "transport"
	case ErrorKindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

var (
	// ErrMissingAPIKey is returned by client constructors without credentials.
	ErrMissingAPIKey = &GenerateError{Kind: ErrorKindConfig, Err: errors.New("OPENAI_API_KEY is not set")}
	// ErrEmptyResponse means the model returned no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrUnknownProvider is returned for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// GenerateError is the typed failure returned across the generator boundary.
type GenerateError struct {
	Kind ErrorKind
	// StatusCode is the upstream HTTP status when known.
	StatusCode int
	Err        error
}

func (e *GenerateError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err, or ErrorKindUnknown.
func KindOf(err error) ErrorKind {
	var genErr *GenerateError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ErrorKindUnknown
}

// StatusCodeOf returns the upstream HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var genErr *GenerateError
	if errors.As(err, &genErr) {
		return genErr.StatusCode
	}
	return 0
}

// IsAuthError reports whether the upstream rejected the credentials.
func IsAuthError(err error) bool {
	code := StatusCodeOf(err)
	return code == 401 || code == 403
}

// classifyTransport wraps network-level failures and leaves others untouched.
func classifyTransport(err error) (*GenerateError, bool) {
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &GenerateError{Kind: ErrorKindTransport, Err: err}, true
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		return &GenerateError{Kind: ErrorKindTransport, Err: err}, true
	}
	return nil, false
}
