package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ashureev/expert-consult/internal/domain"
)

type fakeProcessor struct {
	mu     sync.Mutex
	calls  []CompletionRequest
	answer string
	err    error
}

func (f *fakeProcessor) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.answer, f.err
}

func (f *fakeProcessor) Name() string { return "fake" }

func (f *fakeProcessor) Calls() []CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CompletionRequest(nil), f.calls...)
}

func newTestService(t *testing.T, p Processor) *Service {
	t.Helper()
	svc, err := NewService(p, ServiceConfig{Model: "gpt-4o-mini", Temperature: 0.7}, nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestGenerateSendsSystemThenUserMessage(t *testing.T) {
	t.Parallel()

	for _, persona := range domain.Personas() {
		fake := &fakeProcessor{answer: "ok"}
		svc := newTestService(t, fake)

		if _, err := svc.Generate(context.Background(), "Give me a sales pitch", persona); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		calls := fake.Calls()
		if len(calls) != 1 {
			t.Fatalf("expected exactly one remote call, got %d", len(calls))
		}
		msgs := calls[0].Messages
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if msgs[0].Role != RoleSystem || msgs[0].Content != persona.Instruction() {
			t.Fatalf("first message should be the %s instruction, got %+v", persona, msgs[0])
		}
		if msgs[1].Role != RoleUser || msgs[1].Content != "Give me a sales pitch" {
			t.Fatalf("second message should be the user text, got %+v", msgs[1])
		}
		if calls[0].Model != "gpt-4o-mini" || calls[0].Temperature != 0.7 {
			t.Fatalf("unexpected model parameters: %+v", calls[0])
		}
	}
}

func TestGenerateReturnsAnswerVerbatim(t *testing.T) {
	t.Parallel()

	want := "  Run 3x/week...\n\n- long run on Sunday  "
	svc := newTestService(t, &fakeProcessor{answer: want})

	got, err := svc.Generate(context.Background(), "How do I train for a marathon in 3 months?", domain.DefaultPersona)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != want {
		t.Fatalf("answer was modified: got %q want %q", got, want)
	}
}

func TestGeneratePropagatesTypedError(t *testing.T) {
	t.Parallel()

	upstream := &GenerateError{Kind: ErrorKindUpstream, StatusCode: 401, Err: errors.New("invalid api key")}
	svc := newTestService(t, &fakeProcessor{err: upstream})

	got, err := svc.Generate(context.Background(), "hello", domain.PersonaSalesConsultant)
	if got != "" {
		t.Fatalf("expected no answer on failure, got %q", got)
	}
	if err != upstream {
		t.Fatalf("expected typed error to propagate unchanged, got %v", err)
	}
	if !IsAuthError(err) {
		t.Fatal("expected auth error classification")
	}
}

func TestGenerateWrapsUntypedError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	svc := newTestService(t, &fakeProcessor{err: cause})

	_, err := svc.Generate(context.Background(), "hello", domain.DefaultPersona)
	if !errors.Is(err, cause) {
		t.Fatalf("expected original error to be reachable, got %v", err)
	}
	if KindOf(err) != ErrorKindUnknown {
		t.Fatalf("expected unknown kind, got %s", KindOf(err))
	}
}

func TestGenerateForFallsBackToDefaultPersona(t *testing.T) {
	t.Parallel()

	fake := &fakeProcessor{answer: "ok"}
	svc := newTestService(t, fake)

	if _, err := svc.GenerateFor(context.Background(), "hi", "not-a-persona"); err != nil {
		t.Fatalf("GenerateFor failed: %v", err)
	}
	calls := fake.Calls()
	if got := calls[0].Messages[0].Content; got != domain.DefaultPersona.Instruction() {
		t.Fatalf("expected default instruction, got %q", got)
	}
}

func TestNewServiceValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, ServiceConfig{Model: "m"}, nil); KindOf(err) != ErrorKindConfig {
		t.Fatalf("expected config error for nil processor, got %v", err)
	}
	if _, err := NewService(&fakeProcessor{}, ServiceConfig{}, nil); KindOf(err) != ErrorKindConfig {
		t.Fatalf("expected config error for empty model, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	stats := newTestService(t, &fakeProcessor{}).GetStats()
	if stats.Provider != "fake" || stats.Model != "gpt-4o-mini" || stats.Temperature != 0.7 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
