package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/expert-consult/internal/agent"
	"github.com/ashureev/expert-consult/internal/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApplication(t *testing.T, apiKey string) *application {
	t.Helper()

	cfg := config.Default()
	cfg.LLM.APIKey = apiKey
	cfg.GRPCHealthAddr = "bufnet"

	convLog, err := agent.NewConversationLogger(agent.ConversationLogConfig{}, nil)
	if err != nil {
		t.Fatalf("NewConversationLogger failed: %v", err)
	}
	app, err := newApplication(cfg, discardLogger(), convLog)
	if err != nil {
		t.Fatalf("newApplication failed: %v", err)
	}
	return app
}

func grpcHealthStatus(t *testing.T, app *application) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.grpcHealth.Serve(ctx, lis) }()
	defer func() {
		cancel()
		<-done
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer conn.Close()

	checkCtx, checkCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer checkCancel()
	resp, err := healthpb.NewHealthClient(conn).Check(checkCtx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	return resp.GetStatus()
}

func TestApplicationDegradedWithoutAPIKey(t *testing.T) {
	app := newTestApplication(t, "")

	if app.ready() {
		t.Fatal("expected application not to be ready without an API key")
	}

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from /health, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected form page to render, got %d", rec.Code)
	}

	form := url.Values{"persona": {"A"}, "message": {"hello"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), agent.ErrMissingAPIKey.Error()) {
		t.Fatalf("expected missing key detail in page, got %s", rec.Body.String())
	}

	if got := grpcHealthStatus(t, app); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %v", got)
	}
}

func TestApplicationReadyWithAPIKey(t *testing.T) {
	app := newTestApplication(t, "sk-test")

	if !app.ready() {
		t.Fatal("expected application to be ready")
	}

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /ping, got %d", rec.Code)
	}

	if got := grpcHealthStatus(t, app); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", got)
	}
}

func TestApplicationRejectsUnknownProviderAsDegraded(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "mystery"
	cfg.LLM.APIKey = "sk-test"

	app, err := newApplication(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("expected config failure to degrade, got %v", err)
	}
	if app.ready() || app.grpcHealth != nil {
		t.Fatal("expected degraded application without gRPC health")
	}
}
