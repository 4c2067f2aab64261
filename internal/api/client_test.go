package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/panel/internal/resilience"
)

const messageJSON = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-haiku-4-5-20251001",
	"content": [{"type": "text", "text": "first "}, {"type": "text", "text": "second"}],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 12, "output_tokens": 7}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker *resilience.Breaker) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{APIKey: "test-key", BaseURL: srv.URL, Breaker: breaker})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func writeAPIError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"type":"error","error":{"type":%q,"message":"test"}}`, kind)
}

func TestNewClient_WithAPIKey(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "test-key-123"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	original := os.Getenv("ANTHROPIC_API_KEY")
	defer os.Setenv("ANTHROPIC_API_KEY", original)
	os.Unsetenv("ANTHROPIC_API_KEY")

	_, err := NewClient(ClientConfig{})
	if err == nil {
		t.Fatal("NewClient should fail without API key")
	}

	expected := "ANTHROPIC_API_KEY environment variable is not set"
	if err.Error() != expected {
		t.Errorf("Error = %q, want %q", err.Error(), expected)
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		in   anthropic.Model
		want anthropic.Model
	}{
		{anthropic.ModelClaudeHaiku4_5_20251001, "us.anthropic.claude-haiku-4-5-20251001-v1:0"},
		{anthropic.ModelClaudeOpus4_1_20250805, "us.anthropic.claude-opus-4-1-20250805-v1:0"},
		{"us.anthropic.custom-v1:0", "us.anthropic.custom-v1:0"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			if got := translateModelForBedrock(tt.in); got != tt.want {
				t.Errorf("translateModelForBedrock(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerate_Success(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, messageJSON)
	}, nil)

	resp, err := client.Generate(context.Background(), Request{
		Model:       "claude-haiku-4-5-20251001",
		System:      "be terse",
		Prompt:      "hello",
		Temperature: 0.3,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != "first second" {
		t.Errorf("Text = %q, want %q", resp.Text, "first second")
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 7 {
		t.Errorf("usage = %d/%d, want 12/7", resp.InputTokens, resp.OutputTokens)
	}
	if got["model"] != "claude-haiku-4-5-20251001" {
		t.Errorf("request model = %v", got["model"])
	}
	if got["temperature"] != 0.3 {
		t.Errorf("request temperature = %v, want 0.3", got["temperature"])
	}
	if in, out := client.Tracker().Total(); in != 12 || out != 7 {
		t.Errorf("tracker totals = %d/%d, want 12/7", in, out)
	}
}

func TestGenerate_RequiresModel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, nil)

	if _, err := client.Generate(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Error("Generate without model should fail")
	}
}

func TestGenerate_ErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		kind      string
		transient bool
	}{
		{http.StatusBadRequest, "invalid_request_error", false},
		{http.StatusUnauthorized, "authentication_error", false},
		{http.StatusRequestTimeout, "timeout_error", true},
		{http.StatusTooManyRequests, "rate_limit_error", true},
		{http.StatusInternalServerError, "api_error", true},
		{529, "overloaded_error", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(w, tt.status, tt.kind)
			}, nil)

			_, err := client.Generate(context.Background(), Request{Model: "m", Prompt: "p"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := StatusCode(err); got != tt.status {
				t.Errorf("StatusCode = %d, want %d", got, tt.status)
			}
			if got := IsTransient(err); got != tt.transient {
				t.Errorf("IsTransient = %v, want %v (err: %v)", got, tt.transient, err)
			}
		})
	}
}

func TestGenerate_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(ClientConfig{APIKey: "k", BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Generate(context.Background(), Request{Model: "m", Prompt: "p"})
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsTransient(err) {
		t.Errorf("IsTransient(%v) = false, want true", err)
	}
}

func TestGenerate_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	breaker := NewBreaker(BreakerConfig{MaxFailures: 2, Timeout: time.Hour})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeAPIError(w, http.StatusServiceUnavailable, "api_error")
	}, breaker)

	for i := 0; i < 3; i++ {
		_, _ = client.Generate(context.Background(), Request{Model: "m", Prompt: "p"})
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
	_, err := client.Generate(context.Background(), Request{Model: "m", Prompt: "p"})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if !IsTransient(err) {
		t.Error("open circuit should be transient")
	}
}

func TestNewBreaker_DisabledWhenZero(t *testing.T) {
	if b := NewBreaker(BreakerConfig{}); b != nil {
		t.Error("NewBreaker with zero failures should return nil")
	}
}

func TestIsTransient_PlainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"unexpected eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), true},
		{"plain error", errors.New("malformed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("path = %s, want /v1/models", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[],"has_more":false,"first_id":null,"last_id":null}`)
	}, nil)

	if _, err := client.Ping(context.Background(), "m"); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestTokenTracker_AddMultiple(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 100)
	tracker.Add(50, 25)

	input, output := tracker.Total()
	if input != 350 {
		t.Errorf("Input tokens = %d, want 350", input)
	}
	if output != 175 {
		t.Errorf("Output tokens = %d, want 175", output)
	}
	if tracker.Calls() != 3 {
		t.Errorf("Calls = %d, want 3", tracker.Calls())
	}
}

func TestTokenTracker_Cost(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.Add(1_000_000, 1_000_000)

	if cost := tracker.Cost(); cost != 18.0 {
		t.Errorf("Cost = %f, want 18", cost)
	}
}
