package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teslashibe/go-banter/pkg/chat"
)

type completionRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionResponse(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-test",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-4o-mini",
		"choices": [
			{
				"index": 0,
				"message": {"role": "assistant", "content": %q},
				"finish_reason": "stop"
			}
		],
		"usage": {"prompt_tokens": 21, "completion_tokens": 7, "total_tokens": 28}
	}`, content)
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}

		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if req.MaxTokens != 150 {
			t.Errorf("max_tokens = %d", req.MaxTokens)
		}
		if req.Temperature != 0.7 {
			t.Errorf("temperature = %f", req.Temperature)
		}
		if req.TopP != 0.9 {
			t.Errorf("top_p = %f", req.TopP)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("first message role = %q", req.Messages[0].Role)
		}
		if req.Messages[1].Role != "user" || req.Messages[1].Content != "Hello!" {
			t.Errorf("unexpected user message: %+v", req.Messages[1])
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse("  Hi! How can I help?  "))
	}))
	defer srv.Close()

	provider, err := chat.NewOpenAI(
		chat.WithAPIKey("test-key"),
		chat.WithBaseURL(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}
	defer provider.Close()

	reply, err := provider.Complete(context.Background(), testTurns())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "Hi! How can I help?" {
		t.Errorf("expected trimmed reply, got %q", reply)
	}
}

func TestOpenAISystemPromptFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected injected system turn, got %d messages", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[0].Content != "Stay in character." {
			t.Errorf("unexpected system message: %+v", req.Messages[0])
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse("Sure."))
	}))
	defer srv.Close()

	provider, err := chat.NewOpenAI(
		chat.WithAPIKey("test-key"),
		chat.WithBaseURL(srv.URL+"/"),
		chat.WithSystemPrompt("Stay in character."),
	)
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}
	defer provider.Close()

	turns := []chat.Message{chat.NewUserMessage("Hello!")}
	if _, err := provider.Complete(context.Background(), turns); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestOpenAICompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "param": null, "code": "invalid_api_key"}}`)
	}))
	defer srv.Close()

	provider, err := chat.NewOpenAI(
		chat.WithAPIKey("bad-key"),
		chat.WithBaseURL(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}
	defer provider.Close()

	_, err = provider.Complete(context.Background(), testTurns())
	var apiErr *chat.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if !apiErr.IsUnauthorized() {
		t.Error("expected IsUnauthorized")
	}
	if apiErr.Provider != "openai" {
		t.Errorf("Provider = %q", apiErr.Provider)
	}
}

func TestOpenAICompleteEmptyCompletion(t *testing.T) {
	t.Run("No choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id": "chatcmpl-test", "object": "chat.completion", "created": 1700000000, "model": "gpt-4o-mini", "choices": []}`)
		}))
		defer srv.Close()

		provider, err := chat.NewOpenAI(
			chat.WithAPIKey("test-key"),
			chat.WithBaseURL(srv.URL+"/"),
		)
		if err != nil {
			t.Fatalf("NewOpenAI failed: %v", err)
		}
		defer provider.Close()

		if _, err := provider.Complete(context.Background(), testTurns()); !errors.Is(err, chat.ErrEmptyCompletion) {
			t.Errorf("expected ErrEmptyCompletion, got %v", err)
		}
	})

	t.Run("Blank content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, completionResponse("   "))
		}))
		defer srv.Close()

		provider, err := chat.NewOpenAI(
			chat.WithAPIKey("test-key"),
			chat.WithBaseURL(srv.URL+"/"),
		)
		if err != nil {
			t.Fatalf("NewOpenAI failed: %v", err)
		}
		defer provider.Close()

		if _, err := provider.Complete(context.Background(), testTurns()); !errors.Is(err, chat.ErrEmptyCompletion) {
			t.Errorf("expected ErrEmptyCompletion, got %v", err)
		}
	})
}

func TestOpenAICompleteNoTurns(t *testing.T) {
	// The endpoint is never reached: validation fails first.
	provider, err := chat.NewOpenAI(
		chat.WithAPIKey("test-key"),
		chat.WithBaseURL("http://127.0.0.1:0/"),
	)
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}
	defer provider.Close()

	if _, err := provider.Complete(context.Background(), nil); !errors.Is(err, chat.ErrNoTurns) {
		t.Errorf("expected ErrNoTurns, got %v", err)
	}
}

func TestOpenAIHealth(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req completionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.MaxTokens != 10 {
				t.Errorf("health probe max_tokens = %d", req.MaxTokens)
			}
			if len(req.Messages) != 1 || req.Messages[0].Content != "ping" {
				t.Errorf("unexpected health probe messages: %+v", req.Messages)
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, completionResponse("pong"))
		}))
		defer srv.Close()

		provider, err := chat.NewOpenAI(
			chat.WithAPIKey("test-key"),
			chat.WithBaseURL(srv.URL+"/"),
		)
		if err != nil {
			t.Fatalf("NewOpenAI failed: %v", err)
		}
		defer provider.Close()

		if err := provider.Health(context.Background()); err != nil {
			t.Errorf("expected healthy, got %v", err)
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "param": null, "code": "invalid_api_key"}}`)
		}))
		defer srv.Close()

		provider, err := chat.NewOpenAI(
			chat.WithAPIKey("bad-key"),
			chat.WithBaseURL(srv.URL+"/"),
		)
		if err != nil {
			t.Fatalf("NewOpenAI failed: %v", err)
		}
		defer provider.Close()

		err = provider.Health(context.Background())
		var apiErr *chat.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if !apiErr.IsUnauthorized() {
			t.Error("expected IsUnauthorized")
		}
	})
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := chat.NewOpenAI(); !errors.Is(err, chat.ErrAPIKeyRequired) {
		t.Errorf("expected ErrAPIKeyRequired, got %v", err)
	}
}
