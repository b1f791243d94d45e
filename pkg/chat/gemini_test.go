package chat_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teslashibe/go-banter/pkg/chat"
)

func geminiResponse(text string) string {
	return fmt.Sprintf(`{
		"candidates": [
			{
				"content": {"role": "model", "parts": [{"text": %q}]},
				"finishReason": "STOP"
			}
		]
	}`, text)
}

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request: %v", err)
		}
		payload := string(body)
		// The system turn rides along as the system instruction and the
		// user turn as a content part.
		for _, want := range []string{"You are a friendly companion.", "Hello!"} {
			if !strings.Contains(payload, want) {
				t.Errorf("request body missing %q", want)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, geminiResponse("  Hi there.  "))
	}))
	defer srv.Close()

	provider, err := chat.NewGemini(context.Background(),
		chat.WithAPIKey("test-key"),
		chat.WithBaseURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("NewGemini failed: %v", err)
	}
	defer provider.Close()

	reply, err := provider.Complete(context.Background(), testTurns())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "Hi there." {
		t.Errorf("expected trimmed reply, got %q", reply)
	}
}

func TestGeminiCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"code": 404, "message": "model not found", "status": "NOT_FOUND"}}`)
	}))
	defer srv.Close()

	provider, err := chat.NewGemini(context.Background(),
		chat.WithAPIKey("test-key"),
		chat.WithBaseURL(srv.URL),
		chat.WithModel("gemini-nope"),
	)
	if err != nil {
		t.Fatalf("NewGemini failed: %v", err)
	}
	defer provider.Close()

	_, err = provider.Complete(context.Background(), testTurns())
	if err == nil {
		t.Fatal("expected error for missing model")
	}

	var apiErr *chat.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode != 404 {
			t.Errorf("StatusCode = %d", apiErr.StatusCode)
		}
		if apiErr.Provider != "gemini" {
			t.Errorf("Provider = %q", apiErr.Provider)
		}
		return
	}

	// Client versions that wrap differently still surface provider context.
	if !strings.Contains(err.Error(), "gemini") {
		t.Errorf("error missing provider context: %v", err)
	}
}

func TestGeminiCompleteNoTurns(t *testing.T) {
	provider, err := chat.NewGemini(context.Background(),
		chat.WithAPIKey("test-key"),
		chat.WithBaseURL("http://127.0.0.1:0"),
	)
	if err != nil {
		t.Fatalf("NewGemini failed: %v", err)
	}
	defer provider.Close()

	if _, err := provider.Complete(context.Background(), nil); !errors.Is(err, chat.ErrNoTurns) {
		t.Errorf("expected ErrNoTurns, got %v", err)
	}
}

func TestGeminiHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request: %v", err)
		}
		if !strings.Contains(string(body), "ping") {
			t.Error("health probe missing ping content")
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, geminiResponse("pong"))
	}))
	defer srv.Close()

	provider, err := chat.NewGemini(context.Background(),
		chat.WithAPIKey("test-key"),
		chat.WithBaseURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("NewGemini failed: %v", err)
	}
	defer provider.Close()

	if err := provider.Health(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := chat.NewGemini(context.Background()); !errors.Is(err, chat.ErrAPIKeyRequired) {
		t.Errorf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestGeminiName(t *testing.T) {
	provider, err := chat.NewGemini(context.Background(), chat.WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("NewGemini failed: %v", err)
	}
	defer provider.Close()

	if provider.Name() != "gemini" {
		t.Errorf("Name = %q", provider.Name())
	}
}
