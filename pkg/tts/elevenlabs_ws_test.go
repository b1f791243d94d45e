package tts_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-banter/pkg/tts"
)

// wsTestServer speaks enough of the stream-input protocol to drive
// the client: read BOS, text, and EOS, then send the given chunks
// followed by a final marker.
func wsTestServer(t *testing.T, chunks [][]byte) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/stream-input") {
			t.Errorf("expected stream-input path, got %s", r.URL.Path)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		sawText := false
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			text, _ := msg["text"].(string)
			if strings.TrimSpace(text) != "" {
				sawText = true
			}
			if text == "" {
				break
			}
		}
		if !sawText {
			t.Error("no text chunk received before EOS")
		}

		for _, chunk := range chunks {
			conn.WriteJSON(map[string]any{
				"audio": base64.StdEncoding.EncodeToString(chunk),
			})
		}
		conn.WriteJSON(map[string]any{"audio": "", "isFinal": true})
	}))
}

func wsBase(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestElevenLabsWSSynthesize(t *testing.T) {
	chunks := [][]byte{{0x01, 0x02, 0x03, 0x04}, {0x05, 0x06}}
	server := wsTestServer(t, chunks)
	defer server.Close()

	provider, err := tts.NewElevenLabsWS(
		tts.WithAPIKey("test-key"),
		tts.WithVoice("test-voice"),
		tts.WithBaseURL(wsBase(server)),
	)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	defer provider.Close()

	result, err := provider.Synthesize(context.Background(), "Hello over websocket")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	want := append(append([]byte{}, chunks[0]...), chunks[1]...)
	if !bytes.Equal(result.Audio, want) {
		t.Errorf("expected concatenated chunks %v, got %v", want, result.Audio)
	}
	if result.Format.Encoding != tts.EncodingPCM16 {
		t.Errorf("expected PCM16 default, got %s", result.Format.Encoding)
	}
	if result.Format.SampleRate != 16000 {
		t.Errorf("expected 16000 sample rate, got %d", result.Format.SampleRate)
	}
}

func TestElevenLabsWSStream(t *testing.T) {
	chunks := [][]byte{make([]byte, 320), make([]byte, 320), make([]byte, 160)}
	server := wsTestServer(t, chunks)
	defer server.Close()

	provider, err := tts.NewElevenLabsWS(
		tts.WithAPIKey("test-key"),
		tts.WithVoice("test-voice"),
		tts.WithBaseURL(wsBase(server)),
	)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	defer provider.Close()

	stream, err := provider.Stream(context.Background(), "Streaming test")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	total := 0
	for {
		chunk, err := stream.Read()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if chunk == nil {
			break
		}
		total += len(chunk)
	}
	if total != 800 {
		t.Errorf("expected 800 streamed bytes, got %d", total)
	}
}

func TestElevenLabsWSEmptyText(t *testing.T) {
	provider, err := tts.NewElevenLabsWS(
		tts.WithAPIKey("test-key"),
		tts.WithVoice("test-voice"),
	)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	defer provider.Close()

	if _, err := provider.Synthesize(context.Background(), ""); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestElevenLabsWSDialRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider, err := tts.NewElevenLabsWS(
		tts.WithAPIKey("bad-key"),
		tts.WithVoice("test-voice"),
		tts.WithBaseURL(wsBase(server)),
	)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	defer provider.Close()

	_, err = provider.Synthesize(context.Background(), "Hello")
	var apiErr *tts.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.IsUnauthorized() {
		t.Errorf("expected 401, got %d", apiErr.StatusCode)
	}
}

func TestElevenLabsWSHealth(t *testing.T) {
	server := wsTestServer(t, nil)
	defer server.Close()

	provider, err := tts.NewElevenLabsWS(
		tts.WithAPIKey("test-key"),
		tts.WithVoice("test-voice"),
		tts.WithBaseURL(wsBase(server)),
	)
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	defer provider.Close()

	if err := provider.Health(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
}
