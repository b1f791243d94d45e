package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/teslashibe/go-banter/internal/httpc"
	"github.com/teslashibe/go-banter/pkg/audioio"
)

const (
	// elevenLabsBaseURL is the default API endpoint.
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"
)

// ElevenLabs implements the Provider interface using the ElevenLabs
// Scribe speech-to-text API.
type ElevenLabs struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// Compile-time interface check.
var _ Provider = (*ElevenLabs)(nil)

// NewElevenLabs creates an ElevenLabs STT provider.
func NewElevenLabs(opts ...Option) (*ElevenLabs, error) {
	config := DefaultConfig()
	config.Apply(opts...)

	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = elevenLabsBaseURL
	}

	return &ElevenLabs{
		config: config,
		client: httpc.NewClient(config.RequestTimeout),
		logger: config.Logger.With("component", "stt.elevenlabs"),
	}, nil
}

// Transcribe converts the clip to text via the Scribe API.
func (e *ElevenLabs) Transcribe(ctx context.Context, clip audioio.Clip) (string, error) {
	if clip.Empty() {
		return "", WrapError("elevenlabs", ErrEmptyAudio)
	}

	body, contentType, err := e.buildForm(clip)
	if err != nil {
		return "", WrapError("elevenlabs", fmt.Errorf("build form: %w", err))
	}

	url := e.config.BaseURL + "/speech-to-text"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", WrapError("elevenlabs", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("xi-api-key", e.config.APIKey)

	start := time.Now()
	resp, err := e.doWithRetry(req)
	if err != nil {
		return "", WrapError("elevenlabs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", e.parseError(resp)
	}

	var result struct {
		Text                string  `json:"text"`
		LanguageCode        string  `json:"language_code"`
		LanguageProbability float64 `json:"language_probability"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", WrapError("elevenlabs", fmt.Errorf("decode response: %w", err))
	}

	text := strings.TrimSpace(result.Text)
	e.logger.Debug("transcription complete",
		"duration_ms", clip.Duration().Milliseconds(),
		"latency_ms", time.Since(start).Milliseconds(),
		"chars", len(text),
		"language", result.LanguageCode)

	return text, nil
}

// Health checks API connectivity and key validity.
func (e *ElevenLabs) Health(ctx context.Context) error {
	url := e.config.BaseURL + "/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return WrapError("elevenlabs", err)
	}
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return WrapError("elevenlabs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return e.parseError(resp)
	}
	return nil
}

// Name returns the provider identifier.
func (e *ElevenLabs) Name() string {
	return "elevenlabs"
}

// Close releases HTTP resources.
func (e *ElevenLabs) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// buildForm encodes the clip as a WAV multipart upload.
func (e *ElevenLabs) buildForm(clip audioio.Clip) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="audio.wav"`)
	header.Set("Content-Type", "audio/wav")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audioio.EncodeWAV(clip)); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("model_id", e.config.ModelID); err != nil {
		return nil, "", err
	}
	if e.config.Language != "" {
		if err := w.WriteField("language_code", e.config.Language); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// doWithRetry executes the request with retry on transient failures.
func (e *ElevenLabs) doWithRetry(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
	}

	var lastErr error
	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := e.config.RetryDelay * time.Duration(attempt)
			e.logger.Debug("retrying request", "attempt", attempt, "delay", delay)
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
		}

		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := e.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &APIError{
				StatusCode: resp.StatusCode,
				Message:    "transient error",
				Provider:   "elevenlabs",
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", e.config.MaxRetries+1, lastErr)
}

// parseError extracts a structured error from an API response.
func (e *ElevenLabs) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Detail struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"detail"`
	}

	message := string(body)
	code := ""
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail.Message != "" {
		message = apiErr.Detail.Message
		code = apiErr.Detail.Status
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Code:       code,
		Provider:   "elevenlabs",
	}
}
