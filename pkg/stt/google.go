package stt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"

	"github.com/teslashibe/go-banter/pkg/audioio"
)

// Google implements the Provider interface using the Google Cloud
// Speech-to-Text API. It serves as a fallback when the primary
// provider is unavailable.
type Google struct {
	config  *Config
	service *speech.Service
	logger  *slog.Logger
}

// Compile-time interface check.
var _ Provider = (*Google)(nil)

// NewGoogle creates a Google Cloud Speech provider. Authentication
// uses an API key when set, otherwise a service account file.
func NewGoogle(ctx context.Context, opts ...Option) (*Google, error) {
	config := DefaultConfig()
	config.Apply(opts...)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientOpts, err := googleClientOptions(ctx, config)
	if err != nil {
		return nil, WrapError("google", err)
	}

	service, err := speech.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, WrapError("google", fmt.Errorf("create speech service: %w", err))
	}

	return &Google{
		config:  config,
		service: service,
		logger:  config.Logger.With("component", "stt.google"),
	}, nil
}

// googleClientOptions builds API client options from the config.
func googleClientOptions(ctx context.Context, config *Config) ([]option.ClientOption, error) {
	if config.APIKey != "" {
		return []option.ClientOption{option.WithAPIKey(config.APIKey)}, nil
	}

	data, err := os.ReadFile(config.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, speech.CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return []option.ClientOption{option.WithTokenSource(creds.TokenSource)}, nil
}

// Transcribe converts the clip to text via synchronous recognition.
func (g *Google) Transcribe(ctx context.Context, clip audioio.Clip) (string, error) {
	if clip.Empty() {
		return "", WrapError("google", ErrEmptyAudio)
	}

	// Cloud Speech expects single-channel LINEAR16.
	mono := clip.ToMono()

	req := &speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            int64(mono.SampleRate),
			LanguageCode:               g.languageCode(),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(mono.Bytes()),
		},
	}

	start := time.Now()
	resp, err := g.service.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", g.wrapAPIError(err)
	}

	var sb strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(result.Alternatives[0].Transcript)
	}

	text := strings.TrimSpace(sb.String())
	g.logger.Debug("transcription complete",
		"duration_ms", clip.Duration().Milliseconds(),
		"latency_ms", time.Since(start).Milliseconds(),
		"chars", len(text))

	return text, nil
}

// Health verifies credentials by recognizing a short silent clip.
// Any response other than an auth failure counts as healthy.
func (g *Google) Health(ctx context.Context) error {
	silence := audioio.Clip{
		Samples:    make([]int16, 160),
		SampleRate: 16000,
		Channels:   1,
	}

	req := &speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: 16000,
			LanguageCode:    g.languageCode(),
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(silence.Bytes()),
		},
	}

	_, err := g.service.Speech.Recognize(req).Context(ctx).Do()
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code != 401 && gerr.Code != 403 {
		return nil
	}
	return g.wrapAPIError(err)
}

// Name returns the provider identifier.
func (g *Google) Name() string {
	return "google"
}

// Close releases provider resources. The generated client holds no
// connections of its own.
func (g *Google) Close() error {
	return nil
}

// languageCode returns a region-tagged code; Cloud Speech rejects
// bare language codes.
func (g *Google) languageCode() string {
	lang := g.config.Language
	if lang == "" || lang == "en" {
		return "en-US"
	}
	return lang
}

// wrapAPIError converts googleapi errors to the package error type.
func (g *Google) wrapAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &APIError{
			StatusCode: gerr.Code,
			Message:    gerr.Message,
			Provider:   "google",
		}
	}
	return WrapError("google", err)
}
