package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"
)

// Gemini chat models.
const (
	// ModelGeminiFlash is fast and cheap, the default Gemini model.
	ModelGeminiFlash = "gemini-2.0-flash"

	// ModelGeminiFlashLite trades quality for latency.
	ModelGeminiFlashLite = "gemini-2.0-flash-lite"
)

// Gemini implements Provider using the Google Gemini API.
type Gemini struct {
	config     *Config
	client     *genai.Client
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGemini creates a Gemini chat provider. An OpenAI model name left
// in the config is replaced with the Gemini default so the same config
// can feed both providers in a chain.
func NewGemini(ctx context.Context, opts ...Option) (*Gemini, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.Model == "" || strings.HasPrefix(cfg.Model, "gpt-") {
		cfg.Model = ModelGeminiFlash
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, WrapError("gemini", err)
	}

	return &Gemini{
		config:     cfg,
		client:     client,
		httpClient: httpClient,
		logger:     cfg.Logger.With("component", "chat.gemini"),
	}, nil
}

// Complete generates the assistant reply for the given turns.
func (g *Gemini) Complete(ctx context.Context, turns []Message) (string, error) {
	if len(turns) == 0 {
		return "", ErrNoTurns
	}
	turns = withSystemPrompt(turns, g.config.SystemPrompt)

	gcfg, contents := g.convert(turns)
	if len(contents) == 0 {
		return "", ErrNoTurns
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, contents, gcfg)
	if err != nil {
		return "", g.wrapErr(err)
	}

	if len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}
	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case genai.FinishReasonStop, genai.FinishReasonMaxTokens, genai.FinishReasonUnspecified:
		// usable, possibly truncated at the token cap
	default:
		return "", WrapError("gemini", fmt.Errorf("finish reason %s", cand.FinishReason))
	}
	if cand.Content == nil {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", ErrEmptyCompletion
	}

	g.logger.Debug("completion finished",
		"model", g.config.Model,
		"turns", len(turns),
		"finish_reason", cand.FinishReason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return reply, nil
}

// Health verifies connectivity and the API key with a one word
// completion capped at a few tokens.
func (g *Gemini) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
	defer cancel()

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText("ping")},
	}}
	gcfg := &genai.GenerateContentConfig{MaxOutputTokens: healthMaxTokens}
	if _, err := g.client.Models.GenerateContent(ctx, g.config.Model, contents, gcfg); err != nil {
		return g.wrapErr(err)
	}
	return nil
}

// Name returns the provider identifier.
func (g *Gemini) Name() string {
	return "gemini"
}

// Close releases HTTP resources.
func (g *Gemini) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

// convert maps turns onto Gemini contents. System turns become the
// system instruction; user and assistant turns keep their order with
// the roles Gemini expects.
func (g *Gemini) convert(turns []Message) (*genai.GenerateContentConfig, []*genai.Content) {
	temperature := float32(g.config.Temperature)
	topP := float32(g.config.TopP)
	gcfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.config.MaxTokens),
		Temperature:     &temperature,
		TopP:            &topP,
	}

	var system []*genai.Part
	var contents []*genai.Content
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			system = append(system, genai.NewPartFromText(t.Content))
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{genai.NewPartFromText(t.Content)},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{genai.NewPartFromText(t.Content)},
			})
		}
	}
	if len(system) > 0 {
		gcfg.SystemInstruction = &genai.Content{Parts: system}
	}

	return gcfg, contents
}

// wrapErr maps client errors onto the package error types.
func (g *Gemini) wrapErr(err error) error {
	var aerr *apierror.APIError
	if errors.As(err, &aerr) {
		if unwrapped := aerr.Unwrap(); unwrapped != nil {
			err = unwrapped
		}
	}

	var gerr genai.APIError
	if errors.As(err, &gerr) {
		return &APIError{
			StatusCode: gerr.Code,
			Message:    gerr.Message,
			Code:       gerr.Status,
			Provider:   "gemini",
		}
	}
	return WrapError("gemini", err)
}

// Verify Gemini implements Provider at compile time.
var _ Provider = (*Gemini)(nil)
