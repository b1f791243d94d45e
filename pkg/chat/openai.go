package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/teslashibe/go-banter/internal/httpc"
)

// OpenAI chat models.
const (
	// ModelGPT4oMini is fast and cheap, the default for voice replies.
	ModelGPT4oMini = "gpt-4o-mini"

	// ModelGPT4o is the full multimodal model.
	ModelGPT4o = "gpt-4o"

	// ModelGPT35Turbo is the legacy conversational model.
	ModelGPT35Turbo = "gpt-3.5-turbo"
)

// OpenAI implements Provider using the OpenAI chat completions API.
type OpenAI struct {
	config     *Config
	client     openai.Client
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAI creates an OpenAI chat provider.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := httpc.NewClient(cfg.RequestTimeout)
	ropts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		ropts = append(ropts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		config:     cfg,
		client:     openai.NewClient(ropts...),
		httpClient: httpClient,
		logger:     cfg.Logger.With("component", "chat.openai"),
	}, nil
}

// Complete generates the assistant reply for the given turns.
func (o *OpenAI) Complete(ctx context.Context, turns []Message) (string, error) {
	if len(turns) == 0 {
		return "", ErrNoTurns
	}
	turns = withSystemPrompt(turns, o.config.SystemPrompt)

	ctx, cancel := context.WithTimeout(ctx, o.config.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, o.params(turns, o.config.MaxTokens))
	if err != nil {
		return "", o.wrapErr(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyCompletion
	}

	o.logger.Debug("completion finished",
		"model", o.config.Model,
		"turns", len(turns),
		"finish_reason", resp.Choices[0].FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return reply, nil
}

// Health verifies connectivity and the API key with a one word
// completion capped at a few tokens.
func (o *OpenAI) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, o.config.RequestTimeout)
	defer cancel()

	ping := []Message{NewUserMessage("ping")}
	if _, err := o.client.Chat.Completions.New(ctx, o.params(ping, healthMaxTokens)); err != nil {
		return o.wrapErr(err)
	}
	return nil
}

// Name returns the provider identifier.
func (o *OpenAI) Name() string {
	return "openai"
}

// Close releases HTTP resources.
func (o *OpenAI) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// params builds the completion request for the given turns.
func (o *OpenAI) params(turns []Message, maxTokens int) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		default:
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Messages:    msgs,
		Model:       openai.ChatModel(o.config.Model),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(o.config.Temperature),
		TopP:        openai.Float(o.config.TopP),
	}
}

// wrapErr maps client errors onto the package error types.
func (o *OpenAI) wrapErr(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &APIError{
			StatusCode: apierr.StatusCode,
			Message:    apierr.Message,
			Code:       apierr.Code,
			Provider:   "openai",
		}
	}
	return WrapError("openai", err)
}

// Verify OpenAI implements Provider at compile time.
var _ Provider = (*OpenAI)(nil)
