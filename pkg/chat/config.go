package chat

import (
	"log/slog"
	"time"
)

// healthMaxTokens caps the probe completion used by Health checks.
const healthMaxTokens = 10

// Config holds provider configuration.
type Config struct {
	// APIKey authenticates with the provider.
	APIKey string

	// BaseURL overrides the provider endpoint, mainly for testing.
	BaseURL string

	// Model selects the completion model.
	Model string

	// SystemPrompt is prepended when the turn list has no leading
	// system turn. Empty disables the fallback.
	SystemPrompt string

	// MaxTokens caps the reply length. Voice replies stay short.
	MaxTokens int

	// Temperature controls randomness (0.0-2.0).
	Temperature float64

	// TopP controls nucleus sampling.
	TopP float64

	// RequestTimeout bounds a single completion request.
	RequestTimeout time.Duration

	// MaxRetries is the number of retry attempts for transient failures.
	MaxRetries int

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option configures a provider.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithSystemPrompt sets the fallback system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithTopP sets the nucleus sampling parameter.
func WithTopP(p float64) Option {
	return func(c *Config) {
		c.TopP = p
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// WithMaxRetries sets the retry attempt count.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible defaults for short voice replies.
func DefaultConfig() *Config {
	return &Config{
		Model:          ModelGPT4oMini,
		MaxTokens:      150,
		Temperature:    0.7,
		TopP:           0.9,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		Logger:         slog.Default(),
	}
}

// Apply applies options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrAPIKeyRequired
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxTokens <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
