package stt

import (
	"log/slog"
	"time"
)

// Config holds provider configuration.
type Config struct {
	// APIKey authenticates with the provider.
	APIKey string

	// BaseURL overrides the provider endpoint, mainly for testing.
	BaseURL string

	// ModelID selects the transcription model.
	ModelID string

	// Language hints the spoken language (BCP-47, e.g. "en").
	// Empty means auto-detect where the provider supports it.
	Language string

	// CredentialsFile points at a service account JSON file for
	// providers that authenticate with one.
	CredentialsFile string

	// RequestTimeout bounds a single transcription request.
	RequestTimeout time.Duration

	// MaxRetries is the number of retry attempts for transient failures.
	MaxRetries int

	// RetryDelay is the base delay between retries (multiplied by attempt).
	RetryDelay time.Duration

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

// WithModelID sets the transcription model.
func WithModelID(id string) Option {
	return func(c *Config) {
		c.ModelID = id
	}
}

// WithLanguage sets the expected spoken language.
func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.Language = lang
	}
}

// WithCredentialsFile sets the service account file path.
func WithCredentialsFile(path string) Option {
	return func(c *Config) {
		c.CredentialsFile = path
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

// WithRetryDelay sets the base retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible defaults for conversational transcription.
func DefaultConfig() *Config {
	return &Config{
		ModelID:        "scribe_v1",
		Language:       "en",
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     100 * time.Millisecond,
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
	if c.APIKey == "" && c.CredentialsFile == "" {
		return ErrAPIKeyRequired
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
