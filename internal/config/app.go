// Package config provides configuration loading for the banter CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultSampleRate       = 16000
	DefaultChunkSize        = 1024
	DefaultMaxRecordSeconds = 10
	DefaultMaxHistory       = 10
	DefaultMaxFailures      = 5
	DefaultIdleTimeout      = 30 * time.Second
	DefaultSTTTimeout       = 30 * time.Second
	DefaultTTSTimeout       = 30 * time.Second
	DefaultChatTimeout      = 30 * time.Second
	DefaultChatModel        = "gpt-4o-mini"
)

// DefaultExitPhrases end the session when heard anywhere in a transcript.
var DefaultExitPhrases = []string{"goodbye", "exit", "quit", "stop", "bye", "see you later"}

// DefaultPersonaPrompt is the stock conversational persona. Override
// with BANTER_PERSONA or the persona field in the config file.
const DefaultPersonaPrompt = `You are Bluey, a lovable, energetic 6-year-old Blue Heeler puppy. ` +
	`You are playful, curious, and love games and adventures. Keep replies short, ` +
	`two or three sentences, full of enthusiasm ("Oh wow!", "That's so fun!"), and ` +
	`ask a question back to keep the chat going. You are talking with a friend out loud, ` +
	`so never use emoji, lists, or stage directions.`

// App holds all configuration for a banter session.
// Flag parsing is done in cmd/banter; this struct is data only.
type App struct {
	// Debug enables verbose debug logging.
	Debug    bool
	LogLevel string

	// Audio capture settings.
	AudioBackend     string // "auto", "portaudio", or "mock"
	SampleRate       int
	ChunkSize        int
	MaxRecordSeconds int
	SilenceThreshold int           // RMS on the int16 scale
	SilenceHold      time.Duration // quiet time that ends an utterance
	MinUtterance     time.Duration // clips shorter than this are discarded

	// Conversation settings.
	MaxHistory    int // retained exchanges (user+assistant pairs)
	MaxFailures   int // consecutive failed turns before giving up
	IdleTimeout   time.Duration
	PersonaPrompt string
	ExitPhrases   []string
	IntentPrefix  bool // prefix user text with a classified intent

	// Provider settings.
	Voice        string // ElevenLabs voice preset name or raw id
	ChatModel    string
	ChatProvider string // "openai" or "gemini"
	STTTimeout   time.Duration
	TTSTimeout   time.Duration
	ChatTimeout  time.Duration

	// Dashboard and diagnostics.
	ListenAddr string // empty disables the dashboard
	EventsFile string // JSON lines event log, empty disables

	// API keys (typically from environment variables).
	OpenAIKey      string
	ElevenLabsKey  string
	GeminiKey      string
	GoogleSTTKey   string
	GoogleCredFile string
}

// DefaultApp returns sensible defaults for a banter session.
func DefaultApp() App {
	return App{
		LogLevel:         "info",
		AudioBackend:     "auto",
		SampleRate:       DefaultSampleRate,
		ChunkSize:        DefaultChunkSize,
		MaxRecordSeconds: DefaultMaxRecordSeconds,
		SilenceThreshold: 100,
		SilenceHold:      time.Second,
		MinUtterance:     500 * time.Millisecond,
		MaxHistory:       DefaultMaxHistory,
		MaxFailures:      DefaultMaxFailures,
		IdleTimeout:      DefaultIdleTimeout,
		PersonaPrompt:    DefaultPersonaPrompt,
		ExitPhrases:      append([]string(nil), DefaultExitPhrases...),
		ChatModel:        DefaultChatModel,
		ChatProvider:     "openai",
		STTTimeout:       DefaultSTTTimeout,
		TTSTimeout:       DefaultTTSTimeout,
		ChatTimeout:      DefaultChatTimeout,
	}
}

// LoadEnv loads configuration values from environment variables.
// Call this after applying the config file so the environment wins.
func (c *App) LoadEnv() {
	c.OpenAIKey = envStr("OPENAI_API_KEY", c.OpenAIKey)
	c.ElevenLabsKey = envStr("ELEVENLABS_API_KEY", c.ElevenLabsKey)
	c.GeminiKey = envStr("GEMINI_API_KEY", c.GeminiKey)
	c.GoogleSTTKey = envStr("GOOGLE_API_KEY", c.GoogleSTTKey)
	c.GoogleCredFile = envStr("GOOGLE_APPLICATION_CREDENTIALS", c.GoogleCredFile)

	c.Voice = envStr("ELEVENLABS_VOICE_ID", c.Voice)
	c.AudioBackend = envStr("BANTER_AUDIO_BACKEND", c.AudioBackend)
	c.SampleRate = envInt("SAMPLE_RATE", c.SampleRate)
	c.ChunkSize = envInt("CHUNK_SIZE", c.ChunkSize)
	c.MaxRecordSeconds = envInt("RECORD_SECONDS", c.MaxRecordSeconds)
	c.MaxHistory = envInt("MAX_CONVERSATION_HISTORY", c.MaxHistory)
	c.ChatModel = envStr("BANTER_CHAT_MODEL", c.ChatModel)
	c.ChatProvider = envStr("BANTER_CHAT_PROVIDER", c.ChatProvider)
	c.ListenAddr = envStr("BANTER_ADDR", c.ListenAddr)
	c.LogLevel = envStr("BANTER_LOG_LEVEL", c.LogLevel)
	c.PersonaPrompt = envStr("BANTER_PERSONA", c.PersonaPrompt)
	if phrases := os.Getenv("BANTER_EXIT_PHRASES"); phrases != "" {
		c.ExitPhrases = splitPhrases(phrases)
	}
}

// Validate checks that required configuration is present.
func (c *App) Validate() error {
	if c.ElevenLabsKey == "" {
		return &ConfigError{Field: "ElevenLabsKey", Message: "ELEVENLABS_API_KEY environment variable is required"}
	}
	if c.OpenAIKey == "" && c.GeminiKey == "" {
		return &ConfigError{Field: "OpenAIKey", Message: "OPENAI_API_KEY or GEMINI_API_KEY environment variable is required"}
	}
	if c.ChatProvider != "openai" && c.ChatProvider != "gemini" {
		return &ConfigError{Field: "ChatProvider", Message: fmt.Sprintf("unknown chat provider %q (want openai or gemini)", c.ChatProvider)}
	}
	if c.SampleRate <= 0 {
		return &ConfigError{Field: "SampleRate", Message: "sample rate must be positive"}
	}
	if c.ChunkSize <= 0 {
		return &ConfigError{Field: "ChunkSize", Message: "chunk size must be positive"}
	}
	if c.MaxRecordSeconds <= 0 {
		return &ConfigError{Field: "MaxRecordSeconds", Message: "max record seconds must be positive"}
	}
	if c.MaxHistory < 1 {
		return &ConfigError{Field: "MaxHistory", Message: "history must retain at least one exchange"}
	}
	if c.MaxFailures < 1 {
		return &ConfigError{Field: "MaxFailures", Message: "failure cap must be at least one"}
	}
	if len(c.ExitPhrases) == 0 {
		return &ConfigError{Field: "ExitPhrases", Message: "at least one exit phrase is required"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// MaskAPIKey hides the middle of a key for display.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}

func splitPhrases(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
