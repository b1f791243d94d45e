// Package stt provides a unified interface for speech-to-text providers.
//
// The package supports ElevenLabs Scribe as the primary backend with
// Google Cloud Speech as a fallback. All providers implement the
// Provider interface, enabling seamless switching without changing
// caller code.
//
// Example usage:
//
//	provider, _ := stt.NewElevenLabs(
//	    stt.WithAPIKey(os.Getenv("ELEVENLABS_API_KEY")),
//	)
//	defer provider.Close()
//
//	text, _ := provider.Transcribe(ctx, clip)
package stt

import (
	"context"

	"github.com/teslashibe/go-banter/pkg/audioio"
)

// Provider defines the STT provider interface.
// All implementations must satisfy this interface for seamless provider switching.
type Provider interface {
	// Transcribe converts a captured clip to text. Silence-only audio
	// returns an empty string with a nil error.
	Transcribe(ctx context.Context, clip audioio.Clip) (string, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Name identifies the provider (e.g., "elevenlabs", "google").
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}
