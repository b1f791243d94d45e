package audioio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// Sentinel errors.
var (
	// ErrClosed is returned when using a recorder or player after Close.
	ErrClosed = errors.New("audioio: backend closed")
	// ErrUnsupportedBackend is returned for unknown backend names.
	ErrUnsupportedBackend = errors.New("audioio: unsupported backend")
	// ErrInvalidWAV is returned when WAV data cannot be parsed.
	ErrInvalidWAV = errors.New("audioio: invalid wav data")
)

// Recorder captures one utterance at a time. Record blocks until the
// speaker goes quiet or maxDuration elapses and returns the captured
// clip. A clip that is empty (or fails the speech gate) comes back
// zero-length with a nil error.
type Recorder interface {
	Record(ctx context.Context, maxDuration time.Duration) (Clip, error)

	// Name returns the backend name (e.g., "portaudio", "mock").
	Name() string

	// Close releases the capture device.
	io.Closer
}

// Player plays audio to the speakers, blocking until playback
// completes or the context is cancelled.
type Player interface {
	Play(ctx context.Context, clip Clip) error

	// PlayMP3 decodes and plays an MP3 buffer (what the synthesis
	// APIs return by default).
	PlayMP3(ctx context.Context, data []byte) error

	// Name returns the backend name.
	Name() string

	io.Closer
}

// NewRecorder creates an audio recorder with the given configuration.
// If cfg.Backend is BackendAuto, PortAudio is used.
func NewRecorder(cfg Config, logger *slog.Logger) (Recorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = BackendPortAudio
	}

	logger.Info("creating audio recorder",
		"backend", backend,
		"sample_rate", cfg.SampleRate,
		"chunk_size", cfg.ChunkSize,
	)

	switch backend {
	case BackendMock:
		return NewMockRecorder(cfg), nil
	case BackendPortAudio:
		return newCapture(cfg, logger)
	default:
		return nil, ErrUnsupportedBackend
	}
}

// NewPlayer creates an audio player with the given configuration.
func NewPlayer(cfg Config, logger *slog.Logger) (Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = BackendPortAudio
	}

	switch backend {
	case BackendMock:
		return NewMockPlayer(), nil
	case BackendPortAudio:
		return newSpeaker(cfg, logger)
	default:
		return nil, ErrUnsupportedBackend
	}
}
