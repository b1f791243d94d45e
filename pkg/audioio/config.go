package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendPortAudio uses PortAudio for cross-platform audio I/O.
	BackendPortAudio Backend = "portaudio"
	// BackendMock uses a mock implementation for testing.
	BackendMock Backend = "mock"
)

// Config holds audio configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "auto" (PortAudio when available)
	Backend Backend `yaml:"backend" json:"backend"`

	// SampleRate is the capture sample rate in Hz.
	// Default: 16000 (what the transcription APIs expect)
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`

	// Channels is the number of audio channels.
	// Default: 1 (mono)
	Channels int `yaml:"channels" json:"channels"`

	// ChunkSize is the number of samples read from the device per frame.
	// Default: 1024 (64ms at 16kHz)
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`

	// SilenceThreshold is the RMS level (int16 scale) below which a
	// frame counts as silence. Default: 100.
	SilenceThreshold int `yaml:"silence_threshold" json:"silence_threshold"`

	// SilenceHold is the trailing quiet time that ends an utterance.
	// Default: 1s.
	SilenceHold time.Duration `yaml:"silence_hold" json:"silence_hold"`

	// MinUtterance is the shortest recording worth keeping. Clips
	// below it are treated as noise. Default: 500ms.
	MinUtterance time.Duration `yaml:"min_utterance" json:"min_utterance"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:          BackendAuto,
		SampleRate:       16000,
		Channels:         1,
		ChunkSize:        1024,
		SilenceThreshold: 100,
		SilenceHold:      time.Second,
		MinUtterance:     500 * time.Millisecond,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.SilenceThreshold < 0 {
		return fmt.Errorf("silence_threshold must not be negative, got %d", c.SilenceThreshold)
	}
	if c.SilenceHold <= 0 {
		return fmt.Errorf("silence_hold must be positive, got %v", c.SilenceHold)
	}
	return nil
}

// ChunkDuration returns the wall time covered by one device frame.
func (c *Config) ChunkDuration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(c.ChunkSize) / float64(c.SampleRate) * float64(time.Second))
}
