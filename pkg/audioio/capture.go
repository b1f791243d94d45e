package audioio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Capture records utterances from the default input device.
//
// Record reads fixed-size frames and endpoints on trailing silence:
// frames before the first voiced frame are discarded, frames after it
// are kept until the configured quiet hold elapses. The speech gate
// then rejects clips that are loud but not voice-like.
type Capture struct {
	cfg    Config
	logger *slog.Logger
	gate   *Gate

	mu     sync.Mutex
	closed bool
}

var _ Recorder = (*Capture)(nil)

func newCapture(cfg Config, logger *slog.Logger) (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audioio: initialize portaudio: %w", err)
	}
	return &Capture{
		cfg:    cfg,
		logger: logger,
		gate:   DefaultGate(),
	}, nil
}

// Record captures a single utterance. It returns an empty clip with a
// nil error when nothing voiced was heard before maxDuration.
func (c *Capture) Record(ctx context.Context, maxDuration time.Duration) (Clip, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Clip{}, ErrClosed
	}
	c.mu.Unlock()

	if maxDuration <= 0 {
		maxDuration = 10 * time.Second
	}

	buf := make([]int16, c.cfg.ChunkSize*c.cfg.Channels)
	out := make([]int16, 0, c.cfg.SampleRate*3)

	stream, err := portaudio.OpenDefaultStream(c.cfg.Channels, 0, float64(c.cfg.SampleRate), c.cfg.ChunkSize, buf)
	if err != nil {
		return Clip{}, fmt.Errorf("audioio: open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return Clip{}, fmt.Errorf("audioio: start input stream: %w", err)
	}
	defer stream.Stop()

	chunkDur := c.cfg.ChunkDuration()
	maxFrames := int(maxDuration / chunkDur)
	if maxFrames < 1 {
		maxFrames = 1
	}
	holdFrames := int(c.cfg.SilenceHold / chunkDur)
	if holdFrames < 1 {
		holdFrames = 1
	}

	var (
		speaking     bool
		silentFrames int
	)

	for i := 0; i < maxFrames; i++ {
		select {
		case <-ctx.Done():
			return Clip{}, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return Clip{}, fmt.Errorf("audioio: read input stream: %w", err)
		}

		_, rms := pcm16Stats(buf)
		if rms > float64(c.cfg.SilenceThreshold) {
			speaking = true
			silentFrames = 0
			out = append(out, buf...)
			continue
		}
		if speaking {
			silentFrames++
			out = append(out, buf...)
			if silentFrames >= holdFrames {
				break
			}
		}
	}

	clip := Clip{Samples: out, SampleRate: c.cfg.SampleRate, Channels: c.cfg.Channels}

	if !speaking || clip.Duration() < c.cfg.MinUtterance {
		c.logger.Debug("capture: nothing voiced", "duration", clip.Duration())
		return Clip{SampleRate: c.cfg.SampleRate, Channels: c.cfg.Channels}, nil
	}
	if !c.gate.IsSpeech(clip.Samples) {
		c.logger.Debug("capture: clip rejected by speech gate", "duration", clip.Duration())
		return Clip{SampleRate: c.cfg.SampleRate, Channels: c.cfg.Channels}, nil
	}

	peak, rms := clip.Stats()
	c.logger.Debug("capture: utterance complete",
		"duration", clip.Duration(),
		"samples", len(clip.Samples),
		"peak", peak,
		"rms", int(rms),
	)
	return clip, nil
}

// Name returns "portaudio".
func (c *Capture) Name() string {
	return "portaudio"
}

// Close terminates the PortAudio runtime.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return portaudio.Terminate()
}
