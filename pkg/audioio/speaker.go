package audioio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Speaker plays clips through the default output device via the beep
// speaker. The speaker mixer is process-global; it is initialized once
// at the configured sample rate and everything else is resampled to
// match.
type Speaker struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ Player = (*Speaker)(nil)

var speakerInit sync.Once

func newSpeaker(cfg Config, logger *slog.Logger) (*Speaker, error) {
	var initErr error
	speakerInit.Do(func() {
		sr := beep.SampleRate(cfg.SampleRate)
		initErr = speaker.Init(sr, sr.N(time.Second/10))
	})
	if initErr != nil {
		return nil, fmt.Errorf("audioio: initialize speaker: %w", initErr)
	}
	return &Speaker{cfg: cfg, logger: logger}, nil
}

// Play blocks until the clip has been played or ctx is cancelled.
// Cancellation clears the mixer so playback stops immediately.
func (s *Speaker) Play(ctx context.Context, clip Clip) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	if clip.Empty() {
		return nil
	}

	samples := clip.Samples
	if clip.SampleRate != s.cfg.SampleRate {
		samples = Resample(samples, clip.SampleRate, s.cfg.SampleRate)
	}

	st := &pcmStreamer{samples: samples, channels: clip.Channels}
	return s.playStreamer(ctx, st)
}

// PlayMP3 decodes an MP3 buffer and plays it, blocking until done.
func (s *Speaker) PlayMP3(ctx context.Context, data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	if len(data) == 0 {
		return nil
	}

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("audioio: decode mp3: %w", err)
	}
	defer streamer.Close()

	var st beep.Streamer = streamer
	if int(format.SampleRate) != s.cfg.SampleRate {
		st = beep.Resample(4, format.SampleRate, beep.SampleRate(s.cfg.SampleRate), streamer)
	}
	return s.playStreamer(ctx, st)
}

func (s *Speaker) playStreamer(ctx context.Context, st beep.Streamer) error {
	done := make(chan struct{})
	speaker.Play(beep.Seq(st, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Name returns "beep".
func (s *Speaker) Name() string {
	return "beep"
}

// Close stops any in-flight playback.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	speaker.Clear()
	return nil
}

// pcmStreamer adapts raw PCM16 samples to a beep.Streamer.
type pcmStreamer struct {
	samples  []int16
	channels int
	pos      int
}

func (p *pcmStreamer) Stream(out [][2]float64) (n int, ok bool) {
	if p.pos >= len(p.samples) {
		return 0, false
	}
	for i := range out {
		if p.pos >= len(p.samples) {
			return i, true
		}
		left := float64(p.samples[p.pos]) / 32768
		right := left
		if p.channels >= 2 && p.pos+1 < len(p.samples) {
			right = float64(p.samples[p.pos+1]) / 32768
			p.pos += p.channels
		} else {
			p.pos++
		}
		out[i][0], out[i][1] = left, right
	}
	return len(out), true
}

func (p *pcmStreamer) Err() error {
	return nil
}
