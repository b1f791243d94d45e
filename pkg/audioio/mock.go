package audioio

import (
	"context"
	"math"
	"sync"
	"time"
)

// MockRecorder is a scripted recorder for tests. Each Record call pops
// the next queued clip; an exhausted queue returns an empty clip, the
// same as a silent room. Set RecordFunc to override entirely.
type MockRecorder struct {
	cfg Config

	mu      sync.Mutex
	queue   []Clip
	calls   int
	closed  bool
	lastMax time.Duration

	// RecordFunc, if set, replaces the queue behavior.
	RecordFunc func(ctx context.Context, maxDuration time.Duration) (Clip, error)
}

var _ Recorder = (*MockRecorder)(nil)

// NewMockRecorder creates a mock recorder with an empty queue.
func NewMockRecorder(cfg Config) *MockRecorder {
	return &MockRecorder{cfg: cfg}
}

// Enqueue appends clips to the script.
func (m *MockRecorder) Enqueue(clips ...Clip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, clips...)
}

// EnqueueTone appends a synthetic sine clip, handy for gate and
// provider tests.
func (m *MockRecorder) EnqueueTone(freq float64, d time.Duration) {
	m.Enqueue(ToneClip(m.cfg.SampleRate, freq, d))
}

// Record pops the next scripted clip.
func (m *MockRecorder) Record(ctx context.Context, maxDuration time.Duration) (Clip, error) {
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Clip{}, ErrClosed
	}
	m.calls++
	m.lastMax = maxDuration
	fn := m.RecordFunc
	var clip Clip
	if fn == nil {
		if len(m.queue) > 0 {
			clip = m.queue[0]
			m.queue = m.queue[1:]
		} else {
			clip = Clip{SampleRate: m.cfg.SampleRate, Channels: m.cfg.Channels}
		}
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, maxDuration)
	}
	return clip, nil
}

// Calls returns how many times Record was invoked.
func (m *MockRecorder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastMaxDuration returns the maxDuration of the most recent call.
func (m *MockRecorder) LastMaxDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMax
}

// Name returns "mock".
func (m *MockRecorder) Name() string {
	return "mock"
}

// Close marks the recorder closed; later Record calls fail.
func (m *MockRecorder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// MockPlayer records everything it is asked to play.
type MockPlayer struct {
	mu     sync.Mutex
	clips  []Clip
	mp3s   [][]byte
	closed bool

	// PlayFunc and PlayMP3Func, if set, replace the default recording
	// behavior.
	PlayFunc    func(ctx context.Context, clip Clip) error
	PlayMP3Func func(ctx context.Context, data []byte) error
}

var _ Player = (*MockPlayer)(nil)

// NewMockPlayer creates a mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Play records the clip.
func (m *MockPlayer) Play(ctx context.Context, clip Clip) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	fn := m.PlayFunc
	if fn == nil {
		m.clips = append(m.clips, clip)
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, clip)
	}
	return nil
}

// PlayMP3 records the buffer.
func (m *MockPlayer) PlayMP3(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	fn := m.PlayMP3Func
	if fn == nil {
		m.mp3s = append(m.mp3s, data)
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, data)
	}
	return nil
}

// Played returns the clips played so far.
func (m *MockPlayer) Played() []Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Clip(nil), m.clips...)
}

// PlayedMP3s returns the MP3 buffers played so far.
func (m *MockPlayer) PlayedMP3s() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.mp3s...)
}

// Name returns "mock".
func (m *MockPlayer) Name() string {
	return "mock"
}

// Close marks the player closed.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// ToneClip generates a sine wave clip. Amplitude is fixed at half
// scale, loud enough to pass the default gate thresholds.
func ToneClip(sampleRate int, freq float64, d time.Duration) Clip {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	n := int(float64(sampleRate) * d.Seconds())
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(16000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return Clip{Samples: samples, SampleRate: sampleRate, Channels: 1}
}
