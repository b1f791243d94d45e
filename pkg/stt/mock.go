package stt

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-banter/pkg/audioio"
)

// Mock implements Provider for testing.
// All methods can be customized via function fields.
type Mock struct {
	// TranscribeFunc is called when Transcribe is invoked.
	// If nil, transcripts are popped from the queued script.
	TranscribeFunc func(ctx context.Context, clip audioio.Clip) (string, error)

	// HealthFunc is called when Health is invoked.
	// If nil, returns nil (healthy).
	HealthFunc func(ctx context.Context) error

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	// Tracking
	mu     sync.Mutex
	script []string
	calls  []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method     string
	ClipFrames int
	Time       time.Time
}

// NewMock creates a new mock provider. With no script queued,
// Transcribe returns an empty transcript.
func NewMock() *Mock {
	return &Mock{}
}

// Script queues transcripts returned by successive Transcribe calls.
func (m *Mock) Script(transcripts ...string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, transcripts...)
	return m
}

// Transcribe calls TranscribeFunc or pops the next scripted transcript.
func (m *Mock) Transcribe(ctx context.Context, clip audioio.Clip) (string, error) {
	m.recordCall("Transcribe", len(clip.Samples))
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, clip)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.script) == 0 {
		return "", nil
	}
	text := m.script[0]
	m.script = m.script[1:]
	return text, nil
}

// Health calls HealthFunc and records the call.
func (m *Mock) Health(ctx context.Context) error {
	m.recordCall("Health", 0)
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Name returns the provider identifier.
func (m *Mock) Name() string {
	return "mock"
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", 0)
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// recordCall adds a call to the tracking list.
func (m *Mock) recordCall(method string, frames int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method:     method,
		ClipFrames: frames,
		Time:       time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all recorded calls and any remaining script.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.script = nil
}

// WithError returns a mock that always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		TranscribeFunc: func(ctx context.Context, clip audioio.Clip) (string, error) {
			return "", err
		},
		HealthFunc: func(ctx context.Context) error {
			return err
		},
	}
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
