package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultCapacity bounds the in-memory event buffer.
const defaultCapacity = 500

// Config holds recorder configuration.
type Config struct {
	// SessionID tags every event. Defaults to a random UUID.
	SessionID string

	// Capacity bounds the in-memory buffer. Oldest events are dropped
	// once it is full.
	Capacity int

	// FilePath enables the JSON-lines file sink when non-empty.
	FilePath string

	// Notify is called with every recorded event. It runs inline on
	// the recording goroutine and must not block.
	Notify func(Event)

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option configures a recorder.
type Option func(*Config)

// WithSessionID sets the session identifier.
func WithSessionID(id string) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}

// WithCapacity bounds the in-memory buffer.
func WithCapacity(n int) Option {
	return func(c *Config) {
		c.Capacity = n
	}
}

// WithFile enables the JSON-lines file sink.
func WithFile(path string) Option {
	return func(c *Config) {
		c.FilePath = path
	}
}

// WithNotify sets the per-event callback.
func WithNotify(fn func(Event)) Option {
	return func(c *Config) {
		c.Notify = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Capacity: defaultCapacity,
		Logger:   slog.Default(),
	}
}

// Apply applies options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Recorder keeps a bounded session event log. It is safe for
// concurrent use and never blocks the conversation loop: when the
// buffer is full the oldest event is dropped.
type Recorder struct {
	mu        sync.Mutex
	sessionID string
	capacity  int
	events    []Event
	file      *os.File
	notify    func(Event)
	logger    *slog.Logger
}

// NewRecorder creates a session event recorder.
func NewRecorder(opts ...Option) (*Recorder, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	var file *os.File
	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("events: open log file: %w", err)
		}
		file = f
	}

	return &Recorder{
		sessionID: cfg.SessionID,
		capacity:  cfg.Capacity,
		events:    make([]Event, 0, cfg.Capacity),
		file:      file,
		notify:    cfg.Notify,
		logger:    cfg.Logger.With("component", "events"),
	}, nil
}

// Record stamps the event with the session id and current time, stores
// it, and forwards it to the file sink and notify callback.
func (r *Recorder) Record(e Event) {
	e.Time = time.Now()
	e.SessionID = r.sessionID

	r.mu.Lock()
	r.events = append(r.events, e)
	if len(r.events) > r.capacity {
		r.events = r.events[1:]
	}
	r.writeLocked(e)
	r.mu.Unlock()

	if r.notify != nil {
		r.notify(e)
	}
}

// writeLocked appends the event to the file sink. On a write failure
// the sink is disabled so a broken disk cannot stall the session.
func (r *Recorder) writeLocked(e Event) {
	if r.file == nil {
		return
	}

	line, err := json.Marshal(e)
	if err != nil {
		r.logger.Warn("event marshal failed", "error", err)
		return
	}
	line = append(line, '\n')

	if _, err := r.file.Write(line); err != nil {
		r.logger.Warn("event file sink failed, disabling", "error", err)
		r.file.Close()
		r.file = nil
	}
}

// Recent returns the last n events, oldest first. Non-positive n or n
// larger than the buffer returns everything retained.
func (r *Recorder) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || n > len(r.events) {
		n = len(r.events)
	}
	out := make([]Event, n)
	copy(out, r.events[len(r.events)-n:])
	return out
}

// Len returns the number of retained events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// SessionID returns the session identifier stamped on every event.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Clear drops all retained events. The file sink is left untouched.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
}

// Close flushes and closes the file sink.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
