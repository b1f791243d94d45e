package conversation

import (
	"sync"
	"time"
)

// Metrics tracks latency at each stage of a conversation turn.
// All durations are measured from the moment capture ends (the user
// stops talking).
type Metrics struct {
	// Timestamps for key events
	CaptureEndTime   time.Time // When the utterance capture finished
	TranscriptTime   time.Time // When STT completed transcription
	ReplyTime        time.Time // When the LLM reply arrived
	AudioReadyTime   time.Time // When TTS finished synthesis
	ResponseDoneTime time.Time // When playback completed

	// Computed latencies (from capture end)
	STTLatency   time.Duration // Time to complete transcription
	LLMLatency   time.Duration // Time to the completion reply
	TTSLatency   time.Duration // Time to synthesized audio
	TotalLatency time.Duration // Total end-to-end latency

	// Sizes for this conversation turn
	TranscriptChars int // Length of the user transcript
	ReplyChars      int // Length of the assistant reply
}

// FormatLatency returns a formatted string of current latencies.
func (m *Metrics) FormatLatency() string {
	return formatDuration(m.STTLatency) + " STT | " +
		formatDuration(m.LLMLatency) + " LLM | " +
		formatDuration(m.TTSLatency) + " TTS | " +
		formatDuration(m.TotalLatency) + " TOTAL"
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "---ms"
	}
	return d.Round(time.Millisecond).String()
}

// MetricsCollector collects latency metrics during conversation turns.
// It is goroutine-safe and can be read from the status endpoints while
// the loop records.
type MetricsCollector struct {
	mu      sync.Mutex
	current Metrics
	history []Metrics // Recent turns for averaging

	onUpdate func(Metrics)
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		history: make([]Metrics, 0, 100),
	}
}

// OnUpdate sets a callback that fires whenever a turn completes.
func (m *MetricsCollector) OnUpdate(fn func(Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// MarkCaptureEnd records when the user stopped speaking. This is the
// reference point for all latency measurements and resets the current
// turn.
func (m *MetricsCollector) MarkCaptureEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Metrics{}
	m.current.CaptureEndTime = time.Now()
}

// MarkTranscript records when transcription completed.
func (m *MetricsCollector) MarkTranscript(chars int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.TranscriptTime = time.Now()
	m.current.TranscriptChars = chars
	if !m.current.CaptureEndTime.IsZero() {
		m.current.STTLatency = m.current.TranscriptTime.Sub(m.current.CaptureEndTime)
	}
}

// MarkReply records when the completion reply arrived.
func (m *MetricsCollector) MarkReply(chars int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ReplyTime = time.Now()
	m.current.ReplyChars = chars
	if !m.current.CaptureEndTime.IsZero() {
		m.current.LLMLatency = m.current.ReplyTime.Sub(m.current.CaptureEndTime)
	}
}

// MarkAudioReady records when synthesis finished.
func (m *MetricsCollector) MarkAudioReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.AudioReadyTime.IsZero() {
		m.current.AudioReadyTime = time.Now()
		if !m.current.CaptureEndTime.IsZero() {
			m.current.TTSLatency = m.current.AudioReadyTime.Sub(m.current.CaptureEndTime)
		}
	}
}

// MarkResponseDone records when playback completed and archives the
// turn.
func (m *MetricsCollector) MarkResponseDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ResponseDoneTime = time.Now()
	if !m.current.CaptureEndTime.IsZero() {
		m.current.TotalLatency = m.current.ResponseDoneTime.Sub(m.current.CaptureEndTime)
	}
	m.history = append(m.history, m.current)
	if len(m.history) > 100 {
		m.history = m.history[1:]
	}
	m.notify()
}

// Current returns the current turn's metrics snapshot.
func (m *MetricsCollector) Current() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Turns returns how many completed turns have been archived.
func (m *MetricsCollector) Turns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// Average returns average latencies over recent turns.
func (m *MetricsCollector) Average() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return Metrics{}
	}

	var avg Metrics
	for _, h := range m.history {
		avg.STTLatency += h.STTLatency
		avg.LLMLatency += h.LLMLatency
		avg.TTSLatency += h.TTSLatency
		avg.TotalLatency += h.TotalLatency
	}

	n := time.Duration(len(m.history))
	avg.STTLatency /= n
	avg.LLMLatency /= n
	avg.TTSLatency /= n
	avg.TotalLatency /= n

	return avg
}

// notify calls the update callback if set.
// Must be called with mutex held.
func (m *MetricsCollector) notify() {
	if m.onUpdate != nil {
		metrics := m.current
		go m.onUpdate(metrics)
	}
}
