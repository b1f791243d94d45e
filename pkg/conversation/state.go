package conversation

// State represents where the loop is in the turn cycle.
type State int

const (
	// StateIdle indicates the session has not started listening yet.
	StateIdle State = iota
	// StateListening indicates the microphone is open, waiting for speech.
	StateListening
	// StateProcessing indicates a captured utterance is being transcribed
	// and completed.
	StateProcessing
	// StateSpeaking indicates the reply is being synthesized and played.
	StateSpeaking
	// StateTerminated indicates the session has ended.
	StateTerminated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
