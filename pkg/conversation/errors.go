package conversation

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conversation package.
var (
	// ErrInvalidConfig indicates the loop configuration failed validation.
	ErrInvalidConfig = errors.New("conversation: invalid configuration")

	// ErrMissingDependency indicates a required collaborator was not provided.
	ErrMissingDependency = errors.New("conversation: missing dependency")

	// ErrAlreadyStarted indicates Run was called on a loop that already ran.
	ErrAlreadyStarted = errors.New("conversation: session already started")

	// ErrTooManyFailures indicates the consecutive-failure cap fired and
	// the session terminated rather than retrying forever.
	ErrTooManyFailures = errors.New("conversation: too many consecutive failures")

	// errNoSpeech classifies a transcript that came back empty from a
	// non-empty clip.
	errNoSpeech = errors.New("conversation: no speech in captured audio")
)

// Stage identifies which step of a turn failed.
type Stage string

const (
	// StageCapture covers microphone recording errors.
	StageCapture Stage = "capture"
	// StageTranscription covers speech-to-text errors and empty transcripts.
	StageTranscription Stage = "transcription"
	// StageCompletion covers language model errors.
	StageCompletion Stage = "completion"
	// StageSynthesis covers text-to-speech errors.
	StageSynthesis Stage = "synthesis"
	// StagePlayback covers speaker output errors.
	StagePlayback Stage = "playback"
)

// TurnError wraps a collaborator failure with the turn stage it
// occurred in. A TurnError is recoverable: the loop logs it, abandons
// the rest of the turn, and returns to listening.
type TurnError struct {
	// Stage is the pipeline step that failed.
	Stage Stage

	// Err is the underlying collaborator error.
	Err error
}

// Error implements the error interface.
func (e *TurnError) Error() string {
	return fmt.Sprintf("conversation: %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *TurnError) Unwrap() error {
	return e.Err
}
