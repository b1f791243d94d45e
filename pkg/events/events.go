// Package events records the session event log for a conversation.
//
// Every stage of a conversation turn emits an event: audio capture,
// transcription, AI response, TTS output, failures, and system events
// like state changes. Events are kept in a bounded in-memory buffer
// for the dashboard and optionally appended to a JSON-lines file for
// offline debugging.
package events

import (
	"encoding/json"
	"time"
)

// Kind identifies the type of session event.
type Kind string

const (
	// KindAudioCapture is emitted after a recording attempt.
	KindAudioCapture Kind = "audio_capture"

	// KindTranscription is emitted after speech-to-text.
	KindTranscription Kind = "transcription"

	// KindAIResponse is emitted after a completion.
	KindAIResponse Kind = "ai_response"

	// KindTTSOutput is emitted after speech synthesis and playback.
	KindTTSOutput Kind = "tts_output"

	// KindError is emitted for every failure with its class.
	KindError Kind = "error"

	// KindSystem is emitted for lifecycle events like state changes.
	KindSystem Kind = "system"
)

// Event is a single session log entry. Time and SessionID are stamped
// by the Recorder.
type Event struct {
	Time      time.Time
	SessionID string
	Kind      Kind
	Fields    map[string]any
}

// MarshalJSON flattens the fields into the top-level object alongside
// the timestamp, session id, and event kind.
func (e Event) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Fields)+3)
	for k, v := range e.Fields {
		flat[k] = v
	}
	flat["timestamp"] = e.Time.Format(time.RFC3339Nano)
	flat["session_id"] = e.SessionID
	flat["event"] = string(e.Kind)
	return json.Marshal(flat)
}

// AudioCapture describes a finished recording attempt.
func AudioCapture(duration time.Duration, frames int, volume float64) Event {
	return Event{
		Kind: KindAudioCapture,
		Fields: map[string]any{
			"duration_ms": duration.Milliseconds(),
			"frames":      frames,
			"volume":      volume,
		},
	}
}

// Transcription describes a speech-to-text result. Empty transcripts
// are recorded too so silent turns stay visible in the log.
func Transcription(text string, duration time.Duration) Event {
	return Event{
		Kind: KindTranscription,
		Fields: map[string]any{
			"transcribed_text": text,
			"text_length":      len(text),
			"is_empty":         text == "",
			"duration_ms":      duration.Milliseconds(),
		},
	}
}

// AIResponse describes a completion result.
func AIResponse(input, reply, intent string) Event {
	return Event{
		Kind: KindAIResponse,
		Fields: map[string]any{
			"input_text":      input,
			"ai_response":     reply,
			"intent":          intent,
			"response_length": len(reply),
		},
	}
}

// TTSOutput describes a synthesis and playback attempt.
func TTSOutput(text, voiceID string, success bool) Event {
	return Event{
		Kind: KindTTSOutput,
		Fields: map[string]any{
			"text":     text,
			"voice_id": voiceID,
			"success":  success,
		},
	}
}

// Failure describes an error with its failure class and where in the
// turn it happened.
func Failure(class, message, context string) Event {
	return Event{
		Kind: KindError,
		Fields: map[string]any{
			"error_type":    class,
			"error_message": message,
			"context":       context,
		},
	}
}

// System describes a lifecycle event such as a state change.
func System(event string, details map[string]any) Event {
	if details == nil {
		details = map[string]any{}
	}
	return Event{
		Kind: KindSystem,
		Fields: map[string]any{
			"system_event": event,
			"details":      details,
		},
	}
}
