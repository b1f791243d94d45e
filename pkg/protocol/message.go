// Package protocol defines the websocket message envelope for the
// dashboard feed. The server pushes typed JSON frames; dashboard
// clients never send anything back.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies a dashboard feed frame.
type MessageType string

const (
	// TypeState announces a conversation state transition.
	TypeState MessageType = "state"

	// TypeTranscript carries what the user said.
	TypeTranscript MessageType = "transcript"

	// TypeReply carries the assistant's reply.
	TypeReply MessageType = "reply"

	// TypeMetrics carries one turn's latency breakdown.
	TypeMetrics MessageType = "metrics"

	// TypeEvent wraps any other session event.
	TypeEvent MessageType = "event"
)

// Message is the envelope for every feed frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage wraps a payload in an envelope stamped with the current
// time.
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("protocol: marshal %s payload: %w", msgType, err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      raw,
	}, nil
}

// ParseData unmarshals the payload into v.
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded frame.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage decodes a frame received off the wire.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("protocol: parse message: %w", err)
	}
	return &msg, nil
}

// StateData describes a conversation state transition.
type StateData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TranscriptData describes a transcribed user utterance. Empty
// transcripts are pushed too so silent turns show up on the dashboard.
type TranscriptData struct {
	Text  string `json:"text"`
	Empty bool   `json:"empty,omitempty"`
}

// ReplyData describes an assistant reply.
type ReplyData struct {
	Input  string `json:"input,omitempty"`
	Text   string `json:"text"`
	Intent string `json:"intent,omitempty"`
}

// MetricsData describes one turn's stage latencies in milliseconds.
type MetricsData struct {
	STTMs   int64 `json:"stt_ms"`
	LLMMs   int64 `json:"llm_ms"`
	TTSMs   int64 `json:"tts_ms"`
	TotalMs int64 `json:"total_ms"`
	Turns   int   `json:"turns"`
}
