package protocol

import (
	"encoding/json"
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    any
		wantErr bool
	}{
		{
			name:    "state message",
			msgType: TypeState,
			data:    StateData{From: "idle", To: "listening"},
			wantErr: false,
		},
		{
			name:    "transcript message",
			msgType: TypeTranscript,
			data:    TranscriptData{Text: "hello there"},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypeEvent,
			data:    nil,
			wantErr: false,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeEvent,
			data:    func() {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("Type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("Timestamp should be set")
			}
		})
	}
}

func TestStateMessage(t *testing.T) {
	msg, err := NewStateMessage("listening", "processing")
	if err != nil {
		t.Fatalf("NewStateMessage() error = %v", err)
	}
	if msg.Type != TypeState {
		t.Errorf("Type = %v, want %v", msg.Type, TypeState)
	}

	state, err := msg.GetStateData()
	if err != nil {
		t.Fatalf("GetStateData() error = %v", err)
	}
	if state.From != "listening" || state.To != "processing" {
		t.Errorf("StateData = %+v, want listening -> processing", state)
	}
}

func TestTranscriptMessage(t *testing.T) {
	t.Run("With text", func(t *testing.T) {
		msg, err := NewTranscriptMessage("tell me a story")
		if err != nil {
			t.Fatalf("NewTranscriptMessage() error = %v", err)
		}
		data, err := msg.GetTranscriptData()
		if err != nil {
			t.Fatalf("GetTranscriptData() error = %v", err)
		}
		if data.Text != "tell me a story" || data.Empty {
			t.Errorf("TranscriptData = %+v", data)
		}
	})

	t.Run("Empty transcript", func(t *testing.T) {
		msg, err := NewTranscriptMessage("")
		if err != nil {
			t.Fatalf("NewTranscriptMessage() error = %v", err)
		}
		data, err := msg.GetTranscriptData()
		if err != nil {
			t.Fatalf("GetTranscriptData() error = %v", err)
		}
		if !data.Empty {
			t.Error("Empty should be true for an empty transcript")
		}
	})
}

func TestReplyMessage(t *testing.T) {
	msg, err := NewReplyMessage("hello", "Hi there!", "greeting")
	if err != nil {
		t.Fatalf("NewReplyMessage() error = %v", err)
	}

	// Round trip through the wire encoding.
	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeReply {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeReply)
	}

	reply, err := parsed.GetReplyData()
	if err != nil {
		t.Fatalf("GetReplyData() error = %v", err)
	}
	if reply.Input != "hello" || reply.Text != "Hi there!" || reply.Intent != "greeting" {
		t.Errorf("ReplyData = %+v", reply)
	}
}

func TestMetricsMessage(t *testing.T) {
	msg, err := NewMetricsMessage(1200e6, 2500e6, 900e6, 4800e6, 7)
	if err != nil {
		t.Fatalf("NewMetricsMessage() error = %v", err)
	}

	data, err := msg.GetMetricsData()
	if err != nil {
		t.Fatalf("GetMetricsData() error = %v", err)
	}
	if data.STTMs != 1200 || data.LLMMs != 2500 || data.TTSMs != 900 || data.TotalMs != 4800 {
		t.Errorf("MetricsData = %+v, want millisecond conversions", data)
	}
	if data.Turns != 7 {
		t.Errorf("Turns = %d, want 7", data.Turns)
	}
}

func TestParseInvalidMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"invalid json", "not json", true},
		{"empty object", "{}", false},
		{"valid frame", `{"type":"state","ts":1234567890}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageJSON(t *testing.T) {
	msg, err := NewStateMessage("idle", "listening")
	if err != nil {
		t.Fatalf("NewStateMessage() error = %v", err)
	}
	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal as map: %v", err)
	}
	if parsed["type"] != "state" {
		t.Errorf("type = %v, want state", parsed["type"])
	}
	if _, ok := parsed["ts"]; !ok {
		t.Error("ts field should be present")
	}
	if _, ok := parsed["data"]; !ok {
		t.Error("data field should be present")
	}
}
