package protocol

import "time"

// NewStateMessage creates a state transition frame.
func NewStateMessage(from, to string) (*Message, error) {
	return NewMessage(TypeState, StateData{From: from, To: to})
}

// NewTranscriptMessage creates a transcript frame.
func NewTranscriptMessage(text string) (*Message, error) {
	return NewMessage(TypeTranscript, TranscriptData{
		Text:  text,
		Empty: text == "",
	})
}

// NewReplyMessage creates a reply frame.
func NewReplyMessage(input, text, intent string) (*Message, error) {
	return NewMessage(TypeReply, ReplyData{
		Input:  input,
		Text:   text,
		Intent: intent,
	})
}

// NewMetricsMessage creates a latency frame from one turn's
// measurements.
func NewMetricsMessage(stt, llm, tts, total time.Duration, turns int) (*Message, error) {
	return NewMessage(TypeMetrics, MetricsData{
		STTMs:   stt.Milliseconds(),
		LLMMs:   llm.Milliseconds(),
		TTSMs:   tts.Milliseconds(),
		TotalMs: total.Milliseconds(),
		Turns:   turns,
	})
}

// NewEventMessage wraps a session event that has no dedicated frame
// type. The event must marshal to JSON.
func NewEventMessage(event any) (*Message, error) {
	return NewMessage(TypeEvent, event)
}

// GetStateData extracts a state payload.
func (m *Message) GetStateData() (*StateData, error) {
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTranscriptData extracts a transcript payload.
func (m *Message) GetTranscriptData() (*TranscriptData, error) {
	var data TranscriptData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetReplyData extracts a reply payload.
func (m *Message) GetReplyData() (*ReplyData, error) {
	var data ReplyData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMetricsData extracts a metrics payload.
func (m *Message) GetMetricsData() (*MetricsData, error) {
	var data MetricsData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
