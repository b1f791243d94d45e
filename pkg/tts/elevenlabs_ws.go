package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	elevenLabsWSBaseURL = "wss://api.elevenlabs.io/v1/text-to-speech"
	wsHandshakeTimeout  = 10 * time.Second
	providerElevenWS    = "elevenlabs-ws"
)

// ElevenLabsWS implements Provider over the ElevenLabs stream-input
// WebSocket API. Each synthesis runs one session: dial, send the
// text, signal end of input, then collect audio chunks until the
// server marks the stream final. The protocol closes the stream
// after end of input, so sessions are per utterance.
type ElevenLabsWS struct {
	config *Config
	logger *slog.Logger
	wsBase string
}

// NewElevenLabsWS creates a WebSocket-based ElevenLabs TTS provider.
// Output defaults to 16kHz PCM so collected chunks play without a
// decode step.
func NewElevenLabsWS(opts ...Option) (*ElevenLabsWS, error) {
	cfg := DefaultConfig()
	cfg.OutputFormat = EncodingPCM16
	cfg.Apply(opts...)

	if err := cfg.ValidateWithVoice(); err != nil {
		return nil, err
	}

	wsBase := cfg.BaseURL
	if wsBase == "" {
		wsBase = elevenLabsWSBaseURL
	}

	return &ElevenLabsWS{
		config: cfg,
		logger: cfg.Logger.With("component", "tts.elevenlabs_ws"),
		wsBase: wsBase,
	}, nil
}

// Synthesize runs one streaming session and returns the collected audio.
func (e *ElevenLabsWS) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(providerElevenWS, ErrEmptyText)
	}

	start := time.Now()
	var audio []byte
	var firstChunk time.Duration

	err := e.session(ctx, text, func(chunk []byte) {
		if len(audio) == 0 {
			firstChunk = time.Since(start)
		}
		audio = append(audio, chunk...)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"first_chunk_ms", firstChunk.Milliseconds(),
		"total_ms", time.Since(start).Milliseconds(),
	)

	return &AudioResult{
		Audio:     audio,
		Format:    e.outputFormat(),
		CharCount: len(text),
		LatencyMs: firstChunk.Milliseconds(),
		Duration:  e.estimateDuration(len(audio)),
	}, nil
}

// Stream runs the session in the background, delivering chunks as
// they arrive.
func (e *ElevenLabsWS) Stream(ctx context.Context, text string) (AudioStream, error) {
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(providerElevenWS, ErrEmptyText)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	stream := &wsStream{
		ch:     make(chan []byte, 16),
		cancel: cancel,
		format: e.outputFormat(),
	}

	go func() {
		err := e.session(sessionCtx, text, func(chunk []byte) {
			select {
			case stream.ch <- chunk:
			case <-sessionCtx.Done():
			}
		})
		stream.finish(err)
	}()

	return stream, nil
}

// Health dials the streaming endpoint to verify connectivity and key
// validity, then closes the session without synthesizing.
func (e *ElevenLabsWS) Health(ctx context.Context) error {
	conn, err := e.dial(ctx)
	if err != nil {
		return err
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}

// Name returns the provider identifier.
func (e *ElevenLabsWS) Name() string {
	return providerElevenWS
}

// Close releases resources. Sessions are per call, so there is no
// persistent connection to tear down.
func (e *ElevenLabsWS) Close() error {
	return nil
}

// VoiceID returns the configured voice ID.
func (e *ElevenLabsWS) VoiceID() string {
	return e.config.VoiceID
}

// ModelID returns the configured model ID.
func (e *ElevenLabsWS) ModelID() string {
	return e.config.ModelID
}

// dial opens the WebSocket connection for one session.
func (e *ElevenLabsWS) dial(ctx context.Context) (*websocket.Conn, error) {
	url := fmt.Sprintf("%s/%s/stream-input?model_id=%s&output_format=%s",
		e.wsBase, e.config.VoiceID, e.config.ModelID, e.config.OutputFormat)

	headers := http.Header{}
	headers.Set("xi-api-key", e.config.APIKey)

	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("websocket dial failed: %v", err),
				Provider:   providerElevenWS,
			}
		}
		return nil, WrapError(providerElevenWS, fmt.Errorf("websocket dial: %w", err))
	}

	return conn, nil
}

// session runs one full synthesis exchange, invoking deliver for
// each decoded audio chunk.
func (e *ElevenLabsWS) session(ctx context.Context, text string, deliver func([]byte)) error {
	conn, err := e.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock reads when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	deadline := time.Now().Add(e.config.StreamTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)

	// Begin of stream: a single space primes the session.
	bos := map[string]interface{}{
		"text": " ",
		"voice_settings": map[string]interface{}{
			"stability":        e.config.VoiceSettings.Stability,
			"similarity_boost": e.config.VoiceSettings.SimilarityBoost,
		},
		"generation_config": map[string]interface{}{
			"chunk_length_schedule": []int{120, 160, 250, 290},
		},
	}
	if err := conn.WriteJSON(bos); err != nil {
		return WrapError(providerElevenWS, fmt.Errorf("send BOS: %w", err))
	}

	// The API requires trailing whitespace on text chunks.
	msg := map[string]interface{}{
		"text":                   text + " ",
		"try_trigger_generation": true,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return WrapError(providerElevenWS, fmt.Errorf("send text: %w", err))
	}

	// End of stream: empty text flushes remaining audio.
	if err := conn.WriteJSON(map[string]interface{}{"text": ""}); err != nil {
		return WrapError(providerElevenWS, fmt.Errorf("send EOS: %w", err))
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return WrapError(providerElevenWS, fmt.Errorf("read: %w", err))
		}

		var resp struct {
			Audio   string `json:"audio"`
			IsFinal bool   `json:"isFinal"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(message, &resp); err != nil {
			e.logger.Warn("unparseable server message", "error", err)
			continue
		}

		if resp.Error != "" {
			return WrapError(providerElevenWS, fmt.Errorf("server error: %s", resp.Error))
		}

		if resp.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(resp.Audio)
			if err != nil {
				e.logger.Warn("undecodable audio chunk", "error", err)
				continue
			}
			deliver(chunk)
		}

		if resp.IsFinal {
			return nil
		}
	}
}

// outputFormat returns the audio format configuration.
func (e *ElevenLabsWS) outputFormat() AudioFormat {
	return AudioFormat{
		Encoding:   e.config.OutputFormat,
		SampleRate: SampleRateFromEncoding(e.config.OutputFormat),
		Channels:   1,
		BitDepth:   16,
	}
}

// estimateDuration estimates audio duration from byte count.
func (e *ElevenLabsWS) estimateDuration(byteCount int) time.Duration {
	if !IsPCM(e.config.OutputFormat) {
		return time.Duration(float64(byteCount) * 8 / 128000 * float64(time.Second))
	}
	sampleRate := SampleRateFromEncoding(e.config.OutputFormat)
	samples := byteCount / 2
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// wsStream delivers session chunks as an AudioStream.
type wsStream struct {
	ch     chan []byte
	cancel context.CancelFunc
	format AudioFormat

	mu  sync.Mutex
	err error
}

// finish records the session outcome and closes the channel.
func (s *wsStream) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.ch)
}

// Read returns the next audio chunk, or nil at end of stream.
func (s *wsStream) Read() ([]byte, error) {
	chunk, ok := <-s.ch
	if !ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		return nil, s.err
	}
	return chunk, nil
}

// Close cancels the session.
func (s *wsStream) Close() error {
	s.cancel()
	return nil
}

// Format returns the audio format.
func (s *wsStream) Format() AudioFormat {
	return s.format
}

// Verify ElevenLabsWS implements Provider at compile time.
var _ Provider = (*ElevenLabsWS)(nil)
