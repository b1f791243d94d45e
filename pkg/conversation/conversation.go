// Package conversation drives the voice conversation loop: record an
// utterance, transcribe it, complete a reply, synthesize and play it,
// then listen again.
//
// The loop owns the bounded conversation history and the session state
// machine. External collaborators (audio, speech-to-text, completion,
// text-to-speech) are plugged in through small interfaces so any
// provider package, or a test mock, can serve.
//
// Example usage:
//
//	loop, err := conversation.New(conversation.Deps{
//	    Recorder:    recorder,
//	    Player:      player,
//	    Transcriber: sttProvider,
//	    Completer:   chatProvider,
//	    Synthesizer: ttsProvider,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := loop.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/teslashibe/go-banter/pkg/audioio"
	"github.com/teslashibe/go-banter/pkg/chat"
	"github.com/teslashibe/go-banter/pkg/events"
	"github.com/teslashibe/go-banter/pkg/tts"
)

// Recorder captures one utterance, blocking until the speaker goes
// quiet or maxDuration elapses. A silent room returns an empty clip
// with a nil error.
type Recorder interface {
	Record(ctx context.Context, maxDuration time.Duration) (audioio.Clip, error)
}

// Player plays synthesized audio, blocking until playback completes.
type Player interface {
	Play(ctx context.Context, clip audioio.Clip) error
	PlayMP3(ctx context.Context, data []byte) error
}

// Transcriber converts a captured clip to text. Silence-only audio
// returns an empty string with a nil error.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audioio.Clip) (string, error)
}

// Completer generates the assistant reply for an ordered turn
// sequence.
type Completer interface {
	Complete(ctx context.Context, turns []chat.Message) (string, error)
}

// Synthesizer converts reply text to audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*tts.AudioResult, error)
}

// Deps are the collaborators the loop drives. All five are required;
// Events is optional.
type Deps struct {
	Recorder    Recorder
	Player      Player
	Transcriber Transcriber
	Completer   Completer
	Synthesizer Synthesizer

	// Events receives the diagnostic event stream. Nil disables event
	// recording.
	Events *events.Recorder
}

// Loop runs a voice conversation session. Create one with New and
// drive it with Run; a Loop runs a single session.
type Loop struct {
	config  *Config
	deps    Deps
	history *History
	metrics *MetricsCollector
	logger  *slog.Logger

	mu           sync.Mutex
	state        State
	failures     map[Stage]int
	turns        int
	startedAt    time.Time
	lastActivity time.Time
}

// New creates a conversation loop with the given collaborators.
func New(deps Deps, opts ...Option) (*Loop, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Recorder == nil:
		return nil, fmt.Errorf("%w: recorder", ErrMissingDependency)
	case deps.Player == nil:
		return nil, fmt.Errorf("%w: player", ErrMissingDependency)
	case deps.Transcriber == nil:
		return nil, fmt.Errorf("%w: transcriber", ErrMissingDependency)
	case deps.Completer == nil:
		return nil, fmt.Errorf("%w: completer", ErrMissingDependency)
	case deps.Synthesizer == nil:
		return nil, fmt.Errorf("%w: synthesizer", ErrMissingDependency)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Loop{
		config:   cfg,
		deps:     deps,
		history:  NewHistory(cfg.SystemPrompt, cfg.MaxExchanges),
		metrics:  NewMetricsCollector(),
		logger:   cfg.Logger.With("component", "conversation.loop"),
		state:    StateIdle,
		failures: make(map[Stage]int),
	}, nil
}

// Run drives the session until an exit phrase is heard, the context is
// cancelled, or the consecutive-failure cap fires. Exit phrases and
// cancellation return nil; the failure cap returns an error wrapping
// ErrTooManyFailures.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.start(); err != nil {
		return err
	}

	l.logger.Info("session starting",
		"max_exchanges", l.config.MaxExchanges,
		"max_record_time", l.config.MaxRecordTime,
		"intent", l.config.Intent,
	)
	l.record(events.System("session_start", map[string]any{
		"max_exchanges": l.config.MaxExchanges,
		"intent":        l.config.Intent,
	}))

	// Welcome plays before the first listen; the session starts fine
	// without it.
	l.say(ctx, l.config.WelcomeLine)

	for {
		if ctx.Err() != nil {
			l.terminate("interrupted")
			return nil
		}

		l.setState(StateListening)
		clip, err := l.deps.Recorder.Record(ctx, l.config.MaxRecordTime)
		if err != nil {
			if ctx.Err() != nil {
				l.terminate("interrupted")
				return nil
			}
			if ferr := l.fail(StageCapture, err); ferr != nil {
				l.terminate("too_many_failures")
				return ferr
			}
			// A broken capture device returns immediately; the pause
			// keeps the loop from spinning on it.
			l.pause(ctx, l.config.FailureBackoff)
			continue
		}
		if clip.Empty() {
			l.maybeIdlePrompt(ctx)
			continue
		}

		l.metrics.MarkCaptureEnd()
		_, rms := clip.Stats()
		l.record(events.AudioCapture(clip.Duration(), len(clip.Samples), rms))
		l.logger.Debug("captured utterance",
			"duration", clip.Duration().Round(time.Millisecond),
			"frames", len(clip.Samples),
		)

		done, err := l.runTurn(ctx, clip)
		if err != nil {
			l.terminate("too_many_failures")
			return err
		}
		if done {
			l.terminate("exit_phrase")
			return nil
		}
	}
}

// runTurn processes one captured utterance through transcription,
// completion, and speech. It reports done=true when an exit phrase
// ended the session and returns an error only when the failure cap
// fired.
func (l *Loop) runTurn(ctx context.Context, clip audioio.Clip) (bool, error) {
	l.setState(StateProcessing)

	sttStart := time.Now()
	transcript, err := l.deps.Transcriber.Transcribe(ctx, clip)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, l.fail(StageTranscription, err)
	}
	transcript = strings.TrimSpace(transcript)
	l.metrics.MarkTranscript(len(transcript))
	l.record(events.Transcription(transcript, time.Since(sttStart)))

	if transcript == "" {
		l.logger.Debug("no speech detected")
		l.record(events.System("no_speech_detected", nil))
		return false, l.fail(StageTranscription, errNoSpeech)
	}

	l.touchActivity()
	l.logger.Info("user said", "transcript", transcript)

	if IsExitPhrase(transcript, l.config.ExitPhrases) {
		l.logger.Info("exit phrase detected", "transcript", transcript)
		l.record(events.System("exit_command_detected", map[string]any{"text": transcript}))
		l.setState(StateSpeaking)
		l.sayFarewell(ctx)
		return true, nil
	}

	intent := chat.IntentGeneral
	prompt := transcript
	if l.config.Intent {
		intent = chat.Classify(transcript)
		prompt = intent.Prefix(transcript)
	}

	// The user turn is committed only after the completion call
	// returns, so a shutdown mid-call leaves no half-finished exchange
	// behind.
	request := l.history.RequestTurns(prompt)
	reply, err := l.deps.Completer.Complete(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		l.history.AddUser(transcript)
		if ferr := l.fail(StageCompletion, err); ferr != nil {
			return false, ferr
		}
		l.say(ctx, l.config.ApologyLine)
		return false, nil
	}
	l.metrics.MarkReply(len(reply))
	l.history.AddExchange(transcript, reply)
	l.record(events.AIResponse(transcript, reply, string(intent)))
	l.logger.Info("assistant reply", "chars", len(reply), "intent", intent)

	l.setState(StateSpeaking)
	if stage, err := l.speak(ctx, reply); err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, l.fail(stage, err)
	}

	l.metrics.MarkResponseDone()
	l.completeTurn()
	return false, nil
}

// speak synthesizes text and plays it, reporting which stage failed.
func (l *Loop) speak(ctx context.Context, text string) (Stage, error) {
	result, err := l.deps.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		l.record(events.TTSOutput(text, l.config.VoiceID, false))
		return StageSynthesis, err
	}
	l.metrics.MarkAudioReady()

	err = l.play(ctx, result)
	l.record(events.TTSOutput(text, l.config.VoiceID, err == nil))
	if err != nil {
		return StagePlayback, err
	}
	return "", nil
}

// play routes a synthesis result to the player. PCM plays directly;
// anything else is treated as MP3.
func (l *Loop) play(ctx context.Context, result *tts.AudioResult) error {
	if tts.IsPCM(result.Format.Encoding) {
		rate := result.Format.SampleRate
		if rate == 0 {
			rate = tts.SampleRateFromEncoding(result.Format.Encoding)
		}
		channels := result.Format.Channels
		if channels == 0 {
			channels = 1
		}
		return l.deps.Player.Play(ctx, audioio.ClipFromBytes(result.Audio, rate, channels))
	}
	return l.deps.Player.PlayMP3(ctx, result.Audio)
}

// say speaks a line without affecting turn accounting. Failures are
// logged and swallowed.
func (l *Loop) say(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if stage, err := l.speak(ctx, text); err != nil {
		l.logger.Warn("speech failed", "stage", stage, "error", err)
	}
}

// sayFarewell speaks the farewell on a detached context so it still
// plays during shutdown, bounded by FarewellTimeout.
func (l *Loop) sayFarewell(ctx context.Context) {
	if l.config.FarewellLine == "" {
		return
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.config.FarewellTimeout)
	defer cancel()
	l.say(fctx, l.config.FarewellLine)
}

// maybeIdlePrompt speaks the idle line once the room has been quiet
// for IdleTimeout, then rearms the timer.
func (l *Loop) maybeIdlePrompt(ctx context.Context) {
	if l.config.IdleTimeout <= 0 || l.config.IdleLine == "" {
		return
	}
	l.mu.Lock()
	quiet := time.Since(l.lastActivity)
	l.mu.Unlock()
	if quiet < l.config.IdleTimeout {
		return
	}

	l.logger.Info("conversation idle", "quiet_for", quiet.Round(time.Second))
	l.record(events.System("conversation_idle", map[string]any{
		"quiet_seconds": int(quiet.Seconds()),
	}))
	l.say(ctx, l.config.IdleLine)
	l.touchActivity()
}

// fail records a turn failure and returns a terminal error when the
// same stage has failed MaxConsecutiveFailures turns in a row.
func (l *Loop) fail(stage Stage, cause error) error {
	terr := &TurnError{Stage: stage, Err: cause}

	l.mu.Lock()
	l.failures[stage]++
	n := l.failures[stage]
	l.mu.Unlock()

	l.logger.Warn("turn failed",
		"stage", stage,
		"consecutive", n,
		"error", cause,
	)
	l.record(events.Failure(string(stage), cause.Error(), "conversation_loop"))

	if n >= l.config.MaxConsecutiveFailures {
		return fmt.Errorf("%w after %d attempts: %w", ErrTooManyFailures, n, terr)
	}
	return nil
}

// completeTurn resets the failure counters after a fully successful
// turn and bumps the session turn count.
func (l *Loop) completeTurn() {
	l.mu.Lock()
	l.failures = make(map[Stage]int)
	l.turns++
	l.mu.Unlock()
}

func (l *Loop) start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateIdle {
		return ErrAlreadyStarted
	}
	l.startedAt = time.Now()
	l.lastActivity = l.startedAt
	return nil
}

func (l *Loop) terminate(reason string) {
	l.setState(StateTerminated)
	l.record(events.System("session_end", map[string]any{
		"reason": reason,
		"turns":  l.Turns(),
	}))
	l.logger.Info("session ended", "reason", reason, "turns", l.Turns())
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	prev := l.state
	l.state = s
	l.mu.Unlock()
	if prev == s {
		return
	}
	l.logger.Debug("state change", "from", prev, "to", s)
	l.record(events.System("state_change", map[string]any{
		"from": prev.String(),
		"to":   s.String(),
	}))
}

func (l *Loop) touchActivity() {
	l.mu.Lock()
	l.lastActivity = time.Now()
	l.mu.Unlock()
}

func (l *Loop) record(e events.Event) {
	if l.deps.Events != nil {
		l.deps.Events.Record(e)
	}
}

// pause sleeps for d or until the context is cancelled.
func (l *Loop) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// State returns the current session state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// History returns a copy of the conversation transcript, system turn
// first.
func (l *Loop) History() []Turn {
	return l.history.Turns()
}

// Metrics returns the latency collector for this session.
func (l *Loop) Metrics() *MetricsCollector {
	return l.metrics
}

// Turns returns how many turns completed fully this session.
func (l *Loop) Turns() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.turns
}

// FailureCounts returns a copy of the consecutive failure counters by
// stage.
func (l *Loop) FailureCounts() map[Stage]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[Stage]int, len(l.failures))
	for k, v := range l.failures {
		out[k] = v
	}
	return out
}

// StartedAt returns when Run began, or the zero time before that.
func (l *Loop) StartedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startedAt
}
