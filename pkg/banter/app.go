// Package banter assembles a voice conversation session: audio
// capture and playback, the speech and chat providers, the
// conversation loop, the event recorder, and the optional dashboard.
// Lifecycle is New, Init, Run, Shutdown.
package banter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-banter/internal/config"
	"github.com/teslashibe/go-banter/pkg/audioio"
	"github.com/teslashibe/go-banter/pkg/chat"
	"github.com/teslashibe/go-banter/pkg/conversation"
	"github.com/teslashibe/go-banter/pkg/events"
	"github.com/teslashibe/go-banter/pkg/stt"
	"github.com/teslashibe/go-banter/pkg/tts"
	"github.com/teslashibe/go-banter/pkg/web"
)

// App owns one session's components and their lifecycle.
type App struct {
	config config.App
	logger *slog.Logger

	recorder    audioio.Recorder
	player      audioio.Player
	transcriber stt.Provider
	completer   chat.Provider
	synthesizer tts.Provider

	loop   *conversation.Loop
	events *events.Recorder
	web    *web.Server

	mu        sync.Mutex
	onEvent   []func(events.Event)
	onMetrics []func(conversation.Metrics)
}

// New validates the configuration and creates an uninitialized app.
func New(cfg config.App, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		config: cfg,
		logger: logger.With("component", "app"),
	}, nil
}

// Init builds all components. Call once, after New and before Run.
func (a *App) Init(ctx context.Context) error {
	if err := a.initEvents(); err != nil {
		return err
	}
	if err := a.initProviders(ctx); err != nil {
		return err
	}
	if err := a.initAudio(); err != nil {
		return err
	}
	if err := a.initLoop(); err != nil {
		return err
	}
	a.initWeb()

	a.logger.Info("session ready",
		"stt", a.transcriber.Name(),
		"chat", a.completer.Name(),
		"tts", a.synthesizer.Name(),
		"audio", a.recorder.Name(),
		"voice", a.voiceID(),
		"session_id", a.events.SessionID(),
	)
	return nil
}

// Run drives the conversation until an exit phrase, cancellation, or
// the failure cap. The dashboard server, when configured, runs
// alongside and stops with the session.
func (a *App) Run(ctx context.Context) error {
	if a.loop == nil {
		return fmt.Errorf("banter: app not initialized")
	}

	if a.web != nil {
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := a.web.Run(wctx, a.config.ListenAddr); err != nil {
				a.logger.Error("dashboard stopped", "error", err)
			}
		}()
	}

	return a.loop.Run(ctx)
}

// Shutdown releases every component. Safe to call after a failed Init.
func (a *App) Shutdown() {
	if a.recorder != nil {
		a.closeQuietly("recorder", a.recorder.Close)
	}
	if a.player != nil {
		a.closeQuietly("player", a.player.Close)
	}
	if a.transcriber != nil {
		a.closeQuietly("stt", a.transcriber.Close)
	}
	if a.completer != nil {
		a.closeQuietly("chat", a.completer.Close)
	}
	if a.synthesizer != nil {
		a.closeQuietly("tts", a.synthesizer.Close)
	}
	if a.events != nil {
		a.closeQuietly("events", a.events.Close)
	}
}

func (a *App) closeQuietly(name string, fn func() error) {
	if err := fn(); err != nil {
		a.logger.Warn("close failed", "component", name, "error", err)
	}
}

// Loop exposes the conversation loop for status readers.
func (a *App) Loop() *conversation.Loop {
	return a.loop
}

// Events exposes the session event recorder.
func (a *App) Events() *events.Recorder {
	return a.events
}

// OnEvent registers a sink for every recorded session event. Sinks run
// inline on the recording goroutine and must not block.
func (a *App) OnEvent(fn func(events.Event)) {
	a.mu.Lock()
	a.onEvent = append(a.onEvent, fn)
	a.mu.Unlock()
}

// OnMetrics registers a sink for per-turn latency figures.
func (a *App) OnMetrics(fn func(conversation.Metrics)) {
	a.mu.Lock()
	a.onMetrics = append(a.onMetrics, fn)
	a.mu.Unlock()
}

func (a *App) dispatchEvent(e events.Event) {
	a.mu.Lock()
	sinks := a.onEvent
	a.mu.Unlock()
	for _, fn := range sinks {
		fn(e)
	}
}

func (a *App) dispatchMetrics(m conversation.Metrics) {
	a.mu.Lock()
	sinks := a.onMetrics
	a.mu.Unlock()
	for _, fn := range sinks {
		fn(m)
	}
}

func (a *App) initEvents() error {
	opts := []events.Option{
		events.WithLogger(a.logger),
		events.WithNotify(a.dispatchEvent),
	}
	if a.config.EventsFile != "" {
		opts = append(opts, events.WithFile(a.config.EventsFile))
	}

	rec, err := events.NewRecorder(opts...)
	if err != nil {
		return err
	}
	a.events = rec
	return nil
}

func (a *App) initProviders(ctx context.Context) error {
	var err error
	if a.transcriber, err = a.buildSTT(ctx); err != nil {
		return fmt.Errorf("stt init: %w", err)
	}
	if a.completer, err = a.buildChat(ctx); err != nil {
		return fmt.Errorf("chat init: %w", err)
	}
	if a.synthesizer, err = a.buildTTS(); err != nil {
		return fmt.Errorf("tts init: %w", err)
	}
	return nil
}

func (a *App) initAudio() error {
	cfg := a.audioConfig()

	rec, err := audioio.NewRecorder(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("audio recorder init: %w", err)
	}
	a.recorder = rec

	player, err := audioio.NewPlayer(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("audio player init: %w", err)
	}
	a.player = player
	return nil
}

func (a *App) initLoop() error {
	loop, err := conversation.New(conversation.Deps{
		Recorder:    a.recorder,
		Player:      a.player,
		Transcriber: a.transcriber,
		Completer:   a.completer,
		Synthesizer: a.synthesizer,
		Events:      a.events,
	}, a.loopOptions()...)
	if err != nil {
		return fmt.Errorf("conversation init: %w", err)
	}
	a.loop = loop
	a.loop.Metrics().OnUpdate(a.dispatchMetrics)
	return nil
}

func (a *App) initWeb() {
	if a.config.ListenAddr == "" {
		return
	}
	a.web = web.NewServer(a.loop, a.events, a.logger)
	a.OnEvent(a.web.Publish)
	a.OnMetrics(a.web.PublishMetrics)
}

func (a *App) loopOptions() []conversation.Option {
	cfg := a.config
	return []conversation.Option{
		conversation.WithSystemPrompt(cfg.PersonaPrompt),
		conversation.WithExitPhrases(cfg.ExitPhrases...),
		conversation.WithMaxExchanges(cfg.MaxHistory),
		conversation.WithMaxRecordTime(time.Duration(cfg.MaxRecordSeconds) * time.Second),
		conversation.WithMaxConsecutiveFailures(cfg.MaxFailures),
		conversation.WithIdleTimeout(cfg.IdleTimeout),
		conversation.WithVoiceID(a.voiceID()),
		conversation.WithIntent(cfg.IntentPrefix),
		conversation.WithLogger(a.logger),
	}
}

// voiceID resolves the configured voice preset or raw id.
func (a *App) voiceID() string {
	name := a.config.Voice
	if name == "" {
		name = tts.DefaultVoice
	}
	return tts.ResolveVoice(name)
}

// audioConfig maps app configuration onto the audio layer.
func (a *App) audioConfig() audioio.Config {
	cfg := audioio.DefaultConfig()
	if a.config.AudioBackend != "" {
		cfg.Backend = audioio.Backend(a.config.AudioBackend)
	}
	if a.config.SampleRate > 0 {
		cfg.SampleRate = a.config.SampleRate
	}
	if a.config.ChunkSize > 0 {
		cfg.ChunkSize = a.config.ChunkSize
	}
	if a.config.SilenceThreshold > 0 {
		cfg.SilenceThreshold = a.config.SilenceThreshold
	}
	if a.config.SilenceHold > 0 {
		cfg.SilenceHold = a.config.SilenceHold
	}
	if a.config.MinUtterance > 0 {
		cfg.MinUtterance = a.config.MinUtterance
	}
	return cfg
}
