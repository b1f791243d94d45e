package banter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-banter/internal/config"
	"github.com/teslashibe/go-banter/pkg/audioio"
	"github.com/teslashibe/go-banter/pkg/chat"
	"github.com/teslashibe/go-banter/pkg/tts"
)

// Probe texts for live checks.
const (
	chatProbeText = "Hello, this is a test."
	ttsProbeText  = "This is a test of the text to speech service."
)

// CheckResult is one collaborator check outcome.
type CheckResult struct {
	Name   string
	Detail string
	Err    error
}

// OK reports whether the check passed.
func (r CheckResult) OK() bool {
	return r.Err == nil
}

// Checks probes each collaborator independently: configuration, audio
// devices, then the three provider stacks. Providers are constructed,
// checked, and closed; nothing is retained. With live set, the chat
// check runs a real completion and the tts check synthesizes and
// plays a short line instead of calling the health endpoints.
func Checks(ctx context.Context, cfg config.App, logger *slog.Logger, live bool) []CheckResult {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{config: cfg, logger: logger.With("component", "check")}

	return []CheckResult{
		checkConfig(cfg),
		a.checkAudio(),
		a.checkSTT(ctx),
		a.checkChat(ctx, live),
		a.checkTTS(ctx, live),
	}
}

func checkConfig(cfg config.App) CheckResult {
	r := CheckResult{Name: "config"}
	if err := cfg.Validate(); err != nil {
		r.Err = err
		return r
	}
	r.Detail = fmt.Sprintf("model %s, elevenlabs key %s",
		cfg.ChatModel, config.MaskAPIKey(cfg.ElevenLabsKey))
	return r
}

func (a *App) checkAudio() CheckResult {
	r := CheckResult{Name: "audio"}

	rec, err := audioio.NewRecorder(a.audioConfig(), a.logger)
	if err != nil {
		r.Err = fmt.Errorf("recorder: %w", err)
		return r
	}
	r.Detail = rec.Name()
	rec.Close()

	player, err := audioio.NewPlayer(a.audioConfig(), a.logger)
	if err != nil {
		r.Err = fmt.Errorf("player: %w", err)
		return r
	}
	player.Close()
	return r
}

func (a *App) checkSTT(ctx context.Context) CheckResult {
	r := CheckResult{Name: "speech-to-text"}

	p, err := a.buildSTT(ctx)
	if err != nil {
		r.Err = err
		return r
	}
	defer p.Close()

	r.Detail = p.Name()
	r.Err = p.Health(ctx)
	return r
}

func (a *App) checkChat(ctx context.Context, live bool) CheckResult {
	r := CheckResult{Name: "chat"}

	p, err := a.buildChat(ctx)
	if err != nil {
		r.Err = err
		return r
	}
	defer p.Close()
	r.Detail = p.Name()

	if !live {
		r.Err = p.Health(ctx)
		return r
	}

	reply, err := p.Complete(ctx, []chat.Message{chat.NewUserMessage(chatProbeText)})
	if err != nil {
		r.Err = err
		return r
	}
	r.Detail = fmt.Sprintf("%s: %q", p.Name(), truncate(reply, 48))
	return r
}

func (a *App) checkTTS(ctx context.Context, live bool) CheckResult {
	r := CheckResult{Name: "text-to-speech"}

	p, err := a.buildTTS()
	if err != nil {
		r.Err = err
		return r
	}
	defer p.Close()
	r.Detail = p.Name()

	if !live {
		r.Err = p.Health(ctx)
		return r
	}

	result, err := p.Synthesize(ctx, ttsProbeText)
	if err != nil {
		r.Err = err
		return r
	}
	r.Detail = fmt.Sprintf("%s, %d bytes", p.Name(), len(result.Audio))

	player, err := audioio.NewPlayer(a.audioConfig(), a.logger)
	if err != nil {
		r.Err = fmt.Errorf("player: %w", err)
		return r
	}
	defer player.Close()
	r.Err = playResult(ctx, player, result)
	return r
}

// playResult routes a synthesis result to the player. PCM plays
// directly; anything else is treated as MP3.
func playResult(ctx context.Context, player audioio.Player, result *tts.AudioResult) error {
	if tts.IsPCM(result.Format.Encoding) {
		rate := result.Format.SampleRate
		if rate == 0 {
			rate = tts.SampleRateFromEncoding(result.Format.Encoding)
		}
		channels := result.Format.Channels
		if channels == 0 {
			channels = 1
		}
		return player.Play(ctx, audioio.ClipFromBytes(result.Audio, rate, channels))
	}
	return player.PlayMP3(ctx, result.Audio)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
