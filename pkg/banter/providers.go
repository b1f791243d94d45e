package banter

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-banter/pkg/chat"
	"github.com/teslashibe/go-banter/pkg/stt"
	"github.com/teslashibe/go-banter/pkg/tts"
)

// buildSTT wires ElevenLabs Scribe as the primary transcriber with a
// Google Speech fallback when Google credentials are configured.
func (a *App) buildSTT(ctx context.Context) (stt.Provider, error) {
	cfg := a.config

	primary, err := stt.NewElevenLabs(
		stt.WithAPIKey(cfg.ElevenLabsKey),
		stt.WithRequestTimeout(cfg.STTTimeout),
		stt.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}

	if cfg.GoogleSTTKey == "" && cfg.GoogleCredFile == "" {
		return primary, nil
	}

	gopts := []stt.Option{
		stt.WithRequestTimeout(cfg.STTTimeout),
		stt.WithLogger(a.logger),
	}
	if cfg.GoogleSTTKey != "" {
		gopts = append(gopts, stt.WithAPIKey(cfg.GoogleSTTKey))
	} else {
		gopts = append(gopts, stt.WithCredentialsFile(cfg.GoogleCredFile))
	}
	fallback, err := stt.NewGoogle(ctx, gopts...)
	if err != nil {
		a.logger.Warn("google stt unavailable, continuing without fallback", "error", err)
		return primary, nil
	}

	return stt.NewChainWithLogger(a.logger, primary, fallback)
}

// buildChat wires the configured chat provider, chaining the other one
// behind it when both API keys are present.
func (a *App) buildChat(ctx context.Context) (chat.Provider, error) {
	cfg := a.config

	var primary, fallback chat.Provider
	switch cfg.ChatProvider {
	case "gemini":
		p, err := a.newGemini(ctx)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		primary = p
		if cfg.OpenAIKey != "" {
			if f, err := a.newOpenAIChat(); err != nil {
				a.logger.Warn("openai chat fallback unavailable", "error", err)
			} else {
				fallback = f
			}
		}
	default:
		p, err := a.newOpenAIChat()
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		primary = p
		if cfg.GeminiKey != "" {
			if f, err := a.newGemini(ctx); err != nil {
				a.logger.Warn("gemini chat fallback unavailable", "error", err)
			} else {
				fallback = f
			}
		}
	}

	if fallback == nil {
		return primary, nil
	}
	return chat.NewChainWithLogger(a.logger, primary, fallback)
}

func (a *App) newOpenAIChat() (*chat.OpenAI, error) {
	return chat.NewOpenAI(
		chat.WithAPIKey(a.config.OpenAIKey),
		chat.WithModel(a.config.ChatModel),
		chat.WithRequestTimeout(a.config.ChatTimeout),
		chat.WithLogger(a.logger),
	)
}

func (a *App) newGemini(ctx context.Context) (*chat.Gemini, error) {
	return chat.NewGemini(ctx,
		chat.WithAPIKey(a.config.GeminiKey),
		chat.WithModel(a.config.ChatModel),
		chat.WithRequestTimeout(a.config.ChatTimeout),
		chat.WithLogger(a.logger),
	)
}

// buildTTS wires ElevenLabs as the primary synthesizer with an OpenAI
// speech fallback when an OpenAI key is present.
func (a *App) buildTTS() (tts.Provider, error) {
	cfg := a.config

	primary, err := tts.NewElevenLabs(
		tts.WithAPIKey(cfg.ElevenLabsKey),
		tts.WithVoice(a.voiceID()),
		tts.WithTimeout(cfg.TTSTimeout),
		tts.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}

	if cfg.OpenAIKey == "" {
		return primary, nil
	}
	fallback, err := tts.NewOpenAI(
		tts.WithAPIKey(cfg.OpenAIKey),
		tts.WithTimeout(cfg.TTSTimeout),
		tts.WithLogger(a.logger),
	)
	if err != nil {
		a.logger.Warn("openai tts fallback unavailable", "error", err)
		return primary, nil
	}

	return tts.NewChainWithLogger(a.logger, primary, fallback)
}
