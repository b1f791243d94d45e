package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-banter/internal/term"
	"github.com/teslashibe/go-banter/pkg/tts"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List available text to speech voices",
	Long: `List the built-in voice presets and, when ELEVENLABS_API_KEY is set,
every voice on the account. Both preset names and raw voice ids work
with the --voice flag of banter run.`,
	RunE: listVoices,
}

func listVoices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(term.Banner("voices", "presets, * marks the default"))
	for _, name := range tts.PresetNames() {
		marker := "  "
		if name == tts.DefaultVoice {
			marker = "* "
		}
		fmt.Printf("%s%-10s %s\n", marker, name, tts.Voices[name])
	}

	if cfg.ElevenLabsKey == "" {
		term.PrintInfo("set ELEVENLABS_API_KEY to list account voices")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The constructor wants a voice even though listing never uses one.
	el, err := tts.NewElevenLabs(
		tts.WithAPIKey(cfg.ElevenLabsKey),
		tts.WithVoice(tts.ResolveVoice(tts.DefaultVoice)),
		tts.WithTimeout(cfg.TTSTimeout),
	)
	if err != nil {
		return err
	}
	defer el.Close()

	voices, err := el.Voices(ctx)
	if err != nil {
		return fmt.Errorf("list account voices: %w", err)
	}

	fmt.Println()
	for _, v := range voices {
		fmt.Printf("  %-24s %-12s %s\n", v.VoiceID, v.Category, v.Name)
	}
	term.PrintSuccess("%d voices on the account", len(voices))
	return nil
}
