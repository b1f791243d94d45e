package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-banter/internal/log"
	"github.com/teslashibe/go-banter/internal/term"
	"github.com/teslashibe/go-banter/pkg/banter"
	"github.com/teslashibe/go-banter/pkg/conversation"
	"github.com/teslashibe/go-banter/pkg/events"
)

var (
	flagVoice       string
	flagModel       string
	flagAddr        string
	flagNoDashboard bool
	flagEventsFile  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a voice conversation session",
	Long: `Start a spoken conversation with the configured persona.

The session listens on the default microphone, replies out loud, and
keeps going until you say an exit phrase, stay quiet past the idle
timeout, or press Ctrl-C. A second Ctrl-C exits immediately without
the farewell line.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&flagVoice, "voice", "", "voice preset name or ElevenLabs voice id")
	runCmd.Flags().StringVar(&flagModel, "model", "", "chat model override")
	runCmd.Flags().StringVar(&flagAddr, "addr", "", "dashboard listen address, for example :8080")
	runCmd.Flags().BoolVar(&flagNoDashboard, "no-dashboard", false, "disable the web dashboard")
	runCmd.Flags().StringVar(&flagEventsFile, "events-file", "", "append session events to a JSON lines file")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagVoice != "" {
		cfg.Voice = flagVoice
	}
	if flagModel != "" {
		cfg.ChatModel = flagModel
	}
	if flagAddr != "" {
		cfg.ListenAddr = flagAddr
	}
	if flagNoDashboard {
		cfg.ListenAddr = ""
	}
	if flagEventsFile != "" {
		cfg.EventsFile = flagEventsFile
	}

	app, err := banter.New(cfg, log.L())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// After the first signal the context unwinds the session; restoring
	// default handling lets a second signal kill the process.
	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := app.Init(ctx); err != nil {
		return err
	}
	defer app.Shutdown()

	fmt.Println(term.Banner("banter", `say "goodbye" to end the session`))
	if cfg.ListenAddr != "" {
		term.PrintInfo("dashboard on http://%s", cfg.ListenAddr)
	}
	mirrorSession(app)

	err = app.Run(ctx)
	if errors.Is(err, conversation.ErrTooManyFailures) {
		term.PrintError("session gave up: %v", err)
		return err
	}
	if err != nil {
		return err
	}
	term.PrintSuccess("session ended after %d turns", app.Loop().Metrics().Turns())
	return nil
}

// mirrorSession prints transcripts, replies, and per-turn latency to
// the terminal as the loop produces them.
func mirrorSession(app *banter.App) {
	app.OnEvent(func(e events.Event) {
		switch e.Kind {
		case events.KindTranscription:
			if text, _ := e.Fields["transcribed_text"].(string); text != "" {
				fmt.Println(term.UserLine(text))
			}
		case events.KindAIResponse:
			if reply, _ := e.Fields["ai_response"].(string); reply != "" {
				fmt.Println(term.AssistantLine(reply))
			}
		}
	})
	app.OnMetrics(func(m conversation.Metrics) {
		fmt.Println(term.NoticeLine(m.FormatLatency()))
	})
}
