package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-banter/internal/log"
	"github.com/teslashibe/go-banter/internal/term"
	"github.com/teslashibe/go-banter/pkg/banter"
)

var flagLive bool

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check every collaborating service",
	Long: `Verify configuration, audio devices, and provider connectivity.

By default each provider answers a lightweight health probe. With
--live the chat model completes a short prompt and a synthesized test
line plays through the speakers.`,
	RunE: runChecks,
}

func init() {
	testCmd.Flags().BoolVar(&flagLive, "live", false, "send real requests and play the synthesized audio")
}

func runChecks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := banter.Checks(ctx, cfg, log.L(), flagLive)
	failed := 0
	for _, r := range results {
		detail := r.Detail
		if r.Err != nil {
			detail = r.Err.Error()
			failed++
		}
		fmt.Println(term.CheckLine(r.OK(), r.Name, detail))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	term.PrintSuccess("all checks passed")
	return nil
}
