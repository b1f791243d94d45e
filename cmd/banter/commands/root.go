// Package commands implements the banter command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-banter/internal/config"
	"github.com/teslashibe/go-banter/internal/log"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd is the base command when banter is called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "banter",
	Short: "Voice conversation loop in the terminal",
	Long: `banter runs a spoken conversation with an AI persona.

It records from the default microphone, transcribes speech with
ElevenLabs (Google Cloud as fallback), completes replies with OpenAI
or Gemini, and speaks them back through ElevenLabs text to speech.

Say "goodbye" or another configured exit phrase to end the session.

Configuration layers, later sources winning: built-in defaults, a
.env file, the YAML config file, environment variables, flags.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.banter/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, or error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(voicesCmd)
}

// loadConfig resolves configuration and initializes logging. Every
// subcommand starts here.
func loadConfig() (config.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log.Init(cfg.LogLevel)
	return cfg, nil
}
