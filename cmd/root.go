// Package cmd implements the counsel command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/counsel0/counsel/internal/config"
	"github.com/counsel0/counsel/internal/i18n"
	"github.com/counsel0/counsel/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "counsel",
	Short: "Counsel - legal assistance chat in your terminal",
	Long: `Counsel is a terminal client for the Counsel legal-assistance chat
service. It remembers your conversations across runs, works in English,
Twi, and French, and falls back gracefully when the network is flaky.

Running counsel without arguments starts the interactive chat.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initLogger builds the process logger. Log level is controlled by the
// DEBUG environment variable; output goes to stderr so command output
// stays clean on stdout.
func initLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	return log.NewWithWriter(os.Stderr, cfg)
}

// loadConfig loads and validates configuration, applying the configured
// language to the message catalogs.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf(i18n.T("error.config"), err)
	}
	i18n.Init(cfg.Language)
	return cfg, nil
}
