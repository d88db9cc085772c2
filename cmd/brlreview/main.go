// Brlreview is a flat review screen reader for accessible windows.
//
// It presents a window, described as a scene file, as lines of text that
// can be reviewed word by word and character by character with speech and
// a braille display. Braille is sent to a virtual display served by
// brlreview-display, found over mDNS or given by URL.
//
// Usage:
//
//	brlreview [command] [flags]
//
// Running without arguments launches the interactive review.
// See 'brlreview --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/brlreview/internal/config"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	scenePath  string
	displayURL string
)

// store holds the settings loaded before every command.
var store *config.Store

var rootCmd = &cobra.Command{
	Use:   "brlreview",
	Short: "Flat review screen reader",
	Long: `A flat review screen reader for accessible windows.

Flat review presents a window as lines of text built from the on-screen
position of its objects. The review cursor moves by line, word and
character, and what it lands on is spoken and shown on a braille display.

If no command is specified, the interactive review will launch automatically.`,
	Version:           version.Version,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the review when no subcommand provided
		return runReview(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is config.yaml in the config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&scenePath, "scene", "", "Scene file describing the window to review")
	rootCmd.PersistentFlags().StringVar(&displayURL, "display", "", "Braille display URL, e.g. ws://host:8040/ (skips discovery)")

	rootCmd.AddCommand(versionCmd)
}

// setup loads the settings and starts logging. The interactive review logs
// to the configured file so that log lines stay off the screen.
func setup(cmd *cobra.Command, args []string) error {
	s, err := config.Open(configPath)
	if err != nil {
		return err
	}
	store = s
	settings := store.Settings()

	level := logLevel
	if level == "" {
		level = settings.Logging.Level
	}
	output := "stderr"
	if !cmd.HasParent() || cmd.Name() == "review" {
		output = settings.Logging.File
	}
	if err := logging.InitializeWithOutput(level, output); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if done, err := printStructured(version.Get()); done {
			return err
		}
		fmt.Println(version.Line("brlreview"))
		return nil
	},
}
