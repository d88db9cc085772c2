package main

import (
	"context"
	"crypto/tls"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/a11y/scene"
	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/discovery"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/presenter"
	"github.com/muurk/brlreview/internal/remote"
	"github.com/muurk/brlreview/internal/session"
	"github.com/muurk/brlreview/internal/speech"
	"github.com/muurk/brlreview/internal/tui"
	"github.com/muurk/brlreview/internal/urls"
)

// Review command flags
var (
	noDisplay bool
	insecure  bool
)

// reviewCmd launches the interactive flat review
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Launch interactive flat review",
	Long: `Launch the interactive flat review of a window.

The review shows the window's lines with the review cursor marked, the
last thing spoken, and a monitor of the braille display. Keys move the
review cursor by line, word and character; press ? for the full list.

Without --display, braille displays advertised on the local network are
discovered first. Keys pressed on the display are handled as well.`,
	Example: `  # Review with display discovery
  brlreview review --scene dialog.yaml
  # Or simply (review is default):
  brlreview --scene dialog.yaml

  # Review on a known display
  brlreview --scene dialog.yaml --display ws://192.168.1.20:8040/

  # Review with the on-screen monitor only
  brlreview --scene dialog.yaml --no-display`,
	RunE: runReview,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&insecure, "insecure", false, "Accept any certificate from a wss:// display")
	rootCmd.Flags().BoolVar(&noDisplay, "no-display", false, "Review with the on-screen braille monitor only")
	reviewCmd.Flags().BoolVar(&noDisplay, "no-display", false, "Review with the on-screen braille monitor only")

	rootCmd.AddCommand(reviewCmd)
}

// loadWindow reads the scene given with --scene.
func loadWindow() (*scene.Scene, error) {
	if scenePath == "" {
		return nil, fmt.Errorf("no window to review: use --scene <file> (see %s)", urls.SceneFormat)
	}
	s, err := scene.LoadFile(scenePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	return s, nil
}

// targetURL is the display from --display or the config file.
func targetURL() string {
	if displayURL != "" {
		return displayURL
	}
	return store.Settings().Display.URL
}

// dialerFor returns the dialer of the display at url, or nil for none.
func dialerFor(url string) braille.Dialer {
	if url == "" {
		return nil
	}
	d := &remote.Dialer{
		URL:  url,
		Name: store.Settings().Display.ClientName,
	}
	if insecure {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true} // self-signed displays
	}
	return d
}

// sessionOptions returns the options shared by every command reviewing
// window.
func sessionOptions(window a11y.Tree) session.Options {
	return session.Options{
		Window:  presenter.WindowFunc(func() a11y.Tree { return window }),
		Store:   store,
		Speaker: speech.NewLogSpeaker(nil),
	}
}

func runReview(cmd *cobra.Command, args []string) error {
	window, err := loadWindow()
	if err != nil {
		return err
	}
	store.Watch()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	feed := tui.NewFeed()
	open := func(url string) (*session.Session, error) {
		opts := sessionOptions(window)
		opts.Dialer = dialerFor(url)
		opts.Clipboard = presenter.SystemClipboard{}
		opts.OnFrame = feed.Push

		sess, err := session.New(opts)
		if err != nil {
			return nil, err
		}
		sess.Start(ctx)
		logging.Info("Review session started", zap.String("scene", scenePath), zap.String("display", url))
		return sess, nil
	}

	scanner := discovery.NewScanner()
	if timeout := store.Settings().Display.DiscoverTimeout; timeout > 0 {
		scanner.Timeout = timeout
	}

	url := targetURL()
	app, err := tui.NewAppModel(tui.AppConfig{
		Discover: url == "" && !noDisplay,
		URL:      url,
		Open:     open,
		Feed:     feed,
		Scanner:  scanner,
	})
	if err != nil {
		return fmt.Errorf("failed to start review: %w", err)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(tui.AppModel); ok && m.Session != nil {
		m.Session.Close()
	}
	if err != nil {
		return fmt.Errorf("review error: %w", err)
	}
	return nil
}
