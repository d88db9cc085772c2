// Brlreview-display is a virtual braille display served over WebSocket.
//
// It shows the cells written by a screen reader in the terminal and turns
// keyboard keys and mouse clicks into display keys sent back to it. The
// display is advertised over mDNS so that 'brlreview' can find it.
//
// Usage:
//
//	brlreview-display serve [flags]
//
// See 'brlreview-display serve --help' for available options.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/brlreview/internal/config"
	"github.com/muurk/brlreview/internal/discovery"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/monitor"
	"github.com/muurk/brlreview/internal/remote"
	"github.com/muurk/brlreview/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brlreview-display",
	Short: "Virtual braille display",
	Long: `A virtual braille display for brlreview and other screen readers.

The display listens for WebSocket clients, shows the cells of the client
that owns it and sends display keys back. It is advertised on the local
network over mDNS unless --no-advertise is given.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	configPath  string
	listenAddr  string
	width       int
	certPath    string
	keyPath     string
	instance    string
	noAdvertise bool
	headless    bool
	logLevel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the virtual braille display",
	Long: `Start the virtual braille display and show it in the terminal.

TLS is enabled when both --cert and --key are given; clients then connect
with wss://. Without a terminal, use --headless to serve and log only.

Display keys:
  left and right  pan left and right
  up and down     previous and next line
  home and end    top and bottom
  enter           return to focus
  c               toggle contracted braille
  mouse click     route to the clicked cell`,
	Example: `  # Serve a 40-cell display on port 8040
  brlreview-display serve

  # An 80-cell display with TLS
  brlreview-display serve --width 80 --cert cert.pem --key key.pem

  # Serve without a terminal UI
  brlreview-display serve --headless --log-level info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Config file (default is config.yaml in the config directory)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (default from config, :8040)")
	serveCmd.Flags().IntVar(&width, "width", 0, "Display size in cells (default from config, 40)")
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serveCmd.Flags().StringVar(&instance, "name", "", "mDNS instance name (default is the hostname)")
	serveCmd.Flags().BoolVar(&noAdvertise, "no-advertise", false, "Do not advertise the display over mDNS")
	serveCmd.Flags().BoolVar(&headless, "headless", false, "Serve without the terminal UI")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := config.Open(configPath)
	if err != nil {
		return err
	}
	settings := store.Settings().Display
	logSettings := store.Settings().Logging

	level := logLevel
	if level == "" {
		level = logSettings.Level
	}
	output := logSettings.File
	if headless {
		output = "stderr"
	}
	if err := logging.InitializeWithOutput(level, output); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if listenAddr == "" {
		listenAddr = settings.Listen
	}
	if width <= 0 {
		width = settings.Width
	}
	if certPath == "" && keyPath == "" {
		certPath, keyPath = settings.CertFile, settings.KeyFile
	}
	if (certPath == "") != (keyPath == "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}
	for _, path := range []string{certPath, keyPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
	}

	var program *tea.Program
	srv := remote.NewServer(&remote.Config{
		Addr:     listenAddr,
		Width:    width,
		Height:   1,
		CertPath: certPath,
		KeyPath:  keyPath,
		OnChange: func(st remote.State) {
			if program != nil {
				program.Send(monitor.UpdateMsg(snapshotOf(st)))
			}
		},
	})
	if err := srv.Listen(); err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	port := 0
	if addr, ok := srv.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	if !noAdvertise && settings.Advertise {
		adv, err := discovery.Advertise(discovery.Advertisement{
			Instance: instance,
			Port:     port,
			Width:    width,
			TLS:      certPath != "",
		})
		if err != nil {
			// The display still works when given by URL.
			logging.Warn("Failed to advertise display", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheme := "ws"
	if certPath != "" {
		scheme = "wss"
	}
	title := fmt.Sprintf("%s://%s/", scheme, srv.Addr())

	if !headless {
		model := initialized{monitor.New(title, srv.PressKey), snapshotOf(srv.State())}
		program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx)
	}()

	if headless {
		fmt.Fprintf(os.Stderr, "Serving %d-cell display at %s\n", width, title)
		<-ctx.Done()
		return <-serveErr
	}

	_, runErr := program.Run()
	stop()
	if err := <-serveErr; err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("display error: %w", runErr)
	}
	return nil
}

// initialized starts the monitor showing the display before any client
// connects.
type initialized struct {
	monitor.Model
	first monitor.Snapshot
}

func (m initialized) Init() tea.Cmd {
	first := m.first
	return func() tea.Msg { return monitor.UpdateMsg(first) }
}

// snapshotOf is what the monitor shows for a display state.
func snapshotOf(st remote.State) monitor.Snapshot {
	snap := monitor.FromCells(st.Cells, st.Width)
	switch {
	case st.Active != nil:
		snap.Status = fmt.Sprintf("%s (%s)", st.Active.Name, st.Active.Addr)
	case len(st.Clients) > 0:
		snap.Status = fmt.Sprintf("%d client(s), none writing", len(st.Clients))
	default:
		snap.Status = "waiting for a screen reader"
	}
	if n := len(st.Clients); n > 1 {
		names := make([]string, 0, n)
		for _, c := range st.Clients {
			names = append(names, c.Name)
		}
		snap.Status += " • clients: " + strings.Join(names, ", ")
	}
	return snap
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line("brlreview-display"))
	},
}
