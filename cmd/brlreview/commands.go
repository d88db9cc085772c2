package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/brlreview/internal/config"
	"github.com/muurk/brlreview/internal/contraction"
	"github.com/muurk/brlreview/internal/discovery"
	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/monitor"
	"github.com/muurk/brlreview/internal/presenter"
	"github.com/muurk/brlreview/internal/session"
	"github.com/muurk/brlreview/internal/speech"
	"github.com/muurk/brlreview/internal/ui"
	"github.com/muurk/brlreview/internal/urls"
)

// Output command flags
var (
	outputFormat  string
	scanTimeout   int
	caseSensitive bool
	wholeWord     bool
	backwards     bool
	allMatches    bool
	listCommands  bool
	tableName     string
	cursorOffset  int
	forceInit     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json, yaml)")

	rootCmd.AddCommand(linesCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
}

// cursor is the review cursor as printed by the commands.
type cursor struct {
	Line int `json:"line" yaml:"line"`
	Zone int `json:"zone" yaml:"zone"`
	Word int `json:"word" yaml:"word"`
	Char int `json:"char" yaml:"char"`
}

func cursorOf(loc flatreview.Location) cursor {
	return cursor{Line: loc.Line, Zone: loc.Zone, Word: loc.Word, Char: loc.Char}
}

// printStructured prints v as JSON or YAML. It reports false for the
// other formats.
func printStructured(v any) (bool, error) {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return true, nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(data))
		return true, nil
	}
	return false, nil
}

// withSession runs fn on a review of the --scene window that drives no
// display. Flat review is started before fn runs. A nil clip keeps the
// clipboard in memory.
func withSession(ctx context.Context, clip presenter.Clipboard, fn func(*session.Session, session.Snapshot) error) error {
	window, err := loadWindow()
	if err != nil {
		return err
	}
	if clip == nil {
		clip = &presenter.MemoryClipboard{}
	}
	opts := sessionOptions(window)
	opts.Clipboard = clip

	sess, err := session.New(opts)
	if err != nil {
		return err
	}
	sess.Start(ctx)
	defer sess.Close()

	snap, err := sess.Do(func(p *presenter.Presenter) { p.Start() })
	if err != nil {
		return err
	}
	return fn(sess, snap)
}

// linesCmd prints the review lines of a window
var linesCmd = &cobra.Command{
	Use:   "lines",
	Short: "Print the flat review lines of a window",
	Long: `Print the lines flat review builds for a window.

The line holding the object with focus is marked, as that is where the
review cursor starts.`,
	Example: `  # Show the lines
  brlreview lines --scene dialog.yaml

  # Plain text, one line per row
  brlreview lines --scene dialog.yaml --format compact

  # JSON output for scripting
  brlreview lines --scene dialog.yaml --format json`,
	RunE: runLines,
}

type linesReport struct {
	Scene  string   `json:"scene" yaml:"scene"`
	Lines  []string `json:"lines" yaml:"lines"`
	Cursor cursor   `json:"cursor" yaml:"cursor"`
}

func runLines(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), nil, func(_ *session.Session, snap session.Snapshot) error {
		report := linesReport{Scene: scenePath, Lines: snap.Lines, Cursor: cursorOf(snap.Location)}
		if done, err := printStructured(report); done {
			return err
		}

		if outputFormat == "compact" {
			for _, line := range snap.Lines {
				fmt.Println(line)
			}
			return nil
		}

		p := ui.NewPrinter(os.Stdout)
		p.PrintHeader("Flat review", "brlreview lines",
			ui.Param{Key: "Scene", Value: scenePath},
			ui.Param{Key: "Lines", Value: fmt.Sprint(len(snap.Lines))},
		)
		p.Newline()
		p.PrintListing(ui.NewListing(snap.Lines, snap.Location.Line))
		return nil
	})
}

// findCmd searches the review lines
var findCmd = &cobra.Command{
	Use:   "find <pattern>",
	Short: "Search the flat review lines",
	Long: `Search the flat review lines of a window with a regular expression.

The search starts at the top of the window. With --all every match is
listed; otherwise only the first.`,
	Example: `  # First line mentioning OK
  brlreview find OK --scene dialog.yaml

  # Every whole word "name", ignoring case
  brlreview find name --whole-word --all --scene dialog.yaml

  # Last match in the window
  brlreview find '\d+' --backwards --scene dialog.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match case")
	findCmd.Flags().BoolVar(&wholeWord, "whole-word", false, "Match whole words only")
	findCmd.Flags().BoolVar(&backwards, "backwards", false, "Search from the bottom of the window")
	findCmd.Flags().BoolVar(&allMatches, "all", false, "List every match")
}

// errNoMatch is returned when find matches nothing.
var errNoMatch = errors.New("no match")

type findReport struct {
	Pattern string   `json:"pattern" yaml:"pattern"`
	Matches []cursor `json:"matches" yaml:"matches"`
}

func runFind(cmd *cobra.Command, args []string) error {
	q := flatreview.Query{
		Pattern:       args[0],
		CaseSensitive: caseSensitive,
		WholeWord:     wholeWord,
		Backwards:     backwards,
		StartAtTop:    true,
	}

	return withSession(cmd.Context(), nil, func(sess *session.Session, _ session.Snapshot) error {
		var (
			matches []cursor
			findErr error
		)
		snap, err := sess.Do(func(p *presenter.Presenter) {
			found, err := p.Find(q)
			for found && err == nil {
				loc := cursorOf(p.Context().Location())
				if len(matches) > 0 && loc == matches[0] {
					break
				}
				matches = append(matches, loc)
				if !allMatches {
					break
				}
				if backwards {
					found, err = p.FindPrevious()
				} else {
					found, err = p.FindNext()
				}
			}
			findErr = err
		})
		if err != nil {
			return err
		}
		if findErr != nil {
			return findErr
		}

		if done, err := printStructured(findReport{Pattern: q.Pattern, Matches: matches}); done {
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				return errNoMatch
			}
			return nil
		}

		if len(matches) == 0 {
			if outputFormat != "compact" {
				ui.NewPrinter(os.Stdout).PrintWarning("No match", ui.Param{Key: "Pattern", Value: q.Pattern})
			}
			return fmt.Errorf("%w for %q", errNoMatch, q.Pattern)
		}

		if outputFormat == "compact" {
			for _, m := range matches {
				fmt.Printf("%d:%d:%d:%d:%s\n", m.Line, m.Zone, m.Word, m.Char, snap.Lines[m.Line])
			}
			return nil
		}

		lines := make([]int, len(matches))
		for i, m := range matches {
			lines[i] = m.Line
		}
		p := ui.NewPrinter(os.Stdout)
		p.PrintHeader("Find", "brlreview find",
			ui.Param{Key: "Scene", Value: scenePath},
			ui.Param{Key: "Pattern", Value: q.String()},
		)
		p.Newline()
		listing := ui.NewListing(snap.Lines, snap.Location.Line)
		listing.Matches = lines
		p.PrintListing(listing)
		p.Newline()
		p.PrintSuccess(fmt.Sprintf("Found %d match(es)", len(matches)),
			ui.Param{Key: "First", Value: fmt.Sprintf("line %d, zone %d, word %d, char %d", matches[0].Line, matches[0].Zone, matches[0].Word, matches[0].Char)},
		)
		return nil
	})
}

// execCmd runs review commands by name
var execCmd = &cobra.Command{
	Use:   "exec <command>...",
	Short: "Run flat review commands and show what they present",
	Long: `Run flat review commands in order, as if their keys were pressed,
and print what each one speaks and shows in braille.

Flat review is started before the first command. Use --list to see the
available commands.`,
	Example: `  # Move to the top and spell the first word
  brlreview exec home spell-item --scene dialog.yaml

  # Copy a line and show the clipboard
  brlreview exec previous-line copy --scene dialog.yaml

  # List the commands
  brlreview exec --list`,
	RunE: runExec,
}

func init() {
	execCmd.Flags().BoolVar(&listCommands, "list", false, "List the available commands")
}

type execStep struct {
	Command string   `json:"command" yaml:"command"`
	Spoken  []string `json:"spoken" yaml:"spoken"`
	Braille string   `json:"braille" yaml:"braille"`
	Cursor  cursor   `json:"cursor" yaml:"cursor"`
}

func runExec(cmd *cobra.Command, args []string) error {
	if listCommands {
		for _, c := range presenter.Commands() {
			fmt.Printf("  %-20s %s\n", c.Name, c.Description)
		}
		return nil
	}
	if len(args) == 0 {
		return errors.New("no commands given (see 'brlreview exec --list')")
	}

	commands := make([]presenter.Command, len(args))
	for i, name := range args {
		c, ok := presenter.LookupCommand(name)
		if !ok {
			return fmt.Errorf("unknown command %q (see 'brlreview exec --list')", name)
		}
		commands[i] = c
	}

	clip := &presenter.MemoryClipboard{}
	return withSession(cmd.Context(), clip, func(sess *session.Session, _ session.Snapshot) error {
		var steps []execStep
		for _, c := range commands {
			var runErr error
			snap, err := sess.Do(func(p *presenter.Presenter) { runErr = c.Run(p) })
			if err != nil {
				return err
			}
			if runErr != nil {
				return fmt.Errorf("%s: %w", c.Name, runErr)
			}
			row, _ := monitor.Plain(monitor.FromFrame(snap.Frame))
			steps = append(steps, execStep{
				Command: c.Name,
				Spoken:  utteranceTexts(snap.Spoken),
				Braille: strings.TrimRight(row, " "),
				Cursor:  cursorOf(snap.Location),
			})
		}
		clipboard, _ := clip.ReadAll()

		if done, err := printStructured(steps); done {
			return err
		}
		for _, s := range steps {
			if outputFormat == "compact" {
				fmt.Printf("%s: %s\n", s.Command, strings.Join(s.Spoken, " / "))
				continue
			}
			fmt.Println(ui.CurrentLineStyle.Render(ui.CursorMarker + " " + s.Command))
			fmt.Println(ui.ResultKeyStyle.Render("  speech:") + " " + strings.Join(s.Spoken, " / "))
			fmt.Println(ui.ResultKeyStyle.Render("  braille:") + " " + s.Braille)
		}
		if clipboard != "" && outputFormat != "compact" {
			fmt.Println()
			fmt.Println(ui.ResultKeyStyle.Render("clipboard:") + " " + clipboard)
		}
		return nil
	})
}

func utteranceTexts(us []speech.Utterance) []string {
	texts := make([]string, len(us))
	for i, u := range us {
		texts[i] = u.Text
	}
	return texts
}

// translateCmd contracts text
var translateCmd = &cobra.Command{
	Use:   "translate <text>",
	Short: "Contract text with a braille table",
	Long: `Contract text with one of the built-in contraction tables, as the
braille display does when contracted braille is enabled.`,
	Example: `  # Contract with the configured table
  brlreview translate "the people"

  # Uncontracted table with the cursor on the third character
  brlreview translate "the people" --table en-us-g1 --cursor 2`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&tableName, "table", "", "Contraction table (default from config)")
	translateCmd.Flags().IntVar(&cursorOffset, "cursor", -1, "Cursor offset into the text")
}

type translateReport struct {
	Table  string `json:"table" yaml:"table"`
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
	InPos  []int  `json:"in_pos" yaml:"in_pos"`
	Cursor int    `json:"cursor" yaml:"cursor"`
}

func runTranslate(cmd *cobra.Command, args []string) error {
	table := tableName
	if table == "" {
		table = store.Settings().Braille.ContractionTable
	}
	tr, err := contraction.New()
	if err != nil {
		return fmt.Errorf("failed to load contraction tables: %w", err)
	}
	out, err := tr.Translate(table, args[0], cursorOffset)
	if err != nil {
		if errors.Is(err, contraction.ErrUnknownTable) {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(tr.Tables(), ", "))
		}
		return err
	}

	report := translateReport{Table: table, Input: args[0], Output: out.Text, InPos: out.InPos, Cursor: out.Cursor}
	if done, err := printStructured(report); done {
		return err
	}
	if outputFormat == "compact" {
		fmt.Println(out.Text)
		return nil
	}
	details := []ui.Param{
		{Key: "Table", Value: table},
		{Key: "Input", Value: args[0]},
		{Key: "Output", Value: out.Text},
	}
	if out.Cursor >= 0 {
		details = append(details, ui.Param{Key: "Cursor", Value: fmt.Sprint(out.Cursor)})
	}
	ui.NewPrinter(os.Stdout).PrintSuccess("Contracted", details...)
	return nil
}

// scanCmd discovers braille displays on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for braille displays on the network",
	Long: `Scan for virtual braille displays using mDNS/DNS-SD discovery.

Displays are advertised by 'brlreview-display serve'. Each one is listed
with the URL to pass to --display.`,
	Example: `  # Scan for 10 seconds (default)
  brlreview scan

  # Quick 3-second scan
  brlreview scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

type scanEntry struct {
	Instance string `json:"instance" yaml:"instance"`
	URL      string `json:"url" yaml:"url"`
	Width    int    `json:"width" yaml:"width"`
}

func runScan(cmd *cobra.Command, args []string) error {
	structured := outputFormat == "json" || outputFormat == "yaml"
	if !structured {
		fmt.Printf("Scanning for braille displays (timeout: %ds)...\n\n", scanTimeout)
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second
	displays, err := scanner.ScanForDisplays(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	entries := make([]scanEntry, len(displays))
	for i, d := range displays {
		entries[i] = scanEntry{Instance: d.Instance, URL: d.URL(), Width: d.Width}
	}
	if done, err := printStructured(entries); done {
		return err
	}

	if len(displays) == 0 {
		fmt.Println("No displays found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure 'brlreview-display serve' is running with advertising on")
		fmt.Println("  - Check that this computer is on the same network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --display to give the URL manually if discovery fails")
		fmt.Printf("\nFor more information, see: %s\n", urls.DisplaySetup)
		return nil
	}

	fmt.Printf("Found %d display(s):\n\n", len(displays))
	for i, d := range displays {
		if outputFormat == "compact" {
			fmt.Printf("%s\t%s\t%d\n", d.Instance, d.URL(), d.Width)
			continue
		}
		fmt.Printf("%d. %s\n", i+1, d.Instance)
		fmt.Printf("   URL:     %s\n", d.URL())
		fmt.Printf("   Cells:   %d\n", d.Width)
		if d.Hostname != "" {
			fmt.Printf("   Host:    %s\n", d.Hostname)
		}
		fmt.Println()
	}
	fmt.Println("Use 'brlreview --scene <file> --display <url>' to review on a display")
	return nil
}

// checkCmd verifies the setup end to end
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check settings, tables, window and display",
	Long: `Check that everything a review needs is in place: the settings, the
contraction tables, the window given with --scene and the braille display.

The display is the one given with --display or in the config file, or
the first one discovered on the network.`,
	Example: `  # Check everything
  brlreview check --scene dialog.yaml

  # Check a specific display
  brlreview check --display wss://braille.local:8040/ --insecure`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings := store.Settings()

	checks := []ui.Check{
		{Name: "Load settings", Run: func() (string, error) {
			if path := store.Path(); path != "" {
				return path, nil
			}
			return "defaults", nil
		}},
		{Name: "Load contraction tables", Run: func() (string, error) {
			tr, err := contraction.New()
			if err != nil {
				return "", err
			}
			if _, ok := tr.Table(settings.Braille.ContractionTable); !ok {
				return "", fmt.Errorf("%w %q", contraction.ErrUnknownTable, settings.Braille.ContractionTable)
			}
			return fmt.Sprintf("%d tables", len(tr.Tables())), nil
		}},
		{Name: "Review window", Run: func() (string, error) {
			if scenePath == "" {
				return "no --scene given", nil
			}
			var lines int
			err := withSession(ctx, nil, func(_ *session.Session, snap session.Snapshot) error {
				lines = len(snap.Lines)
				return nil
			})
			return fmt.Sprintf("%d lines", lines), err
		}},
		{Name: "Connect braille display", Run: func() (string, error) {
			return checkDisplay(ctx, settings.Display.DiscoverTimeout)
		}},
	}

	progress, err := ui.RunChecks("Checking brlreview setup...", checks)
	p := ui.NewPrinter(os.Stdout)
	p.PrintProgress(progress)
	p.Newline()
	if err != nil {
		p.PrintError("Check failed", err,
			"Run with --log-level debug for details",
			"Use 'brlreview config show' to see the settings in effect",
			"See "+urls.TroubleshootingGuide,
		)
		return err
	}
	p.PrintSuccess("Ready to review")
	return nil
}

// checkDisplay connects to the target display, discovering one when none
// is configured, and reports its size.
func checkDisplay(ctx context.Context, timeout time.Duration) (string, error) {
	url := targetURL()
	if url == "" {
		scanner := discovery.NewScanner()
		if timeout > 0 {
			scanner.Timeout = timeout
		}
		displays, err := scanner.ScanForDisplays(ctx)
		if err != nil {
			return "", err
		}
		if len(displays) == 0 {
			return "", errors.New("no display given and none discovered")
		}
		url = displays[0].URL()
	}

	dialer := dialerFor(url)
	dev, err := dialer.Dial(ctx)
	if err != nil {
		return "", err
	}
	defer dev.Close()

	width, _, err := dev.DisplaySize()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d cells at %s", width, url), nil
}

// configCmd shows and writes the settings
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings in effect",
	Long: `Print the settings in effect, after applying the config file and
BRLREVIEW_* environment overrides, as YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := store.Settings()
		if outputFormat == "json" {
			_, err := printStructured(settings)
			return err
		}
		data, err := yaml.Marshal(&settings)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the settings in effect",
	Example: `  # Write the default config file
  brlreview config init

  # Overwrite an existing file
  brlreview config init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
		if err := store.Save(path); err != nil {
			return err
		}
		fmt.Printf("%s Wrote %s\n", ui.SuccessMarker, path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
