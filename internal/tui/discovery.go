package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/brlreview/internal/discovery"
	"github.com/muurk/brlreview/internal/urls"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	displays []*discovery.Display
	err      error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Rescan    key.Binding
	Manual    key.Binding
	NoDisplay key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.NoDisplay, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.NoDisplay, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual URL entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Confirm, m.Cancel}}
}

// scanningKeyMap defines key bindings for scanning mode
type scanningKeyMap struct {
	Manual    key.Binding
	NoDisplay key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Manual, s.NoDisplay, s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{s.Manual, s.NoDisplay, s.Quit}}
}

// displayItem wraps a Display for use with bubbles/list
type displayItem struct {
	display *discovery.Display
}

// FilterValue implements list.Item
func (d displayItem) FilterValue() string {
	return d.display.Instance + " " + d.display.IP + " " + d.display.Hostname
}

// Title returns the display name for list display
func (d displayItem) Title() string {
	if d.display.GetMetadata("manual") == "1" {
		return "Manual: " + d.display.Instance
	}
	return d.display.Instance
}

// Description returns display details for list display
func (d displayItem) Description() string {
	width := "unknown width"
	if d.display.Width > 0 {
		width = fmt.Sprintf("%d cells", d.display.Width)
	}
	return fmt.Sprintf("%s • %s", d.display.URL(), width)
}

// DiscoveryModel is the display selection screen: it browses mDNS for
// virtual braille displays and lets the user pick one, enter a URL, or
// review without a display.
type DiscoveryModel struct {
	Scanner *discovery.Scanner

	// Discovery state
	Scanning    bool
	DisplayList list.Model
	Selected    bool
	Err         error

	// Manual URL entry state
	ManualMode bool
	URLInput   textinput.Model

	// chosen is the URL picked; empty with Selected means no display.
	chosen string

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel(scanner *discovery.Scanner) DiscoveryModel {
	if scanner == nil {
		scanner = discovery.NewScanner()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	urlInput := textinput.New()
	urlInput.Placeholder = "ws://localhost:8040/"
	urlInput.CharLimit = 256
	urlInput.Width = 40

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	displayList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	displayList.Title = "Braille Displays"
	displayList.SetShowStatusBar(false)
	displayList.SetFilteringEnabled(true)
	displayList.Styles.Title = TitleStyle

	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "review"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter URL"),
		),
		NoDisplay: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no display"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return DiscoveryModel{
		Scanner:     scanner,
		DisplayList: displayList,
		URLInput:    urlInput,
		Spinner:     s,
		ProgressBar: progressBar,
		Help:        help.New(),
		Keys:        keys,
		ManualKeys: manualModeKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		ScanningKeys: scanningKeyMap{
			Manual:    keys.Manual,
			NoDisplay: keys.NoDisplay,
			Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
	}
}

// Init starts scanning immediately
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanDisplays(m.Scanner),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.DisplayList.SetWidth(msg.Width - 4)
		m.DisplayList.SetHeight(msg.Height - 10)

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, 0, len(msg.displays))
		for _, d := range msg.displays {
			items = append(items, displayItem{display: d})
		}
		// Manual entries survive a rescan.
		for _, it := range m.DisplayList.Items() {
			if d, ok := it.(displayItem); ok && d.display.GetMetadata("manual") == "1" {
				items = append([]list.Item{d}, items...)
			}
		}
		m.DisplayList.SetItems(items)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.DisplayList, cmd = m.DisplayList.Update(msg)
	}
	return m, cmd
}

// updateNormalMode handles keyboard input in normal display list mode
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.DisplayList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.DisplayList, cmd = m.DisplayList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.Keys.Enter):
		if m.Scanning {
			return m, nil
		}
		if item, ok := m.DisplayList.SelectedItem().(displayItem); ok {
			m.Selected = true
			m.chosen = item.display.URL()
		}
		return m, nil

	case key.Matches(msg, m.Keys.NoDisplay):
		m.Selected = true
		m.chosen = ""
		return m, nil

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.URLInput.SetValue("")
		cmd := m.URLInput.Focus()
		return m, cmd

	case key.Matches(msg, m.Keys.Rescan):
		if m.Scanning {
			return m, nil
		}
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanDisplays(m.Scanner),
			m.Spinner.Tick,
		)
	}

	if m.Scanning {
		return m, nil
	}
	var cmd tea.Cmd
	m.DisplayList, cmd = m.DisplayList.Update(msg)
	return m, cmd
}

// updateManualMode handles keyboard input in manual URL entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.ManualKeys.Cancel):
		m.ManualMode = false
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil

	case key.Matches(msg, m.ManualKeys.Confirm):
		display, err := manualDisplay(m.URLInput.Value())
		if err != nil {
			m.Err = err
			return m, nil
		}
		m.Err = nil
		items := append([]list.Item{displayItem{display: display}}, m.DisplayList.Items()...)
		m.DisplayList.SetItems(items)
		m.DisplayList.Select(0)
		m.ManualMode = false
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// manualDisplay builds a list entry from a typed ws:// or wss:// URL.
func manualDisplay(raw string) (*discovery.Display, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("enter a display URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid display URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("invalid display URL %q: scheme must be ws or wss", raw)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("invalid display URL %q: missing host", raw)
	}

	port := 80
	if u.Scheme == "wss" {
		port = 443
	}
	if p := u.Port(); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &port); err != nil {
			return nil, fmt.Errorf("invalid display URL %q: bad port", raw)
		}
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	metadata := map[string]string{"manual": "1", "path": path}
	if u.Scheme == "wss" {
		metadata["tls"] = "1"
	}
	return &discovery.Display{
		Instance:     u.Host,
		Hostname:     u.Hostname(),
		IP:           u.Hostname(),
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}, nil
}

// SelectedURL returns the chosen display URL. It is empty when the user
// chose to review without a display.
func (m DiscoveryModel) SelectedURL() string {
	return m.chosen
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = m.Help.View(m.ScanningKeys)
	default:
		content = m.renderDisplayResults()
		helpText = m.Help.View(m.Keys)
	}
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders a centered scanning progress display
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	fraction := 1.0
	if m.Scanner.Timeout > 0 {
		fraction = min(1, elapsed.Seconds()/m.Scanner.Timeout.Seconds())
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(fmt.Sprintf("%s SEARCHING FOR BRAILLE DISPLAYS", m.Spinner.View())),
		SubtitleStyle.Render("Browsing "+discovery.ServiceType+" on the local network..."),
		"",
		m.ProgressBar.ViewAs(fraction),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
		"",
	)
	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderDisplayResults renders the display list or "no displays found"
func (m DiscoveryModel) renderDisplayResults() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(m.Err.Error()))
		b.WriteString("\n\n")
	}

	if len(m.DisplayList.Items()) == 0 {
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString("  ")
		b.WriteString(warningStyle.Render("⚠ No braille displays found on your network"))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Start one with 'brlreview-display serve'\n")
		b.WriteString("    • Check that multicast DNS is allowed on this network\n")
		b.WriteString("    • Press m to enter a display URL\n")
		b.WriteString("    • Press n to review with the on-screen monitor only\n")
		b.WriteString("\n  More help: " + urls.DisplaySetup + "\n")
		return b.String()
	}

	b.WriteString(m.DisplayList.View())
	return b.String()
}

// renderManualEntry renders the manual URL entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle("Enter braille display URL"))
	b.WriteString("\n\n")
	b.WriteString("  URL: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n\n")
	if m.Err != nil {
		b.WriteString(RenderError(m.Err.Error()))
	}
	return b.String()
}

// scanDisplays is a command that performs display discovery
func scanDisplays(scanner *discovery.Scanner) tea.Cmd {
	return func() tea.Msg {
		displays, err := scanner.ScanForDisplays(context.Background())
		return scanCompleteMsg{displays: displays, err: err}
	}
}
