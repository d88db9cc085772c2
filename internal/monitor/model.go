package monitor

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/brlreview/internal/braille"
)

// cellRowY is the terminal row of the cells inside the box: border, title.
const cellRowY = 2

// UpdateMsg replaces what the monitor shows.
type UpdateMsg Snapshot

// keyResultMsg reports the outcome of delivering a key.
type keyResultMsg struct{ err error }

// KeyMap defines the display keys emulated from the keyboard
type KeyMap struct {
	PanLeft          key.Binding
	PanRight         key.Binding
	LineUp           key.Binding
	LineDown         key.Binding
	Top              key.Binding
	Bottom           key.Binding
	ReturnToFocus    key.Binding
	ToggleContracted key.Binding
	Quit             key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PanLeft, k.PanRight, k.ReturnToFocus, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PanLeft, k.PanRight, k.LineUp, k.LineDown},
		{k.Top, k.Bottom, k.ReturnToFocus, k.ToggleContracted, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PanLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "pan left"),
		),
		PanRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "pan right"),
		),
		LineUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "line up"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "line down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "bottom"),
		),
		ReturnToFocus: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "focus"),
		),
		ToggleContracted: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "contracted"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is a Bubble Tea model showing a braille display. Keyboard keys
// and mouse clicks on cells are turned into display keys and passed to
// OnKey.
type Model struct {
	Title string
	// OnKey receives emulated display keys. It runs as a tea.Cmd.
	OnKey func(braille.Key) error

	Keys KeyMap
	Help help.Model

	snapshot Snapshot
	err      error
	width    int
}

// New creates a monitor model.
func New(title string, onKey func(braille.Key) error) Model {
	return Model{
		Title: title,
		OnKey: onKey,
		Keys:  DefaultKeyMap(),
		Help:  help.New(),
	}
}

// Snapshot returns what the monitor currently shows.
func (m Model) Snapshot() Snapshot {
	return m.snapshot
}

// Err returns the last key delivery error.
func (m Model) Err() error {
	return m.err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.Help.Width = msg.Width
		return m, nil

	case UpdateMsg:
		m.snapshot = Snapshot(msg)
		return m, nil

	case keyResultMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.Keys.Quit) {
			return m, tea.Quit
		}
		if k, ok := m.keyFor(msg); ok {
			return m, m.send(k)
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if cell, ok := m.CellAt(msg.X, msg.Y); ok {
			return m, m.send(braille.Key{Command: braille.KeyRoute, Argument: cell})
		}
	}
	return m, nil
}

func (m Model) keyFor(msg tea.KeyMsg) (braille.Key, bool) {
	bindings := []struct {
		binding key.Binding
		command braille.KeyCommand
	}{
		{m.Keys.PanLeft, braille.KeyPanLeft},
		{m.Keys.PanRight, braille.KeyPanRight},
		{m.Keys.LineUp, braille.KeyLineUp},
		{m.Keys.LineDown, braille.KeyLineDown},
		{m.Keys.Top, braille.KeyTop},
		{m.Keys.Bottom, braille.KeyBottom},
		{m.Keys.ReturnToFocus, braille.KeyReturnToFocus},
		{m.Keys.ToggleContracted, braille.KeyToggleContracted},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return braille.Key{Command: b.command}, true
		}
	}
	return braille.Key{}, false
}

// CellAt maps a terminal position to a 0-based cell index.
func (m Model) CellAt(x, y int) (int, bool) {
	if y != cellRowY && y != cellRowY+1 {
		return 0, false
	}
	cell := x - cellOriginX
	if cell < 0 || cell >= len(m.snapshot.cells()) {
		return 0, false
	}
	return cell, true
}

func (m Model) send(k braille.Key) tea.Cmd {
	if m.OnKey == nil {
		return nil
	}
	onKey := m.OnKey
	return func() tea.Msg {
		return keyResultMsg{err: onKey(k)}
	}
}

// View implements tea.Model
func (m Model) View() string {
	title := m.Title
	if title == "" {
		title = "Braille monitor"
	}
	parts := []string{Render(m.snapshot, title)}
	if m.err != nil {
		parts = append(parts, ErrorStyle.Render(m.err.Error()))
	}
	parts = append(parts, m.Help.View(m.Keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
