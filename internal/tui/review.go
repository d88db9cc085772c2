package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/monitor"
	"github.com/muurk/brlreview/internal/presenter"
	"github.com/muurk/brlreview/internal/session"
	"github.com/muurk/brlreview/internal/ui"
)

// brailleHeight is the rows taken below the lines: speech, the monitor box
// and the status bar.
const brailleHeight = 8

// reviewResultMsg carries the state after a review command.
type reviewResultMsg struct {
	snap session.Snapshot
	err  error
}

// command is one review operation run on the session loop.
type command func(p *presenter.Presenter) error

// reviewKeyMap defines key bindings for the review screen
type reviewKeyMap struct {
	PrevLine   key.Binding
	NextLine   key.Binding
	PrevItem   key.Binding
	NextItem   key.Binding
	PrevChar   key.Binding
	NextChar   key.Binding
	Above      key.Binding
	Below      key.Binding
	Home       key.Binding
	End        key.Binding
	BottomLeft key.Binding
	LineStart  key.Binding
	LineEnd    key.Binding

	Character key.Binding
	Spell     key.Binding
	Phonetic  key.Binding
	Unicode   key.Binding
	Object    key.Binding
	SayAll    key.Binding
	Activate  key.Binding

	Copy     key.Binding
	Append   key.Binding
	Restrict key.Binding
	Find     key.Binding
	FindNext key.Binding
	FindPrev key.Binding
	PanLeft  key.Binding
	PanRight key.Binding

	Toggle key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k reviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevLine, k.NextLine, k.PrevItem, k.NextItem, k.Find, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k reviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevLine, k.NextLine, k.PrevItem, k.NextItem, k.PrevChar, k.NextChar, k.Above, k.Below},
		{k.Home, k.End, k.BottomLeft, k.LineStart, k.LineEnd, k.PanLeft, k.PanRight},
		{k.Character, k.Spell, k.Phonetic, k.Unicode, k.Object, k.SayAll, k.Activate},
		{k.Copy, k.Append, k.Restrict, k.Find, k.FindNext, k.FindPrev, k.Toggle, k.Help, k.Quit},
	}
}

func newReviewKeyMap() reviewKeyMap {
	return reviewKeyMap{
		PrevLine:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous line")),
		NextLine:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next line")),
		PrevItem:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous word")),
		NextItem:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next word")),
		PrevChar:   key.NewBinding(key.WithKeys(","), key.WithHelp(",", "previous char")),
		NextChar:   key.NewBinding(key.WithKeys("."), key.WithHelp(".", "next char")),
		Above:      key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "above")),
		Below:      key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "below")),
		Home:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		End:        key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		BottomLeft: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bottom left")),
		LineStart:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "line start")),
		LineEnd:    key.NewBinding(key.WithKeys("$"), key.WithHelp("$", "line end")),

		Character: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "character")),
		Spell:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "spell word")),
		Phonetic:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "phonetic word")),
		Unicode:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unicode")),
		Object:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "object")),
		SayAll:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "say all")),
		Activate:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "activate")),

		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Append:   key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "append")),
		Restrict: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "restrict")),
		Find:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
		FindNext: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "find next")),
		FindPrev: key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "find previous")),
		PanLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "pan left")),
		PanRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "pan right")),

		Toggle: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "flat review on/off")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// searchKeyMap defines key bindings while typing a search
type searchKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k searchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k searchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// ReviewModel is the flat review screen: the review lines with the cursor
// line marked, what was last spoken, and the braille display.
type ReviewModel struct {
	Session *session.Session
	Feed    Feed
	// Display describes where braille goes, shown in the monitor title.
	Display string

	Keys       reviewKeyMap
	SearchKeys searchKeyMap
	Help       help.Model
	Search     textinput.Model
	Searching  bool
	Lines      viewport.Model

	snap   session.Snapshot
	frame  braille.Frame
	spoken string
	Err    error

	Width  int
	Height int
}

// NewReviewModel creates the review screen for an open session.
func NewReviewModel(sess *session.Session, feed Feed, display string) ReviewModel {
	search := textinput.New()
	search.Prompt = "/"
	search.PromptStyle = SearchPromptStyle
	search.Placeholder = "regular expression"
	search.CharLimit = 256
	search.Width = 40

	return ReviewModel{
		Session: sess,
		Feed:    feed,
		Display: display,
		Keys:    newReviewKeyMap(),
		SearchKeys: searchKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "find")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		Help:   help.New(),
		Search: search,
		Lines:  viewport.New(MinTerminalWidth-4, 10),
	}
}

// Snapshot returns the review state shown.
func (m ReviewModel) Snapshot() session.Snapshot {
	return m.snap
}

// Spoken returns the speech line shown.
func (m ReviewModel) Spoken() string {
	return m.spoken
}

// Init starts flat review and listens for frames.
func (m ReviewModel) Init() tea.Cmd {
	return tea.Batch(
		m.run(func(p *presenter.Presenter) error {
			p.Start()
			return nil
		}),
		waitForFrame(m.Feed),
	)
}

// run executes c on the session loop.
func (m ReviewModel) run(c command) tea.Cmd {
	sess := m.Session
	return func() tea.Msg {
		var cmdErr error
		snap, err := sess.Do(func(p *presenter.Presenter) {
			if c != nil {
				cmdErr = c(p)
			}
		})
		if err == nil {
			err = cmdErr
		}
		return reviewResultMsg{snap: snap, err: err}
	}
}

// Update handles messages and updates the model
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.Lines.Width = msg.Width - 4
		m.Lines.Height = max(3, msg.Height-chromeHeight-brailleHeight)
		m.syncLines()
		return m, nil

	case reviewResultMsg:
		if errors.Is(msg.err, session.ErrClosed) {
			return m, tea.Quit
		}
		m.Err = msg.err
		m.snap = msg.snap
		if m.frame.Width == 0 {
			m.frame = msg.snap.Frame
		}
		if len(msg.snap.Spoken) > 0 {
			texts := make([]string, len(msg.snap.Spoken))
			for i, u := range msg.snap.Spoken {
				texts[i] = u.Text
			}
			m.spoken = strings.Join(texts, " / ")
		}
		m.syncLines()
		return m, nil

	case frameMsg:
		m.frame = braille.Frame(msg)
		// Display keys move the review cursor without a command from us.
		return m, tea.Batch(waitForFrame(m.Feed), m.run(nil))

	case tea.KeyMsg:
		if m.Searching {
			return m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Help):
			m.Help.ShowAll = !m.Help.ShowAll
			return m, nil
		case key.Matches(msg, m.Keys.Find):
			m.Searching = true
			m.Search.SetValue("")
			cmd := m.Search.Focus()
			return m, cmd
		}
		if c, ok := m.commandFor(msg); ok {
			return m, m.run(c)
		}
	}
	return m, nil
}

// updateSearch handles keyboard input while the find prompt is open
func (m ReviewModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.SearchKeys.Cancel):
		m.Searching = false
		m.Search.Blur()
		return m, nil

	case key.Matches(msg, m.SearchKeys.Confirm):
		pattern := m.Search.Value()
		m.Searching = false
		m.Search.Blur()
		if pattern == "" {
			return m, nil
		}
		q := flatreview.Query{Pattern: pattern, WrapAround: true}
		return m, m.run(func(p *presenter.Presenter) error {
			_, err := p.Find(q)
			return err
		})
	}

	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	return m, cmd
}

// commandFor maps a key to a review command.
func (m ReviewModel) commandFor(msg tea.KeyMsg) (command, bool) {
	bindings := []struct {
		binding key.Binding
		name    string
	}{
		{m.Keys.PrevLine, "previous-line"},
		{m.Keys.NextLine, "next-line"},
		{m.Keys.PrevItem, "previous-item"},
		{m.Keys.NextItem, "next-item"},
		{m.Keys.PrevChar, "previous-character"},
		{m.Keys.NextChar, "next-character"},
		{m.Keys.Above, "above"},
		{m.Keys.Below, "below"},
		{m.Keys.Home, "home"},
		{m.Keys.End, "end"},
		{m.Keys.BottomLeft, "bottom-left"},
		{m.Keys.LineStart, "line-start"},
		{m.Keys.LineEnd, "line-end"},
		{m.Keys.Activate, "activate"},
		{m.Keys.Character, "character"},
		{m.Keys.Spell, "spell-item"},
		{m.Keys.Phonetic, "phonetic-item"},
		{m.Keys.Unicode, "unicode"},
		{m.Keys.Object, "object"},
		{m.Keys.SayAll, "say-all"},
		{m.Keys.Restrict, "restrict"},
		{m.Keys.Toggle, "toggle"},
		{m.Keys.Copy, "copy"},
		{m.Keys.Append, "append"},
		{m.Keys.FindNext, "find-next"},
		{m.Keys.FindPrev, "find-previous"},
		{m.Keys.PanLeft, "pan-left"},
		{m.Keys.PanRight, "pan-right"},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			c, ok := presenter.LookupCommand(b.name)
			return c.Run, ok
		}
	}
	return nil, false
}

// syncLines re-renders the lines and scrolls the cursor line into view.
func (m *ReviewModel) syncLines() {
	m.Lines.SetContent(m.renderLines())
	line := m.snap.Location.Line
	switch {
	case line < m.Lines.YOffset:
		m.Lines.SetYOffset(line)
	case m.Lines.Height > 0 && line >= m.Lines.YOffset+m.Lines.Height:
		m.Lines.SetYOffset(line - m.Lines.Height + 1)
	}
}

func (m ReviewModel) renderLines() string {
	if !m.snap.Active {
		return RenderSubtitle("Flat review is off. Press f to start.")
	}
	if len(m.snap.Lines) == 0 {
		return RenderSubtitle(presenter.MsgBlank)
	}
	rows := make([]string, len(m.snap.Lines))
	for i, text := range m.snap.Lines {
		num := ui.LineNumberStyle.Render(strconv.Itoa(i + 1))
		if i == m.snap.Location.Line {
			rows[i] = num + ui.CurrentLineStyle.Render(ui.CursorMarker+" "+text)
			continue
		}
		rows[i] = num + ui.LineTextStyle.Render("  "+text)
	}
	return strings.Join(rows, "\n")
}

func (m ReviewModel) renderStatus() string {
	parts := []string{}
	if m.snap.Active {
		loc := m.snap.Location
		parts = append(parts, fmt.Sprintf("line %d/%d  zone %d  word %d  char %d",
			loc.Line+1, len(m.snap.Lines), loc.Zone+1, loc.Word+1, loc.Char+1))
	}
	if m.snap.Restricted {
		parts = append(parts, "restricted")
	}
	parts = append(parts, "display "+m.snap.State.String())
	return StatusBarStyle.Render(strings.Join(parts, " • "))
}

// View renders the review screen
func (m ReviewModel) View() string {
	title := "Braille"
	if m.Display != "" {
		title += " • " + m.Display
	}
	snap := monitor.FromFrame(m.frame)
	snap.Status = m.snap.State.String()

	parts := []string{
		m.Lines.View(),
		SpeechStyle.Render(m.spoken),
		monitor.Render(snap, title),
		m.renderStatus(),
	}
	if m.Searching {
		parts = append(parts, m.Search.View())
	}
	if m.Err != nil {
		parts = append(parts, RenderError(m.Err.Error()))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	helpText := m.Help.View(m.Keys)
	if m.Searching {
		helpText = m.Help.View(m.SearchKeys)
	}
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}
