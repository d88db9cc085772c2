package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/brlreview/internal/discovery"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/session"
	"go.uber.org/zap"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenReview    Screen = "review"
)

// Opener starts a review session sending braille to the display at url.
// An empty url reviews with the on-screen monitor only. The session must
// push its frames to the feed given to the application.
type Opener func(url string) (*session.Session, error)

// AppConfig configures the application.
type AppConfig struct {
	// Discover starts at the display selection screen. Otherwise review
	// starts right away on URL.
	Discover bool
	URL      string
	Open     Opener
	Feed     Feed
	Scanner  *discovery.Scanner
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	ReviewModel    ReviewModel

	// Session is the open review session, if any. The caller closes it
	// after the program exits.
	Session   *session.Session
	LastError error

	config AppConfig

	Width  int
	Height int
}

// NewAppModel creates the application. Starting on the review screen opens
// the session immediately.
func NewAppModel(config AppConfig) (AppModel, error) {
	if config.Open == nil {
		return AppModel{}, errors.New("tui: an opener is required")
	}
	m := AppModel{config: config}
	if config.Discover {
		m.CurrentScreen = ScreenDiscovery
		m.DiscoveryModel = NewDiscoveryModel(config.Scanner)
		return m, nil
	}

	sess, err := config.Open(config.URL)
	if err != nil {
		return AppModel{}, err
	}
	m.CurrentScreen = ScreenReview
	m.Session = sess
	m.ReviewModel = NewReviewModel(sess, config.Feed, displayName(config.URL))
	return m, nil
}

func displayName(url string) string {
	if url == "" {
		return "monitor only"
	}
	return url
}

// Init initializes the current screen
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenReview:
		return m.ReviewModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// The other screen is sized when it is entered.
		return m.updateCurrentScreen(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		// Quit only when no text is being typed.
		typing := m.DiscoveryModel.ManualMode || m.DiscoveryModel.DisplayList.FilterState() == list.Filtering
		if keyMsg, ok := msg.(tea.KeyMsg); ok && !typing {
			if keyMsg.String() == "q" || keyMsg.String() == "esc" {
				return m, tea.Quit
			}
		}

		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		if m.DiscoveryModel.Selected {
			m.DiscoveryModel.Selected = false
			return m.transitionTo(ScreenReview, m.DiscoveryModel.SelectedURL())
		}

	case ScreenReview:
		updated, c := m.ReviewModel.Update(msg)
		m.ReviewModel = updated.(ReviewModel)
		cmd = c
	}

	return m, cmd
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen, url string) (tea.Model, tea.Cmd) {
	switch screen {
	case ScreenReview:
		sess, err := m.config.Open(url)
		if err != nil {
			logging.Warn("Failed to open review session", zap.String("url", url), zap.Error(err))
			m.LastError = err
			m.DiscoveryModel.Err = fmt.Errorf("failed to connect to %s: %w", displayName(url), err)
			return m, nil
		}
		m.Session = sess
		m.ReviewModel = NewReviewModel(sess, m.config.Feed, displayName(url))
		if m.Width > 0 {
			updated, _ := m.ReviewModel.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
			m.ReviewModel = updated.(ReviewModel)
		}
		m.CurrentScreen = ScreenReview
		return m, m.ReviewModel.Init()
	}
	return m, nil
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenReview:
		return m.ReviewModel.View()
	default:
		return "Unknown screen"
	}
}
