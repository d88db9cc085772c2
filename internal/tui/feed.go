package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/brlreview/internal/braille"
)

// Feed carries rendered frames from the review loop to the UI. It holds
// only the newest frame.
type Feed chan braille.Frame

// NewFeed creates an empty feed.
func NewFeed() Feed {
	return make(Feed, 1)
}

// Push replaces any unread frame with f. It never blocks.
func (f Feed) Push(fr braille.Frame) {
	for {
		select {
		case f <- fr:
			return
		default:
		}
		select {
		case <-f:
		default:
		}
	}
}

// frameMsg delivers a frame from the feed.
type frameMsg braille.Frame

// waitForFrame is a command that blocks until the next frame arrives.
func waitForFrame(f Feed) tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		fr, ok := <-f
		if !ok {
			return nil
		}
		return frameMsg(fr)
	}
}
