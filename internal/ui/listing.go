package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Listing renders flat review lines, one per row, with the line under the
// review cursor marked.
type Listing struct {
	Lines []string
	// Current is the review cursor line, or -1 for none.
	Current int
	// Matches are lines highlighted as search hits.
	Matches []int
	Width   int
}

// NewListing creates a listing sized to the terminal.
func NewListing(lines []string, current int) *Listing {
	return &Listing{Lines: lines, Current: current, Width: GetTerminalWidth()}
}

// Render returns the styled listing.
func (l *Listing) Render() string {
	if len(l.Lines) == 0 {
		return StepPendingStyle.Render("  (window has no review lines)")
	}

	matched := make(map[int]bool, len(l.Matches))
	for _, i := range l.Matches {
		matched[i] = true
	}

	// number column (5 plus padding) and marker
	textWidth := l.Width - 9
	if textWidth < 10 {
		textWidth = 10
	}

	rows := make([]string, len(l.Lines))
	for i, line := range l.Lines {
		text := runewidth.Truncate(line, textWidth, "…")
		marker := " "
		switch {
		case i == l.Current:
			marker = CursorMarker
			text = CurrentLineStyle.Render(text)
		case matched[i]:
			text = MatchStyle.Render(text)
		default:
			text = LineTextStyle.Render(text)
		}
		rows[i] = LineNumberStyle.Render(fmt.Sprint(i)) + marker + " " + text
	}
	return strings.Join(rows, "\n")
}

// String implements fmt.Stringer
func (l *Listing) String() string {
	return l.Render()
}
