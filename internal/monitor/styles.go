package monitor

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/brlreview/internal/ui"
)

// Monitor styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor).
			Bold(true)

	CellStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor)

	// CursorCellStyle marks the cell under the braille cursor
	CursorCellStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor).
			Background(ui.PrimaryColor).
			Bold(true)

	// MarkedCellStyle marks cells with dot 7 or dot 8 raised
	MarkedCellStyle = lipgloss.NewStyle().
			Foreground(ui.WarningColor).
			Underline(true)

	MarkerStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ui.ErrorColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.PrimaryColor).
			Padding(0, 1)
)

// cellOriginX is the terminal column of cell 0 inside BoxStyle: one border
// column plus one padding column.
const cellOriginX = 2
