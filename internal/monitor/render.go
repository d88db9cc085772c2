package monitor

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muurk/brlreview/internal/braille"
)

// Marker characters shown under each cell.
const (
	markCursor = '^'
	markDot7   = '7'
	markDot8   = '8'
	markDots78 = '#'
	markNone   = ' '

	// placeholder stands in for characters that do not occupy exactly one
	// terminal column.
	placeholder = '?'
)

// Snapshot is what the monitor shows: one row of cells and a status line.
type Snapshot struct {
	// Width is the display size in cells. Text is padded or cut to it.
	Width  int
	Text   string
	Mask   []byte
	Cursor int // 1-based, 0 for none
	Status string
}

// FromFrame converts a rendered engine frame.
func FromFrame(f braille.Frame) Snapshot {
	return Snapshot{Width: f.Width, Text: f.Text, Mask: f.Mask, Cursor: f.Cursor}
}

// FromCells converts a buffer written to a display of the given width.
func FromCells(c braille.Cells, width int) Snapshot {
	return Snapshot{Width: width, Text: c.Text, Mask: c.Mask, Cursor: c.Cursor}
}

// cell is one display cell ready for styling.
type cell struct {
	r      rune
	mask   byte
	cursor bool
}

func (s Snapshot) cells() []cell {
	runes := []rune(s.Text)
	width := s.Width
	if width <= 0 {
		width = len(runes)
	}

	cells := make([]cell, width)
	for i := range cells {
		c := cell{r: ' ', cursor: i+1 == s.Cursor}
		if i < len(runes) {
			c.r = runes[i]
			if runewidth.RuneWidth(c.r) != 1 {
				c.r = placeholder
			}
		}
		if i < len(s.Mask) {
			c.mask = s.Mask[i]
		}
		cells[i] = c
	}
	return cells
}

func (c cell) marker() rune {
	switch {
	case c.cursor:
		return markCursor
	case c.mask&byte(braille.IndicatorDots78) == byte(braille.IndicatorDots78):
		return markDots78
	case c.mask&byte(braille.IndicatorDot8) != 0:
		return markDot8
	case c.mask&byte(braille.IndicatorDot7) != 0:
		return markDot7
	default:
		return markNone
	}
}

// Plain returns the cell row and the marker row without styling. Marker
// row characters: '^' cursor, '7' dot 7, '8' dot 8, '#' dots 7 and 8.
func Plain(s Snapshot) (row, markers string) {
	var rb, mb strings.Builder
	for _, c := range s.cells() {
		rb.WriteRune(c.r)
		mb.WriteRune(c.marker())
	}
	return rb.String(), strings.TrimRight(mb.String(), " ")
}

// Render returns the styled monitor box.
func Render(s Snapshot, title string) string {
	var row strings.Builder
	for _, c := range s.cells() {
		style := CellStyle
		switch {
		case c.cursor:
			style = CursorCellStyle
		case c.mask != 0:
			style = MarkedCellStyle
		}
		row.WriteString(style.Render(string(c.r)))
	}
	_, markers := Plain(s)

	lines := []string{
		TitleStyle.Render(title),
		row.String(),
		MarkerStyle.Render(markers),
	}
	if s.Status != "" {
		lines = append(lines, StatusStyle.Render(s.Status))
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}
