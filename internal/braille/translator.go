package braille

// Translation is the result of contracting one line.
type Translation struct {
	// Text is the contracted string.
	Text string
	// InPos maps every expanded offset to its contracted offset.
	InPos []int
	// OutPos maps every contracted offset to the expanded offset it came
	// from.
	OutPos []int
	// Cursor is the contracted cursor offset, or -1 when none was asked for
	// or the translator does not track it.
	Cursor int
}

// Translator contracts text with a named table.
type Translator interface {
	Translate(table, text string, cursor int) (Translation, error)
}

// valid reports whether t is consistent with an expanded text of
// rawLen characters.
func (t Translation) valid(rawLen int) bool {
	textLen := len([]rune(t.Text))
	if len(t.InPos) != rawLen || len(t.OutPos) != textLen {
		return false
	}
	for _, p := range t.InPos {
		if p < 0 || p > textLen {
			return false
		}
	}
	for _, p := range t.OutPos {
		if p < 0 || p >= rawLen {
			return false
		}
	}
	return true
}
