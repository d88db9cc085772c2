package flatreview

import (
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/muurk/brlreview/internal/a11y"
)

// DefaultPixelDelta is the largest difference between the vertical
// midpoints of two zones that still places them on the same line.
const DefaultPixelDelta = 5

// ZoneKind says where the string of a Zone comes from.
type ZoneKind int

const (
	// NameZone shows the accessible name, or the role name when the object
	// has none.
	NameZone ZoneKind = iota
	// TextZone shows a run of one displayed line of the object's text.
	TextZone
	// StateZone shows a state indicator such as a check box mark.
	StateZone
	// ValueZone shows the role name followed by the formatted value.
	ValueZone
)

// String returns the zone kind name.
func (k ZoneKind) String() string {
	switch k {
	case NameZone:
		return "name"
	case TextZone:
		return "text"
	case StateZone:
		return "state"
	case ValueZone:
		return "value"
	default:
		return fmt.Sprintf("ZoneKind(%d)", int(k))
	}
}

// order ranks kinds for the clustering sort. State zones come first so they
// stay in front of the content of their object.
func (k ZoneKind) order() int {
	if k == StateZone {
		return 0
	}
	return 1 + int(k)
}

// Zone is a rectangular piece of on-screen content belonging to one object.
type Zone struct {
	Kind   ZoneKind
	Object a11y.ObjectID
	Text   string
	Rect   a11y.Rect

	// StartOffset is the offset of Text in the object's text. It is 0 for
	// zones that do not come from the text interface.
	StartOffset int
	// Length is the length of Text in characters.
	Length int

	// Line is the index of the line holding the zone.
	Line int
}

// EndOffset returns the offset just past the zone's text.
func (z Zone) EndOffset() int {
	return z.StartOffset + z.Length
}

// OnSameLine reports whether z and other belong on the same flat review
// line.
func (z Zone) OnSameLine(t a11y.Structure, other Zone, pixelDelta int) bool {
	parent := t.Parent(z.Object)
	if parent != a11y.None && parent == t.Parent(other.Object) {
		// Menus in a menu bar and the parts of a scroll bar line up even
		// when their extents do not.
		if t.Role(z.Object).IsMenu() && t.Role(other.Object).IsMenu() {
			return true
		}
		if t.Role(parent) == a11y.RoleScrollBar {
			return true
		}
	}

	a, b := z.Rect, other.Rect
	if a.HasZeroArea() && a.Y >= b.Y && a.Y <= b.Bottom() {
		return true
	}
	if b.HasZeroArea() && b.Y >= a.Y && b.Y <= a.Bottom() {
		return true
	}
	if a.Y >= b.Bottom() || b.Y >= a.Bottom() {
		return false
	}
	return math.Abs(a.MidY()-b.MidY()) <= float64(pixelDelta)
}

// Word is a run of non-whitespace characters and the whitespace after it.
type Word struct {
	// Zone is the arena index of the zone holding the word.
	Zone  int
	Index int
	Text  string
	// StartOffset is absolute in the object's text.
	StartOffset int
	Length      int
}

// RelativeOffset returns the offset of the absolute offset abs inside the
// word, or -1 when abs lies outside it.
func (w Word) RelativeOffset(abs int) int {
	if abs < w.StartOffset || abs >= w.StartOffset+w.Length {
		return -1
	}
	return abs - w.StartOffset
}

// Chars returns the characters of the word.
func (w Word) Chars() []Char {
	runes := []rune(w.Text)
	chars := make([]Char, len(runes))
	for i, r := range runes {
		chars[i] = Char{Word: w.Index, Index: i, Text: string(r), Offset: w.StartOffset + i}
	}
	return chars
}

// Char is a single character of a Word.
type Char struct {
	Word   int
	Index  int
	Text   string
	Offset int
}

var wordPattern = regexp.MustCompile(`\S*\s*`)

// splitWords breaks the text of the zone at arena index zi into words.
func splitWords(zi int, z Zone) []Word {
	var words []Word
	for _, loc := range wordPattern.FindAllStringIndex(z.Text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		// Regexp indices are in bytes; offsets are in characters.
		runeOffset := utf8.RuneCountInString(z.Text[:loc[0]])
		text := z.Text[loc[0]:loc[1]]
		length := utf8.RuneCountInString(text)
		words = append(words, Word{
			Zone:        zi,
			Index:       len(words),
			Text:        text,
			StartOffset: z.StartOffset + runeOffset,
			Length:      length,
		})
	}
	return words
}
