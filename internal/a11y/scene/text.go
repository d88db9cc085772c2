package scene

import (
	"sort"
	"unicode"

	"github.com/muurk/brlreview/internal/a11y"
)

// layoutLines splits text into display lines. Paragraphs end at "\n"; the
// newline belongs to the line it terminates. When wrap is positive,
// paragraphs longer than wrap columns are broken after the last space that
// fits, or hard-broken at wrap when a single word is too long.
func layoutLines(text []rune, wrap int) []span {
	var lines []span
	start := 0
	for start <= len(text) {
		end := start
		for end < len(text) && text[end] != '\n' {
			end++
		}
		lines = append(lines, wrapParagraph(text, start, end, wrap)...)
		if end < len(text) {
			// Attach the newline to the paragraph's last line.
			lines[len(lines)-1].end++
		}
		start = end + 1
		if start == len(text) && end < len(text) {
			// Text ends with a newline: no empty trailing line.
			break
		}
	}
	return lines
}

func wrapParagraph(text []rune, start, end, wrap int) []span {
	if wrap <= 0 || end-start <= wrap {
		return []span{{start, end}}
	}
	var lines []span
	pos := start
	for end-pos > wrap {
		brk := pos + wrap
		if text[brk] == ' ' {
			// A space right at the margin hangs off the end of the line.
			brk++
		} else {
			found := false
			for b := pos + wrap; b > pos; b-- {
				if text[b-1] == ' ' {
					brk = b
					found = true
					break
				}
			}
			if !found {
				brk = pos + wrap
			}
		}
		lines = append(lines, span{pos, brk})
		pos = brk
	}
	if pos < end {
		lines = append(lines, span{pos, end})
	}
	return lines
}

func (s *Scene) textNode(obj a11y.ObjectID) *node {
	n, ok := s.nodes[obj]
	if !ok || !n.hasText {
		return nil
	}
	return n
}

func (s *Scene) SupportsText(obj a11y.ObjectID) bool {
	return s.textNode(obj) != nil
}

func (s *Scene) CharacterCount(obj a11y.ObjectID) int {
	if n := s.textNode(obj); n != nil {
		return len(n.text)
	}
	return 0
}

func (s *Scene) Text(obj a11y.ObjectID, start, end int) string {
	n := s.textNode(obj)
	if n == nil {
		return ""
	}
	if end < 0 || end > len(n.text) {
		end = len(n.text)
	}
	start = clamp(start, 0, end)
	return string(n.text[start:end])
}

func (s *Scene) TextAt(obj a11y.ObjectID, offset int, granularity a11y.Granularity) (string, int, int) {
	n := s.textNode(obj)
	if n == nil || offset < 0 || offset > len(n.text) || len(n.text) == 0 {
		return "", 0, 0
	}

	var unit span
	switch granularity {
	case a11y.GranularityChar:
		if offset == len(n.text) {
			return "", offset, offset
		}
		unit = span{offset, offset + 1}
	case a11y.GranularityWord:
		unit = wordAt(n.text, offset)
	case a11y.GranularityLine:
		unit = n.lines[n.lineIndex(offset)]
	case a11y.GranularitySentence:
		unit = sentenceAt(n.text, offset)
	case a11y.GranularityParagraph:
		unit = paragraphAt(n.text, offset)
	default:
		return "", 0, 0
	}
	return string(n.text[unit.start:unit.end]), unit.start, unit.end
}

// lineIndex returns the index of the line containing offset. The end of the
// text belongs to the last line.
func (n *node) lineIndex(offset int) int {
	i := sort.Search(len(n.lines), func(i int) bool { return n.lines[i].end > offset })
	if i == len(n.lines) {
		return len(n.lines) - 1
	}
	return i
}

// wordAt returns the word starting at or before offset together with its
// trailing whitespace.
func wordAt(text []rune, offset int) span {
	if offset == len(text) && offset > 0 {
		offset--
	}
	start := offset
	for start > 0 && !unicode.IsSpace(text[start]) && !unicode.IsSpace(text[start-1]) {
		start--
	}
	if unicode.IsSpace(text[start]) {
		// Inside trailing whitespace: the word is the one before it.
		for start > 0 && unicode.IsSpace(text[start-1]) {
			start--
		}
		for start > 0 && !unicode.IsSpace(text[start-1]) {
			start--
		}
	}
	end := start
	for end < len(text) && !unicode.IsSpace(text[end]) {
		end++
	}
	for end < len(text) && unicode.IsSpace(text[end]) && text[end] != '\n' {
		end++
	}
	if end < len(text) && text[end] == '\n' {
		end++
	}
	return span{start, end}
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func sentenceAt(text []rune, offset int) span {
	var bounds []int
	bounds = append(bounds, 0)
	for i := 0; i < len(text); i++ {
		if isSentenceEnd(text[i]) || text[i] == '\n' {
			j := i + 1
			for j < len(text) && unicode.IsSpace(text[j]) {
				j++
			}
			if j < len(text) {
				bounds = append(bounds, j)
			}
			i = j - 1
		}
	}
	bounds = append(bounds, len(text))
	for i := 0; i < len(bounds)-1; i++ {
		if offset < bounds[i+1] || i == len(bounds)-2 {
			return span{bounds[i], bounds[i+1]}
		}
	}
	return span{0, len(text)}
}

func paragraphAt(text []rune, offset int) span {
	start := offset
	if start == len(text) && start > 0 {
		start--
	}
	for start > 0 && text[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(text) && text[end] != '\n' {
		end++
	}
	if end < len(text) {
		end++
	}
	return span{start, end}
}

// charRect returns the cell occupied by the character at offset. Newlines
// and the end-of-text position are zero width.
func (s *Scene) charRect(n *node, offset int) a11y.Rect {
	li := n.lineIndex(offset)
	line := n.lines[li]
	col := offset - line.start
	width := s.charWidth
	if offset >= len(n.text) || n.text[offset] == '\n' {
		width = 0
	}
	return a11y.Rect{
		X:      n.rect.X + col*s.charWidth,
		Y:      n.rect.Y + li*s.lineHeight - n.scrollY,
		Width:  width,
		Height: s.lineHeight,
	}
}

func (s *Scene) RangeRect(obj a11y.ObjectID, start, end int) a11y.Rect {
	n := s.textNode(obj)
	if n == nil || !n.hasRect || start < 0 || start > len(n.text) {
		return a11y.Rect{}
	}
	end = clamp(end, start, len(n.text))
	if start == end {
		caret := s.charRect(n, start)
		caret.Width = 0
		return caret
	}

	var rect a11y.Rect
	for o := start; o < end; o++ {
		r := s.charRect(n, o)
		if r.Width == 0 {
			continue
		}
		rect = rect.Union(r)
	}
	if rect.IsZero() {
		// Nothing but newlines.
		return s.charRect(n, start)
	}
	return rect
}

func (s *Scene) CaretOffset(obj a11y.ObjectID) int {
	if n := s.textNode(obj); n != nil {
		return n.caret
	}
	return -1
}

func (s *Scene) SetCaretOffset(obj a11y.ObjectID, offset int) bool {
	n := s.textNode(obj)
	if n == nil || offset < 0 || offset > len(n.text) {
		return false
	}
	n.caret = offset
	return true
}

func (s *Scene) TextAttributesAt(obj a11y.ObjectID, offset int) (map[string]string, int, int) {
	n := s.textNode(obj)
	if n == nil || offset < 0 || offset >= len(n.text) {
		return nil, 0, 0
	}

	gapStart := 0
	for _, run := range n.runs {
		if offset >= run.Start && offset < run.End {
			attrs := copyMap(n.defaultAttrs)
			if attrs == nil {
				attrs = make(map[string]string, len(run.Attributes))
			}
			for k, v := range run.Attributes {
				attrs[k] = v
			}
			return attrs, run.Start, run.End
		}
		if run.Start > offset {
			return copyMap(n.defaultAttrs), gapStart, run.Start
		}
		gapStart = run.End
	}
	return copyMap(n.defaultAttrs), gapStart, len(n.text)
}

func (s *Scene) DefaultTextAttributes(obj a11y.ObjectID) map[string]string {
	if n := s.textNode(obj); n != nil {
		return copyMap(n.defaultAttrs)
	}
	return nil
}

func (s *Scene) Selections(obj a11y.ObjectID) []a11y.Range {
	if n := s.textNode(obj); n != nil {
		return append([]a11y.Range(nil), n.selections...)
	}
	return nil
}

func (s *Scene) Hyperlinks(obj a11y.ObjectID) []a11y.Range {
	if n := s.textNode(obj); n != nil {
		return append([]a11y.Range(nil), n.links...)
	}
	return nil
}
