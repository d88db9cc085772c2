package braille

import (
	"fmt"
	"strings"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

// RegionKind identifies how a Region was built and how it reacts to
// routing keys.
type RegionKind int

const (
	// KindPlain is static text, e.g. a flash message.
	KindPlain RegionKind = iota
	// KindComponent presents a widget; routing performs its default action.
	KindComponent
	// KindText presents the caret line of a text object; routing moves the
	// caret.
	KindText
	// KindLink is a Component whose every cell carries the link indicator.
	KindLink
	// KindReviewComponent is a flat review zone without text.
	KindReviewComponent
	// KindReviewText is a flat review zone of a text object.
	KindReviewText
)

func (k RegionKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindComponent:
		return "component"
	case KindText:
		return "text"
	case KindLink:
		return "link"
	case KindReviewComponent:
		return "review component"
	case KindReviewText:
		return "review text"
	default:
		return fmt.Sprintf("RegionKind(%d)", int(k))
	}
}

// EndOfLineIndicator is appended to Text regions when enabled.
const EndOfLineIndicator = " $l"

// NoZone is the zone index of regions that do not come from flat review.
const NoZone = -1

// Region is a piece of a braille line: a string, a cursor offset and a
// per-character attribute mask of the same length.
//
// The region keeps its expanded (uncontracted) text; Render produces the
// displayed text for a set of RenderOptions, contracting it when asked and
// keeping the offset maps needed to route cells back to expanded offsets.
type Region struct {
	kind RegionKind
	tree a11y.Tree
	obj  a11y.ObjectID
	zone int

	label string
	text  string
	// cursor is the expanded cursor offset within label+text, -1 for none.
	cursor int

	// Text region state.
	caretOffset int
	lineOffset  int

	// gen increments on every mutation so Line caches notice.
	gen uint64

	// Rendered state.
	display       []rune
	mask          []byte
	displayCursor int
	contracted    bool
	inPos         []int
	outPos        []int
}

// NewRegion creates a plain region. cursor is a 0-based offset into text,
// or -1 for no cursor.
func NewRegion(text string, cursor int) *Region {
	r := &Region{kind: KindPlain, text: stripNewline(text), cursor: cursor, zone: NoZone}
	r.Render(RenderOptions{}, nil)
	return r
}

// NewComponent creates a region for a widget.
func NewComponent(tree a11y.Tree, obj a11y.ObjectID, text string, cursor int) *Region {
	r := &Region{kind: KindComponent, tree: tree, obj: obj, text: stripNewline(text), cursor: cursor, zone: NoZone}
	r.Render(RenderOptions{}, nil)
	return r
}

// NewLink creates a region for a hyperlink.
func NewLink(tree a11y.Tree, obj a11y.ObjectID, text string, cursor int) *Region {
	r := &Region{kind: KindLink, tree: tree, obj: obj, text: stripNewline(text), cursor: cursor, zone: NoZone}
	r.Render(RenderOptions{}, nil)
	return r
}

// NewReviewLink creates a region for a flat review zone of a hyperlink.
func NewReviewLink(tree a11y.Tree, obj a11y.ObjectID, text string, cursor int, zone int) *Region {
	r := NewLink(tree, obj, text, cursor)
	r.zone = zone
	return r
}

// NewText creates a region showing the line of obj that holds the caret,
// preceded by label when it is not empty.
func NewText(tree a11y.Tree, obj a11y.ObjectID, label string) *Region {
	r := &Region{kind: KindText, tree: tree, obj: obj, label: label, zone: NoZone}
	r.readCaretLine()
	r.Render(RenderOptions{}, nil)
	return r
}

// NewReviewComponent creates a region for a flat review zone that has no
// text interface. zone is the zone's index in its flat review context.
func NewReviewComponent(tree a11y.Tree, obj a11y.ObjectID, text string, cursor int, zone int) *Region {
	r := &Region{kind: KindReviewComponent, tree: tree, obj: obj, text: stripNewline(text), cursor: cursor, zone: zone}
	r.Render(RenderOptions{}, nil)
	return r
}

// NewReviewText creates a region for a flat review text zone starting at
// lineOffset in obj's text.
func NewReviewText(tree a11y.Tree, obj a11y.ObjectID, text string, lineOffset, cursor int, zone int) *Region {
	r := &Region{
		kind:       KindReviewText,
		tree:       tree,
		obj:        obj,
		text:       stripNewline(text),
		cursor:     cursor,
		lineOffset: lineOffset,
		zone:       zone,
	}
	r.Render(RenderOptions{}, nil)
	return r
}

func stripNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}

// readCaretLine reloads caret and line offsets of a Text region.
func (r *Region) readCaretLine() {
	caret := r.tree.CaretOffset(r.obj)
	if caret < 0 {
		caret = 0
	}
	line, start, _ := r.tree.TextAt(r.obj, caret, a11y.GranularityLine)
	r.text = stripNewline(line)
	r.caretOffset = caret
	r.lineOffset = start
	r.cursor = r.labelLen() + caret - start
}

func (r *Region) labelLen() int {
	if r.label == "" {
		return 0
	}
	return len([]rune(r.label)) + 1
}

// Kind returns the region kind.
func (r *Region) Kind() RegionKind { return r.kind }

// Object returns the accessible object behind the region, or a11y.None.
func (r *Region) Object() a11y.ObjectID { return r.obj }

// Zone returns the flat review zone index, or NoZone.
func (r *Region) Zone() int { return r.zone }

// LineOffset returns the offset in the object's text where the region's
// text starts. Only meaningful for text regions.
func (r *Region) LineOffset() int { return r.lineOffset }

// CaretOffset returns the caret offset recorded for a Text region.
func (r *Region) CaretOffset() int { return r.caretOffset }

// String returns the displayed string as of the last Render.
func (r *Region) String() string { return string(r.display) }

// Len returns the number of displayed cells.
func (r *Region) Len() int { return len(r.display) }

// CursorOffset returns the displayed cursor offset, -1 for none.
func (r *Region) CursorOffset() int { return r.displayCursor }

// AttributeMask returns the mask as of the last Render. It always has the
// same length as String.
func (r *Region) AttributeMask() []byte { return r.mask }

// IsContracted reports whether the last Render contracted the text.
func (r *Region) IsContracted() bool { return r.contracted }

// SetCursor moves the expanded cursor offset. Used by flat review to follow
// the review cursor within a zone.
func (r *Region) SetCursor(cursor int) {
	if cursor != r.cursor {
		r.cursor = cursor
		r.gen++
	}
}

// RepositionCursor re-reads the caret of a Text region. It returns false,
// leaving the region untouched, when the caret has moved to a different
// line.
func (r *Region) RepositionCursor() bool {
	if r.kind != KindText {
		return false
	}
	caret := r.tree.CaretOffset(r.obj)
	if caret < 0 {
		return false
	}
	_, start, _ := r.tree.TextAt(r.obj, caret, a11y.GranularityLine)
	if start != r.lineOffset {
		return false
	}
	r.caretOffset = caret
	r.cursor = r.labelLen() + caret - start
	r.gen++
	return true
}

// expanded returns the uncontracted string for opts.
func (r *Region) expanded(opts RenderOptions) []rune {
	var b strings.Builder
	if r.label != "" {
		b.WriteString(r.label)
		b.WriteByte(' ')
	}
	b.WriteString(r.text)
	if r.kind == KindText && opts.EndOfLine {
		b.WriteString(EndOfLineIndicator)
	}
	return []rune(b.String())
}

// rawMask builds the attribute mask against expanded offsets.
func (r *Region) rawMask(raw []rune, opts RenderOptions) []byte {
	mask := make([]byte, len(raw))

	switch r.kind {
	case KindLink:
		for i := range mask {
			mask[i] = byte(opts.LinkIndicator)
		}
	case KindText:
		r.markLinks(mask, r.labelLen(), opts)
		r.markText(mask, r.labelLen(), opts)
	case KindReviewText:
		r.markLinks(mask, 0, opts)
	}
	return mask
}

// markLinks ORs the link indicator onto the cells of the text line showing
// a link: all of them when the object is a link, else those inside the
// object's hyperlink ranges.
func (r *Region) markLinks(mask []byte, prefix int, opts RenderOptions) {
	if opts.LinkIndicator == IndicatorNone || r.tree == nil {
		return
	}
	textLen := len([]rune(r.text))
	if r.tree.Role(r.obj) == a11y.RoleLink {
		for i := 0; i < textLen; i++ {
			mask[prefix+i] |= byte(opts.LinkIndicator)
		}
		return
	}
	for _, link := range r.tree.Hyperlinks(r.obj) {
		for o := max(link.Start, r.lineOffset); o < link.End && o-r.lineOffset < textLen; o++ {
			mask[prefix+o-r.lineOffset] |= byte(opts.LinkIndicator)
		}
	}
}

// markText ORs attribute and selection indicators onto the cells of the
// text line, which starts at cell prefix.
func (r *Region) markText(mask []byte, prefix int, opts RenderOptions) {
	textLen := len([]rune(r.text))

	if opts.AttributeIndicator != IndicatorNone {
		defaults := r.tree.DefaultTextAttributes(r.obj)
		for i := 0; i < textLen; {
			attrs, _, end := r.tree.TextAttributesAt(r.obj, r.lineOffset+i)
			runEnd := end - r.lineOffset
			if runEnd <= i {
				runEnd = i + 1
			}
			if differs(attrs, defaults) {
				for j := i; j < runEnd && j < textLen; j++ {
					mask[prefix+j] |= byte(opts.AttributeIndicator)
				}
			}
			i = runEnd
		}
	}

	if opts.SelectionIndicator != IndicatorNone {
		for _, sel := range r.tree.Selections(r.obj) {
			for o := max(sel.Start, r.lineOffset); o < sel.End && o-r.lineOffset < textLen; o++ {
				mask[prefix+o-r.lineOffset] |= byte(opts.SelectionIndicator)
			}
		}
	}
}

func differs(attrs, defaults map[string]string) bool {
	for k, v := range attrs {
		if defaults[k] != v {
			return true
		}
	}
	return false
}

// Render recomputes the displayed string, cursor and mask for opts. When
// contraction is requested and tr is not nil, the text is contracted; a
// failed or inconsistent translation falls back to the expanded text.
func (r *Region) Render(opts RenderOptions, tr Translator) {
	raw := r.expanded(opts)
	mask := r.rawMask(raw, opts)

	r.display = raw
	r.mask = mask
	r.displayCursor = r.cursor
	r.contracted = false
	r.inPos = nil
	r.outPos = nil

	if !opts.Contracted || tr == nil || len(raw) == 0 {
		return
	}

	t, err := tr.Translate(opts.Table, string(raw), r.cursor)
	if err == nil && !t.valid(len(raw)) {
		err = fmt.Errorf("inconsistent offset maps for %d characters", len(raw))
	}
	if err != nil {
		logging.Warn("Contraction failed, using uncontracted text",
			zap.String("table", opts.Table),
			zap.String("text", string(raw)),
			zap.Error(err),
		)
		return
	}

	display := []rune(t.Text)
	contractedMask := make([]byte, len(display))
	for i := range display {
		contractedMask[i] = mask[t.OutPos[i]]
	}

	r.display = display
	r.mask = contractedMask
	r.contracted = true
	r.inPos = t.InPos
	r.outPos = t.OutPos

	switch {
	case r.cursor < 0:
		r.displayCursor = -1
	case t.Cursor >= 0:
		r.displayCursor = t.Cursor
	case r.cursor < len(t.InPos):
		r.displayCursor = t.InPos[r.cursor]
	default:
		r.displayCursor = len(display)
	}
}

// ExpandedOffset converts a displayed offset to an expanded one.
func (r *Region) ExpandedOffset(offset int) int {
	if !r.contracted || offset < 0 {
		return offset
	}
	if offset >= len(r.outPos) {
		// Past the end maps past the end.
		return len(r.inPos) + offset - len(r.outPos)
	}
	return r.outPos[offset]
}

// TextOffset converts a displayed offset into an offset in the object's
// text. It returns -1 for cells on the label or the end-of-line indicator,
// and for regions without text.
func (r *Region) TextOffset(offset int) int {
	if r.kind != KindText && r.kind != KindReviewText {
		return -1
	}
	o := r.ExpandedOffset(offset) - r.labelLen()
	if o < 0 || o > len([]rune(r.text)) {
		return -1
	}
	return r.lineOffset + o
}

// Route handles a routing key pressed over the given displayed offset of
// this region. It reports whether the region acted on it.
func (r *Region) Route(offset int) bool {
	switch r.kind {
	case KindComponent, KindLink, KindReviewComponent:
		if r.tree == nil {
			return false
		}
		return r.tree.DoDefaultAction(r.obj)
	case KindText, KindReviewText:
		textOffset := r.TextOffset(offset)
		if textOffset < 0 {
			// Routing on the label or past the end of the line
			// places the caret at the nearest edge.
			expanded := r.ExpandedOffset(offset)
			if expanded < r.labelLen() {
				return false
			}
			textOffset = r.lineOffset + len([]rune(r.text))
		}
		return r.tree.SetCaretOffset(r.obj, textOffset)
	}
	return false
}
