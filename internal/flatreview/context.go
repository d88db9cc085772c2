package flatreview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

// Unit is a granularity of flat review navigation.
type Unit int

const (
	UnitChar Unit = iota
	UnitWord
	UnitZone
	UnitLine
	UnitWindow
)

// String returns the unit name.
func (u Unit) String() string {
	switch u {
	case UnitChar:
		return "char"
	case UnitWord:
		return "word"
	case UnitZone:
		return "zone"
	case UnitLine:
		return "line"
	case UnitWindow:
		return "window"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Line is one row of zones, ordered left to right.
type Line struct {
	Index int
	// Zones holds arena indices.
	Zones []int
}

// Location is the review cursor.
type Location struct {
	Line int
	Zone int
	Word int
	Char int
}

// Options controls how a Context is built.
type Options struct {
	// Root restricts review to a subtree. When None, the window holding the
	// focus is used.
	Root a11y.ObjectID
	// Focus overrides the tree's focus.
	Focus a11y.ObjectID
	// PixelDelta overrides DefaultPixelDelta.
	PixelDelta int
}

type wordKey struct{ zone, word int }

type charKey struct{ zone, word, char int }

// Context is the flat review model of one window: its zones clustered into
// lines and a cursor over them.
//
// A Context is not safe for concurrent use.
type Context struct {
	tree       a11y.Tree
	root       a11y.ObjectID
	container  a11y.ObjectID
	focus      a11y.ObjectID
	pixelDelta int

	zones    []Zone
	lines    []Line
	byObject map[a11y.ObjectID][]int

	words     map[int][]Word
	wordRects map[wordKey]a11y.Rect
	charRects map[charKey]a11y.Rect

	loc Location
}

// New builds the flat review context of the window holding the focus, or of
// opts.Root when set.
func New(tree a11y.Tree, opts Options) *Context {
	c := &Context{
		tree:       tree,
		pixelDelta: opts.PixelDelta,
		byObject:   make(map[a11y.ObjectID][]int),
		words:      make(map[int][]Word),
		wordRects:  make(map[wordKey]a11y.Rect),
		charRects:  make(map[charKey]a11y.Rect),
	}
	if c.pixelDelta <= 0 {
		c.pixelDelta = DefaultPixelDelta
	}

	c.focus = opts.Focus
	if c.focus == a11y.None {
		c.focus = tree.Focus()
	}
	c.root = opts.Root
	if c.root == a11y.None {
		c.root = findRoot(tree, c.focus)
	}
	if c.root == a11y.None {
		logging.Debug("Flat review has no root", zap.Uint64("focus", uint64(c.focus)))
		return c
	}
	c.container = a11y.FindAncestorOrSelf(tree, c.focus, func(o a11y.ObjectID) bool {
		return tree.Role(o).IsMenu()
	})
	if c.container == a11y.None || (c.container != c.root && !a11y.IsAncestor(tree, c.root, c.container)) {
		c.container = c.root
	}

	c.buildZones()
	c.cluster()
	c.placeCursor()

	logging.Debug("Built flat review context",
		zap.Uint64("root", uint64(c.root)),
		zap.Uint64("container", uint64(c.container)),
		zap.Int("zones", len(c.zones)),
		zap.Int("lines", len(c.lines)),
	)
	return c
}

// findRoot returns the nearest dialog around focus, else its outermost
// top-level window.
func findRoot(t a11y.Structure, focus a11y.ObjectID) a11y.ObjectID {
	if focus == a11y.None {
		return a11y.None
	}
	if dialog := a11y.FindAncestorOrSelf(t, focus, func(o a11y.ObjectID) bool {
		return t.Role(o).IsDialog()
	}); dialog != a11y.None {
		return dialog
	}

	root := a11y.None
	seen := make(map[a11y.ObjectID]bool)
	for o := focus; o != a11y.None && !seen[o]; o = t.Parent(o) {
		seen[o] = true
		if t.Role(o).IsTopLevel() {
			root = o
		}
	}
	return root
}

// cluster groups the zones into lines.
func (c *Context) cluster() {
	order := make([]int, len(c.zones))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := c.zones[order[i]], c.zones[order[j]]
		if a.Rect.Y != b.Rect.Y {
			return a.Rect.Y < b.Rect.Y
		}
		return c.less(a, b)
	})

	var clusters [][]int
	for _, zi := range order {
		if n := len(clusters); n > 0 {
			current := clusters[n-1]
			last := c.zones[current[len(current)-1]]
			if last.OnSameLine(c.tree, c.zones[zi], c.pixelDelta) {
				clusters[n-1] = append(current, zi)
				continue
			}
		}
		clusters = append(clusters, []int{zi})
	}

	c.lines = make([]Line, len(clusters))
	for li, cluster := range clusters {
		sort.SliceStable(cluster, func(i, j int) bool {
			return c.less(c.zones[cluster[i]], c.zones[cluster[j]])
		})
		for _, zi := range cluster {
			c.zones[zi].Line = li
		}
		c.lines[li] = Line{Index: li, Zones: cluster}
	}
}

// less orders zones left to right, breaking ties so the order is total.
func (c *Context) less(a, b Zone) bool {
	if a.Rect.X != b.Rect.X {
		return a.Rect.X < b.Rect.X
	}
	if a.Kind.order() != b.Kind.order() {
		return a.Kind.order() < b.Kind.order()
	}
	if a.StartOffset != b.StartOffset {
		return a.StartOffset < b.StartOffset
	}
	return a.Object < b.Object
}

// placeCursor puts the cursor on the focused object, at the caret when the
// object shows text.
func (c *Context) placeCursor() {
	if len(c.lines) == 0 {
		return
	}
	obj := c.focus
	zones := c.byObject[obj]
	if len(zones) == 0 {
		obj = c.tree.Parent(c.focus)
		zones = c.byObject[obj]
	}
	if len(zones) == 0 {
		for _, child := range c.tree.Children(c.focus) {
			if zones = c.byObject[child]; len(zones) > 0 {
				obj = child
				break
			}
		}
	}
	if len(zones) == 0 {
		logging.Debug("Focus not in flat review context", zap.Uint64("focus", uint64(c.focus)))
		return
	}

	target, offset := zones[0], -1
	if caret := c.tree.CaretOffset(obj); caret >= 0 && c.tree.SupportsText(obj) {
		if zi, ok := c.caretZone(obj, zones, caret); ok {
			// A caret past a trailing newline resolves to the zone's end.
			target, offset = zi, min(caret, c.zones[zi].EndOffset())
		}
	}
	c.moveToZone(target)
	if offset >= 0 {
		if w, ch := c.WordAtOffset(target, offset); w >= 0 {
			c.loc.Word, c.loc.Char = w, ch
		}
	}
}

// caretZone returns the text zone of obj holding caret.
func (c *Context) caretZone(obj a11y.ObjectID, zones []int, caret int) (int, bool) {
	for _, zi := range zones {
		z := c.zones[zi]
		if z.Kind == TextZone && caret >= z.StartOffset && caret < z.EndOffset() {
			return zi, true
		}
	}
	// The caret sits after the last character of a line, or at the very
	// end of the text.
	for _, zi := range zones {
		z := c.zones[zi]
		if z.Kind == TextZone && caret == z.EndOffset() {
			return zi, true
		}
	}
	if caret == c.tree.CharacterCount(obj) {
		last := zones[len(zones)-1]
		if c.zones[last].Kind == TextZone {
			return last, true
		}
	}
	return 0, false
}

// moveToZone puts the cursor at the start of the zone at arena index zi.
func (c *Context) moveToZone(zi int) {
	line := c.zones[zi].Line
	for i, z := range c.lines[line].Zones {
		if z == zi {
			c.loc = Location{Line: line, Zone: i}
			return
		}
	}
}

// IsEmpty reports whether the context has no zones.
func (c *Context) IsEmpty() bool {
	return len(c.lines) == 0
}

// Root returns the object the context was built from.
func (c *Context) Root() a11y.ObjectID {
	return c.root
}

// Tree returns the tree the context reads.
func (c *Context) Tree() a11y.Tree {
	return c.tree
}

// LineCount returns the number of lines.
func (c *Context) LineCount() int {
	return len(c.lines)
}

// ZonesOf returns copies of the zones of line i, left to right.
func (c *Context) ZonesOf(i int) []Zone {
	if i < 0 || i >= len(c.lines) {
		return nil
	}
	zones := make([]Zone, len(c.lines[i].Zones))
	for k, zi := range c.lines[i].Zones {
		zones[k] = c.zones[zi]
	}
	return zones
}

// Words returns the words of the zone at arena index zi.
func (c *Context) Words(zi int) []Word {
	if zi < 0 || zi >= len(c.zones) {
		return nil
	}
	words, ok := c.words[zi]
	if !ok {
		words = splitWords(zi, c.zones[zi])
		c.words[zi] = words
	}
	return words
}

// WordAtOffset returns the index of the word of zone zi holding the absolute
// offset abs, and abs relative to that word. An offset just past the zone
// resolves to the last character of the last word. It returns -1, -1 when
// nothing matches.
func (c *Context) WordAtOffset(zi int, abs int) (int, int) {
	words := c.Words(zi)
	for i, w := range words {
		if rel := w.RelativeOffset(abs); rel >= 0 {
			return i, rel
		}
	}
	if len(words) > 0 && abs == c.zones[zi].EndOffset() {
		last := words[len(words)-1]
		return last.Index, max(0, last.Length-1)
	}
	return -1, -1
}

// wordRect returns the extents of word w of zone zi.
func (c *Context) wordRect(zi, w int) a11y.Rect {
	key := wordKey{zi, w}
	if r, ok := c.wordRects[key]; ok {
		return r
	}
	z := c.zones[zi]
	r := z.Rect
	if z.Kind == TextZone {
		word := c.Words(zi)[w]
		r = c.tree.RangeRect(z.Object, word.StartOffset, word.StartOffset+word.Length)
	}
	c.wordRects[key] = r
	return r
}

// charRect returns the extents of character ch of word w of zone zi.
func (c *Context) charRect(zi, w, ch int) a11y.Rect {
	key := charKey{zi, w, ch}
	if r, ok := c.charRects[key]; ok {
		return r
	}
	z := c.zones[zi]
	r := z.Rect
	if z.Kind == TextZone {
		offset := c.Words(zi)[w].StartOffset + ch
		r = c.tree.RangeRect(z.Object, offset, offset+1)
	}
	c.charRects[key] = r
	return r
}

// Lines returns the text of every line, top to bottom.
func (c *Context) Lines() []string {
	lines := make([]string, len(c.lines))
	for i := range c.lines {
		lines[i] = c.lineText(i)
	}
	return lines
}

func (c *Context) lineText(i int) string {
	parts := make([]string, len(c.lines[i].Zones))
	for k, zi := range c.lines[i].Zones {
		parts[k] = c.zones[zi].Text
	}
	return strings.Join(parts, " ")
}
