package flatreview

import (
	"strings"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/braille"
)

// Location returns the cursor.
func (c *Context) Location() Location {
	return c.loc
}

// SetLocation moves the cursor to loc. It reports false, leaving the cursor
// alone, when loc does not name a character of the context.
func (c *Context) SetLocation(loc Location) bool {
	if !c.valid(loc) {
		return false
	}
	c.loc = loc
	return true
}

func (c *Context) valid(loc Location) bool {
	if loc.Line < 0 || loc.Line >= len(c.lines) {
		return false
	}
	if loc.Zone < 0 || loc.Zone >= len(c.lines[loc.Line].Zones) {
		return false
	}
	words := c.Words(c.lineZone(loc.Line, loc.Zone))
	if loc.Word < 0 || loc.Word >= len(words) {
		return false
	}
	return loc.Char >= 0 && loc.Char < words[loc.Word].Length
}

// SetCurrentToZoneWithObject moves the cursor to the first zone of obj, or
// of the first descendant of obj that has one.
func (c *Context) SetCurrentToZoneWithObject(obj a11y.ObjectID) bool {
	if zones := c.byObject[obj]; len(zones) > 0 {
		c.moveToZone(zones[0])
		return true
	}
	for zi, z := range c.zones {
		if a11y.IsAncestor(c.tree, obj, z.Object) {
			c.moveToZone(zi)
			return true
		}
	}
	return false
}

// CurrentZone returns the zone under the cursor.
func (c *Context) CurrentZone() (Zone, bool) {
	if c.IsEmpty() {
		return Zone{}, false
	}
	return c.zones[c.currentZone()], true
}

// CurrentWord returns the word under the cursor.
func (c *Context) CurrentWord() (Word, bool) {
	if c.IsEmpty() {
		return Word{}, false
	}
	return c.Words(c.currentZone())[c.loc.Word], true
}

// CurrentObject returns the object of the zone under the cursor, or None.
func (c *Context) CurrentObject() a11y.ObjectID {
	z, ok := c.CurrentZone()
	if !ok {
		return a11y.None
	}
	return z.Object
}

// CurrentOffset returns the offset of the cursor in the text of the current
// object, or -1 when the current zone does not show text.
func (c *Context) CurrentOffset() int {
	z, ok := c.CurrentZone()
	if !ok || z.Kind != TextZone {
		return -1
	}
	w, _ := c.CurrentWord()
	return w.StartOffset + c.loc.Char
}

// Current returns the string and extents of the unit under the cursor.
func (c *Context) Current(u Unit) (string, a11y.Rect) {
	if c.IsEmpty() {
		return "", a11y.Rect{}
	}
	zi := c.currentZone()
	switch u {
	case UnitChar:
		w := c.Words(zi)[c.loc.Word]
		return string([]rune(w.Text)[c.loc.Char]), c.charRect(zi, c.loc.Word, c.loc.Char)
	case UnitWord:
		return c.Words(zi)[c.loc.Word].Text, c.wordRect(zi, c.loc.Word)
	case UnitZone:
		return c.zones[zi].Text, c.zones[zi].Rect
	case UnitLine:
		var rect a11y.Rect
		for _, z := range c.lines[c.loc.Line].Zones {
			rect = rect.Union(c.zones[z].Rect)
		}
		return c.lineText(c.loc.Line), rect
	case UnitWindow:
		return strings.Join(c.Lines(), "\n"), c.tree.Rect(c.root)
	}
	return "", a11y.Rect{}
}

// BrailleRegions returns the regions showing the current line, separated by
// blank cells, and the region holding the cursor.
func (c *Context) BrailleRegions() ([]*braille.Region, *braille.Region) {
	if c.IsEmpty() {
		return nil, nil
	}
	var regions []*braille.Region
	var focus *braille.Region
	for k, zi := range c.lines[c.loc.Line].Zones {
		z := c.zones[zi]
		cursor := -1
		if k == c.loc.Zone {
			w := c.Words(zi)[c.loc.Word]
			cursor = w.StartOffset - z.StartOffset + c.loc.Char
		}

		var region *braille.Region
		switch {
		case z.Kind == TextZone:
			region = braille.NewReviewText(c.tree, z.Object, z.Text, z.StartOffset, cursor, zi)
		case z.Kind == NameZone && c.tree.Role(z.Object) == a11y.RoleLink:
			region = braille.NewReviewLink(c.tree, z.Object, z.Text, cursor, zi)
		default:
			region = braille.NewReviewComponent(c.tree, z.Object, z.Text, cursor, zi)
		}
		if k > 0 {
			regions = append(regions, braille.NewRegion(" ", -1))
		}
		regions = append(regions, region)
		if k == c.loc.Zone {
			focus = region
		}
	}
	return regions, focus
}

// RouteTo moves the cursor to the character shown at the display offset of
// a region made by BrailleRegions.
func (c *Context) RouteTo(region *braille.Region, offset int) bool {
	if region == nil || c.IsEmpty() {
		return false
	}
	zi := region.Zone()
	if zi < 0 || zi >= len(c.zones) || c.zones[zi].Object != region.Object() {
		return false
	}
	c.moveToZone(zi)

	z := c.zones[zi]
	rel := min(max(region.ExpandedOffset(offset), 0), z.Length-1)
	if w, ch := c.WordAtOffset(zi, z.StartOffset+rel); w >= 0 {
		c.loc.Word, c.loc.Char = w, ch
	}
	return true
}
