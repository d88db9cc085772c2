package flatreview

// Navigation moves the cursor and reports whether it moved. A move that
// fails leaves the cursor where it was.

func (c *Context) lineZone(line, zone int) int {
	return c.lines[line].Zones[zone]
}

func (c *Context) currentZone() int {
	return c.lineZone(c.loc.Line, c.loc.Zone)
}

func (c *Context) lastZone(line int) int {
	return len(c.lines[line].Zones) - 1
}

func (c *Context) lastWord(line, zone int) int {
	return len(c.Words(c.lineZone(line, zone))) - 1
}

func (c *Context) lastChar(line, zone, word int) int {
	return c.Words(c.lineZone(line, zone))[word].Length - 1
}

// set moves the cursor to loc and reports whether that changed it.
func (c *Context) set(loc Location) bool {
	if loc == c.loc {
		return false
	}
	c.loc = loc
	return true
}

// GoToStartOf moves to the start of the current unit. UnitLine and
// UnitWindow are the usual targets; UnitZone and UnitWord are accepted too.
func (c *Context) GoToStartOf(u Unit) bool {
	if c.IsEmpty() {
		return false
	}
	loc := c.loc
	switch u {
	case UnitWindow:
		loc = Location{}
	case UnitLine:
		loc = Location{Line: loc.Line}
	case UnitZone:
		loc.Word, loc.Char = 0, 0
	case UnitWord:
		loc.Char = 0
	default:
		return false
	}
	return c.set(loc)
}

// GoToEndOf moves to the last character of the current unit.
func (c *Context) GoToEndOf(u Unit) bool {
	if c.IsEmpty() {
		return false
	}
	loc := c.loc
	switch u {
	case UnitWindow:
		loc.Line = len(c.lines) - 1
		loc.Zone = c.lastZone(loc.Line)
		loc.Word = c.lastWord(loc.Line, loc.Zone)
	case UnitLine:
		loc.Zone = c.lastZone(loc.Line)
		loc.Word = c.lastWord(loc.Line, loc.Zone)
	case UnitZone:
		loc.Word = c.lastWord(loc.Line, loc.Zone)
	case UnitWord:
	default:
		return false
	}
	loc.Char = c.lastChar(loc.Line, loc.Zone, loc.Word)
	return c.set(loc)
}

// GoPreviousLine moves to the start of the line above. With wrap, the top
// line wraps to the bottom one.
func (c *Context) GoPreviousLine(wrap bool) bool {
	if c.IsEmpty() {
		return false
	}
	switch {
	case c.loc.Line > 0:
		return c.set(Location{Line: c.loc.Line - 1})
	case wrap && len(c.lines) > 1:
		return c.set(Location{Line: len(c.lines) - 1})
	}
	return false
}

// GoNextLine moves to the start of the line below. With wrap, the bottom
// line wraps to the top one.
func (c *Context) GoNextLine(wrap bool) bool {
	if c.IsEmpty() {
		return false
	}
	switch {
	case c.loc.Line < len(c.lines)-1:
		return c.set(Location{Line: c.loc.Line + 1})
	case wrap && len(c.lines) > 1:
		return c.set(Location{})
	}
	return false
}

// GoPreviousZone moves to the start of the previous zone, crossing onto the
// line above.
func (c *Context) GoPreviousZone() bool {
	if c.IsEmpty() {
		return false
	}
	switch {
	case c.loc.Zone > 0:
		return c.set(Location{Line: c.loc.Line, Zone: c.loc.Zone - 1})
	case c.loc.Line > 0:
		line := c.loc.Line - 1
		return c.set(Location{Line: line, Zone: c.lastZone(line)})
	}
	return false
}

// GoNextZone moves to the start of the next zone, crossing onto the line
// below.
func (c *Context) GoNextZone() bool {
	if c.IsEmpty() {
		return false
	}
	switch {
	case c.loc.Zone < c.lastZone(c.loc.Line):
		return c.set(Location{Line: c.loc.Line, Zone: c.loc.Zone + 1})
	case c.loc.Line < len(c.lines)-1:
		return c.set(Location{Line: c.loc.Line + 1})
	}
	return false
}

// GoPreviousWord moves to the start of the previous word.
func (c *Context) GoPreviousWord() bool {
	if c.IsEmpty() {
		return false
	}
	if c.loc.Word > 0 {
		return c.set(Location{Line: c.loc.Line, Zone: c.loc.Zone, Word: c.loc.Word - 1})
	}
	if !c.GoPreviousZone() {
		return false
	}
	c.loc.Word = c.lastWord(c.loc.Line, c.loc.Zone)
	return true
}

// GoNextWord moves to the start of the next word.
func (c *Context) GoNextWord() bool {
	if c.IsEmpty() {
		return false
	}
	if c.loc.Word < c.lastWord(c.loc.Line, c.loc.Zone) {
		return c.set(Location{Line: c.loc.Line, Zone: c.loc.Zone, Word: c.loc.Word + 1})
	}
	return c.GoNextZone()
}

// GoPreviousCharacter moves back one character, onto the last character of
// the previous word when at the start of a word.
func (c *Context) GoPreviousCharacter() bool {
	if c.IsEmpty() {
		return false
	}
	if c.loc.Char > 0 {
		c.loc.Char--
		return true
	}
	if !c.GoPreviousWord() {
		return false
	}
	c.loc.Char = c.lastChar(c.loc.Line, c.loc.Zone, c.loc.Word)
	return true
}

// GoNextCharacter moves forward one character, onto the next word when at
// the end of a word.
func (c *Context) GoNextCharacter() bool {
	if c.IsEmpty() {
		return false
	}
	if c.loc.Char < c.lastChar(c.loc.Line, c.loc.Zone, c.loc.Word) {
		c.loc.Char++
		return true
	}
	return c.GoNextWord()
}

// GoUp moves to the character of the line above that is closest to the
// current horizontal position.
func (c *Context) GoUp() bool {
	if c.IsEmpty() || c.loc.Line == 0 {
		return false
	}
	return c.seekColumn(c.loc.Line - 1)
}

// GoDown moves to the character of the line below that is closest to the
// current horizontal position.
func (c *Context) GoDown() bool {
	if c.IsEmpty() || c.loc.Line >= len(c.lines)-1 {
		return false
	}
	return c.seekColumn(c.loc.Line + 1)
}

// seekColumn moves onto line, to the first character whose right edge
// reaches the middle of the current character. It ends on the last
// character of the line when none does.
func (c *Context) seekColumn(line int) bool {
	target := c.charRect(c.currentZone(), c.loc.Word, c.loc.Char).MidX()

	var last Location
	for zone, zi := range c.lines[line].Zones {
		for _, w := range c.Words(zi) {
			for ch := 0; ch < w.Length; ch++ {
				last = Location{Line: line, Zone: zone, Word: w.Index, Char: ch}
				if float64(c.charRect(zi, w.Index, ch).Right()) >= target {
					c.loc = last
					return true
				}
			}
		}
	}
	c.loc = last
	return true
}
