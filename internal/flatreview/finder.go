package flatreview

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

// ErrNoQuery is returned by FindNext and FindPrevious before any search.
var ErrNoQuery = errors.New("no previous search")

// Query describes a flat review search.
type Query struct {
	// Pattern is a regular expression.
	Pattern       string
	CaseSensitive bool
	// WholeWord only matches Pattern between word boundaries.
	WholeWord  bool
	Backwards  bool
	StartAtTop bool
	// WrapAround continues from the other end of the window once.
	WrapAround bool
}

// String returns a debug representation of the query.
func (q Query) String() string {
	return fmt.Sprintf("%q case=%t word=%t back=%t top=%t wrap=%t",
		q.Pattern, q.CaseSensitive, q.WholeWord, q.Backwards, q.StartAtTop, q.WrapAround)
}

func (q Query) compile() (*regexp.Regexp, error) {
	expr := q.Pattern
	if q.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if !q.CaseSensitive {
		expr = `(?i)` + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", q.Pattern, err)
	}
	return re, nil
}

type match struct {
	root    a11y.ObjectID
	loc     Location
	pattern string
}

// Finder searches a Context for text, remembering the last query and match
// so that repeated searches move on to the next occurrence.
type Finder struct {
	// OnWrap is called when a search continues from the other end of the
	// window.
	OnWrap func(backwards bool)

	last    *Query
	match   *match
	wrapped bool
}

// NewFinder returns a Finder with no previous search.
func NewFinder() *Finder {
	return &Finder{}
}

// LastQuery returns the most recent query.
func (f *Finder) LastQuery() (Query, bool) {
	if f.last == nil {
		return Query{}, false
	}
	return *f.last, true
}

// Find searches c for q. On success the cursor is left on the match and its
// location returned. On failure the cursor is restored.
func (f *Finder) Find(c *Context, q Query) (Location, bool, error) {
	re, err := q.compile()
	if err != nil {
		return Location{}, false, err
	}
	f.last = &q
	if c.IsEmpty() {
		return Location{}, false, nil
	}

	logging.Debug("Searching flat review", zap.Stringer("query", q))

	saved := c.Location()
	f.wrapped = false
	if q.StartAtTop {
		c.GoToStartOf(UnitWindow)
	}

	s := search{finder: f, ctx: c, query: q, re: re}
	if !s.findMatch() {
		c.SetLocation(saved)
		return Location{}, false, nil
	}
	f.match = &match{root: c.Root(), loc: c.Location(), pattern: re.String()}
	return c.Location(), true, nil
}

// FindNext repeats the last search forwards.
func (f *Finder) FindNext(c *Context) (Location, bool, error) {
	return f.repeat(c, false)
}

// FindPrevious repeats the last search backwards.
func (f *Finder) FindPrevious(c *Context) (Location, bool, error) {
	return f.repeat(c, true)
}

func (f *Finder) repeat(c *Context, backwards bool) (Location, bool, error) {
	if f.last == nil {
		return Location{}, false, ErrNoQuery
	}
	q := *f.last
	q.Backwards = backwards
	q.StartAtTop = false
	return f.Find(c, q)
}

// search is one run of a query against a context.
type search struct {
	finder *Finder
	ctx    *Context
	query  Query
	re     *regexp.Regexp
}

func (s *search) matches(u Unit) bool {
	text, _ := s.ctx.Current(u)
	return s.re.MatchString(text)
}

// findIn moves by u until the current unit matches. A matching word leaves
// the cursor on its first character.
func (s *search) findIn(u Unit) bool {
	found := s.matches(u)
	for !found {
		if !s.move(u) {
			break
		}
		found = s.matches(u)
	}
	if found && u == UnitWord {
		s.ctx.GoToStartOf(UnitWord)
	}
	return found
}

func (s *search) sameAsLast() bool {
	last := s.finder.match
	return last != nil && *last == match{root: s.ctx.Root(), loc: s.ctx.Location(), pattern: s.re.String()}
}

func (s *search) findMatch() bool {
	if !s.findIn(UnitLine) || !s.findIn(UnitZone) {
		return false
	}
	zoneMatch := s.ctx.Location()
	wordMatch := s.findIn(UnitWord)
	if !wordMatch {
		// The match spans words.
		s.ctx.SetLocation(zoneMatch)
		s.ctx.GoToStartOf(UnitZone)
	}
	if !s.sameAsLast() {
		return true
	}

	// Still on the previous match.
	if wordMatch && s.move(UnitWord) && s.findIn(UnitWord) {
		return true
	}
	s.ctx.SetLocation(zoneMatch)
	if s.move(UnitZone) || s.move(UnitLine) {
		return s.findMatch()
	}
	return false
}

func (s *search) move(u Unit) bool {
	c := s.ctx
	back := s.query.Backwards
	switch u {
	case UnitWord:
		if back {
			return c.GoPreviousWord()
		}
		return c.GoNextWord()
	case UnitZone:
		if back {
			moved := c.GoPreviousZone()
			c.GoToEndOf(UnitZone)
			return moved
		}
		return c.GoNextZone()
	case UnitLine:
		var moved bool
		if back {
			moved = c.GoPreviousLine(false)
			c.GoToEndOf(UnitLine)
		} else {
			moved = c.GoNextLine(false)
		}
		if moved {
			return true
		}
		if !s.query.WrapAround || s.finder.wrapped {
			return false
		}
		s.finder.wrapped = true
		if s.finder.OnWrap != nil {
			s.finder.OnWrap(back)
		}
		if back {
			moved = c.GoPreviousLine(true)
			c.GoToEndOf(UnitLine)
			return moved
		}
		return c.GoNextLine(true)
	}
	return false
}
