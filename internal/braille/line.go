package braille

import (
	"regexp"
	"strings"
)

// Range is a half-open span of cells within a line.
type Range struct {
	Start int
	End   int
}

// Len returns the number of cells in the range.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether offset lies in [Start, End).
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// LineInfo is the rendered form of a Line.
type LineInfo struct {
	// Text is the concatenation of every region's displayed string.
	Text string
	// FocusOffset is the cell where the focused region starts, -1 when the
	// focused region is not on this line.
	FocusOffset int
	// Mask has one byte per character of Text.
	Mask []byte
	// Ranges are the word-wrap ranges for the display width used.
	Ranges []Range
	// Width is the display width the ranges were computed for.
	Width int
}

// Len returns the number of cells in the line.
func (info LineInfo) Len() int {
	return len(info.Mask)
}

type lineCacheKey struct {
	focus *Region
	opts  RenderOptions
	width int
	gen   uint64
}

// Line is an ordered list of regions shown on one display row.
type Line struct {
	regions []*Region
	gen     uint64

	cache    *LineInfo
	cacheKey lineCacheKey
}

// NewLine creates a line holding regions.
func NewLine(regions ...*Region) *Line {
	l := &Line{}
	l.AddRegions(regions...)
	return l
}

// AddRegion appends region.
func (l *Line) AddRegion(region *Region) {
	l.regions = append(l.regions, region)
	l.gen++
}

// AddRegions appends regions in order.
func (l *Line) AddRegions(regions ...*Region) {
	for _, r := range regions {
		l.AddRegion(r)
	}
}

// Regions returns the line's regions.
func (l *Line) Regions() []*Region {
	return l.regions
}

// Contains reports whether region is on this line.
func (l *Line) Contains(region *Region) bool {
	for _, r := range l.regions {
		if r == region {
			return true
		}
	}
	return false
}

// Invalidate drops the cached LineInfo.
func (l *Line) Invalidate() {
	l.cache = nil
}

func (l *Line) generation() uint64 {
	gen := l.gen
	for _, r := range l.regions {
		gen += r.gen
	}
	return gen
}

// Info renders the line for the given focus, options and display width.
// The result is cached until the focus, the options, the width or any
// region changes.
func (l *Line) Info(focus *Region, opts RenderOptions, tr Translator, width int) LineInfo {
	key := lineCacheKey{focus: focus, opts: opts, width: width, gen: l.generation()}
	if l.cache != nil && l.cacheKey == key {
		return *l.cache
	}

	var b strings.Builder
	var mask []byte
	focusOffset := -1
	cells := 0
	for _, r := range l.regions {
		r.Render(opts, tr)
		if r == focus {
			focusOffset = cells
		}
		b.WriteString(r.String())
		mask = append(mask, r.AttributeMask()...)
		cells += r.Len()
	}

	info := &LineInfo{
		Text:        b.String(),
		FocusOffset: focusOffset,
		Mask:        mask,
		Width:       width,
	}
	info.Ranges = ComputeRanges(info.Text, focusOffset, width)

	l.cache = info
	l.cacheKey = key
	return *info
}

// RegionAtOffset returns the region covering the 0-based cell offset and
// the offset within that region. Offsets past the end land on the last
// region. Returns nil, -1 for an empty line.
func (l *Line) RegionAtOffset(offset int) (*Region, int) {
	if len(l.regions) == 0 {
		return nil, -1
	}
	pos := 0
	for _, r := range l.regions {
		if offset < pos+r.Len() {
			return r, offset - pos
		}
		pos += r.Len()
	}
	last := l.regions[len(l.regions)-1]
	return last, offset - (pos - last.Len())
}

var wordPattern = regexp.MustCompile(`\S*\s*`)

// ComputeRanges splits s into word-wrap ranges no longer than width. Words
// (a non-space run plus its trailing space) are packed greedily; a word
// longer than width is cut into width-sized chunks. A positive focusOffset
// always starts a new range.
func ComputeRanges(s string, focusOffset, width int) []Range {
	runes := []rune(s)
	if len(runes) == 0 || width <= 0 {
		return nil
	}

	var words []Range
	for _, loc := range wordPattern.FindAllStringIndex(s, -1) {
		if loc[0] == loc[1] {
			continue
		}
		start := len([]rune(s[:loc[0]]))
		end := start + len([]rune(s[loc[0]:loc[1]]))
		if focusOffset > start && focusOffset < end {
			words = append(words, Range{start, focusOffset}, Range{focusOffset, end})
			continue
		}
		words = append(words, Range{start, end})
	}

	var ranges []Range
	current := Range{-1, -1}
	flush := func() {
		if current.Start >= 0 {
			ranges = append(ranges, current)
		}
		current = Range{-1, -1}
	}

	for _, w := range words {
		if focusOffset > 0 && w.Start == focusOffset {
			flush()
		}
		if w.Len() > width {
			flush()
			for start := w.Start; start < w.End; start += width {
				ranges = append(ranges, Range{start, min(start+width, w.End)})
			}
			continue
		}
		if current.Start >= 0 && w.End-current.Start > width {
			flush()
		}
		if current.Start < 0 {
			current.Start = w.Start
		}
		current.End = w.End
	}
	flush()
	return ranges
}
