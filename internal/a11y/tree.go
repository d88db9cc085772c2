package a11y

import (
	"fmt"
	"strings"
)

// ObjectID is an opaque handle to an accessible object.
type ObjectID uint64

// None is the "no object" handle.
const None ObjectID = 0

// Granularity selects the text unit returned by Text.TextAt.
type Granularity int

const (
	GranularityChar Granularity = iota
	GranularityWord
	GranularityLine
	GranularitySentence
	GranularityParagraph
)

// String returns the granularity name.
func (g Granularity) String() string {
	switch g {
	case GranularityChar:
		return "char"
	case GranularityWord:
		return "word"
	case GranularityLine:
		return "line"
	case GranularitySentence:
		return "sentence"
	case GranularityParagraph:
		return "paragraph"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// State is a single accessible state flag.
type State uint32

const (
	StateShowing State = 1 << iota
	StateFocused
	StateEditable
	StateSingleLine
	StateMultiLine
	StateCheckable
	StateChecked
	StateIndeterminate
	StatePressed
	StateExpandable
	StateExpanded
	StateSelected
	StateVisited
)

var stateNames = []struct {
	state State
	name  string
}{
	{StateShowing, "showing"},
	{StateFocused, "focused"},
	{StateEditable, "editable"},
	{StateSingleLine, "single-line"},
	{StateMultiLine, "multi-line"},
	{StateCheckable, "checkable"},
	{StateChecked, "checked"},
	{StateIndeterminate, "indeterminate"},
	{StatePressed, "pressed"},
	{StateExpandable, "expandable"},
	{StateExpanded, "expanded"},
	{StateSelected, "selected"},
	{StateVisited, "visited"},
}

// StateSet is a set of State flags.
type StateSet uint32

// Has reports whether s contains state.
func (s StateSet) Has(state State) bool {
	return uint32(s)&uint32(state) != 0
}

// With returns s with state added.
func (s StateSet) With(state State) StateSet {
	return StateSet(uint32(s) | uint32(state))
}

// String lists the states in s.
func (s StateSet) String() string {
	var names []string
	for _, entry := range stateNames {
		if s.Has(entry.state) {
			names = append(names, entry.name)
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}

// ParseState converts a state name (e.g. "single-line") to a State.
func ParseState(name string) (State, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, entry := range stateNames {
		if entry.name == normalized {
			return entry.state, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// Range is a half-open range of character offsets.
type Range struct {
	Start int
	End   int
}

// Contains reports whether offset lies in [Start, End).
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Value describes the numeric value of an object such as a slider.
type Value struct {
	Current float64
	Min     float64
	Max     float64
	// Text is the toolkit-provided textual rendering, if any.
	Text string
}

// Structure exposes the shape of the tree and object metadata.
type Structure interface {
	// Focus returns the object that currently has focus, or None.
	Focus() ObjectID
	Parent(obj ObjectID) ObjectID
	Children(obj ObjectID) []ObjectID
	Role(obj ObjectID) Role
	Name(obj ObjectID) string
	States(obj ObjectID) StateSet
	// Attributes returns the object attributes (not text attributes).
	Attributes(obj ObjectID) map[string]string
	// LabelFor returns the objects obj is a label for.
	LabelFor(obj ObjectID) []ObjectID
	// ActiveDescendant returns the managed descendant that is active, e.g.
	// the selected row of a virtual list, or None.
	ActiveDescendant(obj ObjectID) ObjectID
	// OnScreenDescendants returns the presentable descendants of root that
	// are geometrically inside clip.
	OnScreenDescendants(root ObjectID, clip Rect) []ObjectID
}

// Component exposes on-screen extents.
type Component interface {
	SupportsComponent(obj ObjectID) bool
	Rect(obj ObjectID) Rect
}

// Text exposes the text interface. Offsets are in characters (runes).
type Text interface {
	SupportsText(obj ObjectID) bool
	CharacterCount(obj ObjectID) int
	// Text returns the characters in [start, end). An end of -1 means the
	// end of the text.
	Text(obj ObjectID, start, end int) string
	// TextAt returns the unit of the given granularity containing offset,
	// along with its start and end offsets.
	TextAt(obj ObjectID, offset int, granularity Granularity) (string, int, int)
	// RangeRect returns the bounding box of [start, end).
	RangeRect(obj ObjectID, start, end int) Rect
	CaretOffset(obj ObjectID) int
	SetCaretOffset(obj ObjectID, offset int) bool
	// TextAttributesAt returns the attribute run containing offset.
	TextAttributesAt(obj ObjectID, offset int) (map[string]string, int, int)
	DefaultTextAttributes(obj ObjectID) map[string]string
	Selections(obj ObjectID) []Range
	// Hyperlinks returns the ranges of the links embedded in the text.
	Hyperlinks(obj ObjectID) []Range
}

// ValueQuery exposes the value interface.
type ValueQuery interface {
	SupportsValue(obj ObjectID) bool
	Value(obj ObjectID) Value
}

// Action exposes the action interface.
type Action interface {
	// DoDefaultAction performs the first action of obj, reporting success.
	DoDefaultAction(obj ObjectID) bool
}

// Tree is everything brlreview consumes from the accessibility layer.
type Tree interface {
	Structure
	Component
	Text
	ValueQuery
	Action
}

// FindAncestor walks up from obj (excluding obj) and returns the first
// ancestor for which match returns true, or None.
func FindAncestor(t Structure, obj ObjectID, match func(ObjectID) bool) ObjectID {
	seen := make(map[ObjectID]bool)
	for parent := t.Parent(obj); parent != None; parent = t.Parent(parent) {
		if seen[parent] {
			// Broken trees can contain cycles.
			return None
		}
		seen[parent] = true
		if match(parent) {
			return parent
		}
	}
	return None
}

// FindAncestorOrSelf is FindAncestor including obj itself.
func FindAncestorOrSelf(t Structure, obj ObjectID, match func(ObjectID) bool) ObjectID {
	if obj != None && match(obj) {
		return obj
	}
	return FindAncestor(t, obj, match)
}

// IsAncestor reports whether ancestor is a proper ancestor of obj.
func IsAncestor(t Structure, ancestor, obj ObjectID) bool {
	if ancestor == None {
		return false
	}
	return FindAncestor(t, obj, func(o ObjectID) bool { return o == ancestor }) != None
}
