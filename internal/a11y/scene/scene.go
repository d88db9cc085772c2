package scene

import (
	"fmt"
	"os"
	"sort"

	"github.com/muurk/brlreview/internal/a11y"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultCharWidth is the width of one character cell in pixels.
	DefaultCharWidth = 10

	// DefaultLineHeight is the height of one text line in pixels.
	DefaultLineHeight = 20
)

// Document is the on-disk representation of a scene.
type Document struct {
	Name       string     `yaml:"name,omitempty"`
	Focus      string     `yaml:"focus,omitempty"`
	CharWidth  int        `yaml:"char_width,omitempty"`
	LineHeight int        `yaml:"line_height,omitempty"`
	Root       ObjectSpec `yaml:"root"`
}

// ObjectSpec describes one accessible object and its subtree.
type ObjectSpec struct {
	ID                    string            `yaml:"id"`
	Role                  string            `yaml:"role"`
	Name                  string            `yaml:"name,omitempty"`
	States                []string          `yaml:"states,omitempty"`
	Rect                  *a11y.Rect        `yaml:"rect,omitempty"`
	Hidden                bool              `yaml:"hidden,omitempty"`
	Text                  *string           `yaml:"text,omitempty"`
	Caret                 int               `yaml:"caret,omitempty"`
	Wrap                  int               `yaml:"wrap,omitempty"`
	ScrollY               int               `yaml:"scroll_y,omitempty"`
	Value                 *ValueSpec        `yaml:"value,omitempty"`
	Attributes            map[string]string `yaml:"attributes,omitempty"`
	LabelFor              []string          `yaml:"label_for,omitempty"`
	ActiveDescendant      string            `yaml:"active_descendant,omitempty"`
	TextAttributes        []AttributeRun    `yaml:"text_attributes,omitempty"`
	DefaultTextAttributes map[string]string `yaml:"default_text_attributes,omitempty"`
	Selections            []RangeSpec       `yaml:"selections,omitempty"`
	Links                 []RangeSpec       `yaml:"links,omitempty"`
	Children              []ObjectSpec      `yaml:"children,omitempty"`
}

// ValueSpec describes a numeric value.
type ValueSpec struct {
	Current float64 `yaml:"current"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Text    string  `yaml:"text,omitempty"`
}

// AttributeRun is a range of text sharing a set of text attributes.
type AttributeRun struct {
	Start      int               `yaml:"start"`
	End        int               `yaml:"end"`
	Attributes map[string]string `yaml:"attributes"`
}

// RangeSpec is a half-open character range.
type RangeSpec struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type node struct {
	key      string
	parent   a11y.ObjectID
	children []a11y.ObjectID

	role       a11y.Role
	name       string
	states     a11y.StateSet
	rect       a11y.Rect
	hasRect    bool
	hidden     bool
	attributes map[string]string

	labelFor         []a11y.ObjectID
	activeDescendant a11y.ObjectID

	value *a11y.Value

	hasText      bool
	text         []rune
	caret        int
	scrollY      int
	lines        []span
	runs         []AttributeRun
	defaultAttrs map[string]string
	selections   []a11y.Range
	links        []a11y.Range

	activations int
}

// span is a half-open range of offsets. For lines, end includes the
// trailing newline if there is one.
type span struct {
	start int
	end   int
}

// Scene is an in-memory accessibility tree. It implements a11y.Tree.
//
// Queries are not safe for concurrent use with SetFocus, SetCaretOffset
// or DoDefaultAction.
type Scene struct {
	name       string
	root       a11y.ObjectID
	focus      a11y.ObjectID
	charWidth  int
	lineHeight int

	nodes map[a11y.ObjectID]*node
	ids   map[string]a11y.ObjectID
}

var _ a11y.Tree = (*Scene)(nil)

// LoadFile reads a scene from a YAML file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML data.
func Parse(data []byte) (*Scene, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return New(doc)
}

// New builds a scene from a decoded document.
func New(doc Document) (*Scene, error) {
	s := &Scene{
		name:       doc.Name,
		charWidth:  doc.CharWidth,
		lineHeight: doc.LineHeight,
		nodes:      make(map[a11y.ObjectID]*node),
		ids:        make(map[string]a11y.ObjectID),
	}
	if s.charWidth <= 0 {
		s.charWidth = DefaultCharWidth
	}
	if s.lineHeight <= 0 {
		s.lineHeight = DefaultLineHeight
	}
	if doc.Root.ID == "" {
		return nil, fmt.Errorf("scene has no root object")
	}

	// First pass assigns ids so relations can point forward.
	var pending []pendingRelations
	root, err := s.add(doc.Root, a11y.None, &pending)
	if err != nil {
		return nil, err
	}
	s.root = root

	for _, p := range pending {
		n := s.nodes[p.obj]
		for _, key := range p.labelFor {
			target, ok := s.ids[key]
			if !ok {
				return nil, fmt.Errorf("object %q: label_for references unknown id %q", n.key, key)
			}
			n.labelFor = append(n.labelFor, target)
		}
		if p.activeDescendant != "" {
			target, ok := s.ids[p.activeDescendant]
			if !ok {
				return nil, fmt.Errorf("object %q: active_descendant references unknown id %q", n.key, p.activeDescendant)
			}
			n.activeDescendant = target
		}
	}

	if doc.Focus != "" {
		focus, ok := s.ids[doc.Focus]
		if !ok {
			return nil, fmt.Errorf("focus references unknown id %q", doc.Focus)
		}
		s.SetFocus(focus)
	}

	return s, nil
}

type pendingRelations struct {
	obj              a11y.ObjectID
	labelFor         []string
	activeDescendant string
}

func (s *Scene) add(spec ObjectSpec, parent a11y.ObjectID, pending *[]pendingRelations) (a11y.ObjectID, error) {
	if spec.ID == "" {
		return a11y.None, fmt.Errorf("object under %q has no id", s.keyOf(parent))
	}
	if _, dup := s.ids[spec.ID]; dup {
		return a11y.None, fmt.Errorf("duplicate object id %q", spec.ID)
	}

	role, err := a11y.ParseRole(spec.Role)
	if err != nil {
		return a11y.None, fmt.Errorf("object %q: %w", spec.ID, err)
	}

	id := a11y.ObjectID(len(s.nodes) + 1)
	n := &node{
		key:          spec.ID,
		parent:       parent,
		role:         role,
		name:         spec.Name,
		hidden:       spec.Hidden,
		attributes:   spec.Attributes,
		defaultAttrs: spec.DefaultTextAttributes,
		runs:         spec.TextAttributes,
		scrollY:      spec.ScrollY,
	}
	for _, name := range spec.States {
		state, err := a11y.ParseState(name)
		if err != nil {
			return a11y.None, fmt.Errorf("object %q: %w", spec.ID, err)
		}
		n.states = n.states.With(state)
	}
	if !n.hidden {
		n.states = n.states.With(a11y.StateShowing)
	}
	if spec.Rect != nil {
		n.rect = *spec.Rect
		n.hasRect = true
	}
	if spec.Text != nil {
		n.hasText = true
		n.text = []rune(*spec.Text)
		n.caret = clamp(spec.Caret, 0, len(n.text))
		n.lines = layoutLines(n.text, spec.Wrap)
	}
	if spec.Value != nil {
		n.value = &a11y.Value{
			Current: spec.Value.Current,
			Min:     spec.Value.Min,
			Max:     spec.Value.Max,
			Text:    spec.Value.Text,
		}
	}
	for _, sel := range spec.Selections {
		n.selections = append(n.selections, a11y.Range{Start: sel.Start, End: sel.End})
	}
	for _, link := range spec.Links {
		n.links = append(n.links, a11y.Range{Start: link.Start, End: link.End})
	}
	sort.Slice(n.runs, func(i, j int) bool { return n.runs[i].Start < n.runs[j].Start })

	s.nodes[id] = n
	s.ids[spec.ID] = id
	if len(spec.LabelFor) > 0 || spec.ActiveDescendant != "" {
		*pending = append(*pending, pendingRelations{
			obj:              id,
			labelFor:         spec.LabelFor,
			activeDescendant: spec.ActiveDescendant,
		})
	}

	for _, child := range spec.Children {
		childID, err := s.add(child, id, pending)
		if err != nil {
			return a11y.None, err
		}
		n.children = append(n.children, childID)
	}
	return id, nil
}

func (s *Scene) keyOf(obj a11y.ObjectID) string {
	if n, ok := s.nodes[obj]; ok {
		return n.key
	}
	return "<root>"
}

// SceneName returns the name given in the document.
func (s *Scene) SceneName() string {
	return s.name
}

// Root returns the top-level object of the scene.
func (s *Scene) Root() a11y.ObjectID {
	return s.root
}

// ID returns the handle of the object with the given document id, or None.
func (s *Scene) ID(key string) a11y.ObjectID {
	return s.ids[key]
}

// Key returns the document id of obj, or "" for unknown handles.
func (s *Scene) Key(obj a11y.ObjectID) string {
	if n, ok := s.nodes[obj]; ok {
		return n.key
	}
	return ""
}

// Objects returns every handle in document order.
func (s *Scene) Objects() []a11y.ObjectID {
	objs := make([]a11y.ObjectID, 0, len(s.nodes))
	for i := 1; i <= len(s.nodes); i++ {
		objs = append(objs, a11y.ObjectID(i))
	}
	return objs
}

// SetFocus moves focus to obj.
func (s *Scene) SetFocus(obj a11y.ObjectID) {
	if old, ok := s.nodes[s.focus]; ok {
		old.states &^= a11y.StateSet(a11y.StateFocused)
	}
	s.focus = a11y.None
	if n, ok := s.nodes[obj]; ok {
		n.states = n.states.With(a11y.StateFocused)
		s.focus = obj
	}
}

// Activations reports how many times DoDefaultAction was performed on obj.
func (s *Scene) Activations(obj a11y.ObjectID) int {
	if n, ok := s.nodes[obj]; ok {
		return n.activations
	}
	return 0
}

func (s *Scene) Focus() a11y.ObjectID {
	return s.focus
}

func (s *Scene) Parent(obj a11y.ObjectID) a11y.ObjectID {
	if n, ok := s.nodes[obj]; ok {
		return n.parent
	}
	return a11y.None
}

func (s *Scene) Children(obj a11y.ObjectID) []a11y.ObjectID {
	if n, ok := s.nodes[obj]; ok {
		return append([]a11y.ObjectID(nil), n.children...)
	}
	return nil
}

func (s *Scene) Role(obj a11y.ObjectID) a11y.Role {
	if n, ok := s.nodes[obj]; ok {
		return n.role
	}
	return a11y.RoleUnknown
}

func (s *Scene) Name(obj a11y.ObjectID) string {
	if n, ok := s.nodes[obj]; ok {
		return n.name
	}
	return ""
}

func (s *Scene) States(obj a11y.ObjectID) a11y.StateSet {
	if n, ok := s.nodes[obj]; ok {
		return n.states
	}
	return 0
}

func (s *Scene) Attributes(obj a11y.ObjectID) map[string]string {
	if n, ok := s.nodes[obj]; ok {
		return copyMap(n.attributes)
	}
	return nil
}

func (s *Scene) LabelFor(obj a11y.ObjectID) []a11y.ObjectID {
	if n, ok := s.nodes[obj]; ok {
		return append([]a11y.ObjectID(nil), n.labelFor...)
	}
	return nil
}

func (s *Scene) ActiveDescendant(obj a11y.ObjectID) a11y.ObjectID {
	if n, ok := s.nodes[obj]; ok {
		return n.activeDescendant
	}
	return a11y.None
}

// presentableContainers are non-leaf roles whose own content is reviewed
// alongside their children.
var presentableContainers = map[a11y.Role]bool{
	a11y.RoleComboBox: true,
	a11y.RoleMenu:     true,
	a11y.RolePageTab:  true,
	a11y.RoleLink:     true,
}

// OnScreenDescendants returns the showing descendants of root whose extents
// are visible inside clip, in document order. Containers are only returned
// when they carry content of their own (text, a value, or a presentable
// container role).
func (s *Scene) OnScreenDescendants(root a11y.ObjectID, clip a11y.Rect) []a11y.ObjectID {
	n, ok := s.nodes[root]
	if !ok {
		return nil
	}
	var result []a11y.ObjectID
	var walk func(ids []a11y.ObjectID)
	walk = func(ids []a11y.ObjectID) {
		for _, id := range ids {
			child := s.nodes[id]
			if child.hidden {
				continue
			}
			if child.hasRect && a11y.Visible(child.rect, clip) {
				leaf := len(child.children) == 0
				if leaf || child.hasText || child.value != nil || presentableContainers[child.role] {
					result = append(result, id)
				}
			}
			walk(child.children)
		}
	}
	walk(n.children)
	return result
}

func (s *Scene) SupportsComponent(obj a11y.ObjectID) bool {
	n, ok := s.nodes[obj]
	return ok && n.hasRect
}

func (s *Scene) Rect(obj a11y.ObjectID) a11y.Rect {
	if n, ok := s.nodes[obj]; ok && n.hasRect {
		return n.rect
	}
	return a11y.Rect{}
}

func (s *Scene) SupportsValue(obj a11y.ObjectID) bool {
	n, ok := s.nodes[obj]
	return ok && n.value != nil
}

func (s *Scene) Value(obj a11y.ObjectID) a11y.Value {
	if n, ok := s.nodes[obj]; ok && n.value != nil {
		return *n.value
	}
	return a11y.Value{}
}

func (s *Scene) DoDefaultAction(obj a11y.ObjectID) bool {
	n, ok := s.nodes[obj]
	if !ok {
		return false
	}
	n.activations++
	return true
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
