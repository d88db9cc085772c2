package braille

import (
	"errors"
	"testing"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/a11y/scene"
)

const entryScene = `
name: form
focus: name
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 100}
  children:
    - id: name
      role: entry
      states: [editable, single-line, focused]
      text: hello world
      caret: 2
      rect: {x: 10, y: 10, width: 200, height: 20}
      selections:
        - {start: 0, end: 5}
      default_text_attributes: {weight: normal}
      text_attributes:
        - {start: 6, end: 11, attributes: {weight: bold}}
    - id: ok
      role: push button
      name: OK
      rect: {x: 10, y: 50, width: 60, height: 20}
`

func mustScene(t *testing.T, data string) *scene.Scene {
	t.Helper()
	s, err := scene.Parse([]byte(data))
	if err != nil {
		t.Fatalf("scene.Parse() error = %v", err)
	}
	return s
}

// andTranslator contracts every "and" to "&".
type andTranslator struct{}

func (andTranslator) Translate(table, text string, cursor int) (Translation, error) {
	in := []rune(text)
	inPos := make([]int, len(in))
	var out []rune
	var outPos []int
	for i := 0; i < len(in); {
		if i+3 <= len(in) && string(in[i:i+3]) == "and" {
			for j := i; j < i+3; j++ {
				inPos[j] = len(out)
			}
			outPos = append(outPos, i)
			out = append(out, '&')
			i += 3
			continue
		}
		inPos[i] = len(out)
		outPos = append(outPos, i)
		out = append(out, in[i])
		i++
	}
	return Translation{Text: string(out), InPos: inPos, OutPos: outPos, Cursor: -1}, nil
}

type failingTranslator struct{ err error }

func (f failingTranslator) Translate(table, text string, cursor int) (Translation, error) {
	return Translation{}, f.err
}

type shortTranslator struct{}

func (shortTranslator) Translate(table, text string, cursor int) (Translation, error) {
	return Translation{Text: text, InPos: []int{0}, OutPos: []int{0}, Cursor: -1}, nil
}

func TestNewRegion(t *testing.T) {
	r := NewRegion("abc\n", 1)
	if got := r.String(); got != "abc" {
		t.Errorf("String() = %q, want %q", got, "abc")
	}
	if got := r.CursorOffset(); got != 1 {
		t.Errorf("CursorOffset() = %d, want 1", got)
	}
	if got := len(r.AttributeMask()); got != 3 {
		t.Errorf("len(AttributeMask()) = %d, want 3", got)
	}
	if r.Zone() != NoZone {
		t.Errorf("Zone() = %d, want NoZone", r.Zone())
	}
}

func TestTextRegion(t *testing.T) {
	s := mustScene(t, entryScene)
	obj := s.ID("name")

	r := NewText(s, obj, "Name:")
	opts := RenderOptions{
		EndOfLine:          true,
		SelectionIndicator: IndicatorDots78,
		AttributeIndicator: IndicatorDot7,
	}
	r.Render(opts, nil)

	if got, want := r.String(), "Name: hello world $l"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := r.CursorOffset(); got != 8 {
		t.Errorf("CursorOffset() = %d, want 8", got)
	}
	mask := r.AttributeMask()
	if len(mask) != len([]rune(r.String())) {
		t.Fatalf("len(mask) = %d, want %d", len(mask), len([]rune(r.String())))
	}

	tests := []struct {
		name string
		cell int
		want byte
	}{
		{"label", 0, 0},
		{"selected", 6, byte(IndicatorDots78)},
		{"last selected", 10, byte(IndicatorDots78)},
		{"space", 11, 0},
		{"bold", 12, byte(IndicatorDot7)},
		{"end of line", 18, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if mask[tt.cell] != tt.want {
				t.Errorf("mask[%d] = %#x, want %#x", tt.cell, mask[tt.cell], tt.want)
			}
		})
	}
}

const overlapScene = `
focus: entry
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 100}
  children:
    - id: entry
      role: entry
      states: [editable, single-line, focused]
      text: click here now
      rect: {x: 10, y: 10, width: 200, height: 20}
      selections:
        - {start: 0, end: 10}
      links:
        - {start: 6, end: 10}
      default_text_attributes: {weight: normal}
      text_attributes:
        - {start: 6, end: 14, attributes: {weight: bold}}
`

func TestTextRegionCombinesIndicators(t *testing.T) {
	s := mustScene(t, overlapScene)
	r := NewText(s, s.ID("entry"), "")

	sel, attr, link := byte(IndicatorDot7), byte(IndicatorDot8), byte(IndicatorDot7)
	tests := []struct {
		name string
		opts RenderOptions
		want []byte
	}{
		{
			name: "selection and attributes",
			opts: RenderOptions{SelectionIndicator: IndicatorDot7, AttributeIndicator: IndicatorDot8},
			want: []byte{
				sel, sel, sel, sel, sel, sel,
				sel | attr, sel | attr, sel | attr, sel | attr,
				attr, attr, attr, attr,
			},
		},
		{
			name: "link and attributes",
			opts: RenderOptions{LinkIndicator: IndicatorDot7, AttributeIndicator: IndicatorDot8},
			want: []byte{
				0, 0, 0, 0, 0, 0,
				link | attr, link | attr, link | attr, link | attr,
				attr, attr, attr, attr,
			},
		},
		{
			name: "all three",
			opts: RenderOptions{LinkIndicator: IndicatorDot7, AttributeIndicator: IndicatorDot8, SelectionIndicator: IndicatorDot7},
			want: []byte{
				sel, sel, sel, sel, sel, sel,
				sel | link | attr, sel | link | attr, sel | link | attr, sel | link | attr,
				attr, attr, attr, attr,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.Render(tt.opts, nil)
			mask := r.AttributeMask()
			if len(mask) != len(tt.want) {
				t.Fatalf("len(mask) = %d, want %d", len(mask), len(tt.want))
			}
			for i := range mask {
				if mask[i] != tt.want[i] {
					t.Errorf("mask[%d] = %#x, want %#x", i, mask[i], tt.want[i])
				}
			}
		})
	}
}

func TestTextRegionRoute(t *testing.T) {
	s := mustScene(t, entryScene)
	obj := s.ID("name")
	r := NewText(s, obj, "Name:")

	if !r.Route(10) {
		t.Fatal("Route(10) = false, want true")
	}
	if got := s.CaretOffset(obj); got != 4 {
		t.Errorf("caret = %d, want 4", got)
	}

	if r.Route(2) {
		t.Error("Route on label = true, want false")
	}

	if !r.Route(40) {
		t.Fatal("Route past end = false, want true")
	}
	if got := s.CaretOffset(obj); got != 11 {
		t.Errorf("caret after routing past end = %d, want 11", got)
	}
}

func TestRepositionCursor(t *testing.T) {
	s := mustScene(t, entryScene)
	obj := s.ID("name")
	r := NewText(s, obj, "")

	s.SetCaretOffset(obj, 7)
	if !r.RepositionCursor() {
		t.Fatal("RepositionCursor() = false, want true")
	}
	r.Render(RenderOptions{}, nil)
	if got := r.CursorOffset(); got != 7 {
		t.Errorf("CursorOffset() = %d, want 7", got)
	}
	if got := r.CaretOffset(); got != 7 {
		t.Errorf("CaretOffset() = %d, want 7", got)
	}
}

func TestComponentRouteActivates(t *testing.T) {
	s := mustScene(t, entryScene)
	obj := s.ID("ok")
	r := NewComponent(s, obj, "OK push button", 0)

	if !r.Route(3) {
		t.Fatal("Route() = false, want true")
	}
	if got := s.Activations(obj); got != 1 {
		t.Errorf("Activations() = %d, want 1", got)
	}
}

func TestLinkMask(t *testing.T) {
	s := mustScene(t, entryScene)
	r := NewLink(s, s.ID("ok"), "home", -1)
	r.Render(RenderOptions{LinkIndicator: IndicatorDots78}, nil)

	for i, m := range r.AttributeMask() {
		if m != byte(IndicatorDots78) {
			t.Errorf("mask[%d] = %#x, want %#x", i, m, byte(IndicatorDots78))
		}
	}
}

func TestContractedRender(t *testing.T) {
	r := NewRegion("cats and dogs", 9)
	r.Render(RenderOptions{Contracted: true, Table: "test"}, andTranslator{})

	if !r.IsContracted() {
		t.Fatal("IsContracted() = false, want true")
	}
	if got, want := r.String(), "cats & dogs"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := r.CursorOffset(); got != 7 {
		t.Errorf("CursorOffset() = %d, want 7", got)
	}
	if got := len(r.AttributeMask()); got != 11 {
		t.Errorf("len(AttributeMask()) = %d, want 11", got)
	}

	offsets := []struct {
		name string
		in   int
		want int
	}{
		{"before contraction", 2, 2},
		{"contracted word", 5, 5},
		{"after contraction", 7, 9},
		{"past end", 11, 13},
	}
	for _, tt := range offsets {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ExpandedOffset(tt.in); got != tt.want {
				t.Errorf("ExpandedOffset(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestContractionFallback(t *testing.T) {
	tests := []struct {
		name string
		tr   Translator
	}{
		{"error", failingTranslator{err: errors.New("no table")}},
		{"inconsistent maps", shortTranslator{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegion("cats and dogs", 0)
			r.Render(RenderOptions{Contracted: true, Table: "test"}, tt.tr)
			if r.IsContracted() {
				t.Error("IsContracted() = true, want false")
			}
			if got := r.String(); got != "cats and dogs" {
				t.Errorf("String() = %q, want %q", got, "cats and dogs")
			}
		})
	}
}

func TestTextOffset(t *testing.T) {
	s := mustScene(t, entryScene)
	obj := s.ID("name")

	text := NewText(s, obj, "Name:")
	if got := text.TextOffset(1); got != -1 {
		t.Errorf("TextOffset on label = %d, want -1", got)
	}
	if got := text.TextOffset(6); got != 0 {
		t.Errorf("TextOffset(6) = %d, want 0", got)
	}

	review := NewReviewText(s, obj, "world", 6, 0, 3)
	if got := review.TextOffset(2); got != 8 {
		t.Errorf("review TextOffset(2) = %d, want 8", got)
	}
	if got := review.Zone(); got != 3 {
		t.Errorf("Zone() = %d, want 3", got)
	}

	plain := NewRegion("abc", 0)
	if got := plain.TextOffset(1); got != -1 {
		t.Errorf("plain TextOffset = %d, want -1", got)
	}
	if plain.Object() != a11y.None {
		t.Errorf("plain Object() = %v, want None", plain.Object())
	}
}
