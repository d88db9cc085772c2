package flatreview

import (
	"reflect"
	"strings"
	"testing"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/a11y/scene"
)

func mustScene(t *testing.T, data string) *scene.Scene {
	t.Helper()
	s, err := scene.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}

const labelsScene = `
focus: orca
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 200}
  children:
    - id: name
      role: label
      name: "Name:"
      rect: {x: 10, y: 10, width: 50, height: 20}
    - id: orca
      role: label
      name: Orca
      rect: {x: 65, y: 10, width: 40, height: 20}
`

const wrappedScene = `
focus: para
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 200}
  children:
    - id: para
      role: text
      states: [multi-line]
      text: The quick brown fox jumps over the lazy dog
      wrap: 15
      caret: 20
      rect: {x: 10, y: 10, width: 160, height: 60}
`

const formScene = `
focus: user
root:
  id: dialog
  role: dialog
  rect: {x: 0, y: 0, width: 400, height: 300}
  children:
    - id: user-label
      role: label
      name: "User:"
      rect: {x: 10, y: 10, width: 50, height: 20}
      label_for: [user]
    - id: user
      role: entry
      states: [editable, single-line]
      text: jdoe
      caret: 2
      rect: {x: 70, y: 10, width: 200, height: 20}
    - id: remember
      role: check box
      name: Remember me
      states: [checked]
      rect: {x: 10, y: 40, width: 120, height: 20}
    - id: volume
      role: slider
      value: {current: 50, min: 0, max: 100}
      rect: {x: 10, y: 70, width: 100, height: 20}
    - id: progress
      role: progress bar
      value: {current: 50, min: 0, max: 200}
      rect: {x: 150, y: 70, width: 100, height: 20}
    - id: row
      role: table row
      name: Row one
      rect: {x: 10, y: 100, width: 300, height: 20}
    - id: colour
      role: combo box
      active_descendant: blue
      rect: {x: 10, y: 130, width: 100, height: 20}
      children:
        - id: blue
          role: list item
          name: Blue
          hidden: true
          rect: {x: 10, y: 130, width: 100, height: 20}
    - id: embed
      role: paragraph
      text: "ab\uFFFCcd"
      rect: {x: 10, y: 160, width: 100, height: 20}
`

func TestSameLineLabelsShareALine(t *testing.T) {
	c := New(mustScene(t, labelsScene), Options{})

	if got, want := c.Lines(), []string{"Name: Orca"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
	if got := c.Location(); got != (Location{Line: 0, Zone: 1}) {
		t.Errorf("Location() = %+v, want zone 1 of line 0", got)
	}
	if text, _ := c.Current(UnitZone); text != "Orca" {
		t.Errorf("Current(UnitZone) = %q, want %q", text, "Orca")
	}
}

func TestWrappedTextGivesOneZonePerLine(t *testing.T) {
	s := mustScene(t, wrappedScene)
	c := New(s, Options{})

	want := []string{"The quick brown ", "fox jumps over ", "the lazy dog"}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}
	wantStarts := []int{0, 16, 31}
	for i := range want {
		zones := c.ZonesOf(i)
		if len(zones) != 1 || zones[0].Kind != TextZone {
			t.Errorf("line %d zones = %+v, want one text zone", i, zones)
			continue
		}
		if got := zones[0].StartOffset; got != wantStarts[i] {
			t.Errorf("line %d StartOffset = %d, want %d", i, got, wantStarts[i])
		}
		if i > 0 && zones[0].StartOffset <= c.ZonesOf(i - 1)[0].StartOffset {
			t.Errorf("line %d StartOffset = %d, not after line %d", i, zones[0].StartOffset, i-1)
		}
	}

	// The caret is on the "j" of "jumps".
	if got := c.Location(); got != (Location{Line: 1, Zone: 0, Word: 1, Char: 0}) {
		t.Errorf("Location() = %+v, want line 1 word 1", got)
	}
	if !c.GoNextLine(false) {
		t.Fatal("GoNextLine() = false, want true")
	}
	if text, _ := c.Current(UnitZone); text != "the lazy dog" {
		t.Errorf("Current(UnitZone) = %q, want %q", text, "the lazy dog")
	}
	if c.GoNextLine(false) {
		t.Error("GoNextLine() on the last line = true, want false")
	}
	if got := c.CurrentOffset(); got != 31 {
		t.Errorf("CurrentOffset() = %d, want 31", got)
	}
}

const trailingNewlineScene = `
focus: para
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 200}
  children:
    - id: para
      role: text
      states: [multi-line]
      text: "first line\nsecond\n"
      caret: 18
      rect: {x: 10, y: 10, width: 200, height: 40}
`

func TestCaretAtEndOfText(t *testing.T) {
	tests := []struct {
		name   string
		scene  string
		want   Location
		offset int
	}{
		{"wrapped text", wrappedScene, Location{Line: 2, Zone: 0, Word: 2, Char: 2}, 42},
		{"trailing newline", trailingNewlineScene, Location{Line: 1, Zone: 0, Word: 0, Char: 5}, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustScene(t, tt.scene)
			para := s.ID("para")
			s.SetCaretOffset(para, s.CharacterCount(para))
			c := New(s, Options{})

			if got := c.Location(); got != tt.want {
				t.Errorf("Location() = %+v, want %+v", got, tt.want)
			}
			if got := c.CurrentOffset(); got != tt.offset {
				t.Errorf("CurrentOffset() = %d, want %d", got, tt.offset)
			}
		})
	}
}

func TestZoneProduction(t *testing.T) {
	s := mustScene(t, formScene)
	c := New(s, Options{})

	want := []string{
		"jdoe",
		"[x] Remember me",
		"slider 50 progress bar 25%",
		"Blue",
		"ab cd",
	}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}

	check := c.ZonesOf(1)
	if len(check) != 2 || check[0].Kind != StateZone || check[1].Kind != NameZone {
		t.Errorf("check box zones = %+v, want state then name", check)
	}
	if check[0].Object != s.ID("remember") {
		t.Errorf("state zone object = %v, want remember", check[0].Object)
	}

	if zones := c.ZonesOf(3); len(zones) != 1 || zones[0].Object != s.ID("blue") {
		t.Errorf("combo box zones = %+v, want the active descendant", zones)
	}

	embed := c.ZonesOf(4)
	if len(embed) != 2 || embed[0].StartOffset != 0 || embed[1].StartOffset != 3 {
		t.Errorf("embedded object zones = %+v, want runs at 0 and 3", embed)
	}

	// The caret of the focused entry places the cursor.
	if got := c.Location(); got != (Location{Line: 0, Zone: 0, Word: 0, Char: 2}) {
		t.Errorf("Location() = %+v, want char 2 of the entry", got)
	}
}

func TestScrollPaneClipsText(t *testing.T) {
	const data = `
focus: text
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 300}
  children:
    - id: scroll
      role: scroll pane
      rect: {x: 0, y: 0, width: 400, height: 40}
      children:
        - id: text
          role: text
          states: [multi-line]
          text: "one\ntwo\nthree\nfour"
          rect: {x: 0, y: 0, width: 200, height: 80}
`
	c := New(mustScene(t, data), Options{})
	if got, want := c.Lines(), []string{"one", "two"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
}

func TestMenuRestrictsContainer(t *testing.T) {
	const data = `
focus: open
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 300}
  children:
    - id: status
      role: label
      name: Ready
      rect: {x: 0, y: 280, width: 100, height: 20}
    - id: file
      role: menu
      name: File
      rect: {x: 0, y: 0, width: 100, height: 80}
      children:
        - id: open
          role: menu item
          name: Open
          rect: {x: 0, y: 20, width: 100, height: 20}
        - id: quit
          role: menu item
          name: Quit
          rect: {x: 0, y: 40, width: 100, height: 20}
`
	c := New(mustScene(t, data), Options{})
	if got, want := c.Lines(), []string{"Open", "Quit"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
}

func TestOnSameLine(t *testing.T) {
	const data = `
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 300}
  children:
    - id: bar
      role: menu bar
      rect: {x: 0, y: 0, width: 400, height: 40}
      children:
        - id: file
          role: menu
          name: File
          rect: {x: 0, y: 0, width: 50, height: 20}
        - id: edit
          role: menu
          name: Edit
          rect: {x: 60, y: 20, width: 50, height: 20}
    - id: scrollbar
      role: scroll bar
      rect: {x: 380, y: 40, width: 20, height: 200}
      children:
        - id: up
          role: push button
          rect: {x: 380, y: 40, width: 20, height: 20}
        - id: down
          role: push button
          rect: {x: 380, y: 220, width: 20, height: 20}
    - id: a
      role: label
      rect: {x: 0, y: 100, width: 10, height: 10}
    - id: b
      role: label
      rect: {x: 0, y: 100, width: 10, height: 10}
`
	s := mustScene(t, data)
	zone := func(key string, r a11y.Rect) Zone {
		return Zone{Object: s.ID(key), Rect: r}
	}

	tests := []struct {
		name string
		a, b Zone
		want bool
	}{
		{"close midpoints", zone("a", a11y.NewRect(0, 10, 10, 20)), zone("b", a11y.NewRect(20, 12, 10, 20)), true},
		{"midpoints too far apart", zone("a", a11y.NewRect(0, 10, 10, 20)), zone("b", a11y.NewRect(20, 20, 10, 20)), false},
		{"no vertical overlap", zone("a", a11y.NewRect(0, 10, 10, 20)), zone("b", a11y.NewRect(20, 40, 10, 20)), false},
		{"zero area inside", zone("a", a11y.NewRect(0, 15, 0, 0)), zone("b", a11y.NewRect(20, 10, 10, 20)), true},
		{"zero area inside other side", zone("a", a11y.NewRect(20, 10, 10, 20)), zone("b", a11y.NewRect(0, 15, 0, 0)), true},
		{"zero area outside", zone("a", a11y.NewRect(0, 50, 0, 0)), zone("b", a11y.NewRect(20, 10, 10, 20)), false},
		{"menu bar siblings", zone("file", s.Rect(s.ID("file"))), zone("edit", s.Rect(s.ID("edit"))), true},
		{"scroll bar parts", zone("up", s.Rect(s.ID("up"))), zone("down", s.Rect(s.ID("down"))), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.OnSameLine(s, tt.b, DefaultPixelDelta); got != tt.want {
				t.Errorf("OnSameLine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmptyContext(t *testing.T) {
	const data = `
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 300}
  children:
    - id: panel
      role: panel
      rect: {x: 0, y: 0, width: 400, height: 300}
`
	s := mustScene(t, data)
	contexts := map[string]*Context{
		"no focus":    New(s, Options{}),
		"empty panel": New(s, Options{Root: s.ID("frame")}),
	}
	for name, c := range contexts {
		t.Run(name, func(t *testing.T) {
			if !c.IsEmpty() {
				t.Fatalf("IsEmpty() = false, lines %q", c.Lines())
			}
			moves := []func() bool{
				func() bool { return c.GoToStartOf(UnitWindow) },
				func() bool { return c.GoToEndOf(UnitLine) },
				func() bool { return c.GoNextLine(true) },
				func() bool { return c.GoPreviousLine(true) },
				c.GoNextZone, c.GoPreviousZone,
				c.GoNextWord, c.GoPreviousWord,
				c.GoNextCharacter, c.GoPreviousCharacter,
				c.GoUp, c.GoDown,
			}
			for i, move := range moves {
				if move() {
					t.Errorf("move %d on empty context = true, want false", i)
				}
			}
			if text, rect := c.Current(UnitLine); text != "" || !rect.IsZero() {
				t.Errorf("Current(UnitLine) = %q, %v, want empty", text, rect)
			}
			if c.CurrentObject() != a11y.None {
				t.Errorf("CurrentObject() = %v, want None", c.CurrentObject())
			}
		})
	}
}

func TestStructure(t *testing.T) {
	for name, data := range map[string]string{
		"labels":  labelsScene,
		"wrapped": wrappedScene,
		"form":    formScene,
	} {
		t.Run(name, func(t *testing.T) {
			c := New(mustScene(t, data), Options{})
			seen := make(map[int]bool)
			for li := 0; li < c.LineCount(); li++ {
				zones := c.ZonesOf(li)
				for k, z := range zones {
					if z.Line != li {
						t.Errorf("zone %q Line = %d, want %d", z.Text, z.Line, li)
					}
					if k > 0 && zones[k-1].Rect.X > z.Rect.X {
						t.Errorf("line %d zones not ordered by x: %+v", li, zones)
					}
				}
				for _, zi := range c.lines[li].Zones {
					if seen[zi] {
						t.Errorf("zone %d in more than one line", zi)
					}
					seen[zi] = true

					var text strings.Builder
					for _, w := range c.Words(zi) {
						var chars strings.Builder
						for _, ch := range w.Chars() {
							chars.WriteString(ch.Text)
						}
						if chars.String() != w.Text {
							t.Errorf("chars of %q = %q", w.Text, chars.String())
						}
						text.WriteString(w.Text)
					}
					if text.String() != c.zones[zi].Text {
						t.Errorf("words of zone %q = %q", c.zones[zi].Text, text.String())
					}
				}
			}
			if len(seen) != len(c.zones) {
				t.Errorf("%d of %d zones placed on lines", len(seen), len(c.zones))
			}
		})
	}
}

func TestClusteringIgnoresInputOrder(t *testing.T) {
	lineTexts := func(c *Context) [][]string {
		var lines [][]string
		for _, l := range c.lines {
			var texts []string
			for _, zi := range l.Zones {
				texts = append(texts, c.zones[zi].Text)
			}
			lines = append(lines, texts)
		}
		return lines
	}

	c := New(mustScene(t, formScene), Options{})
	want := lineTexts(c)
	for i, j := 0, len(c.zones)-1; i < j; i, j = i+1, j-1 {
		c.zones[i], c.zones[j] = c.zones[j], c.zones[i]
	}
	c.cluster()
	if got := lineTexts(c); !reflect.DeepEqual(got, want) {
		t.Errorf("lines after reversing zones = %q, want %q", got, want)
	}
}

func TestWordAtOffset(t *testing.T) {
	c := New(mustScene(t, wrappedScene), Options{})
	zi := c.lines[1].Zones[0] // "fox jumps over " from offset 16

	tests := []struct {
		name     string
		offset   int
		wantWord int
		wantRel  int
	}{
		{"first char", 16, 0, 0},
		{"trailing space", 19, 0, 3},
		{"second word", 22, 1, 2},
		{"end of zone", 31, 2, 4},
		{"before zone", 3, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, rel := c.WordAtOffset(zi, tt.offset)
			if w != tt.wantWord || rel != tt.wantRel {
				t.Errorf("WordAtOffset(%d) = %d, %d, want %d, %d", tt.offset, w, rel, tt.wantWord, tt.wantRel)
			}
		})
	}

	word := c.Words(zi)[1]
	if got := word.RelativeOffset(20); got != 0 {
		t.Errorf("RelativeOffset(20) = %d, want 0", got)
	}
	if got := word.RelativeOffset(26); got != -1 {
		t.Errorf("RelativeOffset(26) = %d, want -1", got)
	}
}
