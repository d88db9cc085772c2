package flatreview

import (
	"testing"

	"github.com/muurk/brlreview/internal/braille"
)

const gridScene = `
focus: ok
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 200}
  children:
    - id: name
      role: label
      name: "Name:"
      rect: {x: 10, y: 10, width: 50, height: 20}
    - id: app
      role: label
      name: Orca Screen
      rect: {x: 65, y: 10, width: 110, height: 20}
    - id: ok
      role: push button
      name: OK
      rect: {x: 10, y: 40, width: 40, height: 20}
    - id: cancel
      role: push button
      name: Cancel
      rect: {x: 60, y: 40, width: 60, height: 20}
`

func TestNavigation(t *testing.T) {
	c := New(mustScene(t, gridScene), Options{})
	if got := c.Location(); got != (Location{Line: 1}) {
		t.Fatalf("initial Location() = %+v, want the OK button", got)
	}

	steps := []struct {
		name  string
		move  func() bool
		moved bool
		want  Location
	}{
		{"start of window", func() bool { return c.GoToStartOf(UnitWindow) }, true, Location{0, 0, 0, 0}},
		{"start of window again", func() bool { return c.GoToStartOf(UnitWindow) }, false, Location{0, 0, 0, 0}},
		{"next word crosses zone", c.GoNextWord, true, Location{0, 1, 0, 0}},
		{"next word", c.GoNextWord, true, Location{0, 1, 1, 0}},
		{"next word crosses line", c.GoNextWord, true, Location{1, 0, 0, 0}},
		{"previous word crosses line", c.GoPreviousWord, true, Location{0, 1, 1, 0}},
		{"previous character into word", c.GoPreviousCharacter, true, Location{0, 1, 0, 4}},
		{"next character into word", c.GoNextCharacter, true, Location{0, 1, 1, 0}},
		{"next character", c.GoNextCharacter, true, Location{0, 1, 1, 1}},
		{"start of word", func() bool { return c.GoToStartOf(UnitWord) }, true, Location{0, 1, 1, 0}},
		{"end of line", func() bool { return c.GoToEndOf(UnitLine) }, true, Location{0, 1, 1, 5}},
		{"start of line", func() bool { return c.GoToStartOf(UnitLine) }, true, Location{0, 0, 0, 0}},
		{"previous line without wrap", func() bool { return c.GoPreviousLine(false) }, false, Location{0, 0, 0, 0}},
		{"previous line with wrap", func() bool { return c.GoPreviousLine(true) }, true, Location{1, 0, 0, 0}},
		{"next zone", c.GoNextZone, true, Location{1, 1, 0, 0}},
		{"next zone at end", c.GoNextZone, false, Location{1, 1, 0, 0}},
		{"end of zone", func() bool { return c.GoToEndOf(UnitZone) }, true, Location{1, 1, 0, 5}},
		{"next character at end", c.GoNextCharacter, false, Location{1, 1, 0, 5}},
		{"next line with wrap", func() bool { return c.GoNextLine(true) }, true, Location{0, 0, 0, 0}},
		{"previous zone at start", c.GoPreviousZone, false, Location{0, 0, 0, 0}},
		{"previous character at start", c.GoPreviousCharacter, false, Location{0, 0, 0, 0}},
		{"end of window", func() bool { return c.GoToEndOf(UnitWindow) }, true, Location{1, 1, 0, 5}},
		{"previous zone", c.GoPreviousZone, true, Location{1, 0, 0, 0}},
		{"previous zone crosses line", c.GoPreviousZone, true, Location{0, 1, 0, 0}},
		{"unknown unit", func() bool { return c.GoToStartOf(UnitChar) }, false, Location{0, 1, 0, 0}},
	}
	for _, step := range steps {
		moved := step.move()
		if moved != step.moved {
			t.Errorf("%s: moved = %v, want %v", step.name, moved, step.moved)
		}
		if got := c.Location(); got != step.want {
			t.Fatalf("%s: Location() = %+v, want %+v", step.name, got, step.want)
		}
	}
}

func TestGoUpAndDown(t *testing.T) {
	c := New(mustScene(t, gridScene), Options{})

	c.SetLocation(Location{Line: 1, Zone: 1})
	if !c.GoUp() {
		t.Fatal("GoUp() = false, want true")
	}
	if got := c.Location(); got != (Location{Line: 0, Zone: 1}) {
		t.Errorf("GoUp() from Cancel = %+v, want the start of %q", got, "Orca Screen")
	}
	if c.GoUp() {
		t.Error("GoUp() on the first line = true, want false")
	}

	c.GoToStartOf(UnitWindow)
	if !c.GoDown() {
		t.Fatal("GoDown() = false, want true")
	}
	if got := c.Location(); got != (Location{Line: 1, Zone: 0}) {
		t.Errorf("GoDown() from Name = %+v, want OK", got)
	}
	if c.GoDown() {
		t.Error("GoDown() on the last line = true, want false")
	}
}

func TestGoUpInText(t *testing.T) {
	c := New(mustScene(t, wrappedScene), Options{})
	// On the "j" of "jumps", under the "q" of "quick".
	if !c.GoUp() {
		t.Fatal("GoUp() = false, want true")
	}
	if got := c.Location(); got != (Location{Line: 0, Zone: 0, Word: 1, Char: 0}) {
		t.Errorf("Location() = %+v, want start of %q", got, "quick")
	}
	if text, _ := c.Current(UnitChar); text != "q" {
		t.Errorf("Current(UnitChar) = %q, want %q", text, "q")
	}
}

func TestCharacterRoundTrip(t *testing.T) {
	for name, data := range map[string]string{
		"grid":    gridScene,
		"wrapped": wrappedScene,
		"form":    formScene,
	} {
		t.Run(name, func(t *testing.T) {
			c := New(mustScene(t, data), Options{})
			c.GoToStartOf(UnitWindow)
			for steps := 0; ; steps++ {
				if steps > 1000 {
					t.Fatal("GoNextCharacter() never reached the end")
				}
				loc := c.Location()
				if !c.GoNextCharacter() {
					break
				}
				if !c.GoPreviousCharacter() {
					t.Fatalf("GoPreviousCharacter() after moving from %+v = false", loc)
				}
				if got := c.Location(); got != loc {
					t.Fatalf("round trip from %+v ended at %+v", loc, got)
				}
				c.GoNextCharacter()
			}
		})
	}
}

func TestSetLocation(t *testing.T) {
	c := New(mustScene(t, gridScene), Options{})

	tests := []struct {
		name string
		loc  Location
		want bool
	}{
		{"valid", Location{0, 1, 1, 3}, true},
		{"line out of range", Location{2, 0, 0, 0}, false},
		{"zone out of range", Location{0, 2, 0, 0}, false},
		{"word out of range", Location{0, 0, 1, 0}, false},
		{"char out of range", Location{1, 0, 0, 2}, false},
		{"negative", Location{-1, 0, 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := c.Location()
			if got := c.SetLocation(tt.loc); got != tt.want {
				t.Errorf("SetLocation(%+v) = %v, want %v", tt.loc, got, tt.want)
			}
			want := before
			if tt.want {
				want = tt.loc
			}
			if got := c.Location(); got != want {
				t.Errorf("Location() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestCurrent(t *testing.T) {
	s := mustScene(t, gridScene)
	c := New(s, Options{})
	c.SetLocation(Location{Line: 0, Zone: 1, Word: 1, Char: 2})

	tests := []struct {
		unit Unit
		want string
	}{
		{UnitChar, "r"},
		{UnitWord, "Screen"},
		{UnitZone, "Orca Screen"},
		{UnitLine, "Name: Orca Screen"},
		{UnitWindow, "Name: Orca Screen\nOK Cancel"},
	}
	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			if got, _ := c.Current(tt.unit); got != tt.want {
				t.Errorf("Current(%v) = %q, want %q", tt.unit, got, tt.want)
			}
		})
	}

	if _, rect := c.Current(UnitLine); rect != s.Rect(s.ID("name")).Union(s.Rect(s.ID("app"))) {
		t.Errorf("Current(UnitLine) rect = %v", rect)
	}
	if got := c.CurrentObject(); got != s.ID("app") {
		t.Errorf("CurrentObject() = %v, want app", got)
	}
	if got := c.CurrentOffset(); got != -1 {
		t.Errorf("CurrentOffset() on a name zone = %d, want -1", got)
	}

	if !c.SetCurrentToZoneWithObject(s.ID("cancel")) {
		t.Fatal("SetCurrentToZoneWithObject(cancel) = false")
	}
	if got := c.Location(); got != (Location{Line: 1, Zone: 1}) {
		t.Errorf("Location() = %+v, want the Cancel zone", got)
	}
	if !c.SetCurrentToZoneWithObject(s.ID("frame")) {
		t.Error("SetCurrentToZoneWithObject(frame) = false, want a descendant zone")
	}
}

func TestBrailleRegions(t *testing.T) {
	s := mustScene(t, gridScene)
	c := New(s, Options{})
	c.SetLocation(Location{Line: 0, Zone: 1, Word: 1, Char: 2})

	regions, focus := c.BrailleRegions()
	if len(regions) != 3 {
		t.Fatalf("len(regions) = %d, want 3", len(regions))
	}
	if focus != regions[2] {
		t.Fatalf("focus = %q, want the second zone", focus.String())
	}
	if regions[1].String() != " " {
		t.Errorf("separator = %q, want a blank cell", regions[1].String())
	}
	if focus.Kind() != braille.KindReviewComponent {
		t.Errorf("Kind() = %v, want review component", focus.Kind())
	}
	if got := focus.CursorOffset(); got != 7 {
		t.Errorf("CursorOffset() = %d, want 7", got)
	}
	if got := regions[0].CursorOffset(); got != -1 {
		t.Errorf("unfocused CursorOffset() = %d, want -1", got)
	}

	if !c.RouteTo(regions[0], 3) {
		t.Fatal("RouteTo() = false, want true")
	}
	if got := c.Location(); got != (Location{Line: 0, Zone: 0, Word: 0, Char: 3}) {
		t.Errorf("Location() after routing = %+v", got)
	}
	if c.RouteTo(regions[1], 0) {
		t.Error("RouteTo(separator) = true, want false")
	}
}

const linkScene = `
focus: home
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 200}
  children:
    - id: back
      role: label
      name: Back
      rect: {x: 10, y: 10, width: 40, height: 20}
    - id: home
      role: link
      name: Home
      rect: {x: 60, y: 10, width: 40, height: 20}
    - id: para
      role: paragraph
      text: read the docs now
      rect: {x: 10, y: 50, width: 200, height: 20}
      links:
        - {start: 9, end: 13}
`

func TestBrailleRegionsMarkLinks(t *testing.T) {
	c := New(mustScene(t, linkScene), Options{})
	opts := braille.DefaultSettings().RenderOptions()
	link := byte(braille.IndicatorDots78)

	regions, focus := c.BrailleRegions()
	if len(regions) != 3 || focus != regions[2] {
		t.Fatalf("regions = %d, focus %v", len(regions), focus)
	}
	if focus.Kind() != braille.KindLink {
		t.Errorf("Kind() = %v, want link", focus.Kind())
	}
	for _, r := range regions {
		r.Render(opts, nil)
	}
	for i, m := range focus.AttributeMask() {
		if m != link {
			t.Errorf("link mask[%d] = %#x, want %#x", i, m, link)
		}
	}
	for i, m := range regions[0].AttributeMask() {
		if m != 0 {
			t.Errorf("label mask[%d] = %#x, want 0", i, m)
		}
	}
	if !c.RouteTo(focus, 2) {
		t.Error("RouteTo(link) = false, want true")
	}

	if !c.GoNextLine(false) {
		t.Fatal("GoNextLine() = false, want true")
	}
	regions, focus = c.BrailleRegions()
	if len(regions) != 1 || focus == nil {
		t.Fatalf("regions = %d, focus %v", len(regions), focus)
	}
	focus.Render(opts, nil)
	mask := focus.AttributeMask()
	if got, want := focus.String(), "read the docs now"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	for i, m := range mask {
		want := byte(0)
		if i >= 9 && i < 13 {
			want = link
		}
		if m != want {
			t.Errorf("text mask[%d] = %#x, want %#x", i, m, want)
		}
	}
}

func TestBrailleRegionsForText(t *testing.T) {
	c := New(mustScene(t, wrappedScene), Options{})

	regions, focus := c.BrailleRegions()
	if len(regions) != 1 || focus != regions[0] {
		t.Fatalf("regions = %d, focus %v", len(regions), focus)
	}
	if focus.Kind() != braille.KindReviewText {
		t.Errorf("Kind() = %v, want review text", focus.Kind())
	}
	if got := focus.LineOffset(); got != 16 {
		t.Errorf("LineOffset() = %d, want 16", got)
	}
	if got := focus.CursorOffset(); got != 4 {
		t.Errorf("CursorOffset() = %d, want 4", got)
	}
	if got := focus.TextOffset(6); got != 22 {
		t.Errorf("TextOffset(6) = %d, want 22", got)
	}
}
