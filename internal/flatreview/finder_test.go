package flatreview

import (
	"errors"
	"testing"
)

const searchScene = `
focus: text
root:
  id: frame
  role: frame
  rect: {x: 0, y: 0, width: 400, height: 200}
  children:
    - id: text
      role: text
      states: [multi-line]
      text: "alpha beta\ngamma alpha\ndelta"
      rect: {x: 0, y: 0, width: 200, height: 60}
`

func TestFinderRepeats(t *testing.T) {
	c := New(mustScene(t, searchScene), Options{})
	f := NewFinder()
	var wraps []bool
	f.OnWrap = func(backwards bool) { wraps = append(wraps, backwards) }

	loc, ok, err := f.Find(c, Query{Pattern: "alpha", WrapAround: true})
	if err != nil || !ok {
		t.Fatalf("Find() = %v, %v, want a match", ok, err)
	}
	if loc != (Location{0, 0, 0, 0}) {
		t.Errorf("first match = %+v, want line 0", loc)
	}

	steps := []struct {
		name string
		find func(*Context) (Location, bool, error)
		want Location
	}{
		{"next", f.FindNext, Location{1, 0, 1, 0}},
		{"next wraps", f.FindNext, Location{0, 0, 0, 0}},
		{"previous wraps", f.FindPrevious, Location{1, 0, 1, 0}},
		{"previous", f.FindPrevious, Location{0, 0, 0, 0}},
	}
	for _, step := range steps {
		loc, ok, err := step.find(c)
		if err != nil || !ok {
			t.Fatalf("%s: = %v, %v, want a match", step.name, ok, err)
		}
		if loc != step.want || c.Location() != step.want {
			t.Errorf("%s: match = %+v, cursor %+v, want %+v", step.name, loc, c.Location(), step.want)
		}
	}

	if len(wraps) != 2 || wraps[0] || !wraps[1] {
		t.Errorf("wraps = %v, want [false true]", wraps)
	}
}

func TestFinderWithoutWrapRestoresLocation(t *testing.T) {
	c := New(mustScene(t, searchScene), Options{})
	f := NewFinder()

	if _, ok, _ := f.Find(c, Query{Pattern: "alpha"}); !ok {
		t.Fatal("Find() found nothing")
	}
	if _, ok, _ := f.FindNext(c); !ok {
		t.Fatal("FindNext() found nothing")
	}
	_, ok, err := f.FindNext(c)
	if err != nil || ok {
		t.Errorf("FindNext() past the last match = %v, %v, want no match", ok, err)
	}
	if got := c.Location(); got != (Location{1, 0, 1, 0}) {
		t.Errorf("Location() = %+v, want the last match", got)
	}
}

func TestFinderOptions(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
		loc   Location
	}{
		{"case insensitive", Query{Pattern: "GAMMA"}, true, Location{1, 0, 0, 0}},
		{"case sensitive", Query{Pattern: "GAMMA", CaseSensitive: true}, false, Location{}},
		{"partial word", Query{Pattern: "elt"}, true, Location{2, 0, 0, 0}},
		{"whole word", Query{Pattern: "elt", WholeWord: true}, false, Location{}},
		{"regexp", Query{Pattern: `b[a-z]+a`}, true, Location{0, 0, 1, 0}},
		{"backwards from the top", Query{Pattern: "delta", Backwards: true}, false, Location{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(mustScene(t, searchScene), Options{})
			loc, ok, err := NewFinder().Find(c, tt.query)
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if ok != tt.want {
				t.Fatalf("Find() found = %v, want %v", ok, tt.want)
			}
			if ok && loc != tt.loc {
				t.Errorf("Find() = %+v, want %+v", loc, tt.loc)
			}
			if !ok && c.Location() != (Location{}) {
				t.Errorf("Location() after failure = %+v, want it restored", c.Location())
			}
		})
	}
}

func TestFinderStartAtTop(t *testing.T) {
	c := New(mustScene(t, searchScene), Options{})
	c.GoToEndOf(UnitWindow)

	loc, ok, err := NewFinder().Find(c, Query{Pattern: "beta", StartAtTop: true})
	if err != nil || !ok {
		t.Fatalf("Find() = %v, %v, want a match", ok, err)
	}
	if loc != (Location{0, 0, 1, 0}) {
		t.Errorf("Find() = %+v, want %q on line 0", loc, "beta")
	}
}

func TestFinderErrors(t *testing.T) {
	c := New(mustScene(t, searchScene), Options{})
	f := NewFinder()

	if _, _, err := f.FindNext(c); !errors.Is(err, ErrNoQuery) {
		t.Errorf("FindNext() error = %v, want ErrNoQuery", err)
	}
	if _, _, err := f.Find(c, Query{Pattern: "("}); err == nil {
		t.Error("Find() with a bad pattern error = nil, want error")
	}
}
