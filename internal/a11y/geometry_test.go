package a11y

import "testing"

func TestVisible(t *testing.T) {
	clip := NewRect(0, 0, 100, 100)

	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"fully inside", NewRect(10, 10, 20, 20), true},
		{"partially inside", NewRect(90, 90, 20, 20), true},
		{"outside right", NewRect(150, 10, 20, 20), false},
		{"touching edge only", NewRect(100, 10, 20, 20), false},
		{"zero height inside", NewRect(10, 50, 20, 0), true},
		{"zero height below", NewRect(10, 150, 20, 0), false},
		{"zero width inside", NewRect(50, 10, 0, 20), true},
		{"zero width outside", NewRect(150, 10, 0, 20), false},
		{"point inside", NewRect(5, 5, 0, 0), true},
		{"point outside", NewRect(500, 5, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.rect, clip); got != tt.want {
				t.Errorf("Visible(%v, %v) = %v, want %v", tt.rect, clip, got, tt.want)
			}
		})
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"inside", NewRect(10, 10, 5, 5), NewRect(0, 0, 100, 100), NewRect(10, 10, 5, 5)},
		{"overhang", NewRect(90, 0, 20, 10), NewRect(0, 0, 100, 100), NewRect(90, 0, 10, 10)},
		{"disjoint", NewRect(200, 200, 10, 10), NewRect(0, 0, 100, 100), NewRect(200, 200, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clip(tt.a, tt.b); got != tt.want {
				t.Errorf("Clip() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 5, 10, 10)
	want := NewRect(0, 0, 30, 15)
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %v, want %v", got, want)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("zero Union() = %v, want %v", got, b)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"push button", RolePushButton, false},
		{"push_button", RolePushButton, false},
		{"Check-Box", RoleCheckBox, false},
		{"frame", RoleFrame, false},
		{"bogus", RoleUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStateSet(t *testing.T) {
	var s StateSet
	s = s.With(StateChecked).With(StateShowing)
	if !s.Has(StateChecked) || !s.Has(StateShowing) {
		t.Errorf("StateSet %v missing added states", s)
	}
	if s.Has(StateFocused) {
		t.Errorf("StateSet %v unexpectedly has focused", s)
	}
	if got := s.String(); got != "[showing checked]" {
		t.Errorf("String() = %q, want %q", got, "[showing checked]")
	}

	st, err := ParseState("single_line")
	if err != nil || st != StateSingleLine {
		t.Errorf("ParseState(single_line) = %v, %v", st, err)
	}
}

type parentMap map[ObjectID]ObjectID

func (p parentMap) Focus() ObjectID { return None }
func (p parentMap) Parent(obj ObjectID) ObjectID { return p[obj] }
func (p parentMap) Children(ObjectID) []ObjectID { return nil }
func (p parentMap) Role(obj ObjectID) Role { return RoleUnknown }
func (p parentMap) Name(ObjectID) string { return "" }
func (p parentMap) States(ObjectID) StateSet { return 0 }
func (p parentMap) Attributes(ObjectID) map[string]string { return nil }
func (p parentMap) LabelFor(ObjectID) []ObjectID { return nil }
func (p parentMap) ActiveDescendant(ObjectID) ObjectID { return None }
func (p parentMap) OnScreenDescendants(ObjectID, Rect) []ObjectID { return nil }

func TestFindAncestor(t *testing.T) {
	tree := parentMap{3: 2, 2: 1}

	if got := FindAncestor(tree, 3, func(o ObjectID) bool { return o == 1 }); got != 1 {
		t.Errorf("FindAncestor() = %v, want 1", got)
	}
	if got := FindAncestor(tree, 3, func(o ObjectID) bool { return o == 3 }); got != None {
		t.Errorf("FindAncestor() matched self: %v", got)
	}
	if got := FindAncestorOrSelf(tree, 3, func(o ObjectID) bool { return o == 3 }); got != 3 {
		t.Errorf("FindAncestorOrSelf() = %v, want 3", got)
	}
	if !IsAncestor(tree, 1, 3) {
		t.Error("IsAncestor(1, 3) = false, want true")
	}

	cyclic := parentMap{1: 2, 2: 1}
	if got := FindAncestor(cyclic, 1, func(ObjectID) bool { return false }); got != None {
		t.Errorf("FindAncestor() on cycle = %v, want None", got)
	}
}
