package contraction

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/muurk/brlreview/internal/braille"
)

func mustNew(t *testing.T) *TableTranslator {
	t.Helper()
	tr, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr
}

func TestBuiltinTables(t *testing.T) {
	tr := mustNew(t)
	got := tr.Tables()
	want := []string{"en-us-g1", "en-us-g2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tables() = %v, want %v", got, want)
	}
}

func TestTranslate(t *testing.T) {
	tr := mustNew(t)

	tests := []struct {
		name  string
		table string
		text  string
		want  string
	}{
		{"word signs", "en-us-g2", "The cat and the dog", ",! cat & ! dog"},
		{"group at end", "en-us-g2", "sing", "s+"},
		{"longest group first", "en-us-g2", "Thinking", ",?9k+"},
		{"numbers", "en-us-g2", "room 42", "room #db"},
		{"capital letter", "en-us-g2", "Hello", ",hello"},
		{"punctuation kept", "en-us-g2", "so, but", "s, b"},
		{"uncontracted", "en-us-g1", "The 3 cats", ",the #c cats"},
		{"empty", "en-us-g2", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.Translate(tt.table, tt.text, -1)
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if got.Text != tt.want {
				t.Errorf("Translate(%q) = %q, want %q", tt.text, got.Text, tt.want)
			}
			if len(got.InPos) != len([]rune(tt.text)) {
				t.Errorf("len(InPos) = %d, want %d", len(got.InPos), len([]rune(tt.text)))
			}
			if len(got.OutPos) != len([]rune(got.Text)) {
				t.Errorf("len(OutPos) = %d, want %d", len(got.OutPos), len([]rune(got.Text)))
			}
		})
	}
}

func TestTranslateCursor(t *testing.T) {
	tr := mustNew(t)

	tests := []struct {
		name   string
		cursor int
		want   int
	}{
		{"none", -1, -1},
		{"before contraction", 2, 2},
		{"inside contraction", 6, 5},
		{"after contraction", 9, 7},
		{"end of text", 13, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.Translate("en-us-g2", "cats and dogs", tt.cursor)
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if got.Cursor != tt.want {
				t.Errorf("Cursor = %d, want %d", got.Cursor, tt.want)
			}
		})
	}
}

func TestTranslateUnknownTable(t *testing.T) {
	tr := mustNew(t)
	_, err := tr.Translate("xx-none", "text", -1)
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("Translate() error = %v, want ErrUnknownTable", err)
	}
}

func TestContractionIsStable(t *testing.T) {
	tr := mustNew(t)
	texts := []string{
		"The quick brown fox jumps over the lazy dog.",
		"Shall we go out with them for 25 minutes?",
		"Knowledge is Power; THAT is which it was.",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			first, err := tr.Translate("en-us-g2", text, -1)
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}

			expanded := Expand(text, first, 0, len(first.OutPos))
			if expanded != text {
				t.Errorf("Expand() = %q, want %q", expanded, text)
			}

			second, err := tr.Translate("en-us-g2", expanded, -1)
			if err != nil {
				t.Fatalf("second Translate() error = %v", err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Errorf("re-contraction = %+v, want %+v", second, first)
			}

			for i, p := range first.InPos {
				if i > 0 && p < first.InPos[i-1] {
					t.Fatalf("InPos not monotonic at %d: %v", i, first.InPos)
				}
				if p < len(first.OutPos) && first.OutPos[p] > i {
					t.Errorf("OutPos[InPos[%d]] = %d, want <= %d", i, first.OutPos[p], i)
				}
			}
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	table := "name: test-g2\nwords:\n  hello: hi\n"
	if err := os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(table), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tr := mustNew(t)
	if err := tr.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	got, err := tr.Translate("test-g2", "hello world", -1)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got.Text != "hi world" {
		t.Errorf("Text = %q, want %q", got.Text, "hi world")
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no name", "words:\n  and: '&'\n"},
		{"bad word", "name: x\nwords:\n  a b: c\n"},
		{"empty sign", "name: x\ngroups:\n  ch: ''\n"},
		{"not yaml", "name: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTable([]byte(tt.data)); err == nil {
				t.Error("ParseTable() error = nil, want error")
			}
		})
	}
}

func TestRegionWithTableTranslator(t *testing.T) {
	tr := mustNew(t)
	r := braille.NewRegion("The cat and the dog", 8)
	r.Render(braille.RenderOptions{Contracted: true, Table: "en-us-g2"}, tr)

	if got := r.String(); got != ",! cat & ! dog" {
		t.Errorf("String() = %q, want %q", got, ",! cat & ! dog")
	}
	if len(r.AttributeMask()) != len([]rune(r.String())) {
		t.Errorf("len(AttributeMask()) = %d, want %d", len(r.AttributeMask()), len([]rune(r.String())))
	}
	if got := r.CursorOffset(); got != 7 {
		t.Errorf("CursorOffset() = %d, want 7", got)
	}
}
