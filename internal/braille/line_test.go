package braille

import (
	"reflect"
	"testing"
)

func TestComputeRanges(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		focusOffset int
		width       int
		want        []Range
	}{
		{
			name:        "two words",
			text:        "Hello world",
			focusOffset: -1,
			width:       10,
			want:        []Range{{0, 6}, {6, 11}},
		},
		{
			name:        "chunked word",
			text:        "abcdefghijk",
			focusOffset: -1,
			width:       4,
			want:        []Range{{0, 4}, {4, 8}, {8, 11}},
		},
		{
			name:        "focus boundary",
			text:        "abc def",
			focusOffset: 4,
			width:       10,
			want:        []Range{{0, 4}, {4, 7}},
		},
		{
			name:  "packs words",
			text:  "The quick brown fox jumps",
			width: 10,
			want:  []Range{{0, 10}, {10, 20}, {20, 25}},
		},
		{
			name:  "narrow display",
			text:  "The quick brown fox jumps",
			width: 8,
			want:  []Range{{0, 4}, {4, 10}, {10, 16}, {16, 20}, {20, 25}},
		},
		{
			name:  "long word is chunked",
			text:  "abcdefghijkl xy",
			width: 5,
			want:  []Range{{0, 5}, {5, 10}, {10, 13}, {13, 15}},
		},
		{
			name:        "focus starts a range",
			text:        "hello world",
			focusOffset: 3,
			width:       20,
			want:        []Range{{0, 3}, {3, 11}},
		},
		{
			name:        "focus at a word start",
			text:        "ab cd ef",
			focusOffset: 3,
			width:       20,
			want:        []Range{{0, 3}, {3, 8}},
		},
		{
			name:  "empty",
			text:  "",
			width: 10,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRanges(tt.text, tt.focusOffset, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ComputeRanges(%q, %d, %d) = %v, want %v",
					tt.text, tt.focusOffset, tt.width, got, tt.want)
			}
		})
	}
}

func TestComputeRangesCoverText(t *testing.T) {
	text := "Lorem ipsum dolor sit amet, consectetur adipiscing elit"
	for width := 1; width <= 20; width++ {
		ranges := ComputeRanges(text, -1, width)
		pos := 0
		for _, r := range ranges {
			if r.Start != pos {
				t.Fatalf("width %d: range %v starts at %d, want %d", width, r, r.Start, pos)
			}
			if r.Len() > width {
				t.Errorf("width %d: range %v longer than width", width, r)
			}
			pos = r.End
		}
		if pos != len(text) {
			t.Errorf("width %d: ranges end at %d, want %d", width, pos, len(text))
		}
	}
}

func TestLineInfo(t *testing.T) {
	a := NewRegion("ab", -1)
	b := NewRegion("cde", 1)
	line := NewLine(a, b)

	info := line.Info(b, RenderOptions{}, nil, 40)
	if info.Text != "abcde" {
		t.Errorf("Text = %q, want %q", info.Text, "abcde")
	}
	if info.FocusOffset != 2 {
		t.Errorf("FocusOffset = %d, want 2", info.FocusOffset)
	}
	if len(info.Mask) != 5 {
		t.Errorf("len(Mask) = %d, want 5", len(info.Mask))
	}

	info = line.Info(a, RenderOptions{}, nil, 40)
	if info.FocusOffset != 0 {
		t.Errorf("FocusOffset after focus change = %d, want 0", info.FocusOffset)
	}

	info = line.Info(NewRegion("x", 0), RenderOptions{}, nil, 40)
	if info.FocusOffset != -1 {
		t.Errorf("FocusOffset for foreign region = %d, want -1", info.FocusOffset)
	}
}

func TestLineInfoNoticesRegionChanges(t *testing.T) {
	r := NewRegion("hello", 0)
	line := NewLine(r)
	line.Info(r, RenderOptions{}, nil, 40)

	line.AddRegion(NewRegion(" there", -1))
	info := line.Info(r, RenderOptions{}, nil, 40)
	if info.Text != "hello there" {
		t.Errorf("Text = %q, want %q", info.Text, "hello there")
	}
}

func TestRegionAtOffset(t *testing.T) {
	a := NewRegion("ab", -1)
	b := NewRegion("cde", -1)
	line := NewLine(a, b)

	tests := []struct {
		name       string
		offset     int
		wantRegion *Region
		wantOffset int
	}{
		{"first", 1, a, 1},
		{"boundary", 2, b, 0},
		{"inside second", 4, b, 2},
		{"past end", 10, b, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, off := line.RegionAtOffset(tt.offset)
			if r != tt.wantRegion || off != tt.wantOffset {
				t.Errorf("RegionAtOffset(%d) = %q, %d, want %q, %d",
					tt.offset, r.String(), off, tt.wantRegion.String(), tt.wantOffset)
			}
		})
	}

	if r, off := NewLine().RegionAtOffset(0); r != nil || off != -1 {
		t.Errorf("empty line RegionAtOffset = %v, %d, want nil, -1", r, off)
	}
}
