package a11y

import "fmt"

// Rect is a rectangle in screen coordinates.
type Rect struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// NewRect is a convenience constructor.
func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// MidX returns the horizontal midpoint.
func (r Rect) MidX() float64 {
	return float64(r.X) + float64(r.Width)/2
}

// MidY returns the vertical midpoint.
func (r Rect) MidY() float64 {
	return float64(r.Y) + float64(r.Height)/2
}

// IsZero reports whether r is the zero sentinel.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// HasZeroArea reports whether r is degenerate in at least one dimension,
// e.g. the extents of an empty caret position.
func (r Rect) HasZeroArea() bool {
	return r.Width == 0 || r.Height == 0
}

// Contains reports whether other lies completely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Union returns the smallest rectangle containing both r and other. A zero
// rectangle is treated as the identity.
func (r Rect) Union(other Rect) Rect {
	if r.IsZero() {
		return other
	}
	if other.IsZero() {
		return r
	}
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  max(r.Right(), other.Right()) - x,
		Height: max(r.Bottom(), other.Bottom()) - y,
	}
}

// String returns a debug representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d, %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Visible reports whether any portion of a is inside b. Degenerate
// rectangles are handled explicitly: a zero-height rectangle is visible when
// it overlaps b horizontally and its y lies in b's vertical span, a
// zero-width rectangle when it overlaps vertically and its x lies in b's
// horizontal span.
func Visible(a, b Rect) bool {
	highestBottom := min(a.Bottom(), b.Bottom())
	lowestTop := max(a.Y, b.Y)
	leftMostRightEdge := min(a.Right(), b.Right())
	rightMostLeftEdge := max(a.X, b.X)

	if lowestTop < highestBottom && rightMostLeftEdge < leftMostRightEdge {
		return true
	}

	switch {
	case a.Height == 0 && a.Width == 0:
		return a.X >= b.X && a.X <= b.Right() && a.Y >= b.Y && a.Y <= b.Bottom()
	case a.Height == 0:
		return rightMostLeftEdge < leftMostRightEdge && a.Y >= b.Y && a.Y <= b.Bottom()
	case a.Width == 0:
		return lowestTop < highestBottom && a.X >= b.X && a.X <= b.Right()
	}
	return false
}

// Clip clips a by b. The result may have zero area but never a negative
// width or height.
func Clip(a, b Rect) Rect {
	x := max(a.X, b.X)
	x2 := min(a.Right(), b.Right())
	y := max(a.Y, b.Y)
	y2 := min(a.Bottom(), b.Bottom())
	return Rect{X: x, Y: y, Width: max(0, x2-x), Height: max(0, y2-y)}
}
