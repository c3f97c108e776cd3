package dnd

import "fmt"

// Point is a pointer offset in layout coordinates.
type Point struct {
	X, Y float64
}

// Pt creates a point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rect is a rendered block rectangle.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewRect creates a rectangle from position and size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the right edge (exclusive).
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the bottom edge (exclusive).
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if pt is within the rectangle.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.X && pt.X < r.Right() &&
		pt.Y >= r.Y && pt.Y < r.Bottom()
}

// VerticalDistance returns how far pt lies above or below the rectangle;
// zero when it is within the vertical span.
func (r Rect) VerticalDistance(pt Point) float64 {
	switch {
	case pt.Y < r.Y:
		return r.Y - pt.Y
	case pt.Y >= r.Bottom():
		return pt.Y - r.Bottom()
	}
	return 0
}

// Fraction returns pt's position relative to the rectangle, each axis
// clamped to [0, 1].
func (r Rect) Fraction(pt Point) (fx, fy float64) {
	return clamp01((pt.X - r.X) / r.Width), clamp01((pt.Y - r.Y) / r.Height)
}

// Equals returns true if two rectangles are identical.
func (r Rect) Equals(other Rect) bool {
	return r == other
}

// String formats the rectangle as x,y wxh.
func (r Rect) String() string {
	return fmt.Sprintf("%g,%g %gx%g", r.X, r.Y, r.Width, r.Height)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
