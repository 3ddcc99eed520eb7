package measure

import "math"

// Rect is the bounding geometry of a rendered element in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a position in page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (r Rect) Top() float64    { return r.Y }
func (r Rect) Left() float64   { return r.X }
func (r Rect) Bottom() float64 { return r.Y + r.Height }
func (r Rect) Right() float64  { return r.X + r.Width }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Within reports whether a and b differ by at most tol. Sub-pixel rendering
// noise makes exact comparison of layout values meaningless.
func Within(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Offset is the signed distance from one point to another.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// CentersAligned compares the centers of a and b on both axes.
func CentersAligned(a, b Rect, tol float64) (Offset, bool) {
	ca, cb := a.Center(), b.Center()
	off := Offset{DX: ca.X - cb.X, DY: ca.Y - cb.Y}
	return off, Within(ca.X, cb.X, tol) && Within(ca.Y, cb.Y, tol)
}

// VerticallyAligned compares only the vertical centers of a and b.
func VerticallyAligned(a, b Rect, tol float64) (float64, bool) {
	dy := a.Center().Y - b.Center().Y
	return dy, math.Abs(dy) <= tol
}
