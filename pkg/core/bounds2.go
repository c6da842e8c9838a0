package core

import "math"

// Bounds2 represents a 2D axis-aligned bounding rectangle
type Bounds2 struct {
	Min Vec2 // Minimum corner
	Max Vec2 // Maximum corner
}

// NewBounds2 creates a new Bounds2 from min and max points
func NewBounds2(min, max Vec2) Bounds2 {
	return Bounds2{Min: min, Max: max}
}

// EmptyBounds2 returns a degenerate rectangle that contains nothing.
// Taking the union with any point yields a rectangle containing just
// that point.
func EmptyBounds2() Bounds2 {
	return Bounds2{
		Min: Vec2{X: math.Inf(1), Y: math.Inf(1)},
		Max: Vec2{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty returns true if the rectangle contains no points
func (b Bounds2) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

// UnionPoint returns a rectangle that bounds both this rectangle and the point
func (b Bounds2) UnionPoint(p Vec2) Bounds2 {
	return Bounds2{
		Min: Vec2{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y)},
		Max: Vec2{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y)},
	}
}

// Union returns a rectangle that bounds both this rectangle and another
func (b Bounds2) Union(other Bounds2) Bounds2 {
	return Bounds2{
		Min: Vec2{X: math.Min(b.Min.X, other.Min.X), Y: math.Min(b.Min.Y, other.Min.Y)},
		Max: Vec2{X: math.Max(b.Max.X, other.Max.X), Y: math.Max(b.Max.Y, other.Max.Y)},
	}
}

// Inside returns true if the point lies within the rectangle
func (b Bounds2) Inside(p Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// InsideExclusive returns true if the point lies within the rectangle,
// excluding the max edges. Used where the rectangle is divided into cells
// and the max edge belongs to no cell.
func (b Bounds2) InsideExclusive(p Vec2) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y
}

// Contains returns true if the other rectangle lies entirely within this one
func (b Bounds2) Contains(other Bounds2) bool {
	return other.Min.X >= b.Min.X && other.Max.X <= b.Max.X &&
		other.Min.Y >= b.Min.Y && other.Max.Y <= b.Max.Y
}

// Diagonal returns the vector from the minimum to the maximum corner
func (b Bounds2) Diagonal() Vec2 {
	return b.Max.Subtract(b.Min)
}

// Area returns the area of the rectangle
func (b Bounds2) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	d := b.Diagonal()
	return d.X * d.Y
}

// Lerp linearly interpolates between the corners of the rectangle,
// mapping (0,0) to the minimum corner and (1,1) to the maximum
func (b Bounds2) Lerp(t Vec2) Vec2 {
	return Vec2{
		X: Lerp(t.X, b.Min.X, b.Max.X),
		Y: Lerp(t.Y, b.Min.Y, b.Max.Y),
	}
}

// Offset returns the position of a point relative to the corners, the
// inverse of Lerp: the minimum corner maps to (0,0), the maximum to (1,1)
func (b Bounds2) Offset(p Vec2) Vec2 {
	o := p.Subtract(b.Min)
	if b.Max.X > b.Min.X {
		o.X /= b.Max.X - b.Min.X
	}
	if b.Max.Y > b.Min.Y {
		o.Y /= b.Max.Y - b.Min.Y
	}
	return o
}

// Expand returns a rectangle expanded by the given amount in all directions
func (b Bounds2) Expand(amount float64) Bounds2 {
	expansion := NewVec2(amount, amount)
	return Bounds2{
		Min: b.Min.Subtract(expansion),
		Max: b.Max.Add(expansion),
	}
}

// Lerp linearly interpolates between a and b by t
func Lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}
