package grid

// Rect is an axis-aligned rectangle of tiles. X and Y address the
// top-left corner; Width and Height count tiles, so the right and
// bottom edges are exclusive.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRect builds a rectangle from a corner and dimensions.
func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Center returns the center tile of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the number of tiles covered by the rectangle.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Contains returns true if the given point is inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// ContainsRect returns true if other lies entirely inside this rectangle.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Right() <= r.Right() &&
		other.Y >= r.Y && other.Bottom() <= r.Bottom()
}

// Intersects returns true if this rectangle overlaps with another.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.Right() &&
		r.Right() > other.X &&
		r.Y < other.Bottom() &&
		r.Bottom() > other.Y
}
