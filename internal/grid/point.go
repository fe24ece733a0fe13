// Package grid provides the geometric primitives shared by the map
// generation pipeline: points, rectangles, and 2D obstacle/cost grids.
package grid

// Point is a single cell position on a tile grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Manhattan returns the axis-aligned step distance between two points.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns the distance between two points when diagonal
// steps count the same as axis-aligned ones.
func Chebyshev(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// abs returns the absolute value of x.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
