package pathfind

import (
	"math"

	"github.com/samdwyer/overmap/internal/grid"
)

// Heuristic estimates the remaining cost from a to b. Estimates must
// never exceed the true cost or the search stops being optimal.
type Heuristic func(a, b grid.Point) float64

// ManhattanDistance is the default heuristic for 4-directional movement.
func ManhattanDistance(a, b grid.Point) float64 {
	return float64(grid.Manhattan(a, b))
}

// ChebyshevDistance is the default heuristic once diagonal movement is
// enabled: a diagonal step closes distance on both axes at once.
func ChebyshevDistance(a, b grid.Point) float64 {
	return float64(grid.Chebyshev(a, b))
}

// EuclideanDistance is an admissible heuristic for any movement model.
func EuclideanDistance(a, b grid.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
