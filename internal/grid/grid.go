package grid

import "errors"

// ErrInvalidDimensions reports a grid constructed with a non-positive size.
var ErrInvalidDimensions = errors.New("grid: width and height must be positive")

// Grid is a 2D obstacle grid. Cells are either blocked or walkable;
// everything outside the grid counts as blocked.
type Grid struct {
	width  int
	height int
	cells  [][]bool
}

// NewGrid creates a fully walkable grid of the given dimensions.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	cells := make([][]bool, height)
	for y := range cells {
		cells[y] = make([]bool, width)
	}
	return &Grid{width: width, height: height, cells: cells}, nil
}

// Width returns the grid width in tiles.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the grid height in tiles.
func (g *Grid) Height() int {
	return g.height
}

// InBounds returns true if the point lies inside the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Blocked returns true if the cell is an obstacle. Out-of-bounds cells
// are always blocked.
func (g *Grid) Blocked(p Point) bool {
	if !g.InBounds(p) {
		return true
	}
	return g.cells[p.Y][p.X]
}

// SetBlocked marks a single cell as blocked or walkable. Out-of-bounds
// points are ignored.
func (g *Grid) SetBlocked(p Point, blocked bool) {
	if !g.InBounds(p) {
		return
	}
	g.cells[p.Y][p.X] = blocked
}

// BlockRect marks every cell covered by the rectangle as blocked,
// clipped to the grid bounds.
func (g *Grid) BlockRect(r Rect) {
	g.fillRect(r, true)
}

// ClearRect marks every cell covered by the rectangle as walkable,
// clipped to the grid bounds.
func (g *Grid) ClearRect(r Rect) {
	g.fillRect(r, false)
}

func (g *Grid) fillRect(r Rect, blocked bool) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			g.SetBlocked(Point{X: x, Y: y}, blocked)
		}
	}
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	copied, _ := NewGrid(g.width, g.height)
	for y := 0; y < g.height; y++ {
		copy(copied.cells[y], g.cells[y])
	}
	return copied
}
