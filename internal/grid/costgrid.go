package grid

import "errors"

// ErrInvalidCost reports a movement cost that is zero or negative.
var ErrInvalidCost = errors.New("grid: movement cost must be positive")

// CostGrid assigns a movement cost to every cell of a grid. The cost
// is charged when a search enters the cell; unset cells cost 1.
type CostGrid struct {
	width  int
	height int
	cells  [][]float64
}

// NewCostGrid creates a cost grid with every cell at the default cost of 1.
func NewCostGrid(width, height int) (*CostGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	cells := make([][]float64, height)
	for y := range cells {
		cells[y] = make([]float64, width)
		for x := range cells[y] {
			cells[y][x] = 1
		}
	}
	return &CostGrid{width: width, height: height, cells: cells}, nil
}

// Width returns the grid width in tiles.
func (c *CostGrid) Width() int {
	return c.width
}

// Height returns the grid height in tiles.
func (c *CostGrid) Height() int {
	return c.height
}

// Cost returns the cost of entering the cell. Out-of-bounds cells
// report the default cost of 1; bounds checking belongs to the caller.
func (c *CostGrid) Cost(p Point) float64 {
	if p.X < 0 || p.X >= c.width || p.Y < 0 || p.Y >= c.height {
		return 1
	}
	return c.cells[p.Y][p.X]
}

// SetCost assigns the cost of entering a single cell.
func (c *CostGrid) SetCost(p Point, cost float64) error {
	if cost <= 0 {
		return ErrInvalidCost
	}
	if p.X < 0 || p.X >= c.width || p.Y < 0 || p.Y >= c.height {
		return nil
	}
	c.cells[p.Y][p.X] = cost
	return nil
}

// SetRect assigns the cost for every cell covered by the rectangle,
// clipped to the grid bounds.
func (c *CostGrid) SetRect(r Rect, cost float64) error {
	if cost <= 0 {
		return ErrInvalidCost
	}
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			_ = c.SetCost(Point{X: x, Y: y}, cost)
		}
	}
	return nil
}
