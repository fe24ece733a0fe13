package pathfind

import (
	"fmt"
	"math"

	"github.com/samdwyer/overmap/internal/grid"
)

// OptimizePath strips waypoints that a straight walk already covers.
// From each kept point it jumps to the farthest later point with clear
// line of sight, so long straight runs collapse to their endpoints.
// The first and last points always survive.
func (p *Pathfinder) OptimizePath(path []grid.Point) ([]grid.Point, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if err := p.checkPathCells(path); err != nil {
		return nil, err
	}
	if len(path) <= 2 {
		out := make([]grid.Point, len(path))
		copy(out, path)
		return out, nil
	}

	optimized := []grid.Point{path[0]}
	anchor := 0
	for anchor < len(path)-1 {
		farthest := anchor + 1
		for j := len(path) - 1; j > anchor+1; j-- {
			if p.lineOfSight(path[anchor], path[j]) {
				farthest = j
				break
			}
		}
		optimized = append(optimized, path[farthest])
		anchor = farthest
	}
	return optimized, nil
}

// CalculatePathCost sums the cost of walking a path. Each segment is
// expanded to unit steps, and every step charges the entered cell's
// cost, scaled by √2 for diagonal steps. The starting cell itself is
// free.
func (p *Pathfinder) CalculatePathCost(path []grid.Point) (float64, error) {
	if len(path) == 0 {
		return 0, ErrEmptyPath
	}
	if err := p.checkPathCells(path); err != nil {
		return 0, err
	}

	total := 0.0
	for i := 0; i < len(path)-1; i++ {
		line := linePoints(path[i], path[i+1])
		for j := 1; j < len(line); j++ {
			stepCost := 1.0
			if line[j].X != line[j-1].X && line[j].Y != line[j-1].Y {
				stepCost = math.Sqrt2
			}
			total += stepCost * p.enterCost(line[j])
		}
	}
	return total, nil
}

func (p *Pathfinder) checkPathCells(path []grid.Point) error {
	for _, pos := range path {
		if !p.obstacles.InBounds(pos) {
			return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, pos.X, pos.Y)
		}
		if p.obstacles.Blocked(pos) {
			return fmt.Errorf("%w: (%d,%d)", ErrBlockedPath, pos.X, pos.Y)
		}
	}
	return nil
}

// lineOfSight reports whether every cell on the straight line between
// two points is walkable.
func (p *Pathfinder) lineOfSight(a, b grid.Point) bool {
	for _, pos := range linePoints(a, b) {
		if p.obstacles.Blocked(pos) {
			return false
		}
	}
	return true
}

// linePoints rasterizes the segment from a to b with Bresenham's
// algorithm, including both endpoints.
func linePoints(a, b grid.Point) []grid.Point {
	points := []grid.Point{}

	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}

	x, y := a.X, a.Y
	err := dx - dy
	for {
		points = append(points, grid.Point{X: x, Y: y})
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
	return points
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
