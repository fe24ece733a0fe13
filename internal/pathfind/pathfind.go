// Package pathfind implements A* search over a 2D obstacle grid with a
// pluggable heuristic and optional per-cell movement costs.
package pathfind

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/samdwyer/overmap/internal/grid"
)

var (
	// ErrNoObstacleGrid reports a pathfinder constructed without a grid.
	ErrNoObstacleGrid = errors.New("pathfind: obstacle grid is required")
	// ErrOutOfBounds reports a search position outside the grid.
	ErrOutOfBounds = errors.New("pathfind: position outside grid bounds")
	// ErrGridMismatch reports a cost grid whose size differs from the obstacle grid.
	ErrGridMismatch = errors.New("pathfind: cost grid dimensions differ from obstacle grid")
	// ErrEmptyPath reports a nil or zero-length path argument.
	ErrEmptyPath = errors.New("pathfind: path must not be empty")
	// ErrBlockedPath reports a path argument that crosses an obstacle cell.
	ErrBlockedPath = errors.New("pathfind: path crosses an obstacle cell")
)

// step is a candidate move out of a cell together with its base cost.
type step struct {
	pos  grid.Point
	cost float64
}

var (
	cardinalDirs = []grid.Point{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	diagonalDirs = []grid.Point{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)

// Pathfinder runs shortest-path searches over one obstacle grid.
// It is single-threaded; generate independent maps with independent
// pathfinder instances.
type Pathfinder struct {
	obstacles *grid.Grid
	costs     *grid.CostGrid
	heuristic Heuristic // nil selects the movement-model default
	diagonal  bool
	observer  Observer

	calls          int
	found          int
	failed         int
	totalDuration  time.Duration
	totalPathTiles int
	pathsMeasured  int
}

// New creates a pathfinder over the given obstacle grid.
func New(obstacles *grid.Grid) (*Pathfinder, error) {
	if obstacles == nil {
		return nil, ErrNoObstacleGrid
	}
	return &Pathfinder{obstacles: obstacles, observer: noopObserver{}}, nil
}

// SetHeuristic overrides the distance estimate. Passing nil restores
// the default: Manhattan for 4-directional movement, Chebyshev once
// diagonal movement is enabled.
func (p *Pathfinder) SetHeuristic(h Heuristic) {
	p.heuristic = h
}

// SetDiagonalMovement toggles 8-directional neighbor expansion.
// Diagonal steps cost √2 and never cut corners past blocked cells.
func (p *Pathfinder) SetDiagonalMovement(enabled bool) {
	p.diagonal = enabled
}

// SetCostGrid attaches per-cell movement costs. Passing nil restores
// the uniform cost of 1 per step.
func (p *Pathfinder) SetCostGrid(costs *grid.CostGrid) error {
	if costs != nil && (costs.Width() != p.obstacles.Width() || costs.Height() != p.obstacles.Height()) {
		return ErrGridMismatch
	}
	p.costs = costs
	return nil
}

// SetObserver installs a search lifecycle observer. Passing nil
// restores the silent default.
func (p *Pathfinder) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	p.observer = o
}

// FindPath returns the cheapest tile path from start to end, both
// inclusive. A start equal to end yields a one-element path. An
// unreachable end yields an empty path and no error; only malformed
// input is an error.
func (p *Pathfinder) FindPath(start, end grid.Point) ([]grid.Point, error) {
	if !p.obstacles.InBounds(start) || !p.obstacles.InBounds(end) {
		return nil, fmt.Errorf("%w: start (%d,%d) end (%d,%d)", ErrOutOfBounds, start.X, start.Y, end.X, end.Y)
	}

	began := time.Now()
	p.calls++
	p.observer.SearchStarted(start, end)

	if start == end {
		path := []grid.Point{start}
		p.recordFound(path, time.Since(began))
		p.observer.SearchCompleted(start, end, path)
		return path, nil
	}

	path, ok := p.runSearch(start, end, true)
	elapsed := time.Since(began)
	if !ok {
		p.failed++
		p.totalDuration += elapsed
		p.observer.SearchFailed(start, end, "no route between start and end")
		return []grid.Point{}, nil
	}

	p.recordFound(path, elapsed)
	p.observer.SearchCompleted(start, end, path)
	return path, nil
}

// PathExists reports whether any route connects start and end. It runs
// the same search but stops at the first sighting of the goal and
// skips path reconstruction.
func (p *Pathfinder) PathExists(start, end grid.Point) (bool, error) {
	if !p.obstacles.InBounds(start) || !p.obstacles.InBounds(end) {
		return false, fmt.Errorf("%w: start (%d,%d) end (%d,%d)", ErrOutOfBounds, start.X, start.Y, end.X, end.Y)
	}

	began := time.Now()
	p.calls++

	if start == end {
		p.found++
		p.totalDuration += time.Since(began)
		return true, nil
	}

	_, ok := p.runSearch(start, end, false)
	p.totalDuration += time.Since(began)
	if ok {
		p.found++
	} else {
		p.failed++
	}
	return ok, nil
}

func (p *Pathfinder) recordFound(path []grid.Point, elapsed time.Duration) {
	p.found++
	p.totalDuration += elapsed
	p.totalPathTiles += len(path)
	p.pathsMeasured++
}

// runSearch performs the A* loop. With wantPath false it answers
// reachability only and exits as soon as the goal enters the frontier.
func (p *Pathfinder) runSearch(start, end grid.Point, wantPath bool) ([]grid.Point, bool) {
	if p.obstacles.Blocked(start) || p.obstacles.Blocked(end) {
		return nil, false
	}

	h := p.effectiveHeuristic()
	open := newFrontier()
	closed := mapset.New[grid.Point]()
	gScore := map[grid.Point]float64{start: 0}
	var cameFrom map[grid.Point]grid.Point
	if wantPath {
		cameFrom = make(map[grid.Point]grid.Point)
	}

	open.push(start, 0, h(start, end))

	var steps []step
	for !open.empty() {
		current := open.pop()
		if current.pos == end {
			if !wantPath {
				return nil, true
			}
			return reconstructPath(cameFrom, end), true
		}
		closed.Put(current.pos)

		steps = p.neighbors(current.pos, steps)
		for _, next := range steps {
			if closed.Has(next.pos) || p.obstacles.Blocked(next.pos) {
				continue
			}
			if !wantPath && next.pos == end {
				return nil, true
			}

			tentative := gScore[current.pos] + next.cost*p.enterCost(next.pos)
			if previous, seen := gScore[next.pos]; seen && tentative >= previous {
				continue
			}

			gScore[next.pos] = tentative
			if wantPath {
				cameFrom[next.pos] = current.pos
			}
			score := tentative + h(next.pos, end)
			if node, waiting := open.get(next.pos); waiting {
				open.update(node, tentative, score)
			} else {
				open.push(next.pos, tentative, score)
			}
		}
	}
	return nil, false
}

// neighbors appends the legal moves out of a cell to buf and returns it.
func (p *Pathfinder) neighbors(from grid.Point, buf []step) []step {
	buf = buf[:0]
	for _, d := range cardinalDirs {
		buf = append(buf, step{pos: grid.Point{X: from.X + d.X, Y: from.Y + d.Y}, cost: 1})
	}
	if !p.diagonal {
		return buf
	}
	for _, d := range diagonalDirs {
		// Both flanking cardinal cells must be walkable so the move
		// cannot squeeze between two blocked corners.
		sideA := grid.Point{X: from.X + d.X, Y: from.Y}
		sideB := grid.Point{X: from.X, Y: from.Y + d.Y}
		if p.obstacles.Blocked(sideA) || p.obstacles.Blocked(sideB) {
			continue
		}
		buf = append(buf, step{pos: grid.Point{X: from.X + d.X, Y: from.Y + d.Y}, cost: math.Sqrt2})
	}
	return buf
}

func (p *Pathfinder) effectiveHeuristic() Heuristic {
	if p.heuristic != nil {
		return p.heuristic
	}
	if p.diagonal {
		return ChebyshevDistance
	}
	return ManhattanDistance
}

// enterCost returns the cost charged for stepping into a cell.
func (p *Pathfinder) enterCost(pos grid.Point) float64 {
	if p.costs == nil {
		return 1
	}
	return p.costs.Cost(pos)
}

// reconstructPath walks the parent chain back from the goal and
// reverses it so the result runs start to end.
func reconstructPath(cameFrom map[grid.Point]grid.Point, end grid.Point) []grid.Point {
	path := []grid.Point{end}
	current := end
	for {
		previous, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, previous)
		current = previous
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
