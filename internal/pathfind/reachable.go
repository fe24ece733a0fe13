package pathfind

import (
	"fmt"
	"sort"

	"github.com/samdwyer/overmap/internal/grid"
)

// ReachablePositions returns every walkable cell whose cheapest route
// from start costs at most maxDistance, start included. Results are
// ordered row by row so repeated calls compare cleanly.
func (p *Pathfinder) ReachablePositions(start grid.Point, maxDistance float64) ([]grid.Point, error) {
	if !p.obstacles.InBounds(start) {
		return nil, fmt.Errorf("%w: start (%d,%d)", ErrOutOfBounds, start.X, start.Y)
	}
	if p.obstacles.Blocked(start) || maxDistance < 0 {
		return []grid.Point{}, nil
	}

	// Dijkstra with the budget as the cutoff: the priority is the
	// accumulated cost, so once a popped node exceeds it, all later
	// nodes do too.
	open := newFrontier()
	open.push(start, 0, 0)
	cost := map[grid.Point]float64{start: 0}
	settled := map[grid.Point]bool{}

	var steps []step
	for !open.empty() {
		current := open.pop()
		if current.g > maxDistance {
			break
		}
		settled[current.pos] = true

		steps = p.neighbors(current.pos, steps)
		for _, next := range steps {
			if settled[next.pos] || p.obstacles.Blocked(next.pos) {
				continue
			}
			tentative := current.g + next.cost*p.enterCost(next.pos)
			if tentative > maxDistance {
				continue
			}
			if previous, seen := cost[next.pos]; seen && tentative >= previous {
				continue
			}
			cost[next.pos] = tentative
			if node, waiting := open.get(next.pos); waiting {
				open.update(node, tentative, tentative)
			} else {
				open.push(next.pos, tentative, tentative)
			}
		}
	}

	reachable := make([]grid.Point, 0, len(settled))
	for pos := range settled {
		reachable = append(reachable, pos)
	}
	sort.Slice(reachable, func(i, j int) bool {
		if reachable[i].Y != reachable[j].Y {
			return reachable[i].Y < reachable[j].Y
		}
		return reachable[i].X < reachable[j].X
	})
	return reachable, nil
}
