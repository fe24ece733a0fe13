package pathfind

import "time"

// Stats is a snapshot of a pathfinder's running performance counters.
// Counters are per-instance; independent maps use independent pathfinders.
type Stats struct {
	Calls          int           // FindPath and PathExists invocations
	PathsFound     int           // searches that reached the goal
	SearchesFailed int           // searches that exhausted the frontier
	AvgDuration    time.Duration // mean wall time per call
	AvgPathLength  float64       // mean tile count of successful FindPath results
}

// Stats returns the counters accumulated since construction or the
// last reset.
func (p *Pathfinder) Stats() Stats {
	s := Stats{
		Calls:          p.calls,
		PathsFound:     p.found,
		SearchesFailed: p.failed,
	}
	if p.calls > 0 {
		s.AvgDuration = p.totalDuration / time.Duration(p.calls)
	}
	if p.pathsMeasured > 0 {
		s.AvgPathLength = float64(p.totalPathTiles) / float64(p.pathsMeasured)
	}
	return s
}

// ResetStats zeroes all performance counters.
func (p *Pathfinder) ResetStats() {
	p.calls = 0
	p.found = 0
	p.failed = 0
	p.totalDuration = 0
	p.totalPathTiles = 0
	p.pathsMeasured = 0
}
