// Package corridor validates corridor geometry and synthesizes the
// corridors that connect partitioned rooms.
package corridor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samdwyer/overmap/internal/grid"
	"github.com/samdwyer/overmap/internal/world"
)

const (
	// MinWidth is the hard floor for corridor width.
	MinWidth = 1
	// MaxWidth is the hard ceiling for corridor width.
	MaxWidth = 5
	// RecommendedMinWidth is the soft floor below which traversal gets
	// uncomfortably tight.
	RecommendedMinWidth = 2
)

// Sizing thresholds for OptimalWidth, in tiles.
const (
	smallMapArea  = 2000
	largeMapArea  = 10000
	smallRoomArea = 30
	largeRoomArea = 80
)

// Result collects validation findings. Errors make the subject
// invalid; warnings flag questionable but usable geometry.
type Result struct {
	Errors   []string
	Warnings []string
}

// Valid returns true when no errors were recorded. Warnings do not
// affect validity.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) merge(prefix string, other Result) {
	for _, e := range other.Errors {
		r.Errors = append(r.Errors, prefix+": "+e)
	}
	for _, w := range other.Warnings {
		r.Warnings = append(r.Warnings, prefix+": "+w)
	}
}

// Validator runs geometric and statistical checks on corridors. It
// never mutates what it checks.
type Validator struct {
	diagonal bool
}

// NewValidator creates a validator for the given movement model.
// Diagonal movement loosens the continuity check to single diagonal
// steps and raises the recommended width floor.
func NewValidator(diagonalMovement bool) *Validator {
	return &Validator{diagonal: diagonalMovement}
}

// ValidateWidth checks a corridor width against the hard and soft limits.
func (v *Validator) ValidateWidth(width int) Result {
	var res Result
	if width < MinWidth {
		res.errorf("width %d below minimum %d", width, MinWidth)
		return res
	}
	if width > MaxWidth {
		res.errorf("width %d above maximum %d", width, MaxWidth)
		return res
	}
	if width < RecommendedMinWidth {
		res.warnf("width %d below recommended minimum %d", width, RecommendedMinWidth)
	}
	return res
}

// ValidatePath checks that a path exists, stays inside the grid, and
// never enters an obstacle cell. The width is checked alongside.
func (v *Validator) ValidatePath(path []grid.Point, width int, obstacles *grid.Grid) Result {
	res := v.ValidateWidth(width)
	if obstacles == nil {
		res.errorf("obstacle grid is required")
		return res
	}
	if len(path) == 0 {
		res.errorf("path is empty")
		return res
	}
	for i, pos := range path {
		if !obstacles.InBounds(pos) {
			res.errorf("tile %d at (%d,%d) outside grid bounds", i, pos.X, pos.Y)
			continue
		}
		if obstacles.Blocked(pos) {
			res.errorf("tile %d at (%d,%d) is an obstacle", i, pos.X, pos.Y)
		}
	}
	return res
}

// ValidateContinuity checks that consecutive path cells are exactly one
// step apart under the validator's movement model.
func (v *Validator) ValidateContinuity(path []grid.Point) Result {
	var res Result
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		if v.diagonal {
			if grid.Chebyshev(prev, cur) == 1 {
				continue
			}
		} else if grid.Manhattan(prev, cur) == 1 {
			continue
		}
		res.errorf("gap between tile %d (%d,%d) and tile %d (%d,%d)",
			i-1, prev.X, prev.Y, i, cur.X, cur.Y)
	}
	return res
}

// ValidateCorridor runs every check over a corridor's stored geometry.
// It additionally warns when the path's endpoints drift away from the
// anchor points of the rooms the corridor claims to connect.
func (v *Validator) ValidateCorridor(c world.CorridorData, rooms []world.RoomData, obstacles *grid.Grid) Result {
	res := v.ValidatePath(c.Path, c.Width, obstacles)
	res.merge("continuity", v.ValidateContinuity(c.Path))

	start, startOK := roomByID(rooms, c.StartRoomID)
	if !startOK {
		res.errorf("start room %d does not exist", c.StartRoomID)
	}
	end, endOK := roomByID(rooms, c.EndRoomID)
	if !endOK {
		res.errorf("end room %d does not exist", c.EndRoomID)
	}
	if len(c.Path) == 0 {
		return res
	}

	if startOK && c.Path[0] != start.Bounds.Center() {
		res.warnf("path starts at (%d,%d), room %d anchor is (%d,%d)",
			c.Path[0].X, c.Path[0].Y, c.StartRoomID, start.Bounds.Center().X, start.Bounds.Center().Y)
	}
	last := c.Path[len(c.Path)-1]
	if endOK && last != end.Bounds.Center() {
		res.warnf("path ends at (%d,%d), room %d anchor is (%d,%d)",
			last.X, last.Y, c.EndRoomID, end.Bounds.Center().X, end.Bounds.Center().Y)
	}
	return res
}

// ValidateCollection validates every corridor and the collection-level
// rules: an empty collection is a warning, and mixed widths are a
// warning unless variable widths were asked for.
func (v *Validator) ValidateCollection(corridors []world.CorridorData, rooms []world.RoomData, obstacles *grid.Grid, allowVariableWidth bool) Result {
	var res Result
	if len(corridors) == 0 {
		res.warnf("no corridors to validate")
		return res
	}

	widths := make(map[int]bool)
	for _, c := range corridors {
		res.merge(fmt.Sprintf("corridor %d", c.ID), v.ValidateCorridor(c, rooms, obstacles))
		widths[c.Width] = true
	}
	if !allowVariableWidth && len(widths) > 1 {
		res.warnf("collection mixes %d distinct widths but variable widths are not allowed", len(widths))
	}
	return res
}

// OptimalWidth sizes a corridor for the map it serves: small maps push
// the preferred width down, large maps and large rooms push it up. The
// result is always within the hard limits.
func (v *Validator) OptimalWidth(rooms []world.RoomData, mapSize grid.Rect, preferred int) int {
	width := preferred
	area := mapSize.Area()
	if area < smallMapArea {
		width--
	} else if area > largeMapArea {
		width++
	}

	if len(rooms) > 0 {
		total := 0
		for _, room := range rooms {
			total += room.Bounds.Area()
		}
		avg := total / len(rooms)
		if avg > largeRoomArea {
			width++
		} else if avg < smallRoomArea {
			width--
		}
	}

	if width < MinWidth {
		width = MinWidth
	}
	if width > MaxWidth {
		width = MaxWidth
	}
	return width
}

// RecommendedMinimum returns the narrowest comfortable width for a
// map. Diagonal movement raises the floor: cutting a corner through a
// one-tile passage clips the walls.
func (v *Validator) RecommendedMinimum(mapSize grid.Rect, diagonalMovement bool) int {
	width := MinWidth
	if diagonalMovement || mapSize.Area() >= largeMapArea {
		width = RecommendedMinWidth
	}
	return width
}

// EffectiveWidthAt returns the corridor's width if the position lies on
// its path, and 0 otherwise.
func (v *Validator) EffectiveWidthAt(c world.CorridorData, pos grid.Point) int {
	for _, tile := range c.Path {
		if tile == pos {
			return c.Width
		}
	}
	return 0
}

// WidthReport renders a human-readable summary of a corridor
// collection: counts, a width histogram, and the total tile coverage.
func (v *Validator) WidthReport(corridors []world.CorridorData) string {
	if len(corridors) == 0 {
		return "corridor width report: no data"
	}

	histogram := make(map[int]int)
	totalTiles := 0
	for _, c := range corridors {
		histogram[c.Width]++
		totalTiles += len(c.Path)
	}
	widths := make([]int, 0, len(histogram))
	for w := range histogram {
		widths = append(widths, w)
	}
	sort.Ints(widths)

	var b strings.Builder
	fmt.Fprintf(&b, "corridor width report\n")
	fmt.Fprintf(&b, "corridors: %d\n", len(corridors))
	for _, w := range widths {
		fmt.Fprintf(&b, "width %d: %d\n", w, histogram[w])
	}
	fmt.Fprintf(&b, "total tiles: %d", totalTiles)
	return b.String()
}

func roomByID(rooms []world.RoomData, id int) (world.RoomData, bool) {
	for _, room := range rooms {
		if room.ID == id {
			return room, true
		}
	}
	return world.RoomData{}, false
}
