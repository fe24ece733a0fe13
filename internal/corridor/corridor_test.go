package corridor

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/samdwyer/overmap/internal/grid"
	"github.com/samdwyer/overmap/internal/partition"
	"github.com/samdwyer/overmap/internal/world"
)

// lPath walks horizontally then vertically between two points,
// producing an axis-aligned continuous path.
func lPath(from, to grid.Point) []grid.Point {
	path := []grid.Point{from}
	cur := from
	for cur.X != to.X {
		if cur.X < to.X {
			cur.X++
		} else {
			cur.X--
		}
		path = append(path, cur)
	}
	for cur.Y != to.Y {
		if cur.Y < to.Y {
			cur.Y++
		} else {
			cur.Y--
		}
		path = append(path, cur)
	}
	return path
}

func openGrid(t *testing.T, w, h int) *grid.Grid {
	t.Helper()
	g, err := grid.NewGrid(w, h)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestValidateWidthBands(t *testing.T) {
	v := NewValidator(false)

	if res := v.ValidateWidth(MinWidth - 1); res.Valid() {
		t.Error("width below the floor must error")
	}
	if res := v.ValidateWidth(MinWidth); !res.Valid() {
		t.Errorf("minimum width must be valid, got %v", res.Errors)
	} else if len(res.Warnings) == 0 {
		t.Error("minimum width should warn about tight traversal")
	}
	if res := v.ValidateWidth(RecommendedMinWidth); !res.Valid() || len(res.Warnings) != 0 {
		t.Errorf("recommended width should be clean: %+v", res)
	}
	if res := v.ValidateWidth(MaxWidth); !res.Valid() {
		t.Errorf("maximum width must be valid, got %v", res.Errors)
	}
	if res := v.ValidateWidth(MaxWidth + 1); res.Valid() {
		t.Error("width above the ceiling must error")
	}
}

func TestValidatePathChecks(t *testing.T) {
	v := NewValidator(false)
	g := openGrid(t, 10, 10)
	path := lPath(grid.Point{X: 1, Y: 1}, grid.Point{X: 5, Y: 1})

	if res := v.ValidatePath(path, 2, nil); res.Valid() {
		t.Error("missing obstacle grid must error")
	}
	if res := v.ValidatePath(nil, 2, g); res.Valid() {
		t.Error("empty path must error")
	}
	if res := v.ValidatePath([]grid.Point{{X: 20, Y: 1}}, 2, g); res.Valid() {
		t.Error("out-of-bounds tile must error")
	}

	g.SetBlocked(grid.Point{X: 3, Y: 1}, true)
	if res := v.ValidatePath(path, 2, g); res.Valid() {
		t.Error("path through an obstacle must error")
	}
	g.SetBlocked(grid.Point{X: 3, Y: 1}, false)
	if res := v.ValidatePath(path, 2, g); !res.Valid() {
		t.Errorf("clean path should validate: %v", res.Errors)
	}
}

func TestValidateContinuityDetectsGaps(t *testing.T) {
	v := NewValidator(false)

	good := lPath(grid.Point{X: 0, Y: 0}, grid.Point{X: 4, Y: 2})
	if res := v.ValidateContinuity(good); !res.Valid() {
		t.Errorf("continuous path flagged: %v", res.Errors)
	}

	gapped := []grid.Point{{X: 0, Y: 0}, {X: 2, Y: 0}}
	if res := v.ValidateContinuity(gapped); res.Valid() {
		t.Error("two-tile jump must error")
	}

	diagonal := []grid.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}}
	if res := v.ValidateContinuity(diagonal); res.Valid() {
		t.Error("diagonal step must error under cardinal movement")
	}
	if res := NewValidator(true).ValidateContinuity(diagonal); !res.Valid() {
		t.Errorf("diagonal step should pass under diagonal movement: %v", res.Errors)
	}
}

func TestValidateCorridorAnchorWarnings(t *testing.T) {
	v := NewValidator(false)
	g := openGrid(t, 30, 20)
	rooms := []world.RoomData{
		{ID: 1, Bounds: grid.Rect{X: 2, Y: 2, Width: 6, Height: 6}},
		{ID: 2, Bounds: grid.Rect{X: 20, Y: 10, Width: 6, Height: 6}},
	}
	anchor1 := rooms[0].Bounds.Center()
	anchor2 := rooms[1].Bounds.Center()

	c := world.CorridorData{ID: 1, StartRoomID: 1, EndRoomID: 2, Width: 2, Path: lPath(anchor1, anchor2)}
	if res := v.ValidateCorridor(c, rooms, g); !res.Valid() || len(res.Warnings) != 0 {
		t.Errorf("anchored corridor should be clean: %+v", res)
	}

	// Shift the final tile off the end room's anchor.
	drifted := c
	drifted.Path = lPath(anchor1, grid.Point{X: anchor2.X, Y: anchor2.Y - 1})
	res := v.ValidateCorridor(drifted, rooms, g)
	if !res.Valid() {
		t.Errorf("drifted endpoint is a warning, not an error: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Error("drifted endpoint should warn")
	}

	missing := c
	missing.EndRoomID = 99
	if res := v.ValidateCorridor(missing, rooms, g); res.Valid() {
		t.Error("missing end room must error")
	}
}

func TestValidateCollectionVariableWidths(t *testing.T) {
	v := NewValidator(false)
	g := openGrid(t, 40, 20)
	rooms := []world.RoomData{
		{ID: 1, Bounds: grid.Rect{X: 1, Y: 1, Width: 6, Height: 6}},
		{ID: 2, Bounds: grid.Rect{X: 16, Y: 1, Width: 6, Height: 6}},
		{ID: 3, Bounds: grid.Rect{X: 31, Y: 1, Width: 6, Height: 6}},
	}
	corridors := []world.CorridorData{
		{ID: 1, StartRoomID: 1, EndRoomID: 2, Width: 3, Path: lPath(rooms[0].Bounds.Center(), rooms[1].Bounds.Center())},
		{ID: 2, StartRoomID: 2, EndRoomID: 3, Width: 5, Path: lPath(rooms[1].Bounds.Center(), rooms[2].Bounds.Center())},
	}

	res := v.ValidateCollection(corridors, rooms, g, false)
	if !res.Valid() {
		t.Fatalf("mixed widths are not an error: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Error("mixed widths without allowance should warn")
	}

	res = v.ValidateCollection(corridors, rooms, g, true)
	if !res.Valid() || len(res.Warnings) != 0 {
		t.Errorf("allowed variable widths should be clean: %+v", res)
	}
}

func TestValidateCollectionEmpty(t *testing.T) {
	v := NewValidator(false)
	res := v.ValidateCollection(nil, nil, openGrid(t, 5, 5), false)
	if !res.Valid() {
		t.Errorf("empty collection is not an error: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("empty collection should warn once, got %v", res.Warnings)
	}
}

func TestOptimalWidthScalesAndClamps(t *testing.T) {
	v := NewValidator(false)
	smallRooms := []world.RoomData{
		{ID: 1, Bounds: grid.Rect{Width: 5, Height: 5}},
		{ID: 2, Bounds: grid.Rect{Width: 4, Height: 5}},
	}
	bigRooms := []world.RoomData{
		{ID: 1, Bounds: grid.Rect{Width: 10, Height: 10}},
		{ID: 2, Bounds: grid.Rect{Width: 12, Height: 10}},
	}

	// Small map and small rooms both push down, clamped at the floor.
	if w := v.OptimalWidth(smallRooms, grid.Rect{Width: 30, Height: 30}, 2); w != MinWidth {
		t.Errorf("small map width = %d, want %d", w, MinWidth)
	}
	// Large map and large rooms both push up, clamped at the ceiling.
	if w := v.OptimalWidth(bigRooms, grid.Rect{Width: 120, Height: 100}, 4); w != MaxWidth {
		t.Errorf("large map width = %d, want %d", w, MaxWidth)
	}
	// Mid-sized everything leaves the preference alone.
	midRooms := []world.RoomData{{ID: 1, Bounds: grid.Rect{Width: 6, Height: 8}}}
	if w := v.OptimalWidth(midRooms, grid.Rect{Width: 60, Height: 60}, 3); w != 3 {
		t.Errorf("mid map width = %d, want 3", w)
	}
}

func TestRecommendedMinimum(t *testing.T) {
	v := NewValidator(false)
	small := grid.Rect{Width: 40, Height: 40}
	large := grid.Rect{Width: 120, Height: 100}

	if w := v.RecommendedMinimum(small, false); w != MinWidth {
		t.Errorf("small map without diagonals = %d, want %d", w, MinWidth)
	}
	if w := v.RecommendedMinimum(small, true); w != RecommendedMinWidth {
		t.Errorf("diagonal movement should raise the floor, got %d", w)
	}
	if w := v.RecommendedMinimum(large, false); w != RecommendedMinWidth {
		t.Errorf("large map = %d, want %d", w, RecommendedMinWidth)
	}
}

func TestEffectiveWidthAt(t *testing.T) {
	v := NewValidator(false)
	c := world.CorridorData{ID: 1, Width: 3, Path: lPath(grid.Point{X: 2, Y: 2}, grid.Point{X: 6, Y: 2})}

	if w := v.EffectiveWidthAt(c, grid.Point{X: 4, Y: 2}); w != 3 {
		t.Errorf("on-path width = %d, want 3", w)
	}
	if w := v.EffectiveWidthAt(c, grid.Point{X: 4, Y: 5}); w != 0 {
		t.Errorf("off-path width = %d, want 0", w)
	}
}

func TestWidthReport(t *testing.T) {
	v := NewValidator(false)

	if report := v.WidthReport(nil); !strings.Contains(report, "no data") {
		t.Errorf("nil input should report no data, got %q", report)
	}

	corridors := []world.CorridorData{
		{ID: 1, Width: 3, Path: lPath(grid.Point{X: 0, Y: 0}, grid.Point{X: 5, Y: 0})},
		{ID: 2, Width: 5, Path: lPath(grid.Point{X: 0, Y: 2}, grid.Point{X: 3, Y: 2})},
		{ID: 3, Width: 3, Path: lPath(grid.Point{X: 0, Y: 4}, grid.Point{X: 2, Y: 4})},
	}
	report := v.WidthReport(corridors)
	for _, want := range []string{"corridors: 3", "width 3: 2", "width 5: 1", "total tiles: 13"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

// threeRoomTree builds a handmade partition with rooms laid out left,
// middle, right, where the root corridor must pass the middle room's
// territory.
func threeRoomTree() (*partition.Node, []world.RoomData, grid.Rect) {
	bounds := grid.Rect{Width: 30, Height: 10}
	root := &partition.Node{
		ID: 0, Bounds: bounds,
		Left: &partition.Node{
			ID: 1, Bounds: grid.Rect{Width: 20, Height: 10}, Depth: 1,
			Left:  &partition.Node{ID: 2, Bounds: grid.Rect{Width: 10, Height: 10}, Depth: 2},
			Right: &partition.Node{ID: 3, Bounds: grid.Rect{X: 10, Width: 10, Height: 10}, Depth: 2},
		},
		Right: &partition.Node{ID: 4, Bounds: grid.Rect{X: 20, Width: 10, Height: 10}, Depth: 1},
	}
	rooms := []world.RoomData{
		{ID: 1, Bounds: grid.Rect{X: 1, Y: 3, Width: 4, Height: 4}},
		{ID: 2, Bounds: grid.Rect{X: 12, Y: 2, Width: 6, Height: 6}},
		{ID: 3, Bounds: grid.Rect{X: 25, Y: 3, Width: 4, Height: 4}},
	}
	return root, rooms, bounds
}

func TestBuilderRoutesAroundUnrelatedRooms(t *testing.T) {
	root, rooms, bounds := threeRoomTree()
	b, err := NewBuilder(DefaultConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	corridors, err := b.Connect(root, rooms, bounds)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if len(corridors) != 2 {
		t.Fatalf("corridor count = %d, want one per internal node", len(corridors))
	}

	var longHaul *world.CorridorData
	for i := range corridors {
		if corridors[i].StartRoomID == 1 && corridors[i].EndRoomID == 3 {
			longHaul = &corridors[i]
		}
	}
	if longHaul == nil {
		t.Fatal("missing the corridor joining the outer rooms")
	}
	middle := rooms[1].Bounds
	for _, tile := range longHaul.Path {
		if middle.Contains(tile) {
			t.Errorf("corridor cuts through unrelated room at (%d,%d)", tile.X, tile.Y)
		}
	}
}

func TestBuilderOutputSatisfiesModelInvariants(t *testing.T) {
	cfg := partition.DefaultConfig()
	bounds := grid.Rect{Width: 64, Height: 64}
	rng := rand.New(rand.NewSource(11))

	pb, err := partition.NewBuilder(cfg, rng)
	if err != nil {
		t.Fatalf("partition.NewBuilder: %v", err)
	}
	root, err := pb.Build(bounds)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	roomRects := pb.PlaceRooms(root)
	rooms := make([]world.RoomData, len(roomRects))
	for i, r := range roomRects {
		rooms[i] = world.RoomData{ID: i + 1, Bounds: r}
	}

	cb, err := NewBuilder(DefaultConfig(), rng)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	corridors, err := cb.Connect(root, rooms, bounds)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if len(corridors) != len(rooms)-1 {
		t.Fatalf("corridor count = %d, want %d (rooms-1)", len(corridors), len(rooms)-1)
	}

	m := world.NewMapData(11, bounds)
	m.Rooms = rooms
	m.Corridors = corridors
	m.PartitionRoot = world.FromPartitionTree(root)
	m.PlayerSpawn = rooms[0].Bounds.Center()
	if err := m.Validate(); err != nil {
		t.Errorf("assembled map breaks model invariants: %v", err)
	}

	// Every room must be reachable through the corridor graph.
	parent := make(map[int]int, len(rooms))
	var find func(int) int
	find = func(x int) int {
		if parent[x] == x {
			return x
		}
		parent[x] = find(parent[x])
		return parent[x]
	}
	for _, room := range rooms {
		parent[room.ID] = room.ID
	}
	for _, c := range corridors {
		parent[find(c.StartRoomID)] = find(c.EndRoomID)
	}
	components := make(map[int]bool)
	for _, room := range rooms {
		components[find(room.ID)] = true
	}
	if len(components) != 1 {
		t.Errorf("corridor graph has %d components, want 1", len(components))
	}
}

func TestBuilderVariableWidthDeterminism(t *testing.T) {
	root, rooms, bounds := threeRoomTree()
	cfg := DefaultConfig()
	cfg.Width = MaxWidth
	cfg.AllowVariableWidth = true

	build := func(seed int64) []world.CorridorData {
		b, err := NewBuilder(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("NewBuilder: %v", err)
		}
		corridors, err := b.Connect(root, rooms, bounds)
		if err != nil {
			t.Fatalf("Connect: %v", err)
		}
		return corridors
	}

	first, second := build(7), build(7)
	for i := range first {
		if first[i].Width != second[i].Width {
			t.Errorf("corridor %d width drifted between same-seed builds: %d != %d",
				i, first[i].Width, second[i].Width)
		}
		for j := range first[i].Path {
			if first[i].Path[j] != second[i].Path[j] {
				t.Fatalf("corridor %d path drifted between same-seed builds", i)
			}
		}
		if first[i].Width < RecommendedMinWidth || first[i].Width > MaxWidth {
			t.Errorf("corridor %d width %d outside the variable band", i, first[i].Width)
		}
	}
}

func TestBuilderAutoWidth(t *testing.T) {
	root, rooms, bounds := threeRoomTree()
	cfg := DefaultConfig()
	cfg.Width = 0

	b, err := NewBuilder(cfg, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	corridors, err := b.Connect(root, rooms, bounds)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	want := NewValidator(false).OptimalWidth(rooms, bounds, RecommendedMinWidth)
	for _, c := range corridors {
		if c.Width != want {
			t.Errorf("corridor %d width = %d, want auto-sized %d", c.ID, c.Width, want)
		}
	}
}

func TestBuilderRejectsBadInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = MaxWidth + 3
	if _, err := NewBuilder(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("oversized width: err = %v, want ErrInvalidConfig", err)
	}

	root, rooms, bounds := threeRoomTree()
	b, err := NewBuilder(DefaultConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if _, err := b.Connect(root, rooms[:2], bounds); err == nil {
		t.Error("leaf/room count mismatch should error")
	}
}
