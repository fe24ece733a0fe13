package world

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/samdwyer/overmap/internal/grid"
)

var (
	// ErrInvalidMap reports a map that violates a model invariant.
	ErrInvalidMap = errors.New("world: invalid map")
	// ErrRoomNotFound reports a room ID with no matching room.
	ErrRoomNotFound = errors.New("world: room not found")
)

// MapData is the root aggregate of one generated map. The seed is
// immutable once generated; everything else is owned by this struct
// and dies with it. Single writer only.
type MapData struct {
	Seed          int64               `json:"seed"`
	MapID         string              `json:"mapId"`
	Bounds        grid.Rect           `json:"mapSize"`
	Rooms         []RoomData          `json:"rooms"`
	Corridors     []CorridorData      `json:"corridors"`
	PartitionRoot *PartitionNode      `json:"partitionRoot,omitempty"`
	PlayerSpawn   grid.Point          `json:"playerSpawnPosition"`
	EnemySpawns   []SpawnPoint        `json:"enemySpawnPoints"`
	Resources     []ResourcePlacement `json:"resources"`
	Meta          Metadata            `json:"metadata"`
}

// NewMapData creates an empty map with a fresh identity.
func NewMapData(seed int64, bounds grid.Rect) *MapData {
	return &MapData{
		Seed:        seed,
		MapID:       uuid.NewString(),
		Bounds:      bounds,
		Rooms:       []RoomData{},
		Corridors:   []CorridorData{},
		EnemySpawns: []SpawnPoint{},
		Resources:   []ResourcePlacement{},
	}
}

// Validate checks every model invariant and returns the first
// violation found.
func (m *MapData) Validate() error {
	if m.MapID == "" {
		return fmt.Errorf("%w: empty map ID", ErrInvalidMap)
	}
	if m.Bounds.X != 0 || m.Bounds.Y != 0 {
		return fmt.Errorf("%w: bounds must be anchored at the origin, got (%d,%d)", ErrInvalidMap, m.Bounds.X, m.Bounds.Y)
	}
	if m.Bounds.Width <= 0 || m.Bounds.Height <= 0 {
		return fmt.Errorf("%w: bounds %dx%d", ErrInvalidMap, m.Bounds.Width, m.Bounds.Height)
	}

	roomIDs := make(map[int]bool, len(m.Rooms))
	for i, room := range m.Rooms {
		if roomIDs[room.ID] {
			return fmt.Errorf("%w: duplicate room ID %d", ErrInvalidMap, room.ID)
		}
		roomIDs[room.ID] = true
		if !m.Bounds.ContainsRect(room.Bounds) {
			return fmt.Errorf("%w: room %d outside map bounds: %+v", ErrInvalidMap, room.ID, room.Bounds)
		}
		for _, other := range m.Rooms[i+1:] {
			if room.Bounds.Intersects(other.Bounds) {
				return fmt.Errorf("%w: rooms %d and %d overlap", ErrInvalidMap, room.ID, other.ID)
			}
		}
	}

	corridorIDs := make(map[int]bool, len(m.Corridors))
	for _, c := range m.Corridors {
		if corridorIDs[c.ID] {
			return fmt.Errorf("%w: duplicate corridor ID %d", ErrInvalidMap, c.ID)
		}
		corridorIDs[c.ID] = true
		if !roomIDs[c.StartRoomID] {
			return fmt.Errorf("%w: corridor %d references missing start room %d", ErrInvalidMap, c.ID, c.StartRoomID)
		}
		if !roomIDs[c.EndRoomID] {
			return fmt.Errorf("%w: corridor %d references missing end room %d", ErrInvalidMap, c.ID, c.EndRoomID)
		}
		if c.Width < 1 {
			return fmt.Errorf("%w: corridor %d width %d", ErrInvalidMap, c.ID, c.Width)
		}
		if len(c.Path) == 0 {
			return fmt.Errorf("%w: corridor %d has no path", ErrInvalidMap, c.ID)
		}
		for _, tile := range c.Path {
			if !m.Bounds.Contains(tile) {
				return fmt.Errorf("%w: corridor %d tile (%d,%d) outside map bounds", ErrInvalidMap, c.ID, tile.X, tile.Y)
			}
		}
		if err := m.checkContinuity(c); err != nil {
			return err
		}
	}

	if !m.Bounds.Contains(m.PlayerSpawn) {
		return fmt.Errorf("%w: player spawn (%d,%d) outside map bounds", ErrInvalidMap, m.PlayerSpawn.X, m.PlayerSpawn.Y)
	}
	for _, s := range m.EnemySpawns {
		if !m.Bounds.Contains(s.Position) {
			return fmt.Errorf("%w: spawn point (%d,%d) outside map bounds", ErrInvalidMap, s.Position.X, s.Position.Y)
		}
	}
	for _, r := range m.Resources {
		if !m.Bounds.Contains(r.Position) {
			return fmt.Errorf("%w: resource (%d,%d) outside map bounds", ErrInvalidMap, r.Position.X, r.Position.Y)
		}
	}

	return m.validateTree(m.PartitionRoot)
}

// checkContinuity verifies corridor steps match the movement model the
// map was generated for: axis-aligned single steps, or single diagonal
// steps too when the metadata says so.
func (m *MapData) checkContinuity(c CorridorData) error {
	for i := 1; i < len(c.Path); i++ {
		prev, cur := c.Path[i-1], c.Path[i]
		if m.Meta.DiagonalMovement {
			if grid.Chebyshev(prev, cur) == 1 {
				continue
			}
		} else if grid.Manhattan(prev, cur) == 1 {
			continue
		}
		return fmt.Errorf("%w: corridor %d gap between (%d,%d) and (%d,%d)",
			ErrInvalidMap, c.ID, prev.X, prev.Y, cur.X, cur.Y)
	}
	return nil
}

func (m *MapData) validateTree(n *PartitionNode) error {
	if n == nil {
		return nil
	}
	if !m.Bounds.ContainsRect(n.Bounds) {
		return fmt.Errorf("%w: partition node %d outside map bounds: %+v", ErrInvalidMap, n.ID, n.Bounds)
	}
	if (n.Left == nil) != (n.Right == nil) {
		return fmt.Errorf("%w: partition node %d has exactly one child", ErrInvalidMap, n.ID)
	}
	if n.Left == nil {
		return nil
	}

	l, r := n.Left.Bounds, n.Right.Bounds
	stacked := l.Width == n.Bounds.Width && r.Width == n.Bounds.Width &&
		l.X == n.Bounds.X && r.X == n.Bounds.X && l.Y == n.Bounds.Y &&
		r.Y == l.Bottom() && l.Height+r.Height == n.Bounds.Height
	sideBySide := l.Height == n.Bounds.Height && r.Height == n.Bounds.Height &&
		l.Y == n.Bounds.Y && r.Y == n.Bounds.Y && l.X == n.Bounds.X &&
		r.X == l.Right() && l.Width+r.Width == n.Bounds.Width
	if !stacked && !sideBySide {
		return fmt.Errorf("%w: partition node %d children do not tile it", ErrInvalidMap, n.ID)
	}

	if err := m.validateTree(n.Left); err != nil {
		return err
	}
	return m.validateTree(n.Right)
}

// RoomByID returns the room with the given ID, or false.
func (m *MapData) RoomByID(id int) (*RoomData, bool) {
	for i := range m.Rooms {
		if m.Rooms[i].ID == id {
			return &m.Rooms[i], true
		}
	}
	return nil, false
}

// SetClassification tags a room. This is the one post-generation
// mutation the model supports, reserved for the classifier collaborator.
func (m *MapData) SetClassification(roomID int, classification string) error {
	room, ok := m.RoomByID(roomID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrRoomNotFound, roomID)
	}
	room.Classification = classification
	return nil
}

// Equal reports whether two maps match field for field. Nil and empty
// collections compare as equal, so a round-tripped map still matches
// its source.
func (m *MapData) Equal(other *MapData) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Seed != other.Seed || m.MapID != other.MapID || m.Bounds != other.Bounds {
		return false
	}
	if m.PlayerSpawn != other.PlayerSpawn || m.Meta != other.Meta {
		return false
	}
	if !equalRooms(m.Rooms, other.Rooms) || !equalCorridors(m.Corridors, other.Corridors) {
		return false
	}
	if !equalSpawns(m.EnemySpawns, other.EnemySpawns) || !equalResources(m.Resources, other.Resources) {
		return false
	}
	return equalTrees(m.PartitionRoot, other.PartitionRoot)
}

func equalRooms(a, b []RoomData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalCorridors(a, b []CorridorData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].StartRoomID != b[i].StartRoomID ||
			a[i].EndRoomID != b[i].EndRoomID || a[i].Width != b[i].Width {
			return false
		}
		if len(a[i].Path) != len(b[i].Path) {
			return false
		}
		for j := range a[i].Path {
			if a[i].Path[j] != b[i].Path[j] {
				return false
			}
		}
	}
	return true
}

func equalSpawns(a, b []SpawnPoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalResources(a, b []ResourcePlacement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TileGrid rasterizes the map into an obstacle grid: room interiors
// and corridor tiles are walkable, everything else is blocked.
func (m *MapData) TileGrid() (*grid.Grid, error) {
	g, err := grid.NewGrid(m.Bounds.Width, m.Bounds.Height)
	if err != nil {
		return nil, err
	}
	g.BlockRect(grid.Rect{X: 0, Y: 0, Width: m.Bounds.Width, Height: m.Bounds.Height})
	for _, room := range m.Rooms {
		g.ClearRect(room.Bounds)
	}
	for _, c := range m.Corridors {
		for _, tile := range c.Path {
			forBrush(tile, c.Width, func(p grid.Point) {
				g.SetBlocked(p, false)
			})
		}
	}
	return g, nil
}

// TileMap rasterizes the map into display tiles, with markers drawn
// over the walkable geometry.
func (m *MapData) TileMap() [][]Tile {
	tiles := make([][]Tile, m.Bounds.Height)
	for y := range tiles {
		tiles[y] = make([]Tile, m.Bounds.Width)
		for x := range tiles[y] {
			tiles[y][x] = TileWall
		}
	}
	set := func(p grid.Point, t Tile) {
		if m.Bounds.Contains(p) {
			tiles[p.Y][p.X] = t
		}
	}

	for _, room := range m.Rooms {
		for y := room.Bounds.Y; y < room.Bounds.Bottom(); y++ {
			for x := room.Bounds.X; x < room.Bounds.Right(); x++ {
				set(grid.Point{X: x, Y: y}, TileFloor)
			}
		}
	}
	for _, c := range m.Corridors {
		for _, tile := range c.Path {
			forBrush(tile, c.Width, func(p grid.Point) {
				// Corridors never repaint room floor.
				if m.Bounds.Contains(p) && tiles[p.Y][p.X] == TileWall {
					tiles[p.Y][p.X] = TileCorridor
				}
			})
		}
	}
	for _, r := range m.Resources {
		set(r.Position, TileResource)
	}
	for _, s := range m.EnemySpawns {
		set(s.Position, TileSpawn)
	}
	set(m.PlayerSpawn, TilePlayer)
	return tiles
}

// forBrush visits the width×width square of cells a corridor tile
// covers, centered with the extra cell trailing for even widths.
func forBrush(center grid.Point, width int, visit func(grid.Point)) {
	if width < 1 {
		width = 1
	}
	lo := -(width - 1) / 2
	hi := width / 2
	for dy := lo; dy <= hi; dy++ {
		for dx := lo; dx <= hi; dx++ {
			visit(grid.Point{X: center.X + dx, Y: center.Y + dy})
		}
	}
}
