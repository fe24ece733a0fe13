package corridor

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/samdwyer/overmap/internal/grid"
	"github.com/samdwyer/overmap/internal/partition"
	"github.com/samdwyer/overmap/internal/pathfind"
	"github.com/samdwyer/overmap/internal/world"
)

var (
	// ErrInvalidConfig reports a synthesis configuration outside the limits.
	ErrInvalidConfig = errors.New("corridor: invalid configuration")
	// ErrNoRoute reports a room pair the pathfinder could not connect.
	ErrNoRoute = errors.New("corridor: rooms cannot be connected")
)

// Config controls corridor synthesis.
type Config struct {
	// Width is the corridor width. Zero sizes it automatically from
	// the map and room dimensions.
	Width int
	// AllowVariableWidth draws each corridor's width independently
	// between the recommended minimum and the resolved width.
	AllowVariableWidth bool
	// DiagonalMovement lets corridors take single diagonal steps.
	DiagonalMovement bool
	// RoomAvoidCost is the per-cell cost inside rooms a corridor does
	// not serve, steering routes around them. Values up to 1 disable
	// the steering.
	RoomAvoidCost float64
}

// DefaultConfig returns the parameters used by the standard preset.
func DefaultConfig() Config {
	return Config{
		Width:         RecommendedMinWidth,
		RoomAvoidCost: 4,
	}
}

// Validate reports the first problem that would make synthesis misbehave.
func (c Config) Validate() error {
	if c.Width != 0 && (c.Width < MinWidth || c.Width > MaxWidth) {
		return fmt.Errorf("%w: width %d outside [%d, %d]", ErrInvalidConfig, c.Width, MinWidth, MaxWidth)
	}
	if c.RoomAvoidCost < 0 {
		return fmt.Errorf("%w: room avoid cost %v is negative", ErrInvalidConfig, c.RoomAvoidCost)
	}
	return nil
}

// Builder synthesizes the corridors joining partitioned rooms.
type Builder struct {
	cfg Config
	rng *rand.Rand
}

// NewBuilder validates the configuration and returns a builder. A nil
// rng falls back to a time-seeded one.
func NewBuilder(cfg Config, rng *rand.Rand) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Builder{cfg: cfg, rng: rng}, nil
}

// Connect builds one corridor per internal partition node, joining a
// room from each subtree the same way the area was split. Rooms must
// be given in leaf order, as produced by partition.PlaceRooms.
func (b *Builder) Connect(root *partition.Node, rooms []world.RoomData, bounds grid.Rect) ([]world.CorridorData, error) {
	leaves := root.Leaves()
	if len(leaves) != len(rooms) {
		return nil, fmt.Errorf("corridor: %d partition leaves but %d rooms", len(leaves), len(rooms))
	}
	byLeaf := make(map[int]world.RoomData, len(leaves))
	for i, leaf := range leaves {
		byLeaf[leaf.ID] = rooms[i]
	}

	field, err := grid.NewGrid(bounds.Width, bounds.Height)
	if err != nil {
		return nil, err
	}
	finder, err := pathfind.New(field)
	if err != nil {
		return nil, err
	}
	finder.SetDiagonalMovement(b.cfg.DiagonalMovement)

	width := b.cfg.Width
	if width == 0 {
		width = NewValidator(b.cfg.DiagonalMovement).OptimalWidth(rooms, bounds, RecommendedMinWidth)
	}

	corridors := []world.CorridorData{}
	var connect func(node *partition.Node) error
	connect = func(node *partition.Node) error {
		if node == nil || node.IsLeaf() {
			return nil
		}
		if err := connect(node.Left); err != nil {
			return err
		}
		if err := connect(node.Right); err != nil {
			return err
		}

		start, ok := firstRoom(node.Left, byLeaf)
		if !ok {
			return nil
		}
		end, ok := firstRoom(node.Right, byLeaf)
		if !ok {
			return nil
		}

		path, err := b.route(finder, bounds, rooms, start, end)
		if err != nil {
			return err
		}

		corridors = append(corridors, world.CorridorData{
			ID:          len(corridors) + 1,
			StartRoomID: start.ID,
			EndRoomID:   end.ID,
			Width:       b.corridorWidth(width),
			Path:        path,
		})
		return nil
	}
	if err := connect(root); err != nil {
		return nil, err
	}
	return corridors, nil
}

// route finds the tile path between two room anchors, charging extra
// for cells inside rooms the corridor does not serve.
func (b *Builder) route(finder *pathfind.Pathfinder, bounds grid.Rect, rooms []world.RoomData, start, end world.RoomData) ([]grid.Point, error) {
	if b.cfg.RoomAvoidCost > 1 {
		costs, err := grid.NewCostGrid(bounds.Width, bounds.Height)
		if err != nil {
			return nil, err
		}
		for _, room := range rooms {
			if room.ID == start.ID || room.ID == end.ID {
				continue
			}
			if err := costs.SetRect(room.Bounds, b.cfg.RoomAvoidCost); err != nil {
				return nil, err
			}
		}
		if err := finder.SetCostGrid(costs); err != nil {
			return nil, err
		}
	} else if err := finder.SetCostGrid(nil); err != nil {
		return nil, err
	}

	path, err := finder.FindPath(start.Bounds.Center(), end.Bounds.Center())
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: rooms %d and %d", ErrNoRoute, start.ID, end.ID)
	}
	return path, nil
}

// corridorWidth resolves the width of one corridor.
func (b *Builder) corridorWidth(resolved int) int {
	if !b.cfg.AllowVariableWidth || resolved <= RecommendedMinWidth {
		return resolved
	}
	return RecommendedMinWidth + b.rng.Intn(resolved-RecommendedMinWidth+1)
}

// firstRoom returns a room from the subtree, preferring the left arm.
func firstRoom(node *partition.Node, byLeaf map[int]world.RoomData) (world.RoomData, bool) {
	if node == nil {
		return world.RoomData{}, false
	}
	if node.IsLeaf() {
		room, ok := byLeaf[node.ID]
		return room, ok
	}
	if room, ok := firstRoom(node.Left, byLeaf); ok {
		return room, true
	}
	return firstRoom(node.Right, byLeaf)
}
