package world

import (
	"time"

	"github.com/samdwyer/overmap/internal/grid"
)

// RoomData is one generated room. IDs are assigned at creation and
// never reused within a map.
type RoomData struct {
	ID     int       `json:"roomId"`
	Bounds grid.Rect `json:"bounds"`
	// Classification is written by an external classifier after
	// generation; empty until then.
	Classification string `json:"classification,omitempty"`
}

// CorridorData is one generated corridor connecting two rooms. Path
// runs from the start room to the end room, both endpoint tiles
// included.
type CorridorData struct {
	ID          int          `json:"corridorId"`
	StartRoomID int          `json:"startRoomId"`
	EndRoomID   int          `json:"endRoomId"`
	Width       int          `json:"width"`
	Path        []grid.Point `json:"pathTiles"`
}

// SpawnPoint marks a cell where an enemy enters the map.
type SpawnPoint struct {
	Position grid.Point `json:"position"`
	TypeTag  string     `json:"typeTag"`
}

// ResourcePlacement marks a cell holding a collectible resource.
type ResourcePlacement struct {
	Position grid.Point `json:"position"`
	TypeTag  string     `json:"typeTag"`
}

// Metadata records how and when a map was generated.
type Metadata struct {
	Algorithm string `json:"algorithm"`
	// Version is the map schema version, consumed by the serializer's
	// migration layer.
	Version     string        `json:"version"`
	GeneratedIn time.Duration `json:"generatedNs"`
	// DiagonalMovement records the movement model the map was built
	// for; corridor continuity is checked against it.
	DiagonalMovement bool `json:"diagonalMovement"`
}
