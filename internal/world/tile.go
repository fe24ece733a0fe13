// Package world defines the generated map: rooms, corridors, the
// partition tree, and gameplay markers, together with the invariants
// every consumer may rely on.
package world

// Tile represents a single map tile.
type Tile rune

const (
	// TileWall represents an impassable wall tile.
	TileWall Tile = '#'
	// TileFloor represents a passable room floor tile.
	TileFloor Tile = '.'
	// TileCorridor represents a passable corridor tile.
	TileCorridor Tile = '+'
	// TilePlayer marks the player spawn position.
	TilePlayer Tile = '@'
	// TileSpawn marks an enemy spawn position.
	TileSpawn Tile = 'e'
	// TileResource marks a resource placement.
	TileResource Tile = '$'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t != TileWall
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
