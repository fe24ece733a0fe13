package mapgen

import (
	"errors"
	"fmt"

	"github.com/samdwyer/overmap/internal/corridor"
	"github.com/samdwyer/overmap/internal/partition"
)

// ErrInvalidConfig reports generator parameters outside the limits.
var ErrInvalidConfig = errors.New("mapgen: invalid configuration")

// SpawnConfig controls what gets placed inside the finished rooms.
type SpawnConfig struct {
	// EnemyTypes are rotated across the enemy spawn points, one spawn
	// per room beyond the player's starting room.
	EnemyTypes []string
	// ResourceTypes are rotated across placed resources.
	ResourceTypes []string
	// ResourceChance is the probability that a room gets a resource.
	ResourceChance float64
}

// Config holds every parameter of one generation run.
type Config struct {
	MapWidth  int
	MapHeight int
	Partition partition.Config
	Corridor  corridor.Config
	Spawns    SpawnConfig
}

// DefaultConfig returns the parameters of the standard map.
func DefaultConfig() Config {
	return Config{
		MapWidth:  64,
		MapHeight: 64,
		Partition: partition.DefaultConfig(),
		Corridor:  corridor.DefaultConfig(),
		Spawns: SpawnConfig{
			EnemyTypes:     []string{"melee", "ranged"},
			ResourceTypes:  []string{"chest", "shrine"},
			ResourceChance: 0.5,
		},
	}
}

// Validate reports the first problem that would make generation fail.
func (c Config) Validate() error {
	if c.MapWidth < c.Partition.MinPartitionSize || c.MapHeight < c.Partition.MinPartitionSize {
		return fmt.Errorf("%w: map %dx%d cannot hold a %d-tile partition",
			ErrInvalidConfig, c.MapWidth, c.MapHeight, c.Partition.MinPartitionSize)
	}
	if err := c.Partition.Validate(); err != nil {
		return err
	}
	if err := c.Corridor.Validate(); err != nil {
		return err
	}
	if c.Spawns.ResourceChance < 0 || c.Spawns.ResourceChance > 1 {
		return fmt.Errorf("%w: resource chance %v outside [0, 1]", ErrInvalidConfig, c.Spawns.ResourceChance)
	}
	return nil
}
