// Package partition builds binary space partition trees: a map
// rectangle is recursively split into non-overlapping regions, each
// large enough to host one room.
package partition

import (
	"errors"
	"fmt"
)

// SplitPreference selects how the split axis is chosen at each node.
type SplitPreference int

const (
	// SplitHorizontal always cuts into a top and bottom half.
	SplitHorizontal SplitPreference = iota
	// SplitVertical always cuts into a left and right half.
	SplitVertical
	// SplitAlternate flips the axis at each tree depth.
	SplitAlternate
	// SplitRandom draws the axis from the generator's rng.
	SplitRandom
	// SplitByAspect cuts the longer dimension, keeping regions squarish.
	SplitByAspect
)

func (s SplitPreference) String() string {
	switch s {
	case SplitHorizontal:
		return "horizontal"
	case SplitVertical:
		return "vertical"
	case SplitAlternate:
		return "alternate"
	case SplitRandom:
		return "random"
	case SplitByAspect:
		return "aspect"
	default:
		return fmt.Sprintf("SplitPreference(%d)", int(s))
	}
}

// ParseSplitPreference converts a preference name from configuration.
func ParseSplitPreference(name string) (SplitPreference, error) {
	for _, s := range []SplitPreference{SplitHorizontal, SplitVertical, SplitAlternate, SplitRandom, SplitByAspect} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: split preference %q", ErrInvalidConfig, name)
}

// ErrInvalidConfig reports a configuration that cannot drive a build.
var ErrInvalidConfig = errors.New("partition: invalid configuration")

// Config holds the knobs of one partition build. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// MinPartitionSize is the smallest legal width or height of a region.
	MinPartitionSize int
	// MaxDepth stops recursion; the tree has at most 2^MaxDepth leaves.
	MaxDepth int
	// SplitPositionVariation jitters the split away from the midpoint,
	// as a fraction of the axis length. 0 splits exactly in half.
	SplitPositionVariation float64
	// AllowHorizontal and AllowVertical gate the two split axes.
	AllowHorizontal bool
	AllowVertical   bool
	// SplitPreference picks the axis when both are legal.
	SplitPreference SplitPreference
	// StopSplittingChance is the probability a splittable node is kept
	// as a leaf anyway, for uneven region sizes.
	StopSplittingChance float64
	// BalanceTree rejects splits whose halves differ too much in area,
	// retrying the other axis before forcing a leaf.
	BalanceTree bool

	// RoomSizeRatio scales a leaf's dimensions down to its room's.
	RoomSizeRatio float64
	// RoomPositionVariation shifts the room inside the leaf's slack,
	// as a fraction of that slack. Ignored when CenterRooms is set.
	RoomPositionVariation float64
	// CenterRooms pins every room to its leaf's center.
	CenterRooms bool
}

// DefaultConfig returns the parameters used by the standard preset.
func DefaultConfig() Config {
	return Config{
		MinPartitionSize:       6,
		MaxDepth:               4,
		SplitPositionVariation: 0.25,
		AllowHorizontal:        true,
		AllowVertical:          true,
		SplitPreference:        SplitByAspect,
		StopSplittingChance:    0,
		BalanceTree:            false,
		RoomSizeRatio:          0.7,
		RoomPositionVariation:  0.3,
		CenterRooms:            false,
	}
}

// Validate reports the first problem that would make a build misbehave.
func (c Config) Validate() error {
	if c.MinPartitionSize < 1 {
		return fmt.Errorf("%w: minimum partition size %d, need at least 1", ErrInvalidConfig, c.MinPartitionSize)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d is negative", ErrInvalidConfig, c.MaxDepth)
	}
	if c.SplitPositionVariation < 0 || c.SplitPositionVariation > 0.5 {
		return fmt.Errorf("%w: split position variation %v outside [0, 0.5]", ErrInvalidConfig, c.SplitPositionVariation)
	}
	if !c.AllowHorizontal && !c.AllowVertical {
		return fmt.Errorf("%w: both split axes disabled", ErrInvalidConfig)
	}
	if c.SplitPreference < SplitHorizontal || c.SplitPreference > SplitByAspect {
		return fmt.Errorf("%w: unknown split preference %d", ErrInvalidConfig, int(c.SplitPreference))
	}
	if c.StopSplittingChance < 0 || c.StopSplittingChance > 1 {
		return fmt.Errorf("%w: stop splitting chance %v outside [0, 1]", ErrInvalidConfig, c.StopSplittingChance)
	}
	if c.RoomSizeRatio <= 0 || c.RoomSizeRatio > 1 {
		return fmt.Errorf("%w: room size ratio %v outside (0, 1]", ErrInvalidConfig, c.RoomSizeRatio)
	}
	if c.RoomPositionVariation < 0 || c.RoomPositionVariation > 1 {
		return fmt.Errorf("%w: room position variation %v outside [0, 1]", ErrInvalidConfig, c.RoomPositionVariation)
	}
	return nil
}
