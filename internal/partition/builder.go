package partition

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/samdwyer/overmap/internal/grid"
)

// ErrBoundsTooSmall reports a build area that cannot host even one region.
var ErrBoundsTooSmall = errors.New("partition: bounds smaller than the minimum partition size")

// maxBalanceRatio caps how lopsided a split may be in balanced mode.
// Children share one dimension, so the area ratio equals the length ratio.
const maxBalanceRatio = 1.5

// Builder constructs partition trees. It is single-use-safe but not
// goroutine-safe; give each concurrent build its own builder and rng.
type Builder struct {
	cfg    Config
	rng    *rand.Rand
	nextID int
}

// NewBuilder validates the configuration and returns a builder. A nil
// rng falls back to a time-seeded one; pass a seeded rng for
// reproducible trees.
func NewBuilder(cfg Config, rng *rand.Rand) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Builder{cfg: cfg, rng: rng}, nil
}

// Build partitions the bounds into a tree of regions. Node IDs are
// unique within the builder and never reused across builds.
func (b *Builder) Build(bounds grid.Rect) (*Node, error) {
	if bounds.Width < b.cfg.MinPartitionSize || bounds.Height < b.cfg.MinPartitionSize {
		return nil, fmt.Errorf("%w: %dx%d with minimum %d",
			ErrBoundsTooSmall, bounds.Width, bounds.Height, b.cfg.MinPartitionSize)
	}
	root := b.newNode(bounds, 0)
	b.split(root)
	return root, nil
}

func (b *Builder) newNode(bounds grid.Rect, depth int) *Node {
	node := &Node{ID: b.nextID, Bounds: bounds, Depth: depth}
	b.nextID++
	return node
}

// split decides whether a node stays a leaf and, if not, cuts it in two
// and recurses.
func (b *Builder) split(node *Node) {
	if node.Depth >= b.cfg.MaxDepth {
		return
	}

	canHorizontal := b.cfg.AllowHorizontal && node.Bounds.Height >= 2*b.cfg.MinPartitionSize
	canVertical := b.cfg.AllowVertical && node.Bounds.Width >= 2*b.cfg.MinPartitionSize
	if !canHorizontal && !canVertical {
		// Too small either way: forced leaf regardless of depth or chance.
		return
	}

	if b.rng.Float64() < b.cfg.StopSplittingChance {
		return
	}

	horizontal := b.chooseAxis(node, canHorizontal, canVertical)
	if !b.trySplit(node, horizontal) {
		// Balanced mode rejected the cut; retry the other axis once.
		retried := false
		if horizontal && canVertical {
			retried = b.trySplit(node, false)
		} else if !horizontal && canHorizontal {
			retried = b.trySplit(node, true)
		}
		if !retried {
			return
		}
	}

	b.split(node.Left)
	b.split(node.Right)
}

// chooseAxis resolves the split axis for a node. The preferred axis
// falls back to the other one when it cannot fit two regions.
func (b *Builder) chooseAxis(node *Node, canHorizontal, canVertical bool) bool {
	if canHorizontal != canVertical {
		return canHorizontal
	}

	switch b.cfg.SplitPreference {
	case SplitHorizontal:
		return true
	case SplitVertical:
		return false
	case SplitAlternate:
		return node.Depth%2 == 0
	case SplitRandom:
		return b.rng.Intn(2) == 0
	default: // SplitByAspect
		return node.Bounds.Height >= node.Bounds.Width
	}
}

// trySplit cuts a node along the given axis. It returns false only when
// balanced mode rejects the resulting area ratio; the node is left
// untouched in that case.
func (b *Builder) trySplit(node *Node, horizontal bool) bool {
	length := node.Bounds.Width
	if horizontal {
		length = node.Bounds.Height
	}

	offset := b.splitOffset(length)
	if b.cfg.BalanceTree {
		larger, smaller := offset, length-offset
		if smaller > larger {
			larger, smaller = smaller, larger
		}
		if float64(larger)/float64(smaller) > maxBalanceRatio {
			return false
		}
	}

	var left, right grid.Rect
	if horizontal {
		left = grid.Rect{X: node.Bounds.X, Y: node.Bounds.Y, Width: node.Bounds.Width, Height: offset}
		right = grid.Rect{X: node.Bounds.X, Y: node.Bounds.Y + offset, Width: node.Bounds.Width, Height: node.Bounds.Height - offset}
	} else {
		left = grid.Rect{X: node.Bounds.X, Y: node.Bounds.Y, Width: offset, Height: node.Bounds.Height}
		right = grid.Rect{X: node.Bounds.X + offset, Y: node.Bounds.Y, Width: node.Bounds.Width - offset, Height: node.Bounds.Height}
	}

	node.Left = b.newNode(left, node.Depth+1)
	node.Right = b.newNode(right, node.Depth+1)
	return true
}

// splitOffset picks the cut position on an axis: the midpoint jittered
// by the configured variation, clamped so both halves keep the minimum
// partition size.
func (b *Builder) splitOffset(length int) int {
	offset := length / 2
	if b.cfg.SplitPositionVariation > 0 {
		span := int(float64(length) * b.cfg.SplitPositionVariation)
		if span > 0 {
			offset += b.rng.Intn(2*span+1) - span
		}
	}

	if offset < b.cfg.MinPartitionSize {
		offset = b.cfg.MinPartitionSize
	}
	if offset > length-b.cfg.MinPartitionSize {
		offset = length - b.cfg.MinPartitionSize
	}
	return offset
}

// PlaceRooms returns one room rectangle per leaf, scaled by the room
// size ratio and positioned inside the leaf's slack. Rooms are returned
// in leaf order, so index i belongs to Leaves()[i].
func (b *Builder) PlaceRooms(root *Node) []grid.Rect {
	leaves := root.Leaves()
	rooms := make([]grid.Rect, 0, len(leaves))
	for _, leaf := range leaves {
		rooms = append(rooms, b.placeRoom(leaf.Bounds))
	}
	return rooms
}

func (b *Builder) placeRoom(bounds grid.Rect) grid.Rect {
	width := scaleDim(bounds.Width, b.cfg.RoomSizeRatio)
	height := scaleDim(bounds.Height, b.cfg.RoomSizeRatio)

	x := bounds.X + (bounds.Width-width)/2
	y := bounds.Y + (bounds.Height-height)/2
	if !b.cfg.CenterRooms {
		x = b.jitterWithin(x, bounds.X, bounds.Width-width)
		y = b.jitterWithin(y, bounds.Y, bounds.Height-height)
	}
	return grid.Rect{X: x, Y: y, Width: width, Height: height}
}

// jitterWithin shifts a centered coordinate by a random fraction of the
// leaf's slack, clamped so the room stays inside the leaf.
func (b *Builder) jitterWithin(centered, low, slack int) int {
	if slack <= 0 || b.cfg.RoomPositionVariation <= 0 {
		return centered
	}
	span := int(float64(slack) * b.cfg.RoomPositionVariation)
	if span <= 0 {
		return centered
	}
	shifted := centered + b.rng.Intn(2*span+1) - span
	if shifted < low {
		shifted = low
	}
	if shifted > low+slack {
		shifted = low + slack
	}
	return shifted
}

func scaleDim(length int, ratio float64) int {
	scaled := int(float64(length) * ratio)
	if scaled < 1 {
		scaled = 1
	}
	if scaled > length {
		scaled = length
	}
	return scaled
}
