package partition

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/samdwyer/overmap/internal/grid"
)

func buildTree(t *testing.T, cfg Config, seed int64, bounds grid.Rect) (*Builder, *Node) {
	t.Helper()
	b, err := NewBuilder(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	root, err := b.Build(bounds)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b, root
}

func TestChildrenTileParentExactly(t *testing.T) {
	_, root := buildTree(t, DefaultConfig(), 42, grid.Rect{X: 0, Y: 0, Width: 64, Height: 64})

	root.Walk(func(n *Node) {
		if n.IsLeaf() {
			return
		}
		l, r := n.Left.Bounds, n.Right.Bounds
		if l.X != n.Bounds.X || l.Y != n.Bounds.Y {
			t.Errorf("node %d: left child not anchored at parent origin: %+v", n.ID, l)
		}
		if l.Area()+r.Area() != n.Bounds.Area() {
			t.Errorf("node %d: children areas %d+%d != parent %d", n.ID, l.Area(), r.Area(), n.Bounds.Area())
		}
		if l.Intersects(r) {
			t.Errorf("node %d: children overlap: %+v and %+v", n.ID, l, r)
		}

		stacked := l.Width == n.Bounds.Width && r.Width == n.Bounds.Width &&
			r.X == n.Bounds.X && r.Y == l.Bottom() && l.Height+r.Height == n.Bounds.Height
		sideBySide := l.Height == n.Bounds.Height && r.Height == n.Bounds.Height &&
			r.Y == n.Bounds.Y && r.X == l.Right() && l.Width+r.Width == n.Bounds.Width
		if !stacked && !sideBySide {
			t.Errorf("node %d: children do not tile the parent: %+v / %+v in %+v", n.ID, l, r, n.Bounds)
		}
	})
}

func TestLeavesRespectBoundsAndMinimumSize(t *testing.T) {
	cfg := DefaultConfig()
	bounds := grid.Rect{X: 2, Y: 3, Width: 60, Height: 48}
	_, root := buildTree(t, cfg, 7, bounds)

	leaves := root.Leaves()
	if len(leaves) < 2 {
		t.Fatalf("expected 60x48 to split at least once, got %d leaves", len(leaves))
	}
	for _, leaf := range leaves {
		if !bounds.ContainsRect(leaf.Bounds) {
			t.Errorf("leaf %d escapes the map bounds: %+v", leaf.ID, leaf.Bounds)
		}
		if leaf.Bounds.Width < cfg.MinPartitionSize || leaf.Bounds.Height < cfg.MinPartitionSize {
			t.Errorf("leaf %d below minimum size: %+v", leaf.ID, leaf.Bounds)
		}
	}
	for i := 0; i < len(leaves); i++ {
		for j := i + 1; j < len(leaves); j++ {
			if leaves[i].Bounds.Intersects(leaves[j].Bounds) {
				t.Errorf("leaves %d and %d overlap", leaves[i].ID, leaves[j].ID)
			}
		}
	}
}

func TestBuildReproducibility(t *testing.T) {
	// Two builders with the same seed must produce the same tree and rooms.
	cfg := DefaultConfig()
	bounds := grid.Rect{X: 0, Y: 0, Width: 80, Height: 50}

	b1, root1 := buildTree(t, cfg, 12345, bounds)
	b2, root2 := buildTree(t, cfg, 12345, bounds)

	leaves1, leaves2 := root1.Leaves(), root2.Leaves()
	if len(leaves1) != len(leaves2) {
		t.Fatalf("leaf count mismatch: %d != %d", len(leaves1), len(leaves2))
	}
	for i := range leaves1 {
		if leaves1[i].Bounds != leaves2[i].Bounds {
			t.Errorf("leaf %d mismatch: %+v != %+v", i, leaves1[i].Bounds, leaves2[i].Bounds)
		}
	}

	rooms1, rooms2 := b1.PlaceRooms(root1), b2.PlaceRooms(root2)
	for i := range rooms1 {
		if rooms1[i] != rooms2[i] {
			t.Errorf("room %d mismatch: %+v != %+v", i, rooms1[i], rooms2[i])
		}
	}
}

func TestBuildDifferentSeeds(t *testing.T) {
	cfg := DefaultConfig()
	bounds := grid.Rect{X: 0, Y: 0, Width: 80, Height: 50}

	_, root1 := buildTree(t, cfg, 12345, bounds)
	_, root2 := buildTree(t, cfg, 54321, bounds)

	leaves1, leaves2 := root1.Leaves(), root2.Leaves()
	identical := len(leaves1) == len(leaves2)
	if identical {
		for i := range leaves1 {
			if leaves1[i].Bounds != leaves2[i].Bounds {
				identical = false
				break
			}
		}
	}
	if identical {
		t.Error("trees built from different seeds should not be identical")
	}
}

func TestUnsplittableNodeBecomesLeaf(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPartitionSize = 6

	// 8x8 cannot hold two 6-tile regions on either axis.
	_, root := buildTree(t, cfg, 1, grid.Rect{X: 0, Y: 0, Width: 8, Height: 8})
	if !root.IsLeaf() {
		t.Errorf("8x8 root should be a forced leaf, got children %+v / %+v", root.Left, root.Right)
	}
}

func TestBuildRejectsTinyBounds(t *testing.T) {
	b, err := NewBuilder(DefaultConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	if _, err := b.Build(grid.Rect{X: 0, Y: 0, Width: 4, Height: 4}); !errors.Is(err, ErrBoundsTooSmall) {
		t.Errorf("err = %v, want ErrBoundsTooSmall", err)
	}
}

func TestStopSplittingChanceKeepsLeaf(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StopSplittingChance = 1

	_, root := buildTree(t, cfg, 9, grid.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	if !root.IsLeaf() {
		t.Error("a certain stop chance should keep every node a leaf")
	}
}

func TestBalancedSplitsCapAreaRatio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BalanceTree = true
	cfg.SplitPositionVariation = 0.5
	cfg.MaxDepth = 5

	for seed := int64(0); seed < 10; seed++ {
		_, root := buildTree(t, cfg, seed, grid.Rect{X: 0, Y: 0, Width: 96, Height: 96})
		root.Walk(func(n *Node) {
			if n.IsLeaf() {
				return
			}
			larger, smaller := n.Left.Bounds.Area(), n.Right.Bounds.Area()
			if smaller > larger {
				larger, smaller = smaller, larger
			}
			if ratio := float64(larger) / float64(smaller); ratio > maxBalanceRatio {
				t.Errorf("seed %d node %d: area ratio %.2f exceeds %.1f", seed, n.ID, ratio, maxBalanceRatio)
			}
		})
	}
}

func TestSplitPreferenceAxes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 1
	cfg.SplitPositionVariation = 0
	bounds := grid.Rect{X: 0, Y: 0, Width: 40, Height: 40}

	cfg.SplitPreference = SplitHorizontal
	_, root := buildTree(t, cfg, 3, bounds)
	if root.IsLeaf() || root.Left.Bounds.Width != bounds.Width {
		t.Errorf("horizontal preference should stack children, got %+v", root.Left)
	}

	cfg.SplitPreference = SplitVertical
	_, root = buildTree(t, cfg, 3, bounds)
	if root.IsLeaf() || root.Left.Bounds.Height != bounds.Height {
		t.Errorf("vertical preference should place children side by side, got %+v", root.Left)
	}
}

func TestAlternatePreferenceFlipsPerDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 2
	cfg.SplitPositionVariation = 0
	cfg.SplitPreference = SplitAlternate

	_, root := buildTree(t, cfg, 5, grid.Rect{X: 0, Y: 0, Width: 40, Height: 40})
	if root.IsLeaf() || root.Left.IsLeaf() {
		t.Fatal("40x40 with depth 2 should split twice")
	}
	// Depth 0 stacks; depth 1 flips to side-by-side.
	if root.Left.Bounds.Width != 40 || root.Left.Bounds.Height != 20 {
		t.Errorf("depth-0 split should stack, left child %+v", root.Left.Bounds)
	}
	if root.Left.Left.Bounds.Width != 20 || root.Left.Left.Bounds.Height != 20 {
		t.Errorf("depth-1 split should flip axis, grandchild %+v", root.Left.Left.Bounds)
	}
}

func TestPlaceRoomsStayInsideLeaves(t *testing.T) {
	cfg := DefaultConfig()
	b, root := buildTree(t, cfg, 99, grid.Rect{X: 0, Y: 0, Width: 64, Height: 64})

	leaves := root.Leaves()
	rooms := b.PlaceRooms(root)
	if len(rooms) != len(leaves) {
		t.Fatalf("room count %d != leaf count %d", len(rooms), len(leaves))
	}
	for i, room := range rooms {
		if room.Width < 1 || room.Height < 1 {
			t.Errorf("room %d has empty dimensions: %+v", i, room)
		}
		if !leaves[i].Bounds.ContainsRect(room) {
			t.Errorf("room %d escapes its leaf: %+v not in %+v", i, room, leaves[i].Bounds)
		}
	}
}

func TestCenteredRoomPlacement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 0
	cfg.RoomSizeRatio = 0.5
	cfg.CenterRooms = true

	b, root := buildTree(t, cfg, 1, grid.Rect{X: 0, Y: 0, Width: 20, Height: 20})
	rooms := b.PlaceRooms(root)
	if len(rooms) != 1 {
		t.Fatalf("depth-0 tree should yield one room, got %d", len(rooms))
	}
	want := grid.Rect{X: 5, Y: 5, Width: 10, Height: 10}
	if rooms[0] != want {
		t.Errorf("centered room = %+v, want %+v", rooms[0], want)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero min size", func(c *Config) { c.MinPartitionSize = 0 }},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }},
		{"variation too large", func(c *Config) { c.SplitPositionVariation = 0.6 }},
		{"no axes", func(c *Config) { c.AllowHorizontal = false; c.AllowVertical = false }},
		{"unknown preference", func(c *Config) { c.SplitPreference = SplitPreference(99) }},
		{"chance above one", func(c *Config) { c.StopSplittingChance = 1.1 }},
		{"zero room ratio", func(c *Config) { c.RoomSizeRatio = 0 }},
		{"room ratio above one", func(c *Config) { c.RoomSizeRatio = 1.2 }},
		{"negative position variation", func(c *Config) { c.RoomPositionVariation = -0.1 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", tc.name, err)
		}
	}
}
