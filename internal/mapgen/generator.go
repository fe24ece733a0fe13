// Package mapgen runs the full generation pipeline: partition the map,
// place rooms, cut corridors between them, then seed spawn points and
// resources. Every run is a pure function of its seed.
package mapgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/overmap/internal/corridor"
	"github.com/samdwyer/overmap/internal/grid"
	"github.com/samdwyer/overmap/internal/mapio"
	"github.com/samdwyer/overmap/internal/partition"
	"github.com/samdwyer/overmap/internal/telemetry"
	"github.com/samdwyer/overmap/internal/world"
)

// maxGenerateAttempts bounds validation-driven regeneration.
const maxGenerateAttempts = 5

// ErrRejected reports a generated map the validators refused.
var ErrRejected = errors.New("mapgen: generated map failed validation")

// Generator produces maps from a fixed configuration. It carries no
// per-map state; every call derives its randomness from the seed alone.
type Generator struct {
	cfg Config
}

// NewGenerator validates the configuration and returns a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Generate builds one map from the seed. The same seed and
// configuration always produce the same map.
func (g *Generator) Generate(ctx context.Context, seed int64) (*world.MapData, error) {
	tracer := telemetry.Tracer("mapgen")
	_, span := tracer.Start(ctx, "mapgen.generate")
	defer span.End()

	start := time.Now()
	rng := rand.New(rand.NewSource(seed))
	bounds := grid.NewRect(0, 0, g.cfg.MapWidth, g.cfg.MapHeight)

	pb, err := partition.NewBuilder(g.cfg.Partition, rng)
	if err != nil {
		return nil, err
	}
	root, err := pb.Build(bounds)
	if err != nil {
		return nil, err
	}

	m := world.NewMapData(seed, bounds)
	for i, r := range pb.PlaceRooms(root) {
		m.Rooms = append(m.Rooms, world.RoomData{ID: i + 1, Bounds: r})
	}

	cb, err := corridor.NewBuilder(g.cfg.Corridor, rng)
	if err != nil {
		return nil, err
	}
	m.Corridors, err = cb.Connect(root, m.Rooms, bounds)
	if err != nil {
		return nil, err
	}

	m.PartitionRoot = world.FromPartitionTree(root)
	g.placeSpawns(m)
	g.placeResources(m, rng)

	m.Meta = world.Metadata{
		Algorithm:        "bsp",
		Version:          mapio.CurrentVersion,
		GeneratedIn:      time.Since(start),
		DiagonalMovement: g.cfg.Corridor.DiagonalMovement,
	}

	span.SetAttributes(
		attribute.Int("map.width", g.cfg.MapWidth),
		attribute.Int("map.height", g.cfg.MapHeight),
		attribute.Int("map.room_count", len(m.Rooms)),
		attribute.Int("map.corridor_count", len(m.Corridors)),
		attribute.Int64("map.generation_ms", time.Since(start).Milliseconds()),
	)
	return m, nil
}

// GenerateValidated generates a map and checks it against the model and
// corridor validators, retrying with follow-on seeds until one passes
// or the attempt budget runs out.
func (g *Generator) GenerateValidated(ctx context.Context, seed int64) (*world.MapData, error) {
	attempt := seed
	return backoff.Retry(ctx, func() (*world.MapData, error) {
		m, err := g.Generate(ctx, attempt)
		attempt++
		if err != nil {
			// Sizing and configuration problems do not heal on retry.
			return nil, backoff.Permanent(err)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRejected, err)
		}

		field, err := grid.NewGrid(g.cfg.MapWidth, g.cfg.MapHeight)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		v := corridor.NewValidator(g.cfg.Corridor.DiagonalMovement)
		if res := v.ValidateCollection(m.Corridors, m.Rooms, field, g.cfg.Corridor.AllowVariableWidth); !res.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrRejected, strings.Join(res.Errors, "; "))
		}
		return m, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(0)),
		backoff.WithMaxTries(maxGenerateAttempts),
	)
}

// placeSpawns puts the player in the first room and one enemy spawn at
// the center of every other room, rotating through the configured types.
func (g *Generator) placeSpawns(m *world.MapData) {
	if len(m.Rooms) == 0 {
		return
	}
	m.PlayerSpawn = m.Rooms[0].Bounds.Center()

	types := g.cfg.Spawns.EnemyTypes
	if len(types) == 0 {
		types = []string{"melee"}
	}
	for i, room := range m.Rooms[1:] {
		m.EnemySpawns = append(m.EnemySpawns, world.SpawnPoint{
			Position: room.Bounds.Center(),
			TypeTag:  types[i%len(types)],
		})
	}
}

// placeResources rolls each room beyond the starting one for a resource
// at a random interior tile.
func (g *Generator) placeResources(m *world.MapData, rng *rand.Rand) {
	types := g.cfg.Spawns.ResourceTypes
	if len(types) == 0 || g.cfg.Spawns.ResourceChance <= 0 || len(m.Rooms) == 0 {
		return
	}
	placed := 0
	for _, room := range m.Rooms[1:] {
		if rng.Float64() >= g.cfg.Spawns.ResourceChance {
			continue
		}
		m.Resources = append(m.Resources, world.ResourcePlacement{
			Position: interiorPoint(room.Bounds, rng),
			TypeTag:  types[placed%len(types)],
		})
		placed++
	}
}

// interiorPoint picks a random tile strictly inside the rectangle,
// falling back to the center when there is no interior.
func interiorPoint(r grid.Rect, rng *rand.Rand) grid.Point {
	if r.Width <= 2 || r.Height <= 2 {
		return r.Center()
	}
	return grid.Point{
		X: r.X + 1 + rng.Intn(r.Width-2),
		Y: r.Y + 1 + rng.Intn(r.Height-2),
	}
}
