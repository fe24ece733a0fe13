package verify

import (
	"fmt"

	"github.com/samdwyer/overmap/internal/world"
)

// rule is one comparison between an original map and its round-tripped
// copy. An empty result means the rule passed.
type rule struct {
	name  string
	check func(a, b *world.MapData) []string
}

var battery = []rule{
	{"basic", basicProperties},
	{"collections", collectionIntegrity},
	{"spatial", spatialData},
	{"gameplay", gameplayData},
	{"metadata", metadataFields},
}

// compare runs the full battery, prefixing each mismatch with the rule
// that found it.
func compare(a, b *world.MapData) []string {
	var out []string
	for _, r := range battery {
		for _, miss := range r.check(a, b) {
			out = append(out, r.name+": "+miss)
		}
	}
	return out
}

func basicProperties(a, b *world.MapData) []string {
	var out []string
	if a.Seed != b.Seed {
		out = append(out, fmt.Sprintf("seed %d != %d", a.Seed, b.Seed))
	}
	if a.MapID != b.MapID {
		out = append(out, fmt.Sprintf("map id %q != %q", a.MapID, b.MapID))
	}
	if a.Bounds != b.Bounds {
		out = append(out, fmt.Sprintf("map size %+v != %+v", a.Bounds, b.Bounds))
	}
	return out
}

func collectionIntegrity(a, b *world.MapData) []string {
	var out []string
	if len(a.Rooms) != len(b.Rooms) {
		out = append(out, fmt.Sprintf("room count %d != %d", len(a.Rooms), len(b.Rooms)))
	} else {
		for i := range a.Rooms {
			ra, rb := a.Rooms[i], b.Rooms[i]
			if ra.ID != rb.ID {
				out = append(out, fmt.Sprintf("room %d id %d != %d", i, ra.ID, rb.ID))
			}
			if ra.Bounds != rb.Bounds {
				out = append(out, fmt.Sprintf("room %d bounds %+v != %+v", ra.ID, ra.Bounds, rb.Bounds))
			}
			if ra.Classification != rb.Classification {
				out = append(out, fmt.Sprintf("room %d classification %q != %q", ra.ID, ra.Classification, rb.Classification))
			}
		}
	}
	if len(a.Corridors) != len(b.Corridors) {
		out = append(out, fmt.Sprintf("corridor count %d != %d", len(a.Corridors), len(b.Corridors)))
	} else {
		for i := range a.Corridors {
			ca, cb := a.Corridors[i], b.Corridors[i]
			if ca.ID != cb.ID {
				out = append(out, fmt.Sprintf("corridor %d id %d != %d", i, ca.ID, cb.ID))
			}
			if ca.StartRoomID != cb.StartRoomID || ca.EndRoomID != cb.EndRoomID {
				out = append(out, fmt.Sprintf("corridor %d endpoints %d->%d != %d->%d",
					ca.ID, ca.StartRoomID, ca.EndRoomID, cb.StartRoomID, cb.EndRoomID))
			}
			if ca.Width != cb.Width {
				out = append(out, fmt.Sprintf("corridor %d width %d != %d", ca.ID, ca.Width, cb.Width))
			}
		}
	}
	if len(a.EnemySpawns) != len(b.EnemySpawns) {
		out = append(out, fmt.Sprintf("enemy spawn count %d != %d", len(a.EnemySpawns), len(b.EnemySpawns)))
	}
	if len(a.Resources) != len(b.Resources) {
		out = append(out, fmt.Sprintf("resource count %d != %d", len(a.Resources), len(b.Resources)))
	}
	return out
}

func spatialData(a, b *world.MapData) []string {
	var out []string
	if a.PlayerSpawn != b.PlayerSpawn {
		out = append(out, fmt.Sprintf("player spawn %+v != %+v", a.PlayerSpawn, b.PlayerSpawn))
	}
	if len(a.Corridors) == len(b.Corridors) {
		for i := range a.Corridors {
			ca, cb := a.Corridors[i], b.Corridors[i]
			if len(ca.Path) != len(cb.Path) {
				out = append(out, fmt.Sprintf("corridor %d path length %d != %d", ca.ID, len(ca.Path), len(cb.Path)))
				continue
			}
			for j := range ca.Path {
				if ca.Path[j] != cb.Path[j] {
					out = append(out, fmt.Sprintf("corridor %d path tile %d %+v != %+v", ca.ID, j, ca.Path[j], cb.Path[j]))
					break
				}
			}
		}
	}
	out = append(out, treeMismatches(a.PartitionRoot, b.PartitionRoot)...)
	return out
}

func treeMismatches(a, b *world.PartitionNode) []string {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil || b == nil:
		return []string{"partition root: one side missing"}
	}
	var out []string
	if a.ID != b.ID || a.Bounds != b.Bounds {
		out = append(out, fmt.Sprintf("partition root: node %d %+v != node %d %+v", a.ID, a.Bounds, b.ID, b.Bounds))
	}
	out = append(out, treeMismatches(a.Left, b.Left)...)
	out = append(out, treeMismatches(a.Right, b.Right)...)
	return out
}

func gameplayData(a, b *world.MapData) []string {
	var out []string
	if len(a.EnemySpawns) == len(b.EnemySpawns) {
		for i := range a.EnemySpawns {
			if a.EnemySpawns[i] != b.EnemySpawns[i] {
				out = append(out, fmt.Sprintf("enemy spawn %d %+v != %+v", i, a.EnemySpawns[i], b.EnemySpawns[i]))
			}
		}
	}
	if len(a.Resources) == len(b.Resources) {
		for i := range a.Resources {
			if a.Resources[i] != b.Resources[i] {
				out = append(out, fmt.Sprintf("resource %d %+v != %+v", i, a.Resources[i], b.Resources[i]))
			}
		}
	}
	return out
}

func metadataFields(a, b *world.MapData) []string {
	var out []string
	if a.Meta.Algorithm != b.Meta.Algorithm {
		out = append(out, fmt.Sprintf("algorithm %q != %q", a.Meta.Algorithm, b.Meta.Algorithm))
	}
	if a.Meta.Version != b.Meta.Version {
		out = append(out, fmt.Sprintf("version %q != %q", a.Meta.Version, b.Meta.Version))
	}
	if a.Meta.GeneratedIn != b.Meta.GeneratedIn {
		out = append(out, fmt.Sprintf("generation time %s != %s", a.Meta.GeneratedIn, b.Meta.GeneratedIn))
	}
	if a.Meta.DiagonalMovement != b.Meta.DiagonalMovement {
		out = append(out, fmt.Sprintf("diagonal movement %v != %v", a.Meta.DiagonalMovement, b.Meta.DiagonalMovement))
	}
	return out
}
