package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samdwyer/overmap/internal/grid"
	"github.com/samdwyer/overmap/internal/mapio"
	"github.com/samdwyer/overmap/internal/world"
)

func testMap(t *testing.T, id string, seed int64) *world.MapData {
	t.Helper()
	m := world.NewMapData(seed, grid.NewRect(0, 0, 40, 24))
	m.MapID = id
	m.Rooms = append(m.Rooms,
		world.RoomData{ID: 1, Bounds: grid.NewRect(2, 2, 8, 6)},
		world.RoomData{ID: 2, Bounds: grid.NewRect(24, 12, 10, 8)},
	)
	m.Corridors = append(m.Corridors, world.CorridorData{
		ID: 1, StartRoomID: 1, EndRoomID: 2, Width: 2,
		Path: []grid.Point{{X: 6, Y: 5}, {X: 7, Y: 5}, {X: 8, Y: 5}},
	})
	m.PlayerSpawn = grid.Point{X: 6, Y: 5}
	m.Meta = world.Metadata{Algorithm: "bsp", Version: mapio.CurrentVersion}
	return m
}

func mustFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), mapio.Settings{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return s
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat("binary"); err != nil || f != FormatBinary {
		t.Errorf("ParseFormat(binary) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(xml) = %v, want ErrUnknownFormat", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := mustFileStore(t)
	ctx := context.Background()
	m := testMap(t, "alpha", 7)

	if err := s.SaveMap(ctx, m, FormatBinary); err != nil {
		t.Fatalf("SaveMap failed: %v", err)
	}
	got, err := s.LoadMap(ctx, "alpha")
	if err != nil {
		t.Fatalf("LoadMap failed: %v", err)
	}
	if !m.Equal(got) {
		t.Errorf("stored map came back different")
	}
}

func TestFileStoreWritesFormatExtension(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, mapio.Settings{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if err := s.SaveMap(ctx, testMap(t, "bin", 1), FormatBinary); err != nil {
		t.Fatalf("SaveMap failed: %v", err)
	}
	if err := s.SaveMap(ctx, testMap(t, "doc", 2), FormatJSON); err != nil {
		t.Fatalf("SaveMap failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "bin.omap")); err != nil {
		t.Errorf("binary save did not produce bin.omap: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.json")); err != nil {
		t.Errorf("json save did not produce doc.json: %v", err)
	}

	got, err := s.LoadMap(ctx, "doc")
	if err != nil {
		t.Fatalf("LoadMap(doc) failed: %v", err)
	}
	if got.Seed != 2 {
		t.Errorf("loaded wrong map: seed %d", got.Seed)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := mustFileStore(t)
	if _, err := s.LoadMap(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadMap(nope) = %v, want ErrNotFound", err)
	}
}

func TestFileStoreList(t *testing.T) {
	s := mustFileStore(t)
	ctx := context.Background()

	if err := s.SaveMap(ctx, testMap(t, "beta", 2), FormatJSON); err != nil {
		t.Fatalf("SaveMap failed: %v", err)
	}
	if err := s.SaveMap(ctx, testMap(t, "alpha", 1), FormatBinary); err != nil {
		t.Fatalf("SaveMap failed: %v", err)
	}

	infos, err := s.ListMaps(ctx)
	if err != nil {
		t.Fatalf("ListMaps failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d entries, want 2", len(infos))
	}
	if infos[0].MapID != "alpha" || infos[1].MapID != "beta" {
		t.Errorf("entries not sorted by ID: %q, %q", infos[0].MapID, infos[1].MapID)
	}
	if infos[0].Format != FormatBinary || infos[1].Format != FormatJSON {
		t.Errorf("formats wrong: %q, %q", infos[0].Format, infos[1].Format)
	}
	for _, info := range infos {
		if info.Size == 0 || info.Fingerprint == 0 {
			t.Errorf("entry %s missing size or fingerprint: %+v", info.MapID, info)
		}
	}
	if infos[0].Seed != 1 || infos[1].Seed != 2 {
		t.Errorf("seeds wrong: %d, %d", infos[0].Seed, infos[1].Seed)
	}
}

func TestFileStoreSkipsUnchangedSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, mapio.Settings{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()
	m := testMap(t, "alpha", 7)

	if err := s.SaveMap(ctx, m, FormatBinary); err != nil {
		t.Fatalf("SaveMap failed: %v", err)
	}
	path := filepath.Join(dir, "alpha.omap")
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	// Identical content: the file must not be rewritten.
	if err := s.SaveMap(ctx, m, FormatBinary); err != nil {
		t.Fatalf("repeat SaveMap failed: %v", err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if stat.ModTime().After(old.Add(time.Minute)) {
		t.Errorf("unchanged save rewrote the file")
	}

	// Changed content under the same ID: the file must be rewritten.
	m.Seed = 8
	if err := s.SaveMap(ctx, m, FormatBinary); err != nil {
		t.Fatalf("changed SaveMap failed: %v", err)
	}
	stat, err = os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !stat.ModTime().After(old.Add(time.Minute)) {
		t.Errorf("changed map did not rewrite the file")
	}
}

func TestFileStoreRejectsBadSaves(t *testing.T) {
	s := mustFileStore(t)
	ctx := context.Background()

	if err := s.SaveMap(ctx, nil, FormatBinary); !errors.Is(err, mapio.ErrNilMap) {
		t.Errorf("SaveMap(nil) = %v, want ErrNilMap", err)
	}
	unkeyed := testMap(t, "", 1)
	if err := s.SaveMap(ctx, unkeyed, FormatBinary); !errors.Is(err, ErrNoMapID) {
		t.Errorf("SaveMap(no id) = %v, want ErrNoMapID", err)
	}
	if err := s.SaveMap(ctx, testMap(t, "x", 1), Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("SaveMap(xml) = %v, want ErrUnknownFormat", err)
	}
}
