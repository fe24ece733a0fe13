package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samdwyer/overmap/internal/mapio"
	"github.com/samdwyer/overmap/internal/world"
)

// FileStore keeps each map as one file in a directory, named by map ID
// with the format's extension.
type FileStore struct {
	dir        string
	serializer *mapio.Serializer
}

// NewFileStore creates the directory if needed and returns a store
// writing with the given serializer settings.
func NewFileStore(dir string, settings mapio.Settings) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	return &FileStore{dir: dir, serializer: mapio.NewSerializer(settings)}, nil
}

// SaveMap writes the map unless a stored copy with the same fingerprint
// already exists.
func (s *FileStore) SaveMap(ctx context.Context, m *world.MapData, format Format) error {
	if m == nil {
		return mapio.ErrNilMap
	}
	if m.MapID == "" {
		return ErrNoMapID
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}

	path := filepath.Join(s.dir, m.MapID+format.ext())
	if existing, err := s.loadFile(path, format); err == nil {
		oldFP, oldErr := mapio.Fingerprint(existing)
		newFP, newErr := mapio.Fingerprint(m)
		if oldErr == nil && newErr == nil && oldFP == newFP {
			return nil
		}
	}

	data, err := encodeMap(s.serializer, m, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadMap reads a map by ID, probing the binary file first.
func (s *FileStore) LoadMap(ctx context.Context, id string) (*world.MapData, error) {
	for _, format := range []Format{FormatBinary, FormatJSON} {
		m, err := s.loadFile(filepath.Join(s.dir, id+format.ext()), format)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ListMaps describes every stored map, ordered by ID.
func (s *FileStore) ListMaps(ctx context.Context) ([]MapInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: read directory: %w", err)
	}

	infos := []MapInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var format Format
		switch filepath.Ext(entry.Name()) {
		case ".omap":
			format = FormatBinary
		case ".json":
			format = FormatJSON
		default:
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		m, err := s.loadFile(path, format)
		if err != nil {
			return nil, err
		}
		fp, err := mapio.Fingerprint(m)
		if err != nil {
			return nil, err
		}
		stat, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("store: stat %s: %w", entry.Name(), err)
		}
		infos = append(infos, MapInfo{
			MapID:       strings.TrimSuffix(entry.Name(), format.ext()),
			Seed:        m.Seed,
			Format:      format,
			Fingerprint: fp,
			Size:        stat.Size(),
			SavedAt:     stat.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].MapID < infos[j].MapID })
	return infos, nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) loadFile(path string, format Format) (*world.MapData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", filepath.Base(path), err)
	}
	return decodeMap(s.serializer, data, format)
}
