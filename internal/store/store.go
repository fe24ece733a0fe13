// Package store persists serialized maps, either as files in a
// directory or as rows in PostgreSQL. Saves are keyed by map ID and
// skipped when the stored fingerprint already matches.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samdwyer/overmap/internal/mapio"
	"github.com/samdwyer/overmap/internal/world"
)

var (
	// ErrNotFound reports a map ID with no stored copy.
	ErrNotFound = errors.New("store: map not found")
	// ErrUnknownFormat reports a format name that is not a wire format.
	ErrUnknownFormat = errors.New("store: unknown format")
	// ErrNoMapID reports a map that cannot be keyed.
	ErrNoMapID = errors.New("store: map has no id")
)

// Format names a wire format maps are stored in.
type Format string

const (
	FormatJSON   Format = "json"
	FormatBinary Format = "binary"
)

// ParseFormat converts a format name from configuration or flags.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatBinary:
		return FormatBinary, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ext is the file extension maps of this format are written under.
func (f Format) ext() string {
	if f == FormatBinary {
		return ".omap"
	}
	return ".json"
}

// MapInfo describes one stored map.
type MapInfo struct {
	MapID       string
	Seed        int64
	Format      Format
	Fingerprint uint64
	Size        int64
	SavedAt     time.Time
}

// Store is a persistence backend for generated maps.
type Store interface {
	SaveMap(ctx context.Context, m *world.MapData, format Format) error
	LoadMap(ctx context.Context, id string) (*world.MapData, error)
	ListMaps(ctx context.Context) ([]MapInfo, error)
	Close() error
}

func encodeMap(s *mapio.Serializer, m *world.MapData, format Format) ([]byte, error) {
	if format == FormatBinary {
		return s.ToBinary(m)
	}
	return s.ToJSON(m)
}

func decodeMap(s *mapio.Serializer, data []byte, format Format) (*world.MapData, error) {
	if format == FormatBinary {
		return s.FromBinary(data)
	}
	return s.FromJSON(data)
}
