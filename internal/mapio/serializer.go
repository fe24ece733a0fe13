// Package mapio converts generated maps to and from their two wire
// formats: a JSON document and a compact binary envelope. Both formats
// round-trip exactly, optionally through gzip, and documents written by
// older schema versions are migrated on read.
package mapio

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samdwyer/overmap/internal/world"
)

// CurrentVersion is the map schema version this package writes.
const CurrentVersion = "1.1.0"

// magic opens every binary envelope.
const magic = "OMAP"

// maxVersionLen bounds the header version string; anything longer is a
// corrupt envelope, not a version.
const maxVersionLen = 64

const flagCompressed byte = 1 << 0

var (
	// ErrNilMap reports a serialize call without a map.
	ErrNilMap = errors.New("mapio: map is required")
	// ErrDeserialize reports input that is not a readable map document.
	ErrDeserialize = errors.New("mapio: deserialization failed")
	// ErrUnsupportedVersion reports a schema version with no migration
	// path to the current one.
	ErrUnsupportedVersion = errors.New("mapio: unsupported schema version")
)

// Settings toggle the wire behavior of a Serializer.
type Settings struct {
	// EnableCompression gzips the binary payload.
	EnableCompression bool
	// CompressJSON wraps the JSON document in a base64 gzip envelope.
	CompressJSON bool
	// PrettyPrintJSON renders indented JSON instead of compact.
	PrettyPrintJSON bool
}

// Serializer converts maps to and from both wire formats. Calls are
// stateless; a serializer is safe to reuse across maps.
type Serializer struct {
	settings Settings
	migrator *Migrator
}

// NewSerializer creates a serializer with the given settings.
func NewSerializer(settings Settings) *Serializer {
	return &Serializer{settings: settings, migrator: NewMigrator()}
}

// compressedEnvelope wraps a gzipped JSON document for transport as JSON.
type compressedEnvelope struct {
	Compressed string `json:"omapCompressed"`
}

// ToJSON renders a map as a JSON document per the serializer settings.
func (s *Serializer) ToJSON(m *world.MapData) ([]byte, error) {
	if m == nil {
		return nil, ErrNilMap
	}

	var (
		raw []byte
		err error
	)
	if s.settings.PrettyPrintJSON {
		raw, err = json.MarshalIndent(m, "", "  ")
	} else {
		raw, err = json.Marshal(m)
	}
	if err != nil {
		return nil, fmt.Errorf("mapio: encode json: %w", err)
	}

	if !s.settings.CompressJSON {
		return raw, nil
	}
	packed, err := gzipBytes(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(compressedEnvelope{Compressed: base64.StdEncoding.EncodeToString(packed)})
}

// FromJSON parses a JSON document, unwrapping the compression envelope
// and migrating older schema versions as needed.
func (s *Serializer) FromJSON(data []byte) (*world.MapData, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrDeserialize)
	}

	var env compressedEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Compressed != "" {
		packed, err := base64.StdEncoding.DecodeString(env.Compressed)
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64 envelope: %v", ErrDeserialize, err)
		}
		raw, err := gunzipBytes(packed)
		if err != nil {
			return nil, fmt.Errorf("%w: bad compressed envelope: %v", ErrDeserialize, err)
		}
		data = raw
	}
	return s.decode(data)
}

// ToBinary renders a map as a binary envelope: the magic marker, a
// uvarint-prefixed schema version, a flag byte, and the payload.
func (s *Serializer) ToBinary(m *world.MapData) ([]byte, error) {
	if m == nil {
		return nil, ErrNilMap
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("mapio: encode payload: %w", err)
	}

	version := m.Meta.Version
	if version == "" {
		version = CurrentVersion
	}

	var flags byte
	if s.settings.EnableCompression {
		packed, err := gzipBytes(payload)
		if err != nil {
			return nil, err
		}
		payload = packed
		flags |= flagCompressed
	}

	var buf bytes.Buffer
	buf.Grow(len(magic) + binary.MaxVarintLen64 + len(version) + 1 + len(payload))
	buf.WriteString(magic)
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(version)))
	buf.Write(lenBuf[:n])
	buf.WriteString(version)
	buf.WriteByte(flags)
	buf.Write(payload)
	return buf.Bytes(), nil
}

// FromBinary parses a binary envelope. Any buffer not opening with the
// exact magic marker is rejected.
func (s *Serializer) FromBinary(data []byte) (*world.MapData, error) {
	if len(data) < len(magic)+2 {
		return nil, fmt.Errorf("%w: truncated envelope", ErrDeserialize)
	}
	if string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("%w: bad magic marker", ErrDeserialize)
	}

	r := bytes.NewReader(data[len(magic):])
	versionLen, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: version length: %v", ErrDeserialize, err)
	}
	if versionLen == 0 || versionLen > maxVersionLen {
		return nil, fmt.Errorf("%w: version length %d", ErrDeserialize, versionLen)
	}
	version := make([]byte, versionLen)
	if _, err := io.ReadFull(r, version); err != nil {
		return nil, fmt.Errorf("%w: version string: %v", ErrDeserialize, err)
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: missing flag byte: %v", ErrDeserialize, err)
	}

	payload := make([]byte, r.Len())
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrDeserialize, err)
	}
	if flags&flagCompressed != 0 {
		payload, err = gunzipBytes(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: payload decompression: %v", ErrDeserialize, err)
		}
	}

	if headerVersion := string(version); headerVersion != CurrentVersion {
		if !s.migrator.CanMigrate(headerVersion, CurrentVersion) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, headerVersion)
		}
		payload, err = s.migrator.Migrate(payload, headerVersion, CurrentVersion)
		if err != nil {
			return nil, err
		}
	}

	var m world.MapData
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	return &m, nil
}

// decode unmarshals a JSON document, migrating it first when its
// metadata declares an older schema version.
func (s *Serializer) decode(raw []byte) (*world.MapData, error) {
	version, err := peekVersion(raw)
	if err != nil {
		return nil, err
	}
	if version != "" && version != CurrentVersion {
		if !s.migrator.CanMigrate(version, CurrentVersion) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
		}
		raw, err = s.migrator.Migrate(raw, version, CurrentVersion)
		if err != nil {
			return nil, err
		}
	}

	var m world.MapData
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	return &m, nil
}

// peekVersion reads just the schema version out of a document.
func peekVersion(raw []byte) (string, error) {
	var probe struct {
		Meta struct {
			Version string `json:"version"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	return probe.Meta.Version, nil
}

func gzipBytes(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return nil, fmt.Errorf("mapio: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("mapio: compress: %w", err)
	}
	return buf.Bytes(), nil
}

func gunzipBytes(packed []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
