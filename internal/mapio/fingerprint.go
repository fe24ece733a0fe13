package mapio

import (
	"github.com/cespare/xxhash/v2"

	"github.com/samdwyer/overmap/internal/world"
)

// Fingerprint returns a stable 64-bit content hash of a map. The hash
// is taken over the canonical uncompressed binary form, so it does not
// vary with serializer settings.
func Fingerprint(m *world.MapData) (uint64, error) {
	if m == nil {
		return 0, ErrNilMap
	}
	data, err := NewSerializer(Settings{}).ToBinary(m)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

// ValidateRoundTrip reports whether a map survives both wire formats
// unchanged under the serializer's current settings.
func (s *Serializer) ValidateRoundTrip(m *world.MapData) bool {
	if m == nil {
		return false
	}

	doc, err := s.ToJSON(m)
	if err != nil {
		return false
	}
	fromJSON, err := s.FromJSON(doc)
	if err != nil || !m.Equal(fromJSON) {
		return false
	}

	envelope, err := s.ToBinary(m)
	if err != nil {
		return false
	}
	fromBinary, err := s.FromBinary(envelope)
	if err != nil || !m.Equal(fromBinary) {
		return false
	}
	return true
}
