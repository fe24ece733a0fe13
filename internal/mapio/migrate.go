package mapio

import (
	"encoding/json"
	"fmt"
)

// Migrator upgrades serialized map documents between schema versions by
// chaining single-step migrations.
type Migrator struct {
	steps map[string]migration
}

// migration is one upgrade step: the version it lands on and the edit
// it applies to the decoded document.
type migration struct {
	to    string
	apply func(doc map[string]any)
}

// NewMigrator creates a migrator knowing every supported upgrade step.
func NewMigrator() *Migrator {
	return &Migrator{
		steps: map[string]migration{
			"1.0.0": {to: "1.1.0", apply: migrate100to110},
		},
	}
}

// CanMigrate reports whether a chain of known steps leads from one
// version to another. A version can always migrate onto itself.
func (m *Migrator) CanMigrate(from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{}
	for cur := from; !seen[cur]; {
		seen[cur] = true
		step, ok := m.steps[cur]
		if !ok {
			return false
		}
		if step.to == to {
			return true
		}
		cur = step.to
	}
	return false
}

// Migrate rewrites a raw JSON document from one schema version to
// another. Migrating a version onto itself returns the input unchanged.
func (m *Migrator) Migrate(raw []byte, from, to string) ([]byte, error) {
	if from == to {
		return raw, nil
	}
	if !m.CanMigrate(from, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedVersion, from, to)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}
	for cur := from; cur != to; {
		step := m.steps[cur]
		step.apply(doc)
		cur = step.to
	}
	setDocVersion(doc, to)

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("mapio: encode migrated document: %w", err)
	}
	return out, nil
}

// migrate100to110 materializes the fields 1.1.0 added: the resource
// placement list and per-room classifications.
func migrate100to110(doc map[string]any) {
	if _, ok := doc["resources"]; !ok {
		doc["resources"] = []any{}
	}
	rooms, ok := doc["rooms"].([]any)
	if !ok {
		return
	}
	for _, r := range rooms {
		room, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := room["classification"]; !ok {
			room["classification"] = ""
		}
	}
}

func setDocVersion(doc map[string]any, version string) {
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		meta = map[string]any{}
		doc["metadata"] = meta
	}
	meta["version"] = version
}
