package data

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samdwyer/overmap/internal/corridor"
	"github.com/samdwyer/overmap/internal/mapgen"
	"github.com/samdwyer/overmap/internal/partition"
)

// DefaultPreset is the preset used when the caller names none.
const DefaultPreset = "standard"

// PresetDef defines a generation preset loaded from JSON.
type PresetDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	MapWidth  int `json:"mapWidth"`
	MapHeight int `json:"mapHeight"`

	MinPartitionSize    int     `json:"minPartitionSize"`
	MaxDepth            int     `json:"maxDepth"`
	SplitVariation      float64 `json:"splitVariation"`
	SplitPreference     string  `json:"splitPreference"`
	BalanceTree         bool    `json:"balanceTree"`
	StopSplittingChance float64 `json:"stopSplittingChance"`

	RoomSizeRatio float64 `json:"roomSizeRatio"`
	RoomVariation float64 `json:"roomVariation"`
	CenterRooms   bool    `json:"centerRooms"`

	CorridorWidth    int  `json:"corridorWidth"`
	VariableWidth    bool `json:"variableWidth"`
	DiagonalMovement bool `json:"diagonalMovement"`

	EnemyTypes     []string `json:"enemyTypes"`
	ResourceTypes  []string `json:"resourceTypes"`
	ResourceChance float64  `json:"resourceChance"`
}

// ToConfig converts the preset to a validated generator configuration.
func (p PresetDef) ToConfig() (mapgen.Config, error) {
	preference, err := partition.ParseSplitPreference(p.SplitPreference)
	if err != nil {
		return mapgen.Config{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}

	cfg := mapgen.Config{
		MapWidth:  p.MapWidth,
		MapHeight: p.MapHeight,
		Partition: partition.Config{
			MinPartitionSize:       p.MinPartitionSize,
			MaxDepth:               p.MaxDepth,
			SplitPositionVariation: p.SplitVariation,
			AllowHorizontal:        true,
			AllowVertical:          true,
			SplitPreference:        preference,
			StopSplittingChance:    p.StopSplittingChance,
			BalanceTree:            p.BalanceTree,
			RoomSizeRatio:          p.RoomSizeRatio,
			RoomPositionVariation:  p.RoomVariation,
			CenterRooms:            p.CenterRooms,
		},
		Corridor: corridor.Config{
			Width:              p.CorridorWidth,
			AllowVariableWidth: p.VariableWidth,
			DiagonalMovement:   p.DiagonalMovement,
			RoomAvoidCost:      corridor.DefaultConfig().RoomAvoidCost,
		},
		Spawns: mapgen.SpawnConfig{
			EnemyTypes:     p.EnemyTypes,
			ResourceTypes:  p.ResourceTypes,
			ResourceChance: p.ResourceChance,
		},
	}
	if err := cfg.Validate(); err != nil {
		return mapgen.Config{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return cfg, nil
}

// PresetsFile represents the structure of presets.json.
type PresetsFile struct {
	Presets []PresetDef `json:"presets"`
}

// LoadPresets loads preset definitions from the embedded presets.json.
func LoadPresets() ([]PresetDef, error) {
	file, err := Load[PresetsFile]("presets.json")
	if err != nil {
		return nil, err
	}
	return file.Presets, nil
}

// Registry holds loaded presets indexed by name.
type Registry struct {
	byName map[string]PresetDef
}

// NewRegistry creates a registry from preset definitions.
func NewRegistry(presets []PresetDef) (*Registry, error) {
	byName := make(map[string]PresetDef, len(presets))
	for _, p := range presets {
		if p.Name == "" {
			return nil, errors.New("preset with empty name")
		}
		if _, dup := byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate preset name %q", p.Name)
		}
		byName[p.Name] = p
	}
	return &Registry{byName: byName}, nil
}

// LoadRegistry loads and creates a registry from the embedded presets.json.
func LoadRegistry() (*Registry, error) {
	presets, err := LoadPresets()
	if err != nil {
		return nil, err
	}
	if len(presets) == 0 {
		return nil, errors.New("no presets loaded from presets.json")
	}
	return NewRegistry(presets)
}

// MustLoadRegistry loads a registry, panicking on error.
func MustLoadRegistry() *Registry {
	registry, err := LoadRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// ByName looks up a preset.
func (r *Registry) ByName(name string) (PresetDef, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Names returns every preset name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of loaded presets.
func (r *Registry) Count() int {
	return len(r.byName)
}
