package scene

import "fmt"

// MaterialPreset holds physical-material parameters for rendering. Presets
// are immutable and shared by reference across meshes for the process
// lifetime; Dispose never touches them.
type MaterialPreset struct {
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	Metalness    float64 `json:"metalness"`
	Roughness    float64 `json:"roughness"`
	Reflectivity float64 `json:"reflectivity"`
	Clearcoat    float64 `json:"clearcoat"`
	Emissive     string  `json:"emissive"`
}

var (
	MaterialGold = &MaterialPreset{
		Name:         "gold",
		Color:        "#ffd700",
		Metalness:    1.0,
		Roughness:    0.15,
		Reflectivity: 0.9,
		Clearcoat:    0.3,
		Emissive:     "#1a1200",
	}
	MaterialSilver = &MaterialPreset{
		Name:         "silver",
		Color:        "#e8e8e8",
		Metalness:    1.0,
		Roughness:    0.1,
		Reflectivity: 0.95,
		Clearcoat:    0.25,
		Emissive:     "#101010",
	}
	MaterialRoseGold = &MaterialPreset{
		Name:         "roseGold",
		Color:        "#e8a87c",
		Metalness:    1.0,
		Roughness:    0.2,
		Reflectivity: 0.85,
		Clearcoat:    0.3,
		Emissive:     "#170d08",
	}
	MaterialPlatinum = &MaterialPreset{
		Name:         "platinum",
		Color:        "#d6d6d0",
		Metalness:    1.0,
		Roughness:    0.12,
		Reflectivity: 0.92,
		Clearcoat:    0.2,
		Emissive:     "#0e0e0d",
	}
)

var materialPresets = map[string]*MaterialPreset{
	MaterialGold.Name:     MaterialGold,
	MaterialSilver.Name:   MaterialSilver,
	MaterialRoseGold.Name: MaterialRoseGold,
	MaterialPlatinum.Name: MaterialPlatinum,
}

// MaterialByName looks up a shared preset. The returned pointer must not be
// mutated.
func MaterialByName(name string) (*MaterialPreset, error) {
	preset, ok := materialPresets[name]
	if !ok {
		return nil, fmt.Errorf("unknown material preset: %s", name)
	}
	return preset, nil
}

func MaterialNames() []string {
	names := make([]string, 0, len(materialPresets))
	for name := range materialPresets {
		names = append(names, name)
	}
	return names
}
