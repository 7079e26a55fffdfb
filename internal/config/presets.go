package config

import "sort"

// Presets are ready-made rigs covering the common cases: a short park line,
// a longline, a loaded highline, and a driven bounce test.
var Presets = map[string]*Config{
	"park": {
		Line: "dyneemite-pro", GapLength: 30, AnchorTension: 2000,
		Dynamic: DynamicConfig{
			Nodes: 65, Duration: 10, Frames: 300, Width: 2,
			Scenario: "pluck", Displacement: -0.3,
		},
	},
	"longline": {
		Line: "dyneemite-pro", GapLength: 100, AnchorTension: 4000,
		Dynamic: DynamicConfig{
			Nodes: 129, Duration: 20, Frames: 600, Width: 4,
			Scenario: "pluck", Displacement: -0.5,
		},
	},
	"loaded-highline": {
		Line: "feather-pro", GapLength: 50, AnchorTension: 2500,
		Loads: []LoadConfig{{Position: 25, Mass: 75}},
		Dynamic: DynamicConfig{
			Nodes: 65, Duration: 10, Frames: 300, Width: 2, Damping: 0.02,
		},
	},
	"bounce": {
		Line: "dyneemite-pro", GapLength: 30, AnchorTension: 2000,
		Dynamic: DynamicConfig{
			Nodes: 65, Duration: 15, Frames: 450, Damping: 0.01,
			Scenario: "bounce", Frequency: 1.5, Amplitude: 400,
		},
	},
}

// GetPreset returns a named preset, or nil if it does not exist.
func GetPreset(name string) *Config {
	return Presets[name]
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
