package config

import "sort"

var Presets = map[string]*Config{
	"iodine128": {
		Name: "iodine128", DecayConst: 0.02775, Size: 50, Timestep: 0.01,
		Workers: 1, Runs: DefaultRuns, Unit: "min",
	},
	"iodine128-coarse": {
		Name: "iodine128-coarse", DecayConst: 0.02775, Size: 50, Timestep: 0.1,
		Workers: 1, Runs: DefaultRuns, Unit: "min",
	},
	"fast": {
		Name: "fast", DecayConst: 1.0, Size: 100, Timestep: 0.01,
		Workers: 4, Runs: 50, Unit: "s",
	},
	"tiny": {
		Name: "tiny", DecayConst: 1.0, Size: 1, Timestep: 0.01,
		Workers: 1, Runs: 100, Unit: "s",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
