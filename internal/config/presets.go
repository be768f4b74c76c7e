package config

// Presets are named scenarios for the two-body system. "baseline" is the
// original study case: a one-day discharge of 1,000,000 mg/day into body 1
// with the bay held at 1.0 mg/L.
var Presets = map[string]func() *Config{
	"baseline": DefaultConfig,
	"no-discharge": func() *Config {
		cfg := DefaultConfig()
		cfg.Discharge.Load = 0
		return cfg
	},
	"heavy-load": func() *Config {
		cfg := DefaultConfig()
		cfg.Discharge.Load = MaxLoad
		return cfg
	},
	"clean-bay": func() *Config {
		cfg := DefaultConfig()
		cfg.Boundary.CB = 0
		return cfg
	},
	"long-spill": func() *Config {
		cfg := DefaultConfig()
		cfg.Discharge.Duration = 5.0
		cfg.Duration = 60.0
		return cfg
	},
	"stagnant": func() *Config {
		// Bay channel silted shut: body 1 flushes only through the swamp.
		cfg := DefaultConfig()
		cfg.Boundary.Exchange.Coeff = 0
		cfg.Duration = 60.0
		return cfg
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
