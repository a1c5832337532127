package config

import (
	"sort"

	"github.com/san-kum/rode/internal/plate"
)

var Presets = map[string]map[string]*Config{
	KindEuler: {
		"ramp": {
			Kind: KindEuler, Name: "ramp",
			Euler: EulerConfig{Function: "neg_identity", Drive: "time", Y0: 1, TEnd: DefaultTEnd, NumPoints: 100},
		},
		"decay": {
			Kind: KindEuler, Name: "decay",
			Euler: EulerConfig{Function: "neg_identity", Drive: "state", Y0: 1, TEnd: 5, NumPoints: 200},
		},
		"wave": {
			Kind: KindEuler, Name: "wave",
			Euler: EulerConfig{Function: "cos", Drive: "time", Y0: 0, TEnd: 4 * 3.141592653589793, NumPoints: 400},
		},
	},
	KindOrbit: {
		"iss": {
			Kind: KindOrbit, Name: "iss",
			Orbit: OrbitConfig{
				K: DefaultK, P: 6780.8472106, Ecc: 0.00130547,
				IncDeg: 51.6012092, RaanDeg: 198.37949974, ArgpDeg: 39.26289661, NuDeg: 46.59580468,
				TOF: 20000, Samples: 128,
			},
		},
		"molniya": {
			Kind: KindOrbit, Name: "molniya",
			Orbit: OrbitConfig{
				K: DefaultK, P: 9937.5, Ecc: 0.74,
				IncDeg: 63.4, ArgpDeg: 270, NuDeg: 0,
				TOF: 43080, Samples: 128,
			},
		},
		"parabolic": {
			Kind: KindOrbit, Name: "parabolic",
			Orbit: OrbitConfig{K: DefaultK, P: 14000, Ecc: 1, NuDeg: -90, TOF: 20000, Samples: 64},
		},
		"flyby": {
			Kind: KindOrbit, Name: "flyby",
			Orbit: OrbitConfig{K: DefaultK, P: 20000, Ecc: 1.8, NuDeg: -100, TOF: 30000, Samples: 64},
		},
	},
	KindPlate: {
		"aluminium": {
			Kind: KindPlate, Name: "aluminium",
			Plate: PlateConfig{
				Geometry: plate.Geometry{Lx: 1, Ly: 1, H: 50e-3, E: 69e9, Nu: 0.35},
				Load:     plate.Load{P: -10e3, Xi: 0.5, Eta: 0.5},
				MaxM:     16, MaxN: 16, Points: 101,
			},
		},
		"offset": {
			Kind: KindPlate, Name: "offset",
			Plate: PlateConfig{
				Geometry: plate.Geometry{Lx: 2, Ly: 1.2, H: 20e-3, E: 210e9, Nu: 0.3},
				Load:     plate.Load{P: -5e3, Xi: 0.6, Eta: 0.4},
				MaxM:     24, MaxN: 24, Points: 61,
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// ListPresets returns the preset names for kind in sorted order.
func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
