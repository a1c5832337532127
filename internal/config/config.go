package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/san-kum/rode/internal/plate"
	"gopkg.in/yaml.v3"
)

const (
	KindEuler = "euler"
	KindOrbit = "orbit"
	KindPlate = "plate"
)

const (
	DefaultNumPoints = 100
	DefaultTEnd      = 6.283185307179586
	DefaultFunction  = "neg_identity"
	DefaultK         = 398600.4418
	DefaultSamples   = 64
	DefaultMaxTerms  = 16
	DefaultGrid      = 101
)

type Config struct {
	Kind  string      `yaml:"kind"`
	Name  string      `yaml:"name,omitempty"`
	Euler EulerConfig `yaml:"euler,omitempty"`
	Orbit OrbitConfig `yaml:"orbit,omitempty"`
	Plate PlateConfig `yaml:"plate,omitempty"`
}

type EulerConfig struct {
	Function  string  `yaml:"function"`
	Drive     string  `yaml:"drive"`
	Y0        float64 `yaml:"y0"`
	TStart    float64 `yaml:"t_start"`
	TEnd      float64 `yaml:"t_end"`
	NumPoints int     `yaml:"num_points"`
}

// OrbitConfig holds orbital elements with angles in degrees, as they are
// usually published.
type OrbitConfig struct {
	K       float64 `yaml:"k"`
	P       float64 `yaml:"p"`
	Ecc     float64 `yaml:"ecc"`
	IncDeg  float64 `yaml:"inc_deg"`
	RaanDeg float64 `yaml:"raan_deg"`
	ArgpDeg float64 `yaml:"argp_deg"`
	NuDeg   float64 `yaml:"nu_deg"`
	TOF     float64 `yaml:"tof"`
	Samples int     `yaml:"samples"`
}

type PlateConfig struct {
	Geometry plate.Geometry `yaml:"geometry"`
	Load     plate.Load     `yaml:"load"`
	MaxM     int            `yaml:"max_m"`
	MaxN     int            `yaml:"max_n"`
	Points   int            `yaml:"points"`
}

// Env holds settings read from the environment.
type Env struct {
	DataDir   string `env:"RODE_DATA_DIR" envDefault:".rode"`
	LogFormat string `env:"RODE_LOG_FORMAT" envDefault:"logfmt"`
	Workers   int    `env:"RODE_WORKERS" envDefault:"0"`
}

func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

func DefaultConfig(kind string) *Config {
	cfg := &Config{Kind: kind}
	switch kind {
	case KindEuler:
		cfg.Euler = EulerConfig{
			Function:  DefaultFunction,
			Drive:     "time",
			Y0:        1.0,
			TEnd:      DefaultTEnd,
			NumPoints: DefaultNumPoints,
		}
	case KindOrbit:
		cfg.Orbit = OrbitConfig{
			K:       DefaultK,
			P:       7000,
			Samples: DefaultSamples,
			TOF:     3600,
		}
	case KindPlate:
		cfg.Plate = PlateConfig{
			Geometry: plate.Geometry{Lx: 1, Ly: 1, H: 50e-3, E: 69e9, Nu: 0.35},
			Load:     plate.Load{P: -10e3, Xi: 0.5, Eta: 0.5},
			MaxM:     DefaultMaxTerms,
			MaxN:     DefaultMaxTerms,
			Points:   DefaultGrid,
		}
	}
	return cfg
}

// Load reads a YAML scenario. Fields missing from the file keep the defaults
// of the declared kind.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Kind string `yaml:"kind"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := DefaultConfig(head.Kind)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the scenario shape. Kernel level checks happen again when
// the scenario runs.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindEuler:
		e := c.Euler
		if e.Function == "" {
			return fmt.Errorf("euler: function is required")
		}
		if e.Drive != "" && e.Drive != "time" && e.Drive != "state" {
			return fmt.Errorf("euler: unknown drive %q", e.Drive)
		}
		if e.NumPoints < 2 {
			return fmt.Errorf("euler: num_points must be >= 2, got %d", e.NumPoints)
		}
		if e.TEnd == e.TStart {
			return fmt.Errorf("euler: empty interval [%g, %g]", e.TStart, e.TEnd)
		}
	case KindOrbit:
		o := c.Orbit
		if o.K <= 0 || o.P <= 0 {
			return fmt.Errorf("orbit: k and p must be positive")
		}
		if o.Ecc < 0 {
			return fmt.Errorf("orbit: eccentricity must be >= 0, got %g", o.Ecc)
		}
		if o.Samples < 1 {
			return fmt.Errorf("orbit: samples must be >= 1, got %d", o.Samples)
		}
	case KindPlate:
		p := c.Plate
		if err := p.Geometry.Validate(); err != nil {
			return fmt.Errorf("plate: %w", err)
		}
		if p.MaxM < 1 || p.MaxN < 1 {
			return fmt.Errorf("plate: max_m and max_n must be >= 1")
		}
		if p.Points < 2 {
			return fmt.Errorf("plate: points must be >= 2, got %d", p.Points)
		}
	default:
		return fmt.Errorf("unknown kind %q (want euler, orbit or plate)", c.Kind)
	}
	return nil
}
