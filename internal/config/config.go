package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hydrolab/bodsim/internal/dynamo"
	"github.com/hydrolab/bodsim/internal/waterbody"
)

const (
	DefaultDt       = 0.1
	DefaultDuration = 30.0

	// Adjustable-input bounds, matching the original study's slider ranges.
	MinLoad  = 0.0
	MaxLoad  = 5_000_000.0
	LoadStep = 100_000.0
	MinCB    = 0.0
	MaxCB    = 10.0
	CBStep   = 0.1
)

type Config struct {
	Integrator string          `yaml:"integrator"`
	Dt         float64         `yaml:"dt"`
	Duration   float64         `yaml:"duration"`
	Bodies     BodiesConfig    `yaml:"bodies"`
	Boundary   BoundaryConfig  `yaml:"boundary"`
	Discharge  DischargeConfig `yaml:"discharge"`
	InitState  InitStateConfig `yaml:"init_state"`
}

type BodiesConfig struct {
	V1   float64        `yaml:"v1"`
	V2   float64        `yaml:"v2"`
	K1   float64        `yaml:"k1"`
	K2   float64        `yaml:"k2"`
	Link ExchangeConfig `yaml:"link"`
}

type BoundaryConfig struct {
	CB       float64        `yaml:"cb"`
	Exchange ExchangeConfig `yaml:"exchange"`
}

// ExchangeConfig describes a dispersive connection between two volumes.
type ExchangeConfig struct {
	Coeff  float64 `yaml:"coeff"`  // m²/s
	Area   float64 `yaml:"area"`   // m²
	Length float64 `yaml:"length"` // m
}

func (e ExchangeConfig) Rate() float64 {
	return waterbody.Exchange(e.Coeff, e.Area, e.Length)
}

type DischargeConfig struct {
	Load     float64 `yaml:"load"`     // mg/day
	Duration float64 `yaml:"duration"` // days
}

type InitStateConfig struct {
	C1 float64 `yaml:"c1"`
	C2 float64 `yaml:"c2"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Bodies: BodiesConfig{
			V1: waterbody.DefaultV1,
			V2: waterbody.DefaultV2,
			K1: waterbody.DefaultK1,
			K2: waterbody.DefaultK2,
			Link: ExchangeConfig{
				Coeff:  waterbody.DefaultLinkCoeff,
				Area:   waterbody.DefaultLinkArea,
				Length: waterbody.DefaultLinkLength,
			},
		},
		Boundary: BoundaryConfig{
			CB: waterbody.DefaultCB,
			Exchange: ExchangeConfig{
				Coeff:  waterbody.DefaultBayCoeff,
				Area:   waterbody.DefaultBayArea,
				Length: waterbody.DefaultBayLength,
			},
		},
		Discharge: DischargeConfig{
			Load:     waterbody.DefaultLoad,
			Duration: waterbody.DefaultDischarge,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Model builds the two-reservoir system this configuration describes.
func (c *Config) Model() *waterbody.TwoReservoir {
	return &waterbody.TwoReservoir{
		V1:   c.Bodies.V1,
		V2:   c.Bodies.V2,
		D1B:  c.Boundary.Exchange.Rate(),
		D12:  c.Bodies.Link.Rate(),
		K1:   c.Bodies.K1,
		K2:   c.Bodies.K2,
		CB:   c.Boundary.CB,
		Load: waterbody.NewPulse(c.Discharge.Load, c.Discharge.Duration),
	}
}

func (c *Config) GetInitState() dynamo.State {
	return dynamo.State{c.InitState.C1, c.InitState.C2}
}

func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		ValidateState: true,
	}
}
