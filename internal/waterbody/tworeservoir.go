package waterbody

import (
	"fmt"

	"github.com/hydrolab/bodsim/internal/dynamo"
)

// Default parameters: a small coastal lagoon (body 1) connected to a larger
// swamp (body 2), the lagoon open to a bay through a narrow channel.
const (
	DefaultV1 = 1e5 // m³
	DefaultV2 = 2e5 // m³

	DefaultBayCoeff  = 0.6 // m²/s
	DefaultBayArea   = 25  // m²
	DefaultBayLength = 80  // m

	DefaultLinkCoeff  = 0.4 // m²/s
	DefaultLinkArea   = 18  // m²
	DefaultLinkLength = 120 // m

	DefaultK1 = 0.2 // 1/day
	DefaultK2 = 0.1 // 1/day

	DefaultCB        = 1.0       // mg/L
	DefaultLoad      = 1_000_000 // mg/day
	DefaultDischarge = 1.0       // days
)

// TwoReservoir is the coupled mass balance for BOD concentration in two
// connected water bodies:
//
//	dC1/dt = (1/V1)·[D1B·(CB − C1) + D12·(C2 − C1) + L(t)] − k1·C1
//	dC2/dt = (1/V2)·[D12·(C1 − C2)] − k2·C2
//
// Concentrations are not clamped: parameter combinations where decay or
// exchange outpaces available mass can drive the state negative. That is a
// known limitation of the model, left visible rather than silently fixed.
type TwoReservoir struct {
	V1, V2   float64 // volumes, m³
	D1B, D12 float64 // volumetric exchange rates, m³/day
	K1, K2   float64 // first-order decay rates, 1/day
	CB       float64 // boundary (bay) concentration, mg/L
	Load     Source  // point-source load on body 1, mg/day
}

func NewTwoReservoir() *TwoReservoir {
	return &TwoReservoir{
		V1:   DefaultV1,
		V2:   DefaultV2,
		D1B:  Exchange(DefaultBayCoeff, DefaultBayArea, DefaultBayLength),
		D12:  Exchange(DefaultLinkCoeff, DefaultLinkArea, DefaultLinkLength),
		K1:   DefaultK1,
		K2:   DefaultK2,
		CB:   DefaultCB,
		Load: NewPulse(DefaultLoad, DefaultDischarge),
	}
}

func (m *TwoReservoir) StateDim() int { return 2 }

func (m *TwoReservoir) Derive(x dynamo.State, t float64) dynamo.State {
	c1, c2 := x[0], x[1]

	l := 0.0
	if m.Load != nil {
		l = m.Load(t)
	}

	dc1 := (m.D1B*(m.CB-c1)+m.D12*(c2-c1)+l)/m.V1 - m.K1*c1
	dc2 := (m.D12*(c1-c2))/m.V2 - m.K2*c2

	return dynamo.State{dc1, dc2}
}

func (m *TwoReservoir) DefaultState() dynamo.State {
	return dynamo.State{0, 0}
}

// Validate rejects parameter sets that cannot describe a physical system:
// non-positive volumes, or negative rates and concentrations.
func (m *TwoReservoir) Validate() error {
	if m.V1 <= 0 || m.V2 <= 0 {
		return fmt.Errorf("%w: volumes must be positive (V1=%g, V2=%g)",
			dynamo.ErrParameterBounds, m.V1, m.V2)
	}
	if m.D1B < 0 || m.D12 < 0 {
		return fmt.Errorf("%w: exchange rates must be non-negative (D1B=%g, D12=%g)",
			dynamo.ErrParameterBounds, m.D1B, m.D12)
	}
	if m.K1 < 0 || m.K2 < 0 {
		return fmt.Errorf("%w: decay rates must be non-negative (k1=%g, k2=%g)",
			dynamo.ErrParameterBounds, m.K1, m.K2)
	}
	if m.CB < 0 {
		return fmt.Errorf("%w: boundary concentration must be non-negative (CB=%g)",
			dynamo.ErrParameterBounds, m.CB)
	}
	return nil
}

// SteadyState solves the zero-load equilibrium of the coupled balance. It is
// the level both bodies relax towards once a discharge has flushed out.
func (m *TwoReservoir) SteadyState() (c1, c2 float64) {
	ratio := 0.0
	if d := m.D12 + m.V2*m.K2; d != 0 {
		ratio = m.D12 / d
	}
	denom := m.D1B + m.D12 + m.V1*m.K1 - m.D12*ratio
	if denom == 0 {
		return 0, 0
	}
	c1 = m.D1B * m.CB / denom
	c2 = ratio * c1
	return c1, c2
}

// GetParams implements dynamo.Configurable.
func (m *TwoReservoir) GetParams() map[string]float64 {
	return map[string]float64{
		"v1":  m.V1,
		"v2":  m.V2,
		"d1b": m.D1B,
		"d12": m.D12,
		"k1":  m.K1,
		"k2":  m.K2,
		"cb":  m.CB,
	}
}

// SetParam implements dynamo.Configurable. The load pulse is not a scalar
// parameter; callers adjust it by assigning a new Source.
func (m *TwoReservoir) SetParam(name string, value float64) error {
	switch name {
	case "v1":
		m.V1 = value
	case "v2":
		m.V2 = value
	case "d1b":
		m.D1B = value
	case "d12":
		m.D12 = value
	case "k1":
		m.K1 = value
	case "k2":
		m.K2 = value
	case "cb":
		m.CB = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}
