package metrics

import (
	"math"

	"github.com/hydrolab/bodsim/internal/dynamo"
)

// MassDrift tracks the relative drift of total stored BOD mass
// (V1·C1 + V2·C2) from its first observed value. With no decay, no boundary
// exchange and no source, the balance conserves mass exactly, so any drift
// is integration error.
type MassDrift struct {
	name        string
	v1, v2      float64
	initialMass float64
	maxDrift    float64
	samples     int
}

func NewMassDrift(v1, v2 float64) *MassDrift {
	return &MassDrift{
		name: "mass_drift",
		v1:   v1,
		v2:   v2,
	}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(x dynamo.State, t float64) {
	if len(x) < 2 {
		return
	}
	mass := m.v1*x[0] + m.v2*x[1]

	if m.samples == 0 {
		m.initialMass = mass
	}
	m.samples++

	if m.initialMass != 0 {
		drift := math.Abs(mass-m.initialMass) / math.Abs(m.initialMass)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassDrift) Value() float64 {
	return m.maxDrift
}

func (m *MassDrift) Reset() {
	m.initialMass = 0
	m.maxDrift = 0
	m.samples = 0
}
