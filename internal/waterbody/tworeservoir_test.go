package waterbody

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hydrolab/bodsim/internal/dynamo"
	"github.com/hydrolab/bodsim/internal/integrators"
)

func TestDeriveFormula(t *testing.T) {
	m := NewTwoReservoir()

	// During the discharge window, state (2.0, 0.5):
	//   dC1/dt = (16200·(1−2) + 5184·(0.5−2) + 1e6)/1e5 − 0.2·2 = 9.36024
	//   dC2/dt = 5184·(2−0.5)/2e5 − 0.1·0.5 = −0.01112
	dx := m.Derive(dynamo.State{2.0, 0.5}, 0.5)

	if math.Abs(dx[0]-9.36024) > 1e-9 {
		t.Errorf("dC1/dt: expected 9.36024, got %.9f", dx[0])
	}
	if math.Abs(dx[1]-(-0.01112)) > 1e-9 {
		t.Errorf("dC2/dt: expected -0.01112, got %.9f", dx[1])
	}
}

func TestSourceContribution(t *testing.T) {
	m := NewTwoReservoir()
	x := dynamo.State{0.7, 0.3}

	during := m.Derive(x, 0.5)
	after := m.Derive(x, 1.5)

	// The only difference across the cutoff is the load term, L_input/V1 in
	// the first component and nothing in the second.
	want := DefaultLoad / m.V1
	if math.Abs((during[0]-after[0])-want) > 1e-9 {
		t.Errorf("expected source contribution %g, got %g", want, during[0]-after[0])
	}
	if during[1] != after[1] {
		t.Errorf("source leaked into body 2: %g vs %g", during[1], after[1])
	}

	// At and beyond the cutoff the contribution is exactly zero.
	atCutoff := m.Derive(x, DefaultDischarge)
	if atCutoff[0] != after[0] {
		t.Error("source still active at the cutoff instant")
	}
}

func TestNilLoadMeansNoSource(t *testing.T) {
	m := NewTwoReservoir()
	m.Load = nil

	withZero := NewTwoReservoir()
	withZero.Load = ZeroSource()

	x := dynamo.State{0.2, 0.1}
	a := m.Derive(x, 0.5)
	b := withZero.Derive(x, 0.5)

	if a[0] != b[0] || a[1] != b[1] {
		t.Errorf("nil load should behave as zero source: %v vs %v", a, b)
	}
}

func TestTrivialEquilibrium(t *testing.T) {
	m := NewTwoReservoir()
	m.CB = 0
	m.Load = ZeroSource()

	sim := dynamo.New(m, integrators.NewRK4())
	result, err := sim.Run(context.Background(), dynamo.State{0, 0}, dynamo.Config{Dt: 0.1, Duration: 30, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}

	for i, s := range result.States {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("trajectory left the trivial equilibrium at sample %d: %v", i, s)
		}
	}
}

func TestIsolatedReservoirsConstant(t *testing.T) {
	m := NewTwoReservoir()
	m.D1B = 0
	m.D12 = 0
	m.K1 = 0
	m.K2 = 0
	m.Load = ZeroSource()

	sim := dynamo.New(m, integrators.NewRK4())
	result, err := sim.Run(context.Background(), dynamo.State{3, 7}, dynamo.Config{Dt: 0.1, Duration: 10, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}

	for i, s := range result.States {
		if s[0] != 3 || s[1] != 7 {
			t.Fatalf("isolated reservoirs drifted at sample %d: %v", i, s)
		}
	}
}

// With no decay, no boundary exchange and no source, the internal exchange
// only moves mass between the bodies; V1·C1 + V2·C2 must stay constant.
func TestMassConservation(t *testing.T) {
	m := NewTwoReservoir()
	m.D1B = 0
	m.K1 = 0
	m.K2 = 0
	m.Load = ZeroSource()

	sim := dynamo.New(m, integrators.NewRK4())
	result, err := sim.Run(context.Background(), dynamo.State{1, 0}, dynamo.Config{Dt: 0.1, Duration: 30, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}

	initial := m.V1 * 1.0
	for i, s := range result.States {
		mass := m.V1*s[0] + m.V2*s[1]
		if math.Abs(mass-initial)/initial > 1e-9 {
			t.Fatalf("mass drifted at sample %d: %.12f vs %.12f", i, mass, initial)
		}
	}

	// The exchange should actually have moved material.
	final := result.Final()
	if final[1] <= 0 {
		t.Error("no mass reached body 2")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TwoReservoir)
		ok     bool
	}{
		{"defaults", func(m *TwoReservoir) {}, true},
		{"zero volume", func(m *TwoReservoir) { m.V1 = 0 }, false},
		{"negative volume", func(m *TwoReservoir) { m.V2 = -1 }, false},
		{"negative exchange", func(m *TwoReservoir) { m.D1B = -1 }, false},
		{"negative decay", func(m *TwoReservoir) { m.K2 = -0.1 }, false},
		{"negative boundary", func(m *TwoReservoir) { m.CB = -0.5 }, false},
		{"zero rates ok", func(m *TwoReservoir) { m.D1B, m.D12, m.K1, m.K2, m.CB = 0, 0, 0, 0, 0 }, true},
	}

	for _, tt := range tests {
		m := NewTwoReservoir()
		tt.mutate(m)
		err := m.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("%s: expected ErrParameterBounds, got %v", tt.name, err)
		}
	}
}

func TestSteadyState(t *testing.T) {
	m := NewTwoReservoir()
	m.Load = ZeroSource()

	c1, c2 := m.SteadyState()

	// The steady state must actually be a fixed point of the balance.
	dx := m.Derive(dynamo.State{c1, c2}, 10)
	if math.Abs(dx[0]) > 1e-12 || math.Abs(dx[1]) > 1e-12 {
		t.Errorf("steady state is not a fixed point: derivative %v", dx)
	}

	if c1 < 0.35 || c1 > 0.45 {
		t.Errorf("steady C1 out of expected band: %f", c1)
	}
	if c2 < 0.07 || c2 > 0.10 {
		t.Errorf("steady C2 out of expected band: %f", c2)
	}
	if c1 >= m.CB {
		t.Errorf("steady C1 should sit below the bay concentration, got %f", c1)
	}
}

func TestConfigurableParams(t *testing.T) {
	m := NewTwoReservoir()

	params := m.GetParams()
	if params["cb"] != DefaultCB {
		t.Errorf("expected cb %g, got %g", DefaultCB, params["cb"])
	}

	if err := m.SetParam("k1", 0.3); err != nil {
		t.Fatal(err)
	}
	if m.K1 != 0.3 {
		t.Errorf("expected k1 0.3, got %f", m.K1)
	}

	if err := m.SetParam("bogus", 1.0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for unknown param, got %v", err)
	}
}

// The original study case: one-day discharge of 1e6 mg/day, bay at 1 mg/L,
// 30 days at dt=0.1.
func TestBaselineScenario(t *testing.T) {
	m := NewTwoReservoir()

	sim := dynamo.New(m, integrators.NewRK4())
	result, err := sim.Run(context.Background(), m.DefaultState(), dynamo.Config{Dt: 0.1, Duration: 30, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.States) != 301 {
		t.Fatalf("expected 301 samples, got %d", len(result.States))
	}
	if result.Times[0] != 0 || result.States[0][0] != 0 || result.States[0][1] != 0 {
		t.Fatal("first sample must be (0, 0.0, 0.0)")
	}
	for i := 1; i < len(result.Times); i++ {
		if result.Times[i] <= result.Times[i-1] {
			t.Fatalf("times not strictly increasing at sample %d", i)
		}
		if math.Abs(result.Times[i]-0.1*float64(i)) > 1e-9 {
			t.Fatalf("sample %d at t=%.10f, expected %.1f", i, result.Times[i], 0.1*float64(i))
		}
	}

	peak := 0.0
	for _, s := range result.States {
		if s[0] < 0 || s[1] < 0 {
			t.Fatal("baseline scenario should stay non-negative")
		}
		if s[0] > peak {
			peak = s[0]
		}
	}

	// The discharge drives body 1 far above the bay level before flushing out.
	if peak < 2 || peak > 12 {
		t.Errorf("peak C1 outside plausible band: %f", peak)
	}

	// By day 30 the pulse has flushed; both bodies sit near the zero-load
	// steady state (C1* ≈ 0.402, C2* ≈ 0.083) plus a small slow-mode tail,
	// well below the bay concentration.
	final := result.Final()
	if final[0] < 0.32 || final[0] > 0.48 {
		t.Errorf("final C1 outside regression band: %f", final[0])
	}
	if final[1] < 0.07 || final[1] > 0.14 {
		t.Errorf("final C2 outside regression band: %f", final[1])
	}
	if final[0] >= m.CB || final[1] >= m.CB {
		t.Errorf("final concentrations should sit below CB: %v", final)
	}
}

// Nothing in the model clamps concentrations: a coarse explicit step on a
// fast-flushing body overshoots below zero and the model reports it as-is.
func TestNegativeConcentrationUnclamped(t *testing.T) {
	m := NewTwoReservoir()
	m.V1 = 1e3
	m.CB = 0
	m.Load = ZeroSource()

	euler := integrators.NewEuler()
	next := euler.Step(m, dynamo.State{1, 0}, 0, 0.1)

	if next[0] >= 0 {
		t.Fatalf("expected overshoot below zero, got %f", next[0])
	}
}
