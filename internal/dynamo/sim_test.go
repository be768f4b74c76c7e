package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

// decaySystem is dX/dt = -X componentwise; solution x0·e^{-t}.
type decaySystem struct{}

func (d *decaySystem) StateDim() int { return 2 }
func (d *decaySystem) Derive(x State, t float64) State {
	return State{-x[0], -x[1]}
}

// nanSystem poisons the state on the first derivative evaluation.
type nanSystem struct{}

func (n *nanSystem) StateDim() int { return 2 }
func (n *nanSystem) Derive(x State, t float64) State {
	return State{math.NaN(), 0}
}

// eulerStep is a minimal in-package integrator so these tests do not depend
// on the integrators package.
type eulerStep struct{}

func (e *eulerStep) Step(sys System, x State, t, dt float64) State {
	dx := sys.Derive(x, t)
	next := make(State, len(x))
	for i := range x {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}

func TestRunTrajectoryShape(t *testing.T) {
	sim := New(&decaySystem{}, &eulerStep{})
	cfg := Config{Dt: 0.1, Duration: 30.0, ValidateState: true}

	result, err := sim.Run(context.Background(), State{1, 0}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.States) != 301 {
		t.Errorf("expected 301 samples, got %d", len(result.States))
	}
	if len(result.Times) != len(result.States) {
		t.Errorf("times and states disagree: %d vs %d", len(result.Times), len(result.States))
	}
	if result.StepsTaken != 300 {
		t.Errorf("expected 300 steps, got %d", result.StepsTaken)
	}

	if result.Times[0] != 0 {
		t.Errorf("first sample must be at t=0, got %f", result.Times[0])
	}
	if result.States[0][0] != 1 || result.States[0][1] != 0 {
		t.Errorf("first sample must be the initial state, got %v", result.States[0])
	}

	for i := 1; i < len(result.Times); i++ {
		gap := result.Times[i] - result.Times[i-1]
		if gap <= 0 {
			t.Fatalf("times not strictly increasing at sample %d", i)
		}
		if math.Abs(gap-cfg.Dt) > 1e-9 {
			t.Fatalf("uneven spacing at sample %d: %g", i, gap)
		}
	}
}

func TestRunInvalidConfig(t *testing.T) {
	sim := New(&decaySystem{}, &eulerStep{})

	tests := []Config{
		{Dt: 0, Duration: 10},
		{Dt: -0.1, Duration: 10},
		{Dt: 0.1, Duration: 0},
		{Dt: 0.1, Duration: -5},
	}

	for _, cfg := range tests {
		_, err := sim.Run(context.Background(), State{1, 0}, cfg)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("dt=%g duration=%g: expected ErrInvalidConfig, got %v", cfg.Dt, cfg.Duration, err)
		}
	}
}

func TestRunDimensionMismatch(t *testing.T) {
	sim := New(&decaySystem{}, &eulerStep{})
	cfg := Config{Dt: 0.1, Duration: 1.0}

	_, err := sim.Run(context.Background(), State{1, 0, 0}, cfg)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRunDetectsInstability(t *testing.T) {
	sim := New(&nanSystem{}, &eulerStep{})
	cfg := Config{Dt: 0.1, Duration: 10.0, ValidateState: true}

	result, err := sim.Run(context.Background(), State{1, 0}, cfg)
	if !errors.Is(err, ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", err)
	}

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatal("expected a SimulationError wrapper")
	}
	if simErr.Step != 0 {
		t.Errorf("expected failure at step 0, got %d", simErr.Step)
	}

	// The poisoned sample must not enter the trajectory.
	for _, s := range result.States {
		if !s.IsValid() {
			t.Error("invalid state leaked into trajectory")
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	cfg := Config{Dt: 0.1, Duration: 5.0}

	a, err := New(&decaySystem{}, &eulerStep{}).Run(context.Background(), State{1, 2}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(&decaySystem{}, &eulerStep{}).Run(context.Background(), State{1, 2}, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.States {
		if a.States[i][0] != b.States[i][0] || a.States[i][1] != b.States[i][1] {
			t.Fatalf("runs diverged at sample %d", i)
		}
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(&decaySystem{}, &eulerStep{})
	_, err := sim.Run(ctx, State{1, 0}, Config{Dt: 0.1, Duration: 10})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := New(&decaySystem{}, &eulerStep{})
	cfg := Config{Dt: 0.1, Duration: 1.0}

	samples := 0
	err := sim.RunWithCallback(context.Background(), State{1, 0}, cfg, func(x State, t float64) bool {
		samples++
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if samples != 11 {
		t.Errorf("expected 11 callback samples, got %d", samples)
	}

	samples = 0
	err = sim.RunWithCallback(context.Background(), State{1, 0}, cfg, func(x State, t float64) bool {
		samples++
		return samples < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if samples != 3 {
		t.Errorf("expected early stop after 3 samples, got %d", samples)
	}
}
