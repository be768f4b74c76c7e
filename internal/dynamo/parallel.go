package dynamo

import (
	"context"
	"sync"
)

// Variant is one member of an ensemble: a system paired with its initial state.
type Variant struct {
	Sys System
	X0  State
}

// Ensemble runs several independent simulations concurrently. Each variant
// gets its own Simulator, so runs share no mutable state; results come back
// in variant order.
type Ensemble struct {
	integrator func() Integrator
	variants   []Variant
}

// NewEnsemble builds an ensemble. The factory is called once per variant so
// integrators with internal scratch buffers are not shared across goroutines.
func NewEnsemble(integrator func() Integrator) *Ensemble {
	return &Ensemble{integrator: integrator}
}

func (e *Ensemble) Add(sys System, x0 State) {
	e.variants = append(e.variants, Variant{Sys: sys, X0: x0})
}

func (e *Ensemble) Len() int { return len(e.variants) }

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.variants))
	errs := make([]error, len(e.variants))

	var wg sync.WaitGroup
	for i, v := range e.variants {
		wg.Add(1)
		go func(idx int, v Variant) {
			defer wg.Done()
			s := New(v.Sys, e.integrator())
			results[idx], errs[idx] = s.Run(ctx, v.X0, cfg)
		}(i, v)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
