package metrics

import "github.com/hydrolab/bodsim/internal/dynamo"

// Peak records the maximum value a single state component reaches.
type Peak struct {
	name    string
	index   int
	max     float64
	samples int
}

func NewPeak(name string, index int) *Peak {
	return &Peak{name: name, index: index}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if p.index >= len(x) {
		return
	}
	if p.samples == 0 || x[p.index] > p.max {
		p.max = x[p.index]
	}
	p.samples++
}

func (p *Peak) Value() float64 {
	return p.max
}

func (p *Peak) Reset() {
	p.max = 0
	p.samples = 0
}
