package waterbody

// Source is a time-dependent mass input rate in mg/day.
type Source func(t float64) float64

// NewPulse returns a source that delivers load mg/day while t < duration and
// nothing afterwards. The cutoff is a hard step, not a ramp: the derivative
// field of any system carrying this source is discontinuous at t = duration.
func NewPulse(load, duration float64) Source {
	return func(t float64) float64 {
		if t < duration {
			return load
		}
		return 0
	}
}

// ZeroSource returns a source that never delivers mass.
func ZeroSource() Source {
	return func(float64) float64 { return 0 }
}
