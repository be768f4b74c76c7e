package waterbody

const secondsPerDay = 86400

// Exchange converts a dispersive connection into a volumetric exchange rate.
// coeff is the dispersion coefficient in m²/s, area the cross-section of the
// connection in m², length the separation in m; the result is in m³/day.
func Exchange(coeff, area, length float64) float64 {
	return coeff * area / length * secondsPerDay
}
