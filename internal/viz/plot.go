package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/hydrolab/bodsim/internal/dynamo"
)

// Chart renders the two concentration series against time, with a flat
// reference series at the bay concentration so the boundary forcing is
// visible on the same axis.
func Chart(states []dynamo.State, cb float64, width, height int) string {
	if len(states) == 0 {
		return ""
	}

	c1 := make([]float64, len(states))
	c2 := make([]float64, len(states))
	bay := make([]float64, len(states))
	for i, s := range states {
		if len(s) > 0 {
			c1[i] = s[0]
		}
		if len(s) > 1 {
			c2[i] = s[1]
		}
		bay[i] = cb
	}

	graph := asciigraph.PlotMany([][]float64{c1, c2, bay},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("BOD concentration [mg/L] vs time [days]"),
		asciigraph.SeriesColors(asciigraph.Aqua, asciigraph.Green, asciigraph.Silver),
	)

	var b strings.Builder
	b.WriteString(graph)
	b.WriteString("\n\n")
	b.WriteString(legendBody1.Render("── body 1 (receives discharge)"))
	b.WriteString("  ")
	b.WriteString(legendBody2.Render("── body 2 (swamp)"))
	b.WriteString("  ")
	b.WriteString(legendBay.Render("── bay boundary"))
	return b.String()
}
