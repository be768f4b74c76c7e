package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/hydrolab/bodsim/internal/dynamo"
)

type ExportData struct {
	ID         string             `json:"id"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Load       float64            `json:"load"`
	CB         float64            `json:"cb"`
	Samples    int                `json:"samples"`
	Times      []float64          `json:"times"`
	C1         []float64          `json:"c1"`
	C2         []float64          `json:"c2"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a trajectory as a single JSON document with the two
// concentration series split out by name.
func ExportJSON(w io.Writer, meta *RunMetadata, states []dynamo.State, times []float64) error {
	data := ExportData{
		ID:         meta.ID,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Load:       meta.Load,
		CB:         meta.CB,
		Samples:    len(times),
		Times:      times,
		C1:         make([]float64, len(states)),
		C2:         make([]float64, len(states)),
		Metrics:    meta.Metrics,
	}

	for i, s := range states {
		if len(s) > 0 {
			data.C1[i] = s[0]
		}
		if len(s) > 1 {
			data.C2[i] = s[1]
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes a trajectory as time,c1,c2 rows with a header.
func ExportCSV(w io.Writer, states []dynamo.State, times []float64) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"time", "c1", "c2"}); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return nil
}
