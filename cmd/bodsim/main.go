package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hydrolab/bodsim/internal/config"
	"github.com/hydrolab/bodsim/internal/dynamo"
	"github.com/hydrolab/bodsim/internal/integrators"
	"github.com/hydrolab/bodsim/internal/metrics"
	"github.com/hydrolab/bodsim/internal/storage"
	"github.com/hydrolab/bodsim/internal/viz"
	"github.com/hydrolab/bodsim/internal/waterbody"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	load       float64
	cb         float64
	discharge  float64
	initC1     float64
	initC2     float64
	integrator string
	configFile string
	preset     string
	// sweep range
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bodsim",
		Short: "BOD transport simulation in interconnected water bodies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bodsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the trajectory",
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive view with adjustable load and bay concentration",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a concurrent sweep over discharge loads",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "lowest load [mg/day]")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", config.MaxLoad, "highest load [mg/day]")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "number of sweep points")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			fmt.Println("presets:")
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd,
		exportCSVCmd, exportJSONCmd, sweepCmd, compareCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep [days]")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated horizon [days]")
	cmd.Flags().Float64Var(&load, "load", waterbody.DefaultLoad, "discharge load [mg/day]")
	cmd.Flags().Float64Var(&cb, "cb", waterbody.DefaultCB, "bay concentration [mg/L]")
	cmd.Flags().Float64Var(&discharge, "discharge", waterbody.DefaultDischarge, "discharge duration [days]")
	cmd.Flags().Float64Var(&initC1, "c1", 0, "initial concentration in body 1 [mg/L]")
	cmd.Flags().Float64Var(&initC2, "c2", 0, "initial concentration in body 2 [mg/L]")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (rk4, euler)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
}

// buildConfig resolves preset, config file and flags into one scenario.
// Precedence: flags override the config file, which overrides the preset.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			names := config.ListPresets()
			sort.Strings(names)
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, names)
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("load") {
		cfg.Discharge.Load = load
	}
	if cmd.Flags().Changed("cb") {
		cfg.Boundary.CB = cb
	}
	if cmd.Flags().Changed("discharge") {
		cfg.Discharge.Duration = discharge
	}
	if cmd.Flags().Changed("c1") {
		cfg.InitState.C1 = initC1
	}
	if cmd.Flags().Changed("c2") {
		cfg.InitState.C2 = initC2
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}

	return cfg, nil
}

func newIntegrator(name string) (dynamo.Integrator, error) {
	switch name {
	case "rk4":
		return integrators.NewRK4(), nil
	case "euler":
		return integrators.NewEuler(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func defaultMetrics(sys *waterbody.TwoReservoir) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewMassDrift(sys.V1, sys.V2),
		metrics.NewPeak("peak_c1", 0),
		metrics.NewPeak("peak_c2", 1),
		metrics.NewStability(1e6),
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sys := cfg.Model()
	if err := sys.Validate(); err != nil {
		return err
	}

	integ, err := newIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sim := dynamo.New(sys, integ)
	for _, m := range defaultMetrics(sys) {
		sim.AddMetric(m)
	}

	fmt.Println("running simulation...")
	start := time.Now()

	result, err := sim.Run(context.Background(), cfg.GetInitState(), cfg.RunConfig())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Load:       cfg.Discharge.Load,
		CB:         cfg.Boundary.CB,
		Discharge:  cfg.Discharge.Duration,
	}, result)
	if err != nil {
		return err
	}

	final := result.Final()
	ss1, ss2 := sys.SteadyState()

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(result.States))
	fmt.Printf("final C1: %.4f mg/L (zero-load steady state %.4f)\n", final[0], ss1)
	fmt.Printf("final C2: %.4f mg/L (zero-load steady state %.4f)\n", final[1], ss2)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	m := viz.NewModel(cfg)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tINTEG\tLOAD\tCB")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1fd\t%.3fd\t%s\t%.0f\t%.2f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Load,
			run.CB,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(states))
	fmt.Println(viz.Chart(states, meta.CB, 80, 14))

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, states, times)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	states, times, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.ExportCSV(os.Stdout, states, times)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return exportRun(cmd, args)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if sweepSteps < 2 {
		return fmt.Errorf("sweep needs at least 2 steps, got %d", sweepSteps)
	}
	if sweepTo < sweepFrom {
		return fmt.Errorf("sweep range is inverted: from=%g to=%g", sweepFrom, sweepTo)
	}

	loads := make([]float64, sweepSteps)
	step := (sweepTo - sweepFrom) / float64(sweepSteps-1)

	if _, err := newIntegrator(cfg.Integrator); err != nil {
		return err
	}
	ensemble := dynamo.NewEnsemble(func() dynamo.Integrator {
		integ, _ := newIntegrator(cfg.Integrator)
		return integ
	})

	for i := range loads {
		loads[i] = sweepFrom + float64(i)*step
		sys := cfg.Model()
		sys.Load = waterbody.NewPulse(loads[i], cfg.Discharge.Duration)
		ensemble.Add(sys, cfg.GetInitState())
	}

	fmt.Printf("sweeping %d loads from %.0f to %.0f mg/day...\n\n", sweepSteps, sweepFrom, sweepTo)
	start := time.Now()

	results, err := ensemble.Run(context.Background(), cfg.RunConfig())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOAD\tPEAK_C1\tFINAL_C1\tFINAL_C2")

	for i, result := range results {
		peak := 0.0
		for _, s := range result.States {
			if s[0] > peak {
				peak = s[0]
			}
		}
		final := result.Final()
		fmt.Fprintf(w, "%.0f\t%.4f\t%.4f\t%.4f\n", loads[i], peak, final[0], final[1])
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators (dt=%.4f, duration=%.1fd)\n\n", cfg.Dt, cfg.Duration)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL_C1\tFINAL_C2\tMASS_DRIFT\tTIME_MS")

	for _, name := range args {
		integ, err := newIntegrator(name)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		sys := cfg.Model()
		sim := dynamo.New(sys, integ)
		drift := metrics.NewMassDrift(sys.V1, sys.V2)
		sim.AddMetric(drift)

		start := time.Now()
		result, err := sim.Run(context.Background(), cfg.GetInitState(), cfg.RunConfig())
		elapsed := time.Since(start)

		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		final := result.Final()
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.2e\t%.2f\n",
			name, final[0], final[1], result.Metrics["mass_drift"],
			float64(elapsed.Microseconds())/1000)
	}

	return w.Flush()
}
