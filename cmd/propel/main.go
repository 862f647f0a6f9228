package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/propel/internal/config"
	"github.com/san-kum/propel/internal/events"
	"github.com/san-kum/propel/internal/feed"
	"github.com/san-kum/propel/internal/propagate"
	"github.com/san-kum/propel/internal/storage"
	"github.com/san-kum/propel/internal/traject"
	"github.com/san-kum/propel/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	integrator string
	adaptive   bool
	tolerance  float64
	theta      float64
	omega      float64
	pos        float64
	vel        float64
	semiMajor  float64
	ecc        float64
	masses     int
	stopAt     float64
	configFile string
	preset     string
	feedAddr   string
	// Plot shape
	plotWidth  int
	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "propel",
		Short: "trajectory propagation with event detection",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".propel", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "propagate a scenario and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&feedAddr, "feed", "", "serve a live WebSocket event feed on this address")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "propagate with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run with its events",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "chart width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "chart height")

	eventsCmd := &cobra.Command{
		Use:   "events [run_id]",
		Short: "list the events of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  listEvents,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a run's trajectory as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, listCmd, plotCmd, eventsCmd, exportCSVCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4, rk45)")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive step size (rk45)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-6, "adaptive error tolerance")
	cmd.Flags().Float64Var(&theta, "theta", config.DefaultTheta, "initial angle (pendulum)")
	cmd.Flags().Float64Var(&omega, "omega", 0.0, "initial angular velocity (pendulum)")
	cmd.Flags().Float64Var(&pos, "pos", 0.0, "initial position (springmass)")
	cmd.Flags().Float64Var(&vel, "vel", 0.0, "initial velocity (springmass)")
	cmd.Flags().Float64Var(&semiMajor, "semi-major", config.DefaultSemiMajor, "semi-major axis (kepler)")
	cmd.Flags().Float64Var(&ecc, "ecc", 0.0, "eccentricity (kepler)")
	cmd.Flags().IntVar(&masses, "masses", config.DefaultMasses, "chain length (springchain)")
	cmd.Flags().Float64Var(&stopAt, "stop-at", 0, "halt propagation at this time")
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset scenario")
}

// resolveConfig folds preset, config file and CLI flags into one scenario,
// CLI flags winning over the file, the file over the preset.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
		cfg.Model = model
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if cmd.Flags().Changed("theta") {
		cfg.InitState.Theta = theta
	}
	if cmd.Flags().Changed("omega") {
		cfg.InitState.Omega = omega
	}
	if cmd.Flags().Changed("pos") {
		cfg.InitState.Pos = pos
	}
	if cmd.Flags().Changed("vel") {
		cfg.InitState.Vel = vel
	}
	if cmd.Flags().Changed("semi-major") {
		cfg.InitState.SemiMajor = semiMajor
	}
	if cmd.Flags().Changed("ecc") {
		cfg.InitState.Eccentricity = ecc
	}
	if cmd.Flags().Changed("masses") {
		cfg.InitState.Masses = masses
	}
	if cmd.Flags().Changed("stop-at") {
		cfg.Detectors = append(cfg.Detectors, config.DetectorConfig{
			Type: "time", At: stopAt, Action: "stop",
		})
	}
	return cfg, nil
}

// scenario is a fully built propagation setup.
type scenario struct {
	cfg    *config.Config
	sys    traject.System
	prop   *propagate.Propagator
	labels map[events.Detector]string
}

func buildScenario(cmd *cobra.Command, model string) (*scenario, error) {
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return nil, err
	}

	sys, x0, err := cfg.BuildSystem()
	if err != nil {
		return nil, err
	}
	integ, err := cfg.BuildIntegrator()
	if err != nil {
		return nil, err
	}
	dets, err := cfg.BuildDetectors(sys)
	if err != nil {
		return nil, err
	}

	pc := propagate.DefaultConfig()
	pc.Dt = cfg.Dt
	pc.Adaptive = cfg.Adaptive
	if cfg.Tolerance > 0 {
		pc.Tolerance = cfg.Tolerance
	}

	prop := propagate.New(sys, integ, x0, 0, pc)
	labels := make(map[events.Detector]string, len(dets))
	for i, d := range dets {
		prop.RegisterDetector(d)
		labels[d] = detectorLabel(cfg.Detectors[i])
	}
	return &scenario{cfg: cfg, sys: sys, prop: prop, labels: labels}, nil
}

func detectorLabel(dc config.DetectorConfig) string {
	var label string
	switch dc.Type {
	case "time":
		label = fmt.Sprintf("time@%g", dc.At)
	case "component":
		label = fmt.Sprintf("x[%d]=%g", dc.Index, dc.Value)
	case "norm":
		label = fmt.Sprintf("|x|=%g", dc.Value)
	case "energy":
		label = fmt.Sprintf("energy=%g", dc.Value)
	case "altitude":
		label = fmt.Sprintf("r=%g", dc.Value)
	case "apside":
		switch dc.Filter {
		case "increasing":
			return "periapsis"
		case "decreasing":
			return "apoapsis"
		}
		return "apside"
	default:
		label = dc.Type
	}
	if dc.Filter != "" {
		label += " " + dc.Filter
	}
	return label
}

func (sc *scenario) label(d events.Detector) string {
	if name, ok := sc.labels[d]; ok {
		return name
	}
	return "detector"
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := buildScenario(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var rec storage.Record
	sc.prop.AddObserver(&rec)

	var srv *feed.Server
	if feedAddr != "" {
		srv = feed.NewServer(feedAddr)
		sc.prop.AddObserver(srv)
		go func() {
			if err := srv.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "feed: %v\n", err)
			}
		}()
		defer srv.Stop()
	}

	fmt.Printf("propagating %s for %gs...\n", sc.cfg.Model, sc.cfg.Duration)
	start := time.Now()

	// Chunked propagation keeps the feed responsive; without a feed one
	// leg would do the same work.
	stride := sc.cfg.Duration / 100
	if srv == nil {
		stride = sc.cfg.Duration
	}
	for sc.prop.Current().T < sc.cfg.Duration && !sc.prop.Stopped() {
		target := sc.prop.Current().T + stride
		if target > sc.cfg.Duration {
			target = sc.cfg.Duration
		}
		if _, err := sc.prop.Propagate(context.Background(), target); err != nil {
			return err
		}
		for _, occ := range sc.prop.Events() {
			rec.Events = append(rec.Events, storage.EventRecord{
				Time:       occ.Time,
				Detector:   sc.label(occ.Detector),
				Increasing: occ.Increasing,
				Action:     occ.Action.String(),
				State:      occ.State.X.Clone(),
			})
			if srv != nil {
				srv.PublishEvent(feed.EventUpdate{
					Time:       occ.Time,
					Detector:   sc.label(occ.Detector),
					Increasing: occ.Increasing,
					Action:     occ.Action.String(),
					State:      occ.State.X.Clone(),
				})
			}
		}
	}
	rec.Stopped = sc.prop.Stopped()

	elapsed := time.Since(start)

	runID, err := st.Save(sc.cfg.Model, sc.cfg.Integrator, sc.cfg.Dt, sc.cfg.Duration, &rec.RunRecord)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(rec.Times))
	fmt.Printf("final time: %.6f\n", sc.prop.Current().T)
	if rec.Stopped {
		fmt.Println("halted by a stop event")
	}

	if len(rec.Events) > 0 {
		fmt.Println("\nevents:")
		fmt.Print(viz.EventTable(eventRows(rec.Events)))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := buildScenario(cmd, args[0])
	if err != nil {
		return err
	}

	var energy func(traject.State) float64
	if h, ok := sc.sys.(traject.Hamiltonian); ok {
		energy = h.Energy
	}

	model := viz.NewLive(sc.prop, sc.cfg.Duration, sc.cfg.Duration/300, sc.cfg.Model, sc.label, energy)
	p := tea.NewProgram(model)
	_, err = p.Run()
	return err
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tEVENTS\tSTOPPED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%v\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Events,
			run.Stopped,
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
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	traj := make([]traject.State, len(states))
	for i, s := range states {
		traj[i] = traject.State(s)
	}

	numVars := len(states[0])
	if numVars > 6 {
		numVars = 6
	}
	for idx := 0; idx < numVars; idx++ {
		fmt.Printf("x%d vs time\n", idx)
		fmt.Println(viz.Trajectory(traj, []int{idx}, nil, plotWidth, plotHeight))
		fmt.Println()
	}

	evs, err := st.LoadEvents(runID)
	if err == nil && len(evs) > 0 {
		evTimes := make([]float64, len(evs))
		for i, ev := range evs {
			evTimes[i] = ev.Time
		}
		fmt.Println("events over [" +
			fmt.Sprintf("%.3f, %.3f", times[0], times[len(times)-1]) + "]:")
		fmt.Println(viz.EventRuler(times[0], times[len(times)-1], evTimes, plotWidth))
		fmt.Print(viz.EventTable(eventRows(evs)))
	}
	return nil
}

func listEvents(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	evs, err := st.LoadEvents(args[0])
	if err != nil {
		return err
	}
	fmt.Print(viz.EventTable(eventRows(evs)))
	return nil
}

func eventRows(evs []storage.EventRecord) []viz.EventRow {
	rows := make([]viz.EventRow, 0, len(evs))
	for _, ev := range evs {
		rows = append(rows, viz.EventRow{
			Time:       ev.Time,
			Name:       ev.Detector,
			Increasing: ev.Increasing,
			Action:     ev.Action,
		})
	}
	return rows
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	fmt.Println(strings.Join(header, ","))
	for i, s := range states {
		row := []string{fmt.Sprintf("%.9f", times[i])}
		for _, v := range s {
			row = append(row, fmt.Sprintf("%.9f", v))
		}
		fmt.Println(strings.Join(row, ","))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	evs, err := st.LoadEvents(runID)
	if err != nil {
		return err
	}

	out := struct {
		Meta   *storage.RunMetadata  `json:"meta"`
		Times  []float64             `json:"times"`
		States [][]float64           `json:"states"`
		Events []storage.EventRecord `json:"events"`
	}{meta, times, states, evs}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
