package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/coilsim/internal/automation"
	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/config"
	"github.com/san-kum/coilsim/internal/drive"
	"github.com/san-kum/coilsim/internal/export"
	"github.com/san-kum/coilsim/internal/metrics"
	"github.com/san-kum/coilsim/internal/optim"
	"github.com/san-kum/coilsim/internal/sim"
	"github.com/san-kum/coilsim/internal/storage"
	"github.com/san-kum/coilsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	// Config sources
	configFile string
	preset     string
	// Coil
	loops        int
	radius       float64
	wireWidth    float64
	loopSpacing  float64
	speedScale   float64
	flow         string
	hideCarriers bool
	// Drive
	driveKind string
	amplitude float64
	period    float64
	offset    float64
	// Run
	ticks     int
	frameRate int
	// Output
	outFile  string
	braille  bool
	series   []string
	minLoops int
	maxLoops int
	// Search
	searchParams []string
	metricName   string
	maximize     bool
)

// main registers the coilsim commands and exits with status 1 if the
// selected command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "coilsim",
		Short:         "charge carriers flowing through a wire coil",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".coilsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and store the series",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate the coil in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&series, "series", []string{"indicator", "crossings"}, "series to plot (indicator, crossings, mean_position, foreground)")
	plotCmd.Flags().StringVarP(&outFile, "svg", "o", "", "also write each series as <prefix>_<series>.svg")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "write the coil and its carriers as SVG",
		Args:  cobra.NoArgs,
		RunE:  exportSVG,
	}
	addConfigFlags(exportSVGCmd)
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "coil.svg", "output file")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal canvas instead of vector paths")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run, or a coil snapshot when no run is given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	addConfigFlags(exportJSONCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one coil per loop count in parallel and compare metrics",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&minLoops, "min-loops", 1, "smallest loop count")
	sweepCmd.Flags().IntVar(&maxLoops, "max-loops", 6, "largest loop count")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted YAML scenario on one coil",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search coil parameters for the best metric",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addConfigFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchParams, "param", nil, "name=min:max:step or name=v1,v2,... (repeatable; names: "+strings.Join(optim.Params(), ", ")+")")
	searchCmd.Flags().StringVar(&metricName, "metric", "throughput", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "maximize", true, "maximize the metric instead of minimizing it")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLOOPS\tRADIUS\tDRIVE\tAMPLITUDE\tPERIOD")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%.0f\t%s\t%.2f\t%.0f\n",
					name, p.Coil.Loops, p.Coil.Radius, p.Drive.Kind, p.Drive.Amplitude, p.Drive.Period)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	addConfigFlags(initCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, sweepCmd, scenarioCmd, searchCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// addConfigFlags registers the flags that mirror config keys. Defaults match
// config.DefaultConfig; only flags set on the command line override the
// preset or config file.
func addConfigFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&loops, "loops", def.Coil.Loops, "number of loops")
	f.Float64Var(&radius, "radius", def.Coil.Radius, "loop radius")
	f.Float64Var(&wireWidth, "wire-width", def.Coil.WireWidth, "wire width")
	f.Float64Var(&loopSpacing, "loop-spacing", def.Coil.LoopSpacing, "gap between loops")
	f.Float64Var(&speedScale, "speed", def.Coil.SpeedScale, "carrier speed scale")
	f.StringVar(&flow, "flow", def.Coil.CurrentFlow, "current flow convention (electron, conventional)")
	f.BoolVar(&hideCarriers, "hide-carriers", false, "hide and freeze carriers")
	f.StringVar(&driveKind, "drive", def.Drive.Kind, "drive waveform ("+strings.Join(drive.Kinds(), ", ")+")")
	f.Float64Var(&amplitude, "amplitude", def.Drive.Amplitude, "drive amplitude")
	f.Float64Var(&period, "period", def.Drive.Period, "drive period in ticks")
	f.Float64Var(&offset, "offset", def.Drive.Offset, "drive offset")
	f.IntVar(&ticks, "ticks", def.Run.Ticks, "number of ticks")
}

// resolveConfig layers defaults, preset, config file and explicit flags, in
// that order. The returned name labels stored runs.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "coil"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("loops") {
		cfg.Coil.Loops = loops
	}
	if f.Changed("radius") {
		cfg.Coil.Radius = radius
	}
	if f.Changed("wire-width") {
		cfg.Coil.WireWidth = wireWidth
	}
	if f.Changed("loop-spacing") {
		cfg.Coil.LoopSpacing = loopSpacing
	}
	if f.Changed("speed") {
		cfg.Coil.SpeedScale = speedScale
	}
	if f.Changed("flow") {
		cfg.Coil.CurrentFlow = flow
	}
	if f.Changed("hide-carriers") {
		cfg.Coil.CarriersVisible = !hideCarriers
	}
	if f.Changed("drive") {
		cfg.Drive.Kind = driveKind
	}
	if f.Changed("amplitude") {
		cfg.Drive.Amplitude = amplitude
	}
	if f.Changed("period") {
		cfg.Drive.Period = period
	}
	if f.Changed("offset") {
		cfg.Drive.Offset = offset
	}
	if f.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if f.Changed("fps") {
		cfg.Run.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// newSimulator builds the configured coil and its drive clock.
func newSimulator(cfg *config.Config, opts ...coil.Option) (*sim.Simulator, error) {
	c, err := cfg.NewCoil(opts...)
	if err != nil {
		return nil, err
	}
	source, err := drive.New(cfg.DriveSpec())
	if err != nil {
		return nil, err
	}
	return sim.New(c, source), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d loops, radius %.0f, %s drive, %d ticks...\n",
		name, cfg.Coil.Loops, cfg.Coil.Radius, cfg.Drive.Kind, cfg.Run.Ticks)
	start := time.Now()

	result, err := s.Run(ctx, sim.Config{Dt: cfg.Run.Dt, Ticks: cfg.Run.Ticks})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, s.Coil().CarrierCount(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("segments: %d  carriers: %d  ticks: %d\n",
		s.Coil().SegmentCount(), s.Coil().CarrierCount(), result.StepsTaken)
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(s, name, cfg.Run.FPS)
	p := tea.NewProgram(m, tea.WithAltScreen())
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tLOOPS\tRADIUS\tDRIVE\tTICKS\tCARRIERS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\t%s\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Loops,
			run.Radius,
			run.Drive,
			run.Ticks,
			run.Carriers,
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

	records, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("coil: %d loops, radius %.0f, %s drive\n", meta.Loops, meta.Radius, meta.Drive)
	fmt.Printf("samples: %d\n\n", len(records))

	result := &sim.Result{Records: records}
	for _, name := range series {
		data, err := result.Series(name)
		if err != nil {
			return err
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs tick"),
		)
		fmt.Println(graph)
		fmt.Println()

		if outFile != "" {
			path := fmt.Sprintf("%s_%s.svg", outFile, name)
			svg := export.SeriesToSVG(data, 800, 200, string(viz.CurrentTheme.Wire))
			if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n\n", path)
		}
	}

	return nil
}

// advance runs the configured coil for the configured number of ticks so
// snapshots show carriers mid-flight.
func advance(cmd *cobra.Command) (*config.Config, *coil.Coil, error) {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	s, err := newSimulator(cfg)
	if err != nil {
		return nil, nil, err
	}
	if !cmd.Flags().Changed("ticks") {
		return cfg, s.Coil(), nil
	}

	ctx, cancel := signalContext()
	defer cancel()
	if _, err := s.Run(ctx, sim.Config{Dt: cfg.Run.Dt, Ticks: cfg.Run.Ticks}); err != nil {
		return nil, nil, err
	}
	return cfg, s.Coil(), nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, c, err := advance(cmd)
	if err != nil {
		return err
	}

	var svg string
	if braille {
		canvas := viz.NewCanvas(80, 24)
		carriers := c.Carriers()
		if !c.CarriersVisible() {
			carriers = nil
		}
		viz.DrawCoil(canvas, c.Segments(), carriers, c.CurrentFlow())
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		opts := export.DefaultSVGOptions()
		opts.ShowCarriers = c.CarriersVisible()
		opts.Flow = c.CurrentFlow()
		svg = export.CoilSVG(c.Segments(), c.Carriers(), opts)
	}

	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d segments, %d carriers)\n", outFile, c.SegmentCount(), c.CarrierCount())
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_, c, err := advance(cmd)
		if err != nil {
			return err
		}
		return export.WriteJSON(os.Stdout, export.NewSnapshot(c))
	}

	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	return export.WriteJSON(os.Stdout, export.RunData{
		ID:      meta.ID,
		Ticks:   meta.Ticks,
		Records: records,
		Metrics: meta.Metrics,
	})
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if minLoops < 1 || maxLoops < minLoops {
		return fmt.Errorf("invalid loop range %d..%d", minLoops, maxLoops)
	}

	ensemble := sim.NewEnsemble()
	coils := make([]*coil.Coil, 0, maxLoops-minLoops+1)
	for n := minLoops; n <= maxLoops; n++ {
		s, err := newSimulator(cfg, coil.WithLoops(n))
		if err != nil {
			return fmt.Errorf("%d loops: %w", n, err)
		}
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
		ensemble.Add(s)
		coils = append(coils, s.Coil())
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sweeping %d coils over %d ticks...\n", ensemble.Len(), cfg.Run.Ticks)
	results, err := ensemble.Run(ctx, sim.Config{Dt: cfg.Run.Dt, Ticks: cfg.Run.Ticks})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOOPS\tSEGMENTS\tCARRIERS\tTHROUGHPUT\tFOREGROUND\tSTALL")
	for i, r := range results {
		c := coils[i]
		fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\t%.3f\t%.3f\n",
			c.NumberOfLoops(),
			c.SegmentCount(),
			c.CarrierCount(),
			r.Metrics["throughput"],
			r.Metrics["foreground"],
			r.Metrics["stall"],
		)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, st, os.Stdout)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nSTEP\tLOOPS\tRADIUS\tDRIVE\tTHROUGHPUT\tRUN ID")
	for _, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%.0f\t%s\t%.4f\t%s\n",
			r.Index+1,
			r.Config.Coil.Loops,
			r.Config.Coil.Radius,
			r.Config.Drive.Kind,
			r.Result.Metrics["throughput"],
			runID,
		)
	}
	return w.Flush()
}

func runSearch(cmd *cobra.Command, args []string) error {
	base, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(searchParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	names := make([]string, 0, len(searchParams))
	ranges := make([][]float64, 0, len(searchParams))
	for _, p := range searchParams {
		name, spec, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("invalid --param %q: want name=range", p)
		}
		values, err := optim.ParseRange(spec)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	for i, name := range names {
		if _, err := optim.ApplyParams(base, map[string]float64{name: ranges[i][0]}); err != nil {
			return err
		}
	}

	build := func(params map[string]float64) (*sim.Simulator, error) {
		cfg, err := optim.ApplyParams(base, params)
		if err != nil {
			return nil, err
		}
		s, err := newSimulator(cfg)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
		return s, nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = maximize
	best, val, err := g.Search(ctx, build, sim.Config{Dt: base.Run.Dt, Ticks: base.Run.Ticks}, metricName)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d points (%d skipped)\n", g.Evaluated, g.Skipped)
	fmt.Printf("best %s: %.6f\n", metricName, val)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}
