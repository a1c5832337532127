package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-kit/log"
	"github.com/san-kum/rode/internal/config"
	"github.com/san-kum/rode/internal/experiment"
	"github.com/san-kum/rode/internal/integrators"
	"github.com/san-kum/rode/internal/numeric"
	"github.com/san-kum/rode/internal/optim"
	"github.com/san-kum/rode/internal/storage"
	"github.com/san-kum/rode/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logFormat string
	quiet     bool
	workers   int
	noSave    bool

	configFile string
	preset     string
	outPath    string

	// euler
	function  string
	drive     string
	y0        float64
	tStart    float64
	tEnd      float64
	numPoints int

	// orbit
	gravK   float64
	semiLat float64
	ecc     float64
	incDeg  float64
	raanDeg float64
	argpDeg float64
	nuDeg   float64
	tof     float64
	samples int

	// plate
	lx, ly     float64
	thickness  float64
	youngs     float64
	poisson    float64
	loadP      float64
	loadXi     float64
	loadEta    float64
	maxM, maxN int
	gridPoints int

	benchRuns int

	sweepParams []string
	sweepMetric string
)

var logger log.Logger = log.NewNopLogger()

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorStyle.Render(err.Error()))
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "rode",
		Short:         "euler, kepler and plate series solvers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(logFormat, quiet)
			numeric.Workers = workers
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", env.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", env.LogFormat, "log format (logfmt, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "disable logging")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", env.Workers, "worker goroutines (0 = GOMAXPROCS)")

	eulerCmd := &cobra.Command{
		Use:   "euler",
		Short: "integrate y' = f with explicit Euler",
		Args:  cobra.NoArgs,
		RunE:  runEuler,
	}
	eulerCmd.Flags().StringVar(&function, "func", config.DefaultFunction, "right-hand side (see 'rode funcs')")
	eulerCmd.Flags().StringVar(&drive, "drive", "time", "argument fed to f (time, state)")
	eulerCmd.Flags().Float64Var(&y0, "y0", 1.0, "initial value")
	eulerCmd.Flags().Float64Var(&tStart, "t0", 0.0, "start time")
	eulerCmd.Flags().Float64Var(&tEnd, "t1", config.DefaultTEnd, "end time")
	eulerCmd.Flags().IntVar(&numPoints, "points", config.DefaultNumPoints, "number of grid points")

	orbitCmd := &cobra.Command{
		Use:   "orbit",
		Short: "propagate a true anomaly along a conic",
		Args:  cobra.NoArgs,
		RunE:  runOrbit,
	}
	orbitCmd.Flags().Float64Var(&gravK, "k", config.DefaultK, "gravitational parameter (km^3/s^2)")
	orbitCmd.Flags().Float64Var(&semiLat, "p", 7000, "semi-latus rectum (km)")
	orbitCmd.Flags().Float64Var(&ecc, "ecc", 0, "eccentricity")
	orbitCmd.Flags().Float64Var(&incDeg, "inc", 0, "inclination (deg)")
	orbitCmd.Flags().Float64Var(&raanDeg, "raan", 0, "right ascension of the ascending node (deg)")
	orbitCmd.Flags().Float64Var(&argpDeg, "argp", 0, "argument of periapsis (deg)")
	orbitCmd.Flags().Float64Var(&nuDeg, "nu", 0, "true anomaly (deg)")
	orbitCmd.Flags().Float64Var(&tof, "tof", 3600, "time of flight (s)")
	orbitCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "samples in [0, tof]")

	plateCmd := &cobra.Command{
		Use:   "plate",
		Short: "deflection of a simply supported plate under a point load",
		Args:  cobra.NoArgs,
		RunE:  runPlate,
	}
	plateCmd.Flags().Float64Var(&lx, "lx", 1, "plate length along x (m)")
	plateCmd.Flags().Float64Var(&ly, "ly", 1, "plate length along y (m)")
	plateCmd.Flags().Float64Var(&thickness, "h", 50e-3, "thickness (m)")
	plateCmd.Flags().Float64Var(&youngs, "E", 69e9, "Young's modulus (Pa)")
	plateCmd.Flags().Float64Var(&poisson, "nu", 0.35, "Poisson ratio")
	plateCmd.Flags().Float64Var(&loadP, "load", -10e3, "point load (N)")
	plateCmd.Flags().Float64Var(&loadXi, "xi", 0.5, "load x coordinate (m)")
	plateCmd.Flags().Float64Var(&loadEta, "eta", 0.5, "load y coordinate (m)")
	plateCmd.Flags().IntVar(&maxM, "max-m", config.DefaultMaxTerms, "series terms along x")
	plateCmd.Flags().IntVar(&maxN, "max-n", config.DefaultMaxTerms, "series terms along y")
	plateCmd.Flags().IntVar(&gridPoints, "points", config.DefaultGrid, "grid points per side")

	for _, c := range []*cobra.Command{eulerCmd, orbitCmd, plateCmd} {
		c.Flags().StringVar(&preset, "preset", "", "start from a preset")
		c.Flags().StringVar(&configFile, "config", "", "start from a config file (yaml)")
		c.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scenario from a config file or preset",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "preset as kind/name")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	funcsCmd := &cobra.Command{
		Use:   "funcs",
		Short: "list right-hand sides available to euler",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range experiment.NewRegistry().ListFuncs() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [kind] [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig(args[0])
			if err := cfg.Validate(); err != nil {
				return err
			}
			return config.Save(args[1], cfg)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and summary",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportXLSXCmd := &cobra.Command{
		Use:   "export-xlsx [run_id]",
		Short: "export run data to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  exportXLSX,
	}
	exportXLSXCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default <run_id>.xlsx)")

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "show Euler error on y' = -y as the grid is refined",
		Args:  cobra.NoArgs,
		RunE:  convergence,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [kind]",
		Short: "benchmark a solver on its default scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&benchRuns, "runs", 20, "number of runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search a scenario over parameters",
		Long: "Runs a scenario once per combination of --param values and reports the\n" +
			"summary metric of each run. Parameters are <kind>.<field>, values are a\n" +
			"comma separated list or start:stop:count.",
		Args: cobra.NoArgs,
		RunE: sweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "preset as kind/name")
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter as name=values (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "", "summary value to minimize")
	_ = sweepCmd.MarkFlagRequired("param")
	_ = sweepCmd.MarkFlagRequired("metric")

	rootCmd.AddCommand(eulerCmd, orbitCmd, plateCmd, runCmd, presetsCmd, funcsCmd, initCmd,
		listCmd, showCmd, plotCmd, exportJSONCmd, exportXLSXCmd, convergeCmd, benchCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newLogger(format string, quiet bool) log.Logger {
	if quiet {
		return log.NewNopLogger()
	}
	w := log.NewSyncWriter(os.Stderr)
	var l log.Logger
	if format == "json" {
		l = log.NewJSONLogger(w)
	} else {
		l = log.NewLogfmtLogger(w)
	}
	return log.With(l, "ts", log.DefaultTimestampUTC)
}

// baseConfig resolves the starting scenario for a kind command: config file,
// then preset, then defaults.
func baseConfig(kind string) (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Kind != kind {
			return nil, fmt.Errorf("%s holds a %s scenario, not %s", configFile, cfg.Kind, kind)
		}
		return cfg, nil
	}
	if preset != "" {
		cfg := config.GetPreset(kind, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(kind))
		}
		return cfg, nil
	}
	return config.DefaultConfig(kind), nil
}

func runEuler(cmd *cobra.Command, args []string) error {
	cfg, err := baseConfig(config.KindEuler)
	if err != nil {
		return err
	}

	e := &cfg.Euler
	flags := cmd.Flags()
	if flags.Changed("func") {
		e.Function = function
	}
	if flags.Changed("drive") {
		e.Drive = drive
	}
	if flags.Changed("y0") {
		e.Y0 = y0
	}
	if flags.Changed("t0") {
		e.TStart = tStart
	}
	if flags.Changed("t1") {
		e.TEnd = tEnd
	}
	if flags.Changed("points") {
		e.NumPoints = numPoints
	}

	return execute(cmd.Context(), cfg)
}

func runOrbit(cmd *cobra.Command, args []string) error {
	cfg, err := baseConfig(config.KindOrbit)
	if err != nil {
		return err
	}

	o := &cfg.Orbit
	flags := cmd.Flags()
	if flags.Changed("k") {
		o.K = gravK
	}
	if flags.Changed("p") {
		o.P = semiLat
	}
	if flags.Changed("ecc") {
		o.Ecc = ecc
	}
	if flags.Changed("inc") {
		o.IncDeg = incDeg
	}
	if flags.Changed("raan") {
		o.RaanDeg = raanDeg
	}
	if flags.Changed("argp") {
		o.ArgpDeg = argpDeg
	}
	if flags.Changed("nu") {
		o.NuDeg = nuDeg
	}
	if flags.Changed("tof") {
		o.TOF = tof
	}
	if flags.Changed("samples") {
		o.Samples = samples
	}

	return execute(cmd.Context(), cfg)
}

func runPlate(cmd *cobra.Command, args []string) error {
	cfg, err := baseConfig(config.KindPlate)
	if err != nil {
		return err
	}

	p := &cfg.Plate
	flags := cmd.Flags()
	if flags.Changed("lx") {
		p.Geometry.Lx = lx
	}
	if flags.Changed("ly") {
		p.Geometry.Ly = ly
	}
	if flags.Changed("h") {
		p.Geometry.H = thickness
	}
	if flags.Changed("E") {
		p.Geometry.E = youngs
	}
	if flags.Changed("nu") {
		p.Geometry.Nu = poisson
	}
	if flags.Changed("load") {
		p.Load.P = loadP
	}
	if flags.Changed("xi") {
		p.Load.Xi = loadXi
	}
	if flags.Changed("eta") {
		p.Load.Eta = loadEta
	}
	if flags.Changed("max-m") {
		p.MaxM = maxM
	}
	if flags.Changed("max-n") {
		p.MaxN = maxN
	}
	if flags.Changed("points") {
		p.Points = gridPoints
	}

	return execute(cmd.Context(), cfg)
}

// scenario resolves --config or --preset kind/name.
func scenario() (*config.Config, error) {
	switch {
	case configFile != "" && preset != "":
		return nil, fmt.Errorf("--config and --preset are mutually exclusive")
	case configFile != "":
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	case preset != "":
		kind, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be kind/name, got %q", preset)
		}
		cfg := config.GetPreset(kind, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(kind))
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("one of --config or --preset is required")
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := scenario()
	if err != nil {
		return err
	}
	return execute(cmd.Context(), cfg)
}

func sweep(cmd *cobra.Command, args []string) error {
	base, err := scenario()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, p := range sweepParams {
		name, vals, err := optim.ParseParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runner := experiment.NewRunner(log.NewNopLogger(), nil)
	logger.Log("level", "info", "subsys", "optim", "kind", base.Kind, "points", len(g.Points()), "metric", sweepMetric)

	points, best, err := g.Search(ctx, base, runner, sweepMetric)
	if err != nil && !errors.Is(err, optim.ErrNoResult) {
		return fmt.Errorf("%w (parameters for %s: %v)", err, base.Kind, optim.Params(base.Kind))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric))
	for _, p := range points {
		cols := make([]string, 0, len(names)+1)
		for _, name := range names {
			cols = append(cols, fmt.Sprintf("%g", p.Params[name]))
		}
		if p.Err != nil {
			cols = append(cols, "error: "+p.Err.Error())
		} else {
			cols = append(cols, fmt.Sprintf("%.10g", p.Value))
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if errors.Is(err, optim.ErrNoResult) {
		return err
	}
	fmt.Println()
	fmt.Println(viz.Header("best"))
	fmt.Print(viz.Summary(best.Params))
	fmt.Print(viz.Summary(map[string]float64{sweepMetric: best.Value}))
	return nil
}

func execute(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	runner := experiment.NewRunner(logger, nil)
	res, err := runner.Run(ctx, cfg)
	if err != nil {
		return err
	}

	title := res.Kind
	if res.Name != "" {
		title += " / " + res.Name
	}
	fmt.Println(viz.Header(title))
	fmt.Print(viz.Summary(res.Summary))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("  %d rows in %v", len(res.Rows), res.Elapsed.Round(time.Microsecond))))
	fmt.Println()
	fmt.Println(plotTable(res.Kind, res.Table()))

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(res.Kind, res.Name, res.Params, res.Summary, res.Table())
	if err != nil {
		return err
	}
	logger.Log("level", "info", "subsys", "storage", "run", runID, "dir", dataDir)
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

func plotTable(kind string, table storage.Table) string {
	switch kind {
	case config.KindEuler:
		return viz.Plot(table.Column("y"), "y vs t")
	case config.KindOrbit:
		return viz.Plot(table.Column("nu"), "true anomaly (rad) vs time of flight")
	case config.KindPlate:
		ys := table.Column("y")
		if len(ys) == 0 {
			return ""
		}
		mid := (ys[0] + ys[len(ys)-1]) / 2
		return viz.Plot(viz.Profile(table.Rows, mid), fmt.Sprintf("w along y = %.3g", mid))
	}
	return ""
}

func listPresets(cmd *cobra.Command, args []string) error {
	kinds := []string{config.KindEuler, config.KindOrbit, config.KindPlate}
	if len(args) == 1 {
		kinds = args
	}
	for _, kind := range kinds {
		presets := config.ListPresets(kind)
		if len(presets) == 0 {
			fmt.Printf("no presets for kind: %s\n", kind)
			continue
		}
		fmt.Printf("presets for %s:\n", kind)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
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
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tNAME\tTIME\tROWS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.Kind,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Header(meta.ID))
	fmt.Printf("  kind: %s\n", meta.Kind)
	if meta.Name != "" {
		fmt.Printf("  name: %s\n", meta.Name)
	}
	fmt.Printf("  time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("  rows: %d (%s)\n\n", meta.Rows, strings.Join(meta.Columns, ", "))
	fmt.Print(viz.Summary(meta.Summary))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	table, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("samples: %d\n\n", len(table.Rows))
	fmt.Println(plotTable(meta.Kind, table))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	table, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.ExportJSON(os.Stdout, meta, table)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := storage.ExportJSON(f, meta, table); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	table, err := st.LoadTable(args[0])
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = filepath.Base(args[0]) + ".xlsx"
	}
	if err := storage.ExportXLSX(path, meta, table); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func convergence(cmd *cobra.Command, args []string) error {
	f := numeric.FuncOf(func(y float64) float64 { return -y })
	e := &integrators.Euler{Drive: integrators.StateDriven}
	exact := math.Exp(-1)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POINTS\tH\tY(1)\tERROR\tRATIO")
	prev := 0.0
	for n := 11; n <= 10241; n = 2*n - 1 {
		tr, err := e.Uniform(f, 1, 0, 1, n)
		if err != nil {
			return err
		}
		_, y := tr.Last()
		errAbs := math.Abs(y - exact)
		ratio := "-"
		if prev > 0 {
			ratio = fmt.Sprintf("%.3f", prev/errAbs)
		}
		fmt.Fprintf(w, "%d\t%.3e\t%.12f\t%.3e\t%s\n", n, 1/float64(n-1), y, errAbs, ratio)
		prev = errAbs
	}
	return w.Flush()
}

func bench(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig(args[0])
	if err := cfg.Validate(); err != nil {
		return err
	}
	if benchRuns < 1 {
		return fmt.Errorf("--runs must be >= 1")
	}

	runner := experiment.NewRunner(nil, nil)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("benchmarking %s (%d runs)...\n", args[0], benchRuns)
	start := time.Now()
	rows := 0
	for i := 0; i < benchRuns; i++ {
		res, err := runner.Run(ctx, cfg)
		if err != nil {
			return err
		}
		rows += len(res.Rows)
	}
	elapsed := time.Since(start)

	fmt.Printf("total: %v\n", elapsed)
	fmt.Printf("per run: %v\n", elapsed/time.Duration(benchRuns))
	fmt.Printf("rows/sec: %.0f\n", float64(rows)/elapsed.Seconds())
	return nil
}
