package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-kit/log"
	"github.com/san-kum/rode/internal/config"
	"github.com/san-kum/rode/internal/integrators"
	"github.com/san-kum/rode/internal/kepler"
	"github.com/san-kum/rode/internal/numeric"
	"github.com/san-kum/rode/internal/plate"
	"github.com/san-kum/rode/internal/storage"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Result is the tabular outcome of one scenario.
type Result struct {
	Kind    string
	Name    string
	Params  any
	Columns []string
	Rows    [][]float64
	Summary map[string]float64
	Elapsed time.Duration
}

func (r *Result) Table() storage.Table {
	return storage.Table{Columns: r.Columns, Rows: r.Rows}
}

type Runner struct {
	logger   log.Logger
	registry *Registry
}

func NewRunner(logger log.Logger, registry *Registry) *Runner {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Runner{logger: log.With(logger, "subsys", "experiment"), registry: registry}
}

func (r *Runner) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.logger.Log("level", "info", "kind", cfg.Kind, "name", cfg.Name, "status", "started")
	start := time.Now()

	var (
		res *Result
		err error
	)
	switch cfg.Kind {
	case config.KindEuler:
		res, err = r.runEuler(cfg.Euler)
	case config.KindOrbit:
		res, err = r.runOrbit(ctx, cfg.Orbit)
	case config.KindPlate:
		res, err = r.runPlate(cfg.Plate)
	}
	if err != nil {
		r.logger.Log("level", "error", "kind", cfg.Kind, "name", cfg.Name, "err", err)
		return nil, err
	}

	res.Kind = cfg.Kind
	res.Name = cfg.Name
	res.Elapsed = time.Since(start)
	r.logger.Log("level", "info", "kind", cfg.Kind, "name", cfg.Name, "status", "finished", "rows", len(res.Rows), "elapsed", res.Elapsed)
	return res, nil
}

func (r *Runner) runEuler(c config.EulerConfig) (*Result, error) {
	f, err := r.registry.GetFunc(c.Function)
	if err != nil {
		return nil, err
	}
	drive, err := integrators.ParseDrive(c.Drive)
	if err != nil {
		return nil, err
	}

	e := &integrators.Euler{Drive: drive}
	tr, err := e.Uniform(f, c.Y0, c.TStart, c.TEnd, c.NumPoints)
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, tr.Len())
	for i := range rows {
		t, y := tr.At(i)
		rows[i] = []float64{t, y}
	}
	_, last := tr.Last()

	return &Result{
		Params:  c,
		Columns: []string{"t", "y"},
		Rows:    rows,
		Summary: map[string]float64{
			"h":       (c.TEnd - c.TStart) / float64(c.NumPoints-1),
			"y_final": last,
			"y_min":   floats.Min(tr.Values),
			"y_max":   floats.Max(tr.Values),
		},
	}, nil
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}

func orbitElements(c config.OrbitConfig) kepler.Elements {
	return kepler.Elements{
		K:    c.K,
		P:    c.P,
		Ecc:  c.Ecc,
		Inc:  deg2rad(c.IncDeg),
		Raan: deg2rad(c.RaanDeg),
		Argp: deg2rad(c.ArgpDeg),
		Nu:   deg2rad(c.NuDeg),
	}
}

// runOrbit samples the true anomaly at evenly spaced times of flight in
// [0, tof]. A single sample is taken at tof.
func (r *Runner) runOrbit(ctx context.Context, c config.OrbitConfig) (*Result, error) {
	el := orbitElements(c)
	if err := el.Validate(); err != nil {
		return nil, err
	}

	tofs := make([]float64, c.Samples)
	if c.Samples == 1 {
		tofs[0] = c.TOF
	} else {
		floats.Span(tofs, 0, c.TOF)
	}

	rows := make([][]float64, len(tofs))
	g, ctx := errgroup.WithContext(ctx)
	if numeric.Workers > 0 {
		g.SetLimit(numeric.Workers)
	}
	for i, tof := range tofs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nu, err := kepler.Propagate(el, tof)
			if err != nil {
				return fmt.Errorf("tof %g: %w", tof, err)
			}
			radius := el.P / (1 + el.Ecc*math.Cos(nu))
			rows[i] = []float64{tof, nu, radius}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	radii := make([]float64, len(rows))
	for i, row := range rows {
		radii[i] = row[2]
	}
	summary := map[string]float64{
		"nu_final": rows[len(rows)-1][1],
		"r_min":    floats.Min(radii),
		"r_max":    floats.Max(radii),
		"shape":    float64(el.Shape()),
	}
	if period, err := el.Period(); err == nil {
		summary["period"] = period
	}

	return &Result{
		Params:  c,
		Columns: []string{"tof", "nu", "r"},
		Rows:    rows,
		Summary: summary,
	}, nil
}

func (r *Runner) runPlate(c config.PlateConfig) (*Result, error) {
	pl := c.Geometry.Plate()

	xs := make([]float64, c.Points)
	ys := make([]float64, c.Points)
	floats.Span(xs, 0, pl.Lx)
	floats.Span(ys, 0, pl.Ly)
	gx, gy := plate.Meshgrid(xs, ys)

	w, err := plate.NewDisplacementField(gx, gy, c.Load, pl, c.MaxM, c.MaxN)
	if err != nil {
		return nil, err
	}

	rowsN, colsN := w.Dims()
	rows := make([][]float64, 0, rowsN*colsN)
	minW, maxW := math.Inf(1), math.Inf(-1)
	for i := 0; i < rowsN; i++ {
		for j := 0; j < colsN; j++ {
			v := w.At(i, j)
			rows = append(rows, []float64{gx.At(i, j), gy.At(i, j), v})
			minW = math.Min(minW, v)
			maxW = math.Max(maxW, v)
		}
	}

	atLoad, err := plate.Displacement(c.Load.Xi, c.Load.Eta, c.Load, pl, c.MaxM, c.MaxN)
	if err != nil {
		return nil, err
	}

	return &Result{
		Params:  c,
		Columns: []string{"x", "y", "w"},
		Rows:    rows,
		Summary: map[string]float64{
			"rigidity": pl.D,
			"w_min":    minW,
			"w_max":    maxW,
			"w_load":   atLoad,
		},
	}, nil
}
