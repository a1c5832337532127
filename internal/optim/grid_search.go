package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/rode/internal/config"
	"github.com/san-kum/rode/internal/experiment"
	"github.com/san-kum/rode/internal/numeric"
	"golang.org/x/sync/errgroup"
)

var ErrNoResult = errors.New("optim: no grid point produced a result")

// Point is one evaluated combination. Err is set when the scenario could not
// be run with these parameters.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points returns the cartesian product of the ranges, last parameter varying
// fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.collect(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.collect(depth+1, current, out)
	}
	delete(current, name)
}

// Search runs base once per grid point and reads metric from the run summary.
// It returns every point in grid order and the one with the smallest value.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, runner *experiment.Runner, metric string) ([]Point, Point, error) {
	combos := g.Points()
	for _, name := range g.paramNames {
		if err := Apply(&config.Config{Kind: base.Kind}, name, 0); err != nil {
			return nil, Point{}, err
		}
	}

	points := make([]Point, len(combos))
	eg, ctx := errgroup.WithContext(ctx)
	if numeric.Workers > 0 {
		eg.SetLimit(numeric.Workers)
	}
	for i, params := range combos {
		eg.Go(func() error {
			points[i] = Point{Params: params}
			if err := ctx.Err(); err != nil {
				return err
			}

			cfg := *base
			for name, val := range params {
				if err := Apply(&cfg, name, val); err != nil {
					return err
				}
			}

			res, err := runner.Run(ctx, &cfg)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				points[i].Err = err
				return nil
			}

			val, ok := res.Summary[metric]
			if !ok {
				return fmt.Errorf("optim: unknown metric %q for %s runs", metric, cfg.Kind)
			}
			points[i].Value = val
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, Point{}, err
	}

	best := Point{Value: math.Inf(1)}
	found := false
	for _, p := range points {
		if p.Err == nil && p.Value < best.Value {
			best = p
			found = true
		}
	}
	if !found {
		return points, Point{}, ErrNoResult
	}
	return points, best, nil
}

// Params lists the parameter names Apply understands for kind.
func Params(kind string) []string {
	var names []string
	for name := range setters {
		if len(name) > len(kind) && name[:len(kind)+1] == kind+"." {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

var setters = map[string]func(*config.Config, float64){
	"euler.y0":         func(c *config.Config, v float64) { c.Euler.Y0 = v },
	"euler.t_start":    func(c *config.Config, v float64) { c.Euler.TStart = v },
	"euler.t_end":      func(c *config.Config, v float64) { c.Euler.TEnd = v },
	"euler.num_points": func(c *config.Config, v float64) { c.Euler.NumPoints = int(v) },
	"orbit.k":          func(c *config.Config, v float64) { c.Orbit.K = v },
	"orbit.p":          func(c *config.Config, v float64) { c.Orbit.P = v },
	"orbit.ecc":        func(c *config.Config, v float64) { c.Orbit.Ecc = v },
	"orbit.nu_deg":     func(c *config.Config, v float64) { c.Orbit.NuDeg = v },
	"orbit.tof":        func(c *config.Config, v float64) { c.Orbit.TOF = v },
	"orbit.samples":    func(c *config.Config, v float64) { c.Orbit.Samples = int(v) },
	"plate.lx":         func(c *config.Config, v float64) { c.Plate.Geometry.Lx = v },
	"plate.ly":         func(c *config.Config, v float64) { c.Plate.Geometry.Ly = v },
	"plate.h":          func(c *config.Config, v float64) { c.Plate.Geometry.H = v },
	"plate.e":          func(c *config.Config, v float64) { c.Plate.Geometry.E = v },
	"plate.nu":         func(c *config.Config, v float64) { c.Plate.Geometry.Nu = v },
	"plate.p":          func(c *config.Config, v float64) { c.Plate.Load.P = v },
	"plate.xi":         func(c *config.Config, v float64) { c.Plate.Load.Xi = v },
	"plate.eta":        func(c *config.Config, v float64) { c.Plate.Load.Eta = v },
	"plate.max_m":      func(c *config.Config, v float64) { c.Plate.MaxM = int(v) },
	"plate.max_n":      func(c *config.Config, v float64) { c.Plate.MaxN = int(v) },
	"plate.points":     func(c *config.Config, v float64) { c.Plate.Points = int(v) },
}

// Apply sets the named parameter on cfg. Names are "<kind>.<field>" and must
// match the kind of cfg.
func Apply(cfg *config.Config, name string, val float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("optim: unknown parameter %q", name)
	}
	if len(name) <= len(cfg.Kind) || name[:len(cfg.Kind)+1] != cfg.Kind+"." {
		return fmt.Errorf("optim: parameter %q does not apply to %s runs", name, cfg.Kind)
	}
	set(cfg, val)
	return nil
}
