package plate

import (
	"math"

	"github.com/san-kum/rode/internal/numeric"
	"gonum.org/v1/gonum/mat"
)

// rowsPerWorker is the smallest number of grid rows handed to a goroutine.
const rowsPerWorker = 4

// Plate is what the series needs from a plate: plan dimensions and flexural
// rigidity. D is used as given.
type Plate struct {
	Lx float64 `yaml:"lx" json:"lx"`
	Ly float64 `yaml:"ly" json:"ly"`
	D  float64 `yaml:"d" json:"d"`
}

// Load is a concentrated transverse load P applied at (Xi, Eta).
type Load struct {
	P   float64 `yaml:"p" json:"p"`
	Xi  float64 `yaml:"xi" json:"xi"`
	Eta float64 `yaml:"eta" json:"eta"`
}

func validate(load Load, pl Plate, maxM, maxN int) error {
	if maxM < 1 || maxN < 1 {
		return numeric.InvalidArgument("series order must be >= 1, got max_m=%d max_n=%d", maxM, maxN)
	}
	if !numeric.Finite(pl.Lx, pl.Ly, pl.D, load.P, load.Xi, load.Eta) {
		return numeric.InvalidArgument("non-finite plate %+v or load %+v", pl, load)
	}
	if pl.Lx <= 0 || pl.Ly <= 0 {
		return numeric.InvalidArgument("plate dimensions must be positive, got %gx%g", pl.Lx, pl.Ly)
	}
	if pl.D <= 0 {
		return numeric.InvalidArgument("flexural rigidity must be positive, got %g", pl.D)
	}
	return nil
}

// series holds the parts of the double sum that do not depend on the field
// point.
type series struct {
	maxM, maxN int
	lx, ly     float64
	scale      float64
	loadX      []float64 // sin(m pi xi / lx)
	loadY      []float64 // sin(n pi eta / ly)
	denom      []float64 // ((m/lx)^2 + (n/ly)^2)^2, row major in m
}

func newSeries(load Load, pl Plate, maxM, maxN int) *series {
	s := &series{
		maxM:  maxM,
		maxN:  maxN,
		lx:    pl.Lx,
		ly:    pl.Ly,
		scale: 4 * load.P / (math.Pow(math.Pi, 4) * pl.D * pl.Lx * pl.Ly),
		loadX: make([]float64, maxM),
		loadY: make([]float64, maxN),
		denom: make([]float64, maxM*maxN),
	}
	for m := 1; m <= maxM; m++ {
		s.loadX[m-1] = math.Sin(float64(m) * math.Pi * load.Xi / pl.Lx)
	}
	for n := 1; n <= maxN; n++ {
		s.loadY[n-1] = math.Sin(float64(n) * math.Pi * load.Eta / pl.Ly)
	}
	for m := 1; m <= maxM; m++ {
		a := float64(m) / pl.Lx
		for n := 1; n <= maxN; n++ {
			b := float64(n) / pl.Ly
			d := a*a + b*b
			s.denom[(m-1)*maxN+n-1] = d * d
		}
	}
	return s
}

// eval sums the series at (x, y). sx and sy are scratch buffers of length
// maxM and maxN.
func (s *series) eval(x, y float64, sx, sy []float64) float64 {
	for m := 1; m <= s.maxM; m++ {
		sx[m-1] = s.loadX[m-1] * math.Sin(float64(m)*math.Pi*x/s.lx)
	}
	for n := 1; n <= s.maxN; n++ {
		sy[n-1] = s.loadY[n-1] * math.Sin(float64(n)*math.Pi*y/s.ly)
	}

	sum := 0.0
	for m := 0; m < s.maxM; m++ {
		row := s.denom[m*s.maxN : (m+1)*s.maxN]
		for n := 0; n < s.maxN; n++ {
			sum += sx[m] * sy[n] / row[n]
		}
	}
	return s.scale * sum
}

// Displacement returns the deflection at a single point (x, y).
func Displacement(x, y float64, load Load, pl Plate, maxM, maxN int) (float64, error) {
	if err := validate(load, pl, maxM, maxN); err != nil {
		return 0, err
	}
	s := newSeries(load, pl, maxM, maxN)
	return s.eval(x, y, make([]float64, maxM), make([]float64, maxN)), nil
}

// DisplacementField writes the deflection at every (gridX, gridY) cell into
// out. All three matrices must have the same shape; out is never resized and
// the coordinate grids are only read. The caller must not touch out until
// the call returns.
func DisplacementField(gridX, gridY mat.Matrix, out *mat.Dense, load Load, pl Plate, maxM, maxN int) error {
	if gridX == nil || gridY == nil || out == nil {
		return numeric.InvalidArgument("nil grid or output matrix")
	}
	rx, cx := gridX.Dims()
	ry, cy := gridY.Dims()
	rw, cw := out.Dims()
	if rx != ry || cx != cy || rx != rw || cx != cw {
		return numeric.InvalidArgument("shape mismatch: x %dx%d, y %dx%d, w %dx%d", rx, cx, ry, cy, rw, cw)
	}
	if err := validate(load, pl, maxM, maxN); err != nil {
		return err
	}

	s := newSeries(load, pl, maxM, maxN)
	numeric.ParallelFor(rx, rowsPerWorker, func(start, end int) {
		sx := make([]float64, maxM)
		sy := make([]float64, maxN)
		for i := start; i < end; i++ {
			for j := 0; j < cx; j++ {
				out.Set(i, j, s.eval(gridX.At(i, j), gridY.At(i, j), sx, sy))
			}
		}
	})
	return nil
}

// NewDisplacementField is DisplacementField returning a freshly allocated
// matrix.
func NewDisplacementField(gridX, gridY mat.Matrix, load Load, pl Plate, maxM, maxN int) (*mat.Dense, error) {
	if gridX == nil {
		return nil, numeric.InvalidArgument("nil grid matrix")
	}
	r, c := gridX.Dims()
	out := mat.NewDense(r, c, nil)
	if err := DisplacementField(gridX, gridY, out, load, pl, maxM, maxN); err != nil {
		return nil, err
	}
	return out, nil
}

// ComputePlateDisplacement is DisplacementField over a flat argument list.
func ComputePlateDisplacement(gridX, gridY mat.Matrix, out *mat.Dense, xi, eta, p, d, lx, ly float64, maxM, maxN int) error {
	return DisplacementField(gridX, gridY, out, Load{P: p, Xi: xi, Eta: eta}, Plate{Lx: lx, Ly: ly, D: d}, maxM, maxN)
}

// Meshgrid returns coordinate matrices for the tensor product of xs and ys:
// row i holds y = ys[i], column j holds x = xs[j].
func Meshgrid(xs, ys []float64) (gridX, gridY *mat.Dense) {
	gridX = mat.NewDense(len(ys), len(xs), nil)
	gridY = mat.NewDense(len(ys), len(xs), nil)
	for i, y := range ys {
		for j, x := range xs {
			gridX.Set(i, j, x)
			gridY.Set(i, j, y)
		}
	}
	return gridX, gridY
}
