package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rode/internal/numeric"
	"gonum.org/v1/gonum/floats"
)

var negIdentity = numeric.FuncOf(func(x float64) float64 { return -x })

func TestEulerFirstOrderConvergence(t *testing.T) {
	integ := &Euler{Drive: StateDriven}
	tEnd := 2.0

	var prevErr float64
	for i, n := range []int{101, 201, 401, 801} {
		tr, err := integ.Uniform(negIdentity, 1.0, 0, tEnd, n)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}

		_, y := tr.Last()
		gotErr := math.Abs(y - math.Exp(-tEnd))
		if i > 0 {
			ratio := prevErr / gotErr
			if ratio < 1.9 || ratio > 2.1 {
				t.Errorf("n=%d: error ratio %.4f, expected ~2 for first order", n, ratio)
			}
		}
		prevErr = gotErr
	}
}

func TestEulerTimeDrivenQuadrature(t *testing.T) {
	// y' = -t, y(0) = 1 gives y = 1 - t^2/2; Euler is a left Riemann sum so
	// the end point error is exactly h*T/2.
	tEnd := 2 * math.Pi
	n := 100

	tr, err := IntegrateUniform(negIdentity, 1.0, 0, tEnd, n)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Len() != n {
		t.Fatalf("expected %d samples, got %d", n, tr.Len())
	}

	h := tEnd / float64(n-1)
	_, y := tr.Last()
	expected := 1 - tEnd*tEnd/2 + h*tEnd/2
	if math.Abs(y-expected) > 1e-9 {
		t.Errorf("end value %.12f, expected %.12f", y, expected)
	}
}

func TestEulerVariantsAgree(t *testing.T) {
	tStart, tEnd, n := 0.0, 2*math.Pi, 100

	for _, drive := range []Drive{TimeDriven, StateDriven} {
		integ := &Euler{Drive: drive}

		uniform, err := integ.Uniform(negIdentity, 1.0, tStart, tEnd, n)
		if err != nil {
			t.Fatal(err)
		}

		grid := make([]float64, n)
		floats.Span(grid, tStart, tEnd)
		h := (tEnd - tStart) / float64(n-1)

		withGrid, err := integ.WithGrid(negIdentity, 1.0, grid, h)
		if err != nil {
			t.Fatal(err)
		}

		if !floats.Equal(uniform.Times, withGrid.Times) {
			t.Errorf("%s: time grids differ", drive)
		}
		if !floats.Equal(uniform.Values, withGrid.Values) {
			t.Errorf("%s: trajectories differ", drive)
		}
	}
}

func TestEulerDerivativeArguments(t *testing.T) {
	var seen []float64
	record := numeric.FuncOf(func(x float64) float64 {
		seen = append(seen, x)
		return 1
	})

	grid := []float64{0, 0.5, 1.0, 1.5}
	tr, err := IntegrateWithGrid(record, 10, grid, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	if !floats.Equal(seen, []float64{0, 0.5, 1.0}) {
		t.Errorf("time driven f received %v", seen)
	}
	if !floats.Equal(tr.Values, []float64{10, 10.5, 11, 11.5}) {
		t.Errorf("unexpected values %v", tr.Values)
	}

	seen = nil
	integ := &Euler{Drive: StateDriven}
	if _, err := integ.WithGrid(record, 10, grid, 0.5); err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(seen, []float64{10, 10.5, 11}) {
		t.Errorf("state driven f received %v", seen)
	}
}

func TestEulerDoesNotAliasGrid(t *testing.T) {
	grid := []float64{0, 1, 2}
	tr, err := IntegrateWithGrid(negIdentity, 0, grid, 1)
	if err != nil {
		t.Fatal(err)
	}
	tr.Times[0] = 42
	if grid[0] != 0 {
		t.Error("trajectory shares storage with the input grid")
	}
}

func TestEulerInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		run  func() (numeric.Trajectory, error)
	}{
		{"one point", func() (numeric.Trajectory, error) {
			return IntegrateUniform(negIdentity, 1, 0, 1, 1)
		}},
		{"zero points", func() (numeric.Trajectory, error) {
			return IntegrateUniform(negIdentity, 1, 0, 1, 0)
		}},
		{"empty interval", func() (numeric.Trajectory, error) {
			return IntegrateUniform(negIdentity, 1, 1, 1, 10)
		}},
		{"infinite interval", func() (numeric.Trajectory, error) {
			return IntegrateUniform(negIdentity, 1, 0, math.Inf(1), 10)
		}},
		{"zero step", func() (numeric.Trajectory, error) {
			return IntegrateWithGrid(negIdentity, 1, []float64{0, 1, 2}, 0)
		}},
		{"NaN step", func() (numeric.Trajectory, error) {
			return IntegrateWithGrid(negIdentity, 1, []float64{0, 1, 2}, math.NaN())
		}},
		{"short grid", func() (numeric.Trajectory, error) {
			return IntegrateWithGrid(negIdentity, 1, []float64{0}, 0.1)
		}},
		{"nil func", func() (numeric.Trajectory, error) {
			return IntegrateWithGrid(nil, 1, []float64{0, 1}, 0.1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := tt.run()
			if !errors.Is(err, numeric.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if tr.Len() != 0 {
				t.Errorf("expected no partial trajectory, got %d samples", tr.Len())
			}
		})
	}
}

func TestParseDrive(t *testing.T) {
	tests := []struct {
		in   string
		want Drive
		ok   bool
	}{
		{"", TimeDriven, true},
		{"time", TimeDriven, true},
		{"state", StateDriven, true},
		{"rk4", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseDrive(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDrive(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseDrive(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if tt.ok && got.String() != map[Drive]string{TimeDriven: "time", StateDriven: "state"}[got] {
			t.Errorf("String() = %q", got.String())
		}
	}
}
