package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rode/internal/config"
	"github.com/san-kum/rode/internal/experiment"
)

func TestNewGridSearch_Invalid(t *testing.T) {
	if _, err := NewGridSearch([]string{"a"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestPoints(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	if err != nil {
		t.Fatal(err)
	}

	pts := g.Points()
	if len(pts) != 6 {
		t.Fatalf("expected 6 points, got %d", len(pts))
	}
	if pts[0]["a"] != 1 || pts[0]["b"] != 10 {
		t.Errorf("unexpected first point %v", pts[0])
	}
	if pts[1]["a"] != 1 || pts[1]["b"] != 20 {
		t.Errorf("last parameter should vary fastest, got %v", pts[1])
	}
	if pts[5]["a"] != 2 || pts[5]["b"] != 30 {
		t.Errorf("unexpected last point %v", pts[5])
	}
}

func TestApply(t *testing.T) {
	cfg := config.DefaultConfig(config.KindPlate)
	if err := Apply(cfg, "plate.max_m", 7); err != nil {
		t.Fatal(err)
	}
	if cfg.Plate.MaxM != 7 {
		t.Errorf("expected max_m 7, got %d", cfg.Plate.MaxM)
	}

	if err := Apply(cfg, "orbit.ecc", 0.5); err == nil {
		t.Error("expected error for parameter of another kind")
	}
	if err := Apply(cfg, "plate.color", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestParams(t *testing.T) {
	names := Params(config.KindEuler)
	if len(names) != 4 || names[0] != "euler.num_points" {
		t.Errorf("unexpected euler parameters %v", names)
	}
}

func TestSearchPlateSeriesOrder(t *testing.T) {
	g, err := NewGridSearch([]string{"plate.max_m", "plate.max_n"}, [][]float64{{1, 4}, {1, 4}})
	if err != nil {
		t.Fatal(err)
	}

	base := config.GetPreset(config.KindPlate, "aluminium")
	base.Plate.Points = 5

	points, best, err := g.Search(context.Background(), base, experiment.NewRunner(nil, nil), "w_load")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}

	// Every added odd term deepens the deflection under a central load.
	if best.Params["plate.max_m"] != 4 || best.Params["plate.max_n"] != 4 {
		t.Errorf("expected the deepest deflection at 4x4 terms, got %v", best.Params)
	}
	for _, p := range points {
		if p.Err != nil {
			t.Errorf("point %v failed: %v", p.Params, p.Err)
		}
		if p.Value > best.Value {
			continue
		}
		if p.Value != best.Value {
			t.Errorf("best %g is not minimal, found %g", best.Value, p.Value)
		}
	}
	if base.Plate.MaxM != 16 {
		t.Error("search modified the base config")
	}
}

func TestSearchRecordsFailedPoints(t *testing.T) {
	g, err := NewGridSearch([]string{"orbit.nu_deg"}, [][]float64{{0, 180}})
	if err != nil {
		t.Fatal(err)
	}

	base := config.GetPreset(config.KindOrbit, "flyby")
	base.Orbit.Samples = 2

	points, best, err := g.Search(context.Background(), base, experiment.NewRunner(nil, nil), "r_min")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if points[0].Err != nil {
		t.Errorf("periapsis start should run, got %v", points[0].Err)
	}
	if points[1].Err == nil {
		t.Error("anomaly beyond the asymptotes should fail")
	}
	if best.Params["orbit.nu_deg"] != 0 {
		t.Errorf("unexpected best %v", best.Params)
	}
}

func TestSearchUnknownMetric(t *testing.T) {
	g, _ := NewGridSearch([]string{"euler.num_points"}, [][]float64{{10}})
	_, _, err := g.Search(context.Background(), config.DefaultConfig(config.KindEuler), experiment.NewRunner(nil, nil), "energy")
	if err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestSearchParameterKindMismatch(t *testing.T) {
	g, _ := NewGridSearch([]string{"plate.max_m"}, [][]float64{{1}})
	_, _, err := g.Search(context.Background(), config.DefaultConfig(config.KindEuler), experiment.NewRunner(nil, nil), "y_final")
	if err == nil {
		t.Error("expected error for plate parameter on an euler run")
	}
}

func TestSearchAllFail(t *testing.T) {
	g, _ := NewGridSearch([]string{"euler.num_points"}, [][]float64{{0, 1}})
	_, _, err := g.Search(context.Background(), config.DefaultConfig(config.KindEuler), experiment.NewRunner(nil, nil), "y_final")
	if !errors.Is(err, ErrNoResult) {
		t.Errorf("expected ErrNoResult, got %v", err)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want []float64
	}{
		{"4,8,16", []float64{4, 8, 16}},
		{" 1 , 2 ", []float64{1, 2}},
		{"0:1:5", []float64{0, 0.25, 0.5, 0.75, 1}},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.in)
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-15 {
				t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}

	for _, bad := range []string{"", "a,b", "0:1:1", "0:x:3"} {
		if _, err := ParseRange(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestParseParam(t *testing.T) {
	name, vals, err := ParseParam("plate.max_m=4,8")
	if err != nil {
		t.Fatal(err)
	}
	if name != "plate.max_m" || len(vals) != 2 {
		t.Errorf("unexpected %s %v", name, vals)
	}
	if _, _, err := ParseParam("plate.max_m"); err == nil {
		t.Error("expected error without '='")
	}
}
