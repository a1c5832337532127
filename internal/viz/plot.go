package viz

import (
	"github.com/guptarohit/asciigraph"
)

const (
	PlotHeight = 12
	PlotWidth  = 80
)

// Downsample picks at most n evenly spaced samples of data, always keeping
// the first and last.
func Downsample(data []float64, n int) []float64 {
	if n < 2 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	step := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(float64(i)*step+0.5)]
	}
	return out
}

func Plot(data []float64, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(data, PlotWidth),
		asciigraph.Height(PlotHeight),
		asciigraph.Width(PlotWidth),
		asciigraph.Caption(caption),
	)
}

// Profile extracts the row of a plate table whose y coordinate is closest to
// y, as a series ordered by x. Rows are x, y, w triples laid out row major.
func Profile(rows [][]float64, y float64) []float64 {
	best := -1.0
	for _, r := range rows {
		d := r[1] - y
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
		}
	}

	var out []float64
	for _, r := range rows {
		d := r[1] - y
		if d < 0 {
			d = -d
		}
		if d == best {
			out = append(out, r[2])
		}
	}
	return out
}
