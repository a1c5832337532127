package numeric

import "math"

// Func is a scalar function evaluated by the kernels.
type Func interface {
	Eval(x float64) float64
}

// FuncOf adapts an ordinary function to Func.
type FuncOf func(x float64) float64

func (f FuncOf) Eval(x float64) float64 { return f(x) }

// Trajectory holds samples of an integrated solution in time order.
type Trajectory struct {
	Times  []float64
	Values []float64
}

func (tr Trajectory) Len() int { return len(tr.Times) }

// At returns the i-th (t, y) sample.
func (tr Trajectory) At(i int) (t, y float64) {
	return tr.Times[i], tr.Values[i]
}

// Last returns the final sample.
func (tr Trajectory) Last() (t, y float64) {
	return tr.At(tr.Len() - 1)
}

func (tr Trajectory) IsValid() bool {
	for _, v := range tr.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
