package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/rode/internal/numeric"
)

// Registry maps names used in scenario files to right-hand sides for the
// Euler integrator.
type Registry struct {
	funcs map[string]numeric.Func
}

func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]numeric.Func)}

	r.funcs["neg_identity"] = numeric.FuncOf(func(x float64) float64 { return -x })
	r.funcs["identity"] = numeric.FuncOf(func(x float64) float64 { return x })
	r.funcs["cos"] = numeric.FuncOf(math.Cos)
	r.funcs["sin"] = numeric.FuncOf(math.Sin)
	r.funcs["exp"] = numeric.FuncOf(math.Exp)
	r.funcs["const"] = numeric.FuncOf(func(float64) float64 { return 1 })

	return r
}

func (r *Registry) Register(name string, f numeric.Func) {
	r.funcs[name] = f
}

func (r *Registry) GetFunc(name string) (numeric.Func, error) {
	f, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("unknown function: %s", name)
	}
	return f, nil
}

func (r *Registry) ListFuncs() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
