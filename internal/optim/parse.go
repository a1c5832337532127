package optim

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ParseRange reads either a comma separated list ("4,8,16") or an inclusive
// linear span "start:stop:count".
func ParseRange(s string) ([]float64, error) {
	if parts := strings.Split(s, ":"); len(parts) == 3 {
		lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		if n < 2 {
			return nil, fmt.Errorf("range %q: count must be >= 2", s)
		}
		return floats.Span(make([]float64, n), lo, hi), nil
	}

	var out []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", s, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("range %q: no values", s)
	}
	return out, nil
}

// ParseParam splits "name=range".
func ParseParam(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("parameter %q: want name=values", s)
	}
	vals, err := ParseRange(spec)
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(name), vals, nil
}
