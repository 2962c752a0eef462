package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidUniverse is returned for an empty or malformed universe.
var ErrInvalidUniverse = errors.New("invalid universe")

// Universe is an evenly spaced discretization of [Min, Max].
type Universe struct {
	Min  float64
	Max  float64
	Step float64
}

// NewUniverse validates the bounds and step.
func NewUniverse(min, max, step float64) (Universe, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return Universe{}, fmt.Errorf("universe [%g,%g]: %w", min, max, ErrInvalidUniverse)
	}
	if max < min || step <= 0 {
		return Universe{}, fmt.Errorf("universe [%g,%g] step %g: %w", min, max, step, ErrInvalidUniverse)
	}
	return Universe{Min: min, Max: max, Step: step}, nil
}

// Len is the number of discrete points, both bounds included.
func (u Universe) Len() int {
	return int(math.Floor((u.Max-u.Min)/u.Step+1e-9)) + 1
}

// Points enumerates Min, Min+Step, ... up to Max.
func (u Universe) Points() []float64 {
	n := u.Len()
	pts := make([]float64, n)
	for i := range pts {
		pts[i] = u.Min + float64(i)*u.Step
	}
	return pts
}

// Contains reports whether x lies within the bounds.
func (u Universe) Contains(x float64) bool {
	return x >= u.Min && x <= u.Max
}

// Clamp pins x into [Min, Max].
func (u Universe) Clamp(x float64) float64 {
	if x < u.Min {
		return u.Min
	}
	if x > u.Max {
		return u.Max
	}
	return x
}
