package fuzzy

import (
	"errors"
	"fmt"
)

// ErrUndefinedDefuzzification is returned when a set has no mass to defuzzify.
var ErrUndefinedDefuzzification = errors.New("defuzzification undefined: aggregated set is empty")

// Centroid returns the discrete center of gravity Σ x·μ(x) / Σ μ(x).
func Centroid(s *Set) (float64, error) {
	if s == nil || len(s.Points) == 0 {
		return 0, ErrUndefinedDefuzzification
	}
	if len(s.Points) != len(s.Values) {
		return 0, fmt.Errorf("centroid: %d points, %d values", len(s.Points), len(s.Values))
	}
	var num, den float64
	for i, x := range s.Points {
		num += x * s.Values[i]
		den += s.Values[i]
	}
	if den == 0 {
		return 0, ErrUndefinedDefuzzification
	}
	return num / den, nil
}
