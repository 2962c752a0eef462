// Package fuzzy implements Mamdani fuzzy inference over discretized universes.
package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBreakpoints is returned when MF breakpoints are unordered or not finite.
var ErrInvalidBreakpoints = errors.New("invalid membership breakpoints")

// MembershipFunc maps a crisp value to a degree of membership in [0,1].
type MembershipFunc interface {
	Degree(x float64) float64
}

// Triangle is 0 at A and C, 1 at B, linear in between.
type Triangle struct {
	A, B, C float64
}

// NewTriangle validates a <= b <= c.
func NewTriangle(a, b, c float64) (Triangle, error) {
	if err := checkOrdered(a, b, c); err != nil {
		return Triangle{}, fmt.Errorf("triangle(%g,%g,%g): %w", a, b, c, err)
	}
	return Triangle{A: a, B: b, C: c}, nil
}

// Degree evaluates the triangle at x. The peak is tested first so a
// degenerate side (A==B or B==C) acts as a step.
func (t Triangle) Degree(x float64) float64 {
	switch {
	case x == t.B:
		return 1
	case x <= t.A || x >= t.C:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.C - x) / (t.C - t.B)
	}
}

func (t Triangle) String() string {
	return fmt.Sprintf("tri(%g,%g,%g)", t.A, t.B, t.C)
}

// Trapezoid is 0 below A and above D, 1 on [B,C], linear on the ramps.
type Trapezoid struct {
	A, B, C, D float64
}

// NewTrapezoid validates a <= b <= c <= d.
func NewTrapezoid(a, b, c, d float64) (Trapezoid, error) {
	if err := checkOrdered(a, b, c, d); err != nil {
		return Trapezoid{}, fmt.Errorf("trapezoid(%g,%g,%g,%g): %w", a, b, c, d, err)
	}
	return Trapezoid{A: a, B: b, C: c, D: d}, nil
}

// Degree evaluates the trapezoid at x.
func (t Trapezoid) Degree(x float64) float64 {
	switch {
	case x >= t.B && x <= t.C:
		return 1
	case x <= t.A || x >= t.D:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

func (t Trapezoid) String() string {
	return fmt.Sprintf("trap(%g,%g,%g,%g)", t.A, t.B, t.C, t.D)
}

func checkOrdered(points ...float64) error {
	for i, p := range points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return ErrInvalidBreakpoints
		}
		if i > 0 && p < points[i-1] {
			return ErrInvalidBreakpoints
		}
	}
	return nil
}
