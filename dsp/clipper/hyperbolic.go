package clipper

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

// HyperbolicMode selects how sinh/cosh are evaluated inside the solver.
type HyperbolicMode int

const (
	// HyperbolicFast uses an exp approximation (bounded relative error).
	HyperbolicFast HyperbolicMode = iota
	// HyperbolicExact uses the math package.
	HyperbolicExact
)

// String returns the mode name used in configuration files.
func (m HyperbolicMode) String() string {
	switch m {
	case HyperbolicFast:
		return "fast"
	case HyperbolicExact:
		return "exact"
	default:
		return "unknown"
	}
}

// ParseHyperbolicMode parses "fast" or "exact".
func ParseHyperbolicMode(s string) (HyperbolicMode, bool) {
	switch s {
	case "fast", "":
		return HyperbolicFast, true
	case "exact":
		return HyperbolicExact, true
	default:
		return HyperbolicFast, false
	}
}

// maxHyperbolicArg keeps exp(x) well inside float32 range (e^88 overflows).
const maxHyperbolicArg = 80

// sinhCosh returns sinh(x) and cosh(x) as float32.
func sinhCosh(x float32, mode HyperbolicMode) (float32, float32) {
	if x > maxHyperbolicArg {
		x = maxHyperbolicArg
	} else if x < -maxHyperbolicArg {
		x = -maxHyperbolicArg
	}

	if mode == HyperbolicExact {
		xf := float64(x)
		return float32(math.Sinh(xf)), float32(math.Cosh(xf))
	}

	e := approx.FastExp(float64(x))
	inv := 1 / e

	return float32(0.5 * (e - inv)), float32(0.5 * (e + inv))
}
