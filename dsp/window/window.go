package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeBlackmanHarris4Term
)

var (
	hannCoeffs            = []float64{0.5, -0.5}
	blackmanHarris4Coeffs = []float64{0.35875, -0.48829, 0.14128, -0.01168}
)

// String returns the window name.
func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeBlackmanHarris4Term:
		return "blackman-harris"
	default:
		return "unknown"
	}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = evalWindow(t, samplePosition(i, length, cfg.periodic))
	}

	return out
}

// Generate32 is Generate narrowed to float32 for sample-domain use.
func Generate32(t Type, length int, opts ...Option) []float32 {
	coeffs := Generate(t, length, opts...)
	if coeffs == nil {
		return nil
	}

	out := make([]float32, len(coeffs))
	for i, c := range coeffs {
		out[i] = float32(c)
	}

	return out
}

// ApplyCoefficientsInPlace multiplies samples by coeffs element-wise.
// Lengths must match; mismatched input is left untouched.
func ApplyCoefficientsInPlace(samples, coeffs []float64) {
	if len(samples) != len(coeffs) || len(samples) == 0 {
		return
	}

	vecmath.MulBlockInPlace(samples, coeffs)
}

// OverlapAddGain returns the constant sum of analysis*synthesis windows for a
// hop of len(coeffs)/overlap samples. It is exact for cosine-sum windows in
// periodic form when overlap is large enough.
func OverlapAddGain(coeffs []float64, overlap int) float64 {
	n := len(coeffs)
	if n == 0 || overlap <= 0 {
		return 0
	}

	hop := n / overlap
	if hop <= 0 {
		return 0
	}

	sum := 0.0
	for k := 0; k < n; k += hop {
		w := coeffs[k]
		sum += w * w
	}

	return sum
}

func evalWindow(t Type, x float64) float64 {
	x = math.Max(0, math.Min(1, x))

	switch t {
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeBlackmanHarris4Term:
		return cosineFromCoeffs(x, blackmanHarris4Coeffs)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
