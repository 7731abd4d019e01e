package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	MinBitDepth = 8
	MaxBitDepth = 32
)

type config struct {
	bitDepth   int
	ditherType DitherType
	shaping    bool
	rng        *rand.Rand
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target integer width in [8, 32] bits.
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < MinBitDepth || bits > MaxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", MinBitDepth, MaxBitDepth, bits)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithDitherType selects the dither distribution.
func WithDitherType(dt DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("dither: invalid type: %s", dt)
		}

		cfg.ditherType = dt

		return nil
	}
}

// WithNoiseShaping enables first-order error feedback, which moves
// requantization noise towards high frequencies.
func WithNoiseShaping(enabled bool) Option {
	return func(cfg *config) error {
		cfg.shaping = enabled
		return nil
	}
}

// WithRNG sets the noise source. Use it for deterministic output.
func WithRNG(rng *rand.Rand) Option {
	return func(cfg *config) error {
		cfg.rng = rng
		return nil
	}
}

// Quantizer maps samples in [-1, 1] to signed integers of the configured
// width. Values outside the range are clamped. It is not safe for concurrent
// use.
type Quantizer struct {
	bitDepth   int
	ditherType DitherType
	shaping    bool
	rng        *rand.Rand

	scale   float64
	lo, hi  int
	lastErr float64
}

// NewQuantizer creates a 16-bit triangular-dither quantizer unless options
// say otherwise.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := config{bitDepth: 16, ditherType: DitherTriangular}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	full := math.Exp2(float64(cfg.bitDepth - 1))

	return &Quantizer{
		bitDepth:   cfg.bitDepth,
		ditherType: cfg.ditherType,
		shaping:    cfg.shaping,
		rng:        cfg.rng,
		scale:      full,
		lo:         -int(full),
		hi:         int(full) - 1,
	}, nil
}

// BitDepth returns the target width.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// DitherType returns the dither distribution.
func (q *Quantizer) DitherType() DitherType { return q.ditherType }

// Reset clears the noise-shaping state.
func (q *Quantizer) Reset() { q.lastErr = 0 }

// ProcessInteger quantizes one sample.
func (q *Quantizer) ProcessInteger(x float32) int {
	v := float64(x)
	if math.IsNaN(v) {
		v = 0
	}

	target := v * q.scale
	if q.shaping {
		target -= q.lastErr
	}

	out := int(math.Round(target + q.noise()))
	out = max(q.lo, min(q.hi, out))

	if q.shaping {
		q.lastErr = float64(out) - target
		// Clamping can produce errors far beyond one LSB; do not feed them back.
		q.lastErr = max(-1, min(1, q.lastErr))
	}

	return out
}

// Interleave quantizes planar channels into dst as interleaved frames and
// returns dst, grown if needed.
func (q *Quantizer) Interleave(dst []int, buf [][]float32) []int {
	if len(buf) == 0 {
		return dst[:0]
	}

	frames := len(buf[0])
	for _, ch := range buf[1:] {
		frames = min(frames, len(ch))
	}

	n := frames * len(buf)
	if cap(dst) < n {
		dst = make([]int, n)
	}

	dst = dst[:n]

	for i := range frames {
		for ch := range buf {
			dst[i*len(buf)+ch] = q.ProcessInteger(buf[ch][i])
		}
	}

	return dst
}

func (q *Quantizer) noise() float64 {
	switch q.ditherType {
	case DitherRectangular:
		return q.rng.Float64() - 0.5
	case DitherTriangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
