package spectral

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fxrack/dsp/core"
	"github.com/cwbudde/algo-fxrack/dsp/window"
)

const (
	DefaultAnalyzerOrder = 11
	DefaultFloorDB       = -48.0

	minAnalyzerOrder = 5
	maxAnalyzerOrder = 15
)

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerConfig) error

type analyzerConfig struct {
	order    int
	floorDB  float64
	capacity int
}

// WithAnalyzerOrder sets the FFT size to 1<<order.
func WithAnalyzerOrder(order int) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if order < minAnalyzerOrder || order > maxAnalyzerOrder {
			return fmt.Errorf("analyzer order must be in [%d, %d]: %d",
				minAnalyzerOrder, maxAnalyzerOrder, order)
		}

		cfg.order = order

		return nil
	}
}

// WithFloorDB sets the level treated as negative infinity.
func WithFloorDB(db float64) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if db >= 0 || math.IsNaN(db) || math.IsInf(db, 0) {
			return fmt.Errorf("analyzer floor must be < 0 dB: %f", db)
		}

		cfg.floorDB = db

		return nil
	}
}

// WithQueueCapacity sets the magnitude queue capacity.
func WithQueueCapacity(capacity int) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if capacity < 1 {
			return fmt.Errorf("analyzer queue capacity must be >= 1: %d", capacity)
		}

		cfg.capacity = capacity

		return nil
	}
}

// Analyzer turns a mono sample stream into dB magnitude vectors.
//
// Push keeps the newest Size() samples in a ring (shift left, append at the
// tail). Produce windows the ring with a 4-term Blackman-Harris window, runs
// a forward FFT and publishes Size()/2 bins of dB magnitude into Magnitudes().
// It runs on the consumer goroutine only.
type Analyzer struct {
	order   int
	size    int
	floorDB float64

	ring     []float64
	window   []float64
	windowed []float64
	plan     *algofft.Plan[complex128]

	frame    []complex128
	spectrum []complex128
	re       []float64
	im       []float64
	mag      []float64

	magnitudes *Queue[[]float32]
}

// NewAnalyzer builds an analyzer with order 11 (2048 points) and a -48 dB
// floor unless overridden.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	cfg := analyzerConfig{
		order:    DefaultAnalyzerOrder,
		floorDB:  DefaultFloorDB,
		capacity: DefaultQueueCapacity,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	size := 1 << cfg.order

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("analyzer init fft plan: %w", err)
	}

	bins := size / 2

	return &Analyzer{
		order:    cfg.order,
		size:     size,
		floorDB:  cfg.floorDB,
		ring:     make([]float64, size),
		window:   window.Generate(window.TypeBlackmanHarris4Term, size),
		windowed: make([]float64, size),
		plan:     plan,
		frame:    make([]complex128, size),
		spectrum: make([]complex128, size),
		re:       make([]float64, bins),
		im:       make([]float64, bins),
		mag:      make([]float64, bins),
		magnitudes: NewQueue(cfg.capacity, func(slot *[]float32) {
			*slot = make([]float32, bins)
		}),
	}, nil
}

// Order returns log2 of the FFT size.
func (a *Analyzer) Order() int { return a.order }

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the length of each published magnitude vector.
func (a *Analyzer) Bins() int { return a.size / 2 }

// FloorDB returns the negative-infinity level.
func (a *Analyzer) FloorDB() float64 { return a.floorDB }

// Magnitudes returns the queue of published dB vectors.
func (a *Analyzer) Magnitudes() *Queue[[]float32] { return a.magnitudes }

// Push shifts block into the ring. Blocks longer than the ring keep only the
// newest Size() samples.
func (a *Analyzer) Push(block []float32) {
	if len(block) >= a.size {
		block = block[len(block)-a.size:]
		for i, x := range block {
			a.ring[i] = float64(x)
		}

		return
	}

	keep := a.size - len(block)
	copy(a.ring, a.ring[len(block):])

	for i, x := range block {
		a.ring[keep+i] = float64(x)
	}
}

// Reset clears the ring.
func (a *Analyzer) Reset() {
	core.Zero(a.ring)
}

// Produce analyzes the current ring and publishes one magnitude vector. It
// reports false when the FFT failed or the queue was full.
func (a *Analyzer) Produce() bool {
	copy(a.windowed, a.ring)
	window.ApplyCoefficientsInPlace(a.windowed, a.window)

	for i, x := range a.windowed {
		a.frame[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.spectrum, a.frame); err != nil {
		return false
	}

	bins := len(a.mag)
	for i := range bins {
		a.re[i] = real(a.spectrum[i])
		a.im[i] = imag(a.spectrum[i])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	slot := a.magnitudes.Reserve()
	if slot == nil {
		return false
	}

	norm := 1 / float64(bins)
	out := *slot

	for i, m := range a.mag {
		out[i] = float32(core.GainToDecibels(m*norm, a.floorDB))
	}

	a.magnitudes.Publish()

	return true
}
