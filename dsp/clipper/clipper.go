package clipper

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fxrack/dsp/core"
)

const (
	DefaultResistance       = 2.2e3
	DefaultCapacitance      = 10e-9
	DefaultAlpha            = 1 / 0.0453
	DefaultBeta             = 2.52e-9
	DefaultThreshold        = 1e-4
	DefaultMaxIterations    = 250
	DefaultSoftStartSeconds = 0.05
	DefaultMaxStep          = 0.25

	minCutoffHz = 20.0
)

// Option mutates construction-time solver parameters.
type Option func(*config) error

type config struct {
	resistance       float64
	capacitance      float64
	alpha            float64
	beta             float64
	threshold        float64
	maxIterations    int
	maxStep          float64
	softStartSeconds float64
	mode             HyperbolicMode
}

func defaultConfig() config {
	return config{
		resistance:       DefaultResistance,
		capacitance:      DefaultCapacitance,
		alpha:            DefaultAlpha,
		beta:             DefaultBeta,
		threshold:        DefaultThreshold,
		maxIterations:    DefaultMaxIterations,
		maxStep:          DefaultMaxStep,
		softStartSeconds: DefaultSoftStartSeconds,
		mode:             HyperbolicFast,
	}
}

func positiveFinite(name string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("clipper %s must be > 0: %g", name, v)
	}

	return nil
}

// WithCircuit sets the series resistance (ohm), capacitance (farad) and the
// diode parameters alpha (1/V) and beta (A).
func WithCircuit(resistance, capacitance, alpha, beta float64) Option {
	return func(cfg *config) error {
		for _, p := range []struct {
			name string
			v    float64
		}{
			{"resistance", resistance},
			{"capacitance", capacitance},
			{"alpha", alpha},
			{"beta", beta},
		} {
			if err := positiveFinite(p.name, p.v); err != nil {
				return err
			}
		}

		cfg.resistance = resistance
		cfg.capacitance = capacitance
		cfg.alpha = alpha
		cfg.beta = beta

		return nil
	}
}

// WithThreshold sets the Newton-Raphson convergence threshold in volts.
func WithThreshold(threshold float64) Option {
	return func(cfg *config) error {
		if err := positiveFinite("threshold", threshold); err != nil {
			return err
		}

		cfg.threshold = threshold

		return nil
	}
}

// WithMaxIterations caps the Newton-Raphson iteration count per sample.
func WithMaxIterations(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("clipper max iterations must be >= 1: %d", n)
		}

		cfg.maxIterations = n

		return nil
	}
}

// WithMaxStep limits the magnitude of a single Newton update (damping).
func WithMaxStep(volts float64) Option {
	return func(cfg *config) error {
		if err := positiveFinite("max step", volts); err != nil {
			return err
		}

		cfg.maxStep = volts

		return nil
	}
}

// WithSoftStart sets the soft-start ramp duration. Zero disables the ramp.
func WithSoftStart(seconds float64) Option {
	return func(cfg *config) error {
		if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("clipper soft start must be >= 0: %g", seconds)
		}

		cfg.softStartSeconds = seconds

		return nil
	}
}

// WithHyperbolicMode selects fast or exact sinh/cosh evaluation.
func WithHyperbolicMode(mode HyperbolicMode) Option {
	return func(cfg *config) error {
		switch mode {
		case HyperbolicFast, HyperbolicExact:
			cfg.mode = mode
			return nil
		default:
			return fmt.Errorf("clipper hyperbolic mode invalid: %d", mode)
		}
	}
}

type channelState struct {
	lastOutput float32
	ramp       softStart
}

// Clipper is a multichannel diode-clipper solver. Each channel keeps its own
// converged output and soft-start ramp.
//
// Configuration methods must not run concurrently with Process.
type Clipper struct {
	cfg        config
	sampleRate float64

	// Per-sample coefficients of f(v) = v - vPrev - k1*(vIn - v) + k2*sinh(alpha*v).
	k1        float32
	k2        float32
	alpha     float32
	threshold float32
	maxStep   float32
	rampInc   float32
	inputGain float32

	channels []channelState
	failures atomic.Uint64
}

// New creates a clipper for one channel at 48 kHz; call SetSampleRate and
// Prepare before processing.
func New(opts ...Option) (*Clipper, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	c := &Clipper{
		cfg:        cfg,
		sampleRate: 48000,
		inputGain:  1,
	}
	c.updateCoefficients()
	c.Prepare(1)

	return c, nil
}

// SampleRate returns the sample rate in Hz.
func (c *Clipper) SampleRate() float64 { return c.sampleRate }

// Channels returns the number of prepared channels.
func (c *Clipper) Channels() int { return len(c.channels) }

// Resistance returns the series resistance in ohm.
func (c *Clipper) Resistance() float64 { return c.cfg.resistance }

// MaxIterations returns the per-sample iteration cap.
func (c *Clipper) MaxIterations() int { return c.cfg.maxIterations }

// SetSampleRate recomputes the discretization for a new sample rate. Channel
// state is kept so the output stays continuous.
func (c *Clipper) SetSampleRate(sampleRate float64) error {
	if err := positiveFinite("sample rate", sampleRate); err != nil {
		return err
	}

	c.sampleRate = sampleRate
	c.updateCoefficients()

	return nil
}

// SetCutoff sets the RC corner frequency by adjusting the series resistance.
func (c *Clipper) SetCutoff(hz float64) error {
	if hz < minCutoffHz || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return fmt.Errorf("clipper cutoff must be >= %g Hz: %g", minCutoffHz, hz)
	}

	c.cfg.resistance = 1 / (2 * math.Pi * hz * c.cfg.capacitance)
	c.updateCoefficients()

	return nil
}

// SetInputGain sets the linear gain applied ahead of the circuit.
func (c *Clipper) SetInputGain(gain float32) {
	if gain < 0 || !core.IsFinite(gain) {
		gain = 0
	}

	c.inputGain = gain
}

// Prepare (re)allocates per-channel state and restarts the soft-start ramps.
func (c *Clipper) Prepare(channels int) {
	if channels < 1 {
		channels = 1
	}

	if cap(c.channels) >= channels {
		c.channels = c.channels[:channels]
	} else {
		c.channels = make([]channelState, channels)
	}

	c.Reset()
}

// Reset clears the solver history and restarts the soft-start ramps.
func (c *Clipper) Reset() {
	for i := range c.channels {
		c.channels[i].lastOutput = 0
		c.channels[i].ramp.reset(c.rampInc)
	}
}

// Gain returns the current soft-start gain of channel ch.
func (c *Clipper) Gain(ch int) float32 {
	if ch < 0 || ch >= len(c.channels) {
		return 0
	}

	return c.channels[ch].ramp.gain
}

// LastOutput returns the last converged voltage of channel ch.
func (c *Clipper) LastOutput(ch int) float32 {
	if ch < 0 || ch >= len(c.channels) {
		return 0
	}

	return c.channels[ch].lastOutput
}

// ConvergenceFailures returns how many samples hit the iteration cap (or
// produced a non-finite iterate) since construction.
func (c *Clipper) ConvergenceFailures() uint64 {
	return c.failures.Load()
}

// Process runs channel ch of buf through the circuit in place. Out-of-range
// channels are left untouched.
func (c *Clipper) Process(ch int, buf []float32) {
	if ch < 0 || ch >= len(c.channels) {
		return
	}

	st := &c.channels[ch]
	for i, x := range buf {
		buf[i], _ = c.solve(st, x)
	}
}

// ProcessSample solves one sample and returns the capacitor voltage together
// with the number of Newton iterations spent. Out-of-range channels return x
// unchanged after zero iterations.
func (c *Clipper) ProcessSample(ch int, x float32) (float32, int) {
	if ch < 0 || ch >= len(c.channels) {
		return x, 0
	}

	return c.solve(&c.channels[ch], x)
}

func (c *Clipper) solve(st *channelState, x float32) (float32, int) {
	vIn := x * c.inputGain * st.ramp.next()
	vPrev := st.lastOutput
	v := vPrev

	iterations := 0
	converged := false

	for iterations < c.cfg.maxIterations {
		iterations++

		s, co := sinhCosh(c.alpha*v, c.cfg.mode)
		f := v - vPrev - c.k1*(vIn-v) + c.k2*s
		df := 1 + c.k1 + c.k2*c.alpha*co

		step := f / df
		if step > c.maxStep {
			step = c.maxStep
		} else if step < -c.maxStep {
			step = -c.maxStep
		}

		v -= step

		if step < c.threshold && step > -c.threshold {
			converged = true
			break
		}
	}

	if !core.IsFinite(v) {
		v = vPrev
		converged = false
	}

	if !converged {
		c.failures.Add(1)
	}

	st.lastOutput = v

	return v, iterations
}

func (c *Clipper) updateCoefficients() {
	h := 1 / c.sampleRate
	rc := c.cfg.resistance * c.cfg.capacitance

	c.k1 = float32(h / rc)
	c.k2 = float32(h * 2 * c.cfg.beta / c.cfg.capacitance)
	c.alpha = float32(c.cfg.alpha)
	c.threshold = float32(c.cfg.threshold)
	c.maxStep = float32(c.cfg.maxStep)
	c.rampInc = softStartIncrement(c.cfg.softStartSeconds, c.sampleRate)

	for i := range c.channels {
		c.channels[i].ramp.increment = c.rampInc
	}
}
