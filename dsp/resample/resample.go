package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxrack/dsp/core"
)

// ErrInvalidRate indicates an invalid input/output sample rate.
var ErrInvalidRate = errors.New("resample: invalid sample rate")

// Quality controls the anti-aliasing filter.
type Quality int

const (
	QualityFast Quality = iota
	QualityBalanced
	QualityBest
)

type profile struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
}

func qualityProfile(q Quality) profile {
	switch q {
	case QualityFast:
		return profile{tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5.0}
	case QualityBest:
		return profile{tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9.0}
	default:
		return profile{tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5}
	}
}

type config struct {
	quality Quality
	maxDen  int
}

// Option configures a Converter.
type Option func(*config)

// WithQuality selects the filter quality.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.quality = q
	}
}

// WithMaxDenominator caps the denominator of the rate-ratio approximation.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

// Converter resamples a fixed number of channels and keeps filter state
// between Process calls.
type Converter struct {
	up, down int
	phases   [][]float32
	tapLen   int
	latency  int

	phase      int
	inputIndex int
	totalIn    int
	history    [][]float32
	work       []float32
}

// NewConverter creates a converter from inRate to outRate for channels.
func NewConverter(inRate, outRate float64, channels int, opts ...Option) (*Converter, error) {
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, fmt.Errorf("%w: %g -> %g", ErrInvalidRate, inRate, outRate)
	}

	if channels < 1 {
		return nil, fmt.Errorf("resample: channels must be >= 1: %d", channels)
	}

	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	up, down := approximateRatio(outRate/inRate, cfg.maxDen)

	phases, tapLen, err := designPolyphase(up, down, qualityProfile(cfg.quality))
	if err != nil {
		return nil, err
	}

	return &Converter{
		up:      up,
		down:    down,
		phases:  phases,
		tapLen:  tapLen,
		latency: int(math.Round(float64(len(phases)*tapLen-1) / float64(2*down))),
		history: make([][]float32, channels),
	}, nil
}

// Ratio returns the reduced up/down factors.
func (c *Converter) Ratio() (up, down int) { return c.up, c.down }

// Latency returns the filter group delay in output frames.
func (c *Converter) Latency() int { return c.latency }

// Channels returns the channel count.
func (c *Converter) Channels() int { return len(c.history) }

// Reset clears the filter state.
func (c *Converter) Reset() {
	c.phase = 0
	c.inputIndex = 0
	c.totalIn = 0

	for ch := range c.history {
		c.history[ch] = c.history[ch][:0]
	}
}

// OutputLen returns how many frames the next Process call of frames input
// frames produces.
func (c *Converter) OutputLen(frames int) int {
	if frames <= 0 {
		return 0
	}

	last := c.totalIn + frames - 1
	idx, phase := c.inputIndex, c.phase

	count := 0
	for idx <= last {
		count++
		phase += c.down
		idx += phase / c.up
		phase %= c.up
	}

	return count
}

// Process converts in and returns newly available output frames. Missing
// input channels are treated as silence.
func (c *Converter) Process(in [][]float32) [][]float32 {
	frames := core.Frames(in)
	if frames == 0 {
		return core.NewChannels(len(c.history), 0)
	}

	n := c.OutputLen(frames)
	out := core.NewChannels(len(c.history), n)

	var endPhase, endIndex int

	for ch := range c.history {
		work := append(c.work[:0], c.history[ch]...)
		if ch < len(in) {
			work = append(work, in[ch][:frames]...)
		} else {
			work = append(work, make([]float32, frames)...)
		}

		base := c.totalIn - len(c.history[ch])
		phase, idx := c.phase, c.inputIndex

		for i := range n {
			var y float32

			for k, h := range c.phases[phase] {
				j := idx - k - base
				if j < 0 {
					break
				}

				y += h * work[j]
			}

			out[ch][i] = y

			phase += c.down
			idx += phase / c.up
			phase %= c.up
		}

		keep := min(c.tapLen-1, len(work))
		c.history[ch] = append(c.history[ch][:0], work[len(work)-keep:]...)
		c.work = work
		endPhase, endIndex = phase, idx
	}

	c.phase, c.inputIndex = endPhase, endIndex
	c.totalIn += frames

	return out
}

// Flush drains the filter tail by feeding silence.
func (c *Converter) Flush() [][]float32 {
	return c.Process(core.NewChannels(len(c.history), c.tapLen))
}
