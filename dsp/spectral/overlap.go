package spectral

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-fxrack/dsp/window"
)

const (
	DefaultOverlapOrder = 10
	DefaultOverlap      = 4

	minOverlapOrder = 4
	maxOverlapOrder = 14
)

// FrameFunc edits the non-negative half of a frame spectrum in place. bins
// has fftSize/2+1 entries; the negative half is rebuilt by symmetry.
type FrameFunc func(bins []complex64)

// OverlapProcessor is a sample-synchronous STFT with overlap-add
// resynthesis. Every hop it windows the newest frame, calls the FrameFunc
// on its spectrum and overlap-adds the windowed inverse into the output
// FIFO. The latency is exactly FrameSize() samples; with an identity
// FrameFunc the output equals the input delayed by that amount.
//
// One OverlapProcessor serves one channel.
type OverlapProcessor struct {
	order int
	size  int
	hop   int

	plan   *algofft.Plan[complex64]
	window []float32
	norm   float32

	inFifo  []float32
	outFifo []float32
	pos     int
	count   int

	frame    []complex64
	spectrum []complex64
	fn       FrameFunc
}

// NewOverlapProcessor creates a processor with frame size 1<<order and the
// given overlap factor (hop = size/overlap). fn may be nil for a pure delay.
func NewOverlapProcessor(order, overlap int, fn FrameFunc) (*OverlapProcessor, error) {
	if order < minOverlapOrder || order > maxOverlapOrder {
		return nil, fmt.Errorf("overlap order must be in [%d, %d]: %d",
			minOverlapOrder, maxOverlapOrder, order)
	}

	size := 1 << order
	if overlap < 2 || size%overlap != 0 {
		return nil, fmt.Errorf("overlap factor must be >= 2 and divide %d: %d", size, overlap)
	}

	plan, err := algofft.NewPlanT[complex64](size)
	if err != nil {
		return nil, fmt.Errorf("overlap init fft plan: %w", err)
	}

	coeffs := window.Generate(window.TypeHann, size, window.WithPeriodic())

	gain := window.OverlapAddGain(coeffs, overlap)
	if gain <= 0 {
		return nil, fmt.Errorf("overlap window gain must be > 0: %f", gain)
	}

	return &OverlapProcessor{
		order:    order,
		size:     size,
		hop:      size / overlap,
		plan:     plan,
		window:   window.Generate32(window.TypeHann, size, window.WithPeriodic()),
		norm:     float32(1 / gain),
		inFifo:   make([]float32, size),
		outFifo:  make([]float32, size),
		frame:    make([]complex64, size),
		spectrum: make([]complex64, size),
		fn:       fn,
	}, nil
}

// FrameSize returns the FFT size.
func (p *OverlapProcessor) FrameSize() int { return p.size }

// HopSize returns the number of samples between frames.
func (p *OverlapProcessor) HopSize() int { return p.hop }

// Bins returns the number of bins passed to the FrameFunc.
func (p *OverlapProcessor) Bins() int { return p.size/2 + 1 }

// Latency returns the processing delay in samples.
func (p *OverlapProcessor) Latency() int { return p.size }

// SetFrameFunc replaces the spectral callback. Not safe during Process.
func (p *OverlapProcessor) SetFrameFunc(fn FrameFunc) { p.fn = fn }

// Reset clears both FIFOs.
func (p *OverlapProcessor) Reset() {
	clear(p.inFifo)
	clear(p.outFifo)
	p.pos = 0
	p.count = 0
}

// Process runs buf through the STFT in place.
func (p *OverlapProcessor) Process(buf []float32) {
	for i, x := range buf {
		buf[i] = p.ProcessSample(x)
	}
}

// ProcessSample pushes one input sample and returns one output sample.
func (p *OverlapProcessor) ProcessSample(x float32) float32 {
	p.inFifo[p.pos] = x
	y := p.outFifo[p.pos]
	p.outFifo[p.pos] = 0

	p.pos++
	if p.pos == p.size {
		p.pos = 0
	}

	p.count++
	if p.count == p.hop {
		p.count = 0
		p.processFrame()
	}

	return y
}

// processFrame handles the frame ending at the sample just written. Its first
// sample sits at p.pos, the oldest entry of the circular input FIFO.
func (p *OverlapProcessor) processFrame() {
	n := p.size

	for i := range n {
		idx := p.pos + i
		if idx >= n {
			idx -= n
		}

		p.frame[i] = complex(p.inFifo[idx]*p.window[i], 0)
	}

	if err := p.plan.Forward(p.spectrum, p.frame); err != nil {
		return
	}

	half := n / 2
	if p.fn != nil {
		p.fn(p.spectrum[:half+1])
	}

	p.spectrum[0] = complex(real(p.spectrum[0]), 0)
	p.spectrum[half] = complex(real(p.spectrum[half]), 0)

	for k := 1; k < half; k++ {
		c := p.spectrum[k]
		p.spectrum[n-k] = complex(real(c), -imag(c))
	}

	if err := p.plan.Inverse(p.frame, p.spectrum); err != nil {
		return
	}

	for i := range n {
		idx := p.pos + i
		if idx >= n {
			idx -= n
		}

		p.outFifo[idx] += real(p.frame[i]) * p.window[i] * p.norm
	}
}
