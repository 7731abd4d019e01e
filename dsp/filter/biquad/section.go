package biquad

import "github.com/cwbudde/algo-fxrack/dsp/core"

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns pass-through coefficients.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// Section is a single biquad filter with coefficients and internal state.
type Section struct {
	Coefficients

	d0, d1 float64
}

// ProcessBlock filters a float32 block in place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float32) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, xf := range buf {
		x := float64(xf)
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = float32(y)
	}

	s.d0 = core.FlushDenormals(d0)
	s.d1 = core.FlushDenormals(d1)
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// Bank is one Section per channel sharing a coefficient set.
type Bank struct {
	sections []Section
}

// Prepare resizes the bank to channels sections and clears their state.
func (b *Bank) Prepare(channels int) {
	if channels < 1 {
		channels = 1
	}

	c := Identity()
	if len(b.sections) > 0 {
		c = b.sections[0].Coefficients
	}

	b.sections = make([]Section, channels)
	b.SetCoefficients(c)
}

// SetCoefficients updates every channel while keeping the delay lines.
func (b *Bank) SetCoefficients(c Coefficients) {
	for i := range b.sections {
		b.sections[i].Coefficients = c
	}
}

// Coefficients returns the shared coefficient set.
func (b *Bank) Coefficients() Coefficients {
	if len(b.sections) == 0 {
		return Identity()
	}

	return b.sections[0].Coefficients
}

// Channels returns the number of prepared channels.
func (b *Bank) Channels() int { return len(b.sections) }

// ProcessBlock filters every channel of buf in place. Channels beyond the
// prepared count pass through.
func (b *Bank) ProcessBlock(buf [][]float32) {
	for ch := range min(len(buf), len(b.sections)) {
		b.sections[ch].ProcessBlock(buf[ch])
	}
}

// Reset clears all delay lines.
func (b *Bank) Reset() {
	for i := range b.sections {
		b.sections[i].Reset()
	}
}
