package effects

import (
	"math"

	"github.com/cwbudde/algo-fxrack/dsp/spectral"
)

const (
	MinSpectralCrusherBits = 1.0
	MaxSpectralCrusherBits = 16.0
)

type crusherChannel struct {
	stft  *spectral.OverlapProcessor
	dry   []float32
	dryAt int
}

// SpectralCrusher quantizes STFT bin magnitudes and discards bins above a
// cutoff fraction of Nyquist, keeping the phase of surviving bins. The dry
// path is delayed by the STFT latency so mix stays phase-aligned.
type SpectralCrusher struct {
	order   int
	overlap int

	bits   float64
	levels float32
	cutoff float64
	mix    float32

	channels []crusherChannel
}

// NewSpectralCrusher creates a crusher with frame size 1<<order and the
// given overlap factor, defaulting to 8 bits, cutoff 0.5 and full wet.
func NewSpectralCrusher(order, overlap int) (*SpectralCrusher, error) {
	sc := &SpectralCrusher{
		order:   order,
		overlap: overlap,
		cutoff:  0.5,
		mix:     1,
	}

	if err := sc.SetBits(8); err != nil {
		return nil, err
	}

	if err := sc.Prepare(1); err != nil {
		return nil, err
	}

	return sc, nil
}

// Prepare builds one STFT per channel. It allocates.
func (sc *SpectralCrusher) Prepare(channels int) error {
	channels = max(channels, 1)
	out := make([]crusherChannel, channels)

	for ch := range out {
		stft, err := spectral.NewOverlapProcessor(sc.order, sc.overlap, sc.crushFrame)
		if err != nil {
			return err
		}

		out[ch] = crusherChannel{
			stft: stft,
			dry:  make([]float32, stft.Latency()),
		}
	}

	sc.channels = out

	return nil
}

// Latency returns the processing delay in samples.
func (sc *SpectralCrusher) Latency() int {
	if len(sc.channels) == 0 {
		return 0
	}

	return sc.channels[0].stft.Latency()
}

// SetBits sets the magnitude resolution in [1, 16] bits.
func (sc *SpectralCrusher) SetBits(bits float64) error {
	if err := validateRange("spectral crusher bits", bits, MinSpectralCrusherBits, MaxSpectralCrusherBits); err != nil {
		return err
	}

	sc.bits = bits
	sc.levels = float32(math.Exp2(bits - 1))

	return nil
}

// SetCutoff sets the kept fraction of the spectrum in [0, 1].
func (sc *SpectralCrusher) SetCutoff(fraction float64) error {
	if err := validateRange("spectral crusher cutoff", fraction, 0, 1); err != nil {
		return err
	}

	sc.cutoff = fraction

	return nil
}

// SetMix sets the dry/wet mix in [0, 1].
func (sc *SpectralCrusher) SetMix(amount float64) error {
	if err := validateRange("spectral crusher mix", amount, 0, 1); err != nil {
		return err
	}

	sc.mix = float32(amount)

	return nil
}

// Reset clears STFT and dry-delay state.
func (sc *SpectralCrusher) Reset() {
	for i := range sc.channels {
		sc.channels[i].stft.Reset()
		clear(sc.channels[i].dry)
		sc.channels[i].dryAt = 0
	}
}

// Process crushes channel ch of buf in place.
func (sc *SpectralCrusher) Process(ch int, buf []float32) {
	if ch < 0 || ch >= len(sc.channels) {
		return
	}

	c := &sc.channels[ch]

	for i, x := range buf {
		wet := c.stft.ProcessSample(x)

		dry := c.dry[c.dryAt]
		c.dry[c.dryAt] = x

		c.dryAt++
		if c.dryAt == len(c.dry) {
			c.dryAt = 0
		}

		buf[i] = mix(dry, wet, sc.mix)
	}
}

func (sc *SpectralCrusher) crushFrame(bins []complex64) {
	last := len(bins) - 1
	keep := int(sc.cutoff * float64(last))

	// Full-scale sine through a Hann window peaks at N/4 = last/2.
	scale := float32(last) / 2
	levels := sc.levels

	for k := range bins {
		if k > keep {
			bins[k] = 0
			continue
		}

		re, im := real(bins[k]), imag(bins[k])

		mag := float32(math.Sqrt(float64(re*re + im*im)))
		if mag == 0 {
			continue
		}

		amp := mag / scale
		q := float32(math.Round(float64(amp*levels))) / levels
		g := q / amp
		bins[k] = complex(re*g, im*g)
	}
}
