package effects

import (
	"fmt"
	"math"
)

const (
	MinBitCrusherBits       = 1.0
	MaxBitCrusherBits       = 24.0
	MaxBitCrusherDownsample = 64
)

type holdState struct {
	counter int
	value   float32
}

// BitCrusher reduces amplitude resolution and effective sample rate.
//
// Quantization snaps samples to a grid of 2^(bits-1) steps per unit;
// fractional bit depths are allowed for smooth sweeps. Downsampling holds
// each quantized value for Downsample samples. Each channel keeps its own
// hold state.
type BitCrusher struct {
	bits       float64
	downsample int
	mix        float32
	levels     float32

	channels []holdState
}

// NewBitCrusher creates a transparent crusher (24 bits, no downsampling).
func NewBitCrusher() *BitCrusher {
	bc := &BitCrusher{bits: MaxBitCrusherBits, downsample: 1, mix: 1}
	bc.updateLevels()
	bc.Prepare(1)

	return bc
}

// Prepare allocates hold state for channels.
func (bc *BitCrusher) Prepare(channels int) {
	bc.channels = make([]holdState, max(channels, 1))
}

// SetBits sets the bit depth in [1, 24].
func (bc *BitCrusher) SetBits(bits float64) error {
	if err := validateRange("bit crusher bit depth", bits, MinBitCrusherBits, MaxBitCrusherBits); err != nil {
		return err
	}

	bc.bits = bits
	bc.updateLevels()

	return nil
}

// SetDownsample sets the sample-and-hold factor in [1, 64].
func (bc *BitCrusher) SetDownsample(factor int) error {
	if factor < 1 || factor > MaxBitCrusherDownsample {
		return fmt.Errorf("bit crusher downsample factor must be in [1, %d]: %d",
			MaxBitCrusherDownsample, factor)
	}

	bc.downsample = factor

	return nil
}

// SetMix sets the dry/wet mix in [0, 1].
func (bc *BitCrusher) SetMix(amount float64) error {
	if err := validateRange("bit crusher mix", amount, 0, 1); err != nil {
		return err
	}

	bc.mix = float32(amount)

	return nil
}

// Bits returns the bit depth.
func (bc *BitCrusher) Bits() float64 { return bc.bits }

// Downsample returns the hold factor.
func (bc *BitCrusher) Downsample() int { return bc.downsample }

// Reset clears the hold state.
func (bc *BitCrusher) Reset() {
	clear(bc.channels)
}

// Process crushes channel ch of buf in place. Unprepared channels pass through.
func (bc *BitCrusher) Process(ch int, buf []float32) {
	if ch < 0 || ch >= len(bc.channels) {
		return
	}

	st := &bc.channels[ch]

	for i, x := range buf {
		st.counter++
		if st.counter >= bc.downsample {
			st.counter = 0
			st.value = bc.quantize(x)
		}

		buf[i] = mix(x, st.value, bc.mix)
	}
}

func (bc *BitCrusher) updateLevels() {
	bc.levels = float32(math.Exp2(bc.bits - 1))
}

func (bc *BitCrusher) quantize(x float32) float32 {
	return float32(math.Round(float64(x*bc.levels))) / bc.levels
}
