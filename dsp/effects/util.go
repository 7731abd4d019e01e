package effects

import (
	"fmt"
	"math"
)

func validateRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be in [%g, %g]: %f", name, lo, hi, v)
	}

	return nil
}

func validateSampleRate(name string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be > 0: %f", name, sampleRate)
	}

	return nil
}

func clampUnit(x float32) float32 {
	if x > 1 {
		return 1
	}

	if x < -1 {
		return -1
	}

	return x
}

func mix(dry, wet, amount float32) float32 {
	switch {
	case amount >= 1:
		return wet
	case amount <= 0:
		return dry
	default:
		return dry + (wet-dry)*amount
	}
}
