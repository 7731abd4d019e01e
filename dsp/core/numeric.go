package core

import "math"

// Float is the set of sample types used by the processing code.
type Float interface {
	~float32 | ~float64
}

// Clamp limits value to the inclusive range [lo, hi].
func Clamp[T Float](value, lo, hi T) T {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite[T Float](x T) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals[T Float](x T) T {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDecibels converts a linear gain to dB, treating anything at or below
// floorDB as floorDB. The floor plays the role of negative infinity for
// displays that cannot show -Inf.
func GainToDecibels(gain, floorDB float64) float64 {
	if gain <= 0 || math.IsNaN(gain) {
		return floorDB
	}

	db := 20 * math.Log10(gain)
	if db < floorDB {
		return floorDB
	}

	return db
}

// MapLinear maps value from [srcLo, srcHi] onto [dstLo, dstHi] without clamping.
func MapLinear(value, srcLo, srcHi, dstLo, dstHi float64) float64 {
	if srcHi == srcLo {
		return dstLo
	}

	return dstLo + (value-srcLo)/(srcHi-srcLo)*(dstHi-dstLo)
}

// MapFromLog10 maps value in [lo, hi] onto the unit interval on a log10 scale.
// lo and hi must be > 0.
func MapFromLog10(value, lo, hi float64) float64 {
	if value <= 0 || lo <= 0 || hi <= lo {
		return 0
	}

	return (math.Log10(value) - math.Log10(lo)) / (math.Log10(hi) - math.Log10(lo))
}
