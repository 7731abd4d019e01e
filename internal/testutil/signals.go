// Package testutil provides deterministic float32 test signals and
// tolerance helpers shared by the DSP and rack tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic float32 sine wave starting at phase 0.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// Noise generates white noise in [-amplitude, amplitude) with a fixed seed.
func Noise(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Step returns zeros followed by value from pos on.
func Step(value float32, length, pos int) []float32 {
	out := make([]float32, length)
	for i := max(pos, 0); i < length; i++ {
		out[i] = value
	}
	return out
}

// Channels copies mono into a new buffer of n identical channels.
func Channels(mono []float32, n int) [][]float32 {
	out := make([][]float32, n)
	for ch := range out {
		out[ch] = append([]float32(nil), mono...)
	}
	return out
}

// SineChannels is Channels(Sine(...), channels).
func SineChannels(freqHz, sampleRate, amplitude float64, channels, length int) [][]float32 {
	return Channels(Sine(freqHz, sampleRate, amplitude, length), channels)
}
