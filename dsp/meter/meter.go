// Package meter provides block peak/RMS metering with lock-free reads.
//
// The audio thread calls Process once per block; any goroutine may read the
// published levels at any time.
package meter

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fxrack/dsp/core"
)

// MaxChannels bounds the number of metered channels. Extra channels are
// ignored so readers never observe a reallocation.
const MaxChannels = 8

// Levels is one channel's published block levels (linear).
type Levels struct {
	Peak float32
	RMS  float32
}

// Meter measures per-block peak and RMS for up to MaxChannels channels.
type Meter struct {
	peak   [MaxChannels]atomic.Uint32
	rms    [MaxChannels]atomic.Uint32
	blocks atomic.Uint64
	used   atomic.Int32
}

// New returns a meter with zero levels.
func New() *Meter {
	return &Meter{}
}

// Process measures buf without modifying it.
func (m *Meter) Process(buf [][]float32) {
	n := min(len(buf), MaxChannels)

	for ch := range n {
		var (
			peak float32
			sum  float64
		)

		for _, x := range buf[ch] {
			if x < 0 {
				x = -x
			}

			if x > peak {
				peak = x
			}

			sum += float64(x) * float64(x)
		}

		var rms float32
		if len(buf[ch]) > 0 {
			rms = float32(math.Sqrt(sum / float64(len(buf[ch]))))
		}

		m.peak[ch].Store(math.Float32bits(peak))
		m.rms[ch].Store(math.Float32bits(rms))
	}

	m.used.Store(int32(n))
	m.blocks.Add(1)
}

// Channels returns how many channels the last block carried.
func (m *Meter) Channels() int { return int(m.used.Load()) }

// Blocks returns the number of processed blocks.
func (m *Meter) Blocks() uint64 { return m.blocks.Load() }

// Levels returns the last published levels of channel ch.
func (m *Meter) Levels(ch int) Levels {
	if ch < 0 || ch >= MaxChannels {
		return Levels{}
	}

	return Levels{
		Peak: math.Float32frombits(m.peak[ch].Load()),
		RMS:  math.Float32frombits(m.rms[ch].Load()),
	}
}

// PeakDB returns the peak of channel ch in dB, floored at floorDB.
func (m *Meter) PeakDB(ch int, floorDB float64) float64 {
	return core.GainToDecibels(float64(m.Levels(ch).Peak), floorDB)
}

// RMSDB returns the RMS of channel ch in dB, floored at floorDB.
func (m *Meter) RMSDB(ch int, floorDB float64) float64 {
	return core.GainToDecibels(float64(m.Levels(ch).RMS), floorDB)
}

// Reset zeroes all published levels.
func (m *Meter) Reset() {
	for ch := range MaxChannels {
		m.peak[ch].Store(0)
		m.rms[ch].Store(0)
	}

	m.used.Store(0)
}
