package host

import (
	"math"

	"github.com/cwbudde/algo-fxrack/dsp/core"
)

// Source produces planar input blocks for a Stream. Fill writes up to
// len(buf[0]) frames and returns how many it wrote; fewer than requested
// means the source is exhausted.
type Source interface {
	Fill(buf [][]float32) int
}

// Tone is an endless sine source written to every channel.
type Tone struct {
	freq       float64
	sampleRate float64
	amp        float32
	phase      float64
}

// NewTone returns a sine source at freq Hz with linear amplitude amp.
func NewTone(freq, sampleRate, amp float64) *Tone {
	return &Tone{freq: freq, sampleRate: sampleRate, amp: float32(amp)}
}

// Fill implements Source.
func (t *Tone) Fill(buf [][]float32) int {
	frames := core.Frames(buf)
	inc := 2 * math.Pi * t.freq / t.sampleRate

	for i := range frames {
		v := t.amp * float32(math.Sin(t.phase))
		for ch := range buf {
			buf[ch][i] = v
		}

		t.phase += inc
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}

	return frames
}

// Buffer plays planar audio once. Mono data feeds every channel; otherwise
// channels missing from data are silent.
type Buffer struct {
	data [][]float32
	pos  int
}

// NewBuffer wraps data without copying it.
func NewBuffer(data [][]float32) *Buffer {
	return &Buffer{data: data}
}

// Remaining returns the frames not yet played.
func (b *Buffer) Remaining() int {
	return core.Frames(b.data) - b.pos
}

// Fill implements Source.
func (b *Buffer) Fill(buf [][]float32) int {
	n := min(core.Frames(buf), b.Remaining())

	for ch := range buf {
		switch {
		case ch < len(b.data):
			copy(buf[ch][:n], b.data[ch][b.pos:b.pos+n])
		case len(b.data) == 1:
			copy(buf[ch][:n], b.data[0][b.pos:b.pos+n])
		default:
			clear(buf[ch][:n])
		}
	}

	b.pos += n

	return n
}
