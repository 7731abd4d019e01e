package host

import (
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fxrack/dsp/core"
	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
)

// BytesPerSample is the size of one float32 little-endian sample.
const BytesPerSample = 4

// Stream pulls blocks from a Source through a rack and serves them as
// interleaved float32 little-endian PCM. Read is the real-time path: it never
// allocates after construction.
type Stream struct {
	rack     *effectchain.Rack
	source   Source
	channels int

	block [][]float32
	ended atomic.Bool
	reads atomic.Uint64
}

// NewStream builds a stream for rack's channel count and block size.
func NewStream(rack *effectchain.Rack, source Source) *Stream {
	ctx := rack.Context()

	return &Stream{
		rack:     rack,
		source:   source,
		channels: ctx.Channels,
		block:    core.NewChannels(ctx.Channels, ctx.BlockSize),
	}
}

// Channels returns the interleaved channel count.
func (s *Stream) Channels() int { return s.channels }

// Ended reports whether the source has been exhausted.
func (s *Stream) Ended() bool { return s.ended.Load() }

// Reads returns how many Read calls were served.
func (s *Stream) Reads() uint64 { return s.reads.Load() }

// Read fills p with whole frames. Once the source is exhausted the partial
// block is delivered and the next Read returns io.EOF.
func (s *Stream) Read(p []byte) (int, error) {
	s.reads.Add(1)

	if s.ended.Load() {
		return 0, io.EOF
	}

	frameBytes := s.channels * BytesPerSample
	frames := len(p) / frameBytes
	written := 0

	for written < frames {
		n := min(frames-written, len(s.block[0]))
		chunk := s.block

		for ch := range chunk {
			chunk[ch] = chunk[ch][:n]
		}

		got := s.source.Fill(chunk)
		for ch := range chunk {
			chunk[ch] = chunk[ch][:got]
		}

		s.rack.ProcessBlock(chunk)
		s.interleave(p[written*frameBytes:], chunk, got)
		written += got

		for ch := range chunk {
			chunk[ch] = chunk[ch][:cap(chunk[ch])]
		}

		if got < n {
			s.ended.Store(true)
			break
		}
	}

	if written == 0 && s.ended.Load() {
		return 0, io.EOF
	}

	return written * frameBytes, nil
}

func (s *Stream) interleave(dst []byte, buf [][]float32, frames int) {
	off := 0

	for i := range frames {
		for ch := range buf {
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(buf[ch][i]))
			off += BytesPerSample
		}
	}
}
