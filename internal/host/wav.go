package host

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-fxrack/dsp/core"
	"github.com/cwbudde/algo-fxrack/dsp/dither"
	"github.com/cwbudde/algo-fxrack/dsp/resample"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for files that are not PCM WAV.
var ErrInvalidWAV = errors.New("invalid WAV file")

// Audio is planar float audio in [-1, 1].
type Audio struct {
	SampleRate float64
	BitDepth   int
	Data       [][]float32
}

// Frames returns the length in frames.
func (a *Audio) Frames() int { return core.Frames(a.Data) }

// Channels returns the channel count.
func (a *Audio) Channels() int { return len(a.Data) }

// ReadWAV decodes the PCM WAV file at path.
func ReadWAV(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	defer f.Close()

	a, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("host: %s: %w", path, err)
	}

	return a, nil
}

// DecodeWAV decodes PCM WAV data.
func DecodeWAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("seek to PCM: %w", err)
	}

	format := dec.Format()
	bitDepth := int(dec.SampleBitDepth())

	if bitDepth == 0 || format == nil || format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: unknown format", ErrInvalidWAV)
	}

	bytesPerSample := (bitDepth-1)/8 + 1
	samples := int(dec.PCMLen()) / bytesPerSample

	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, samples),
		SourceBitDepth: bitDepth,
	}

	n, err := dec.PCMBuffer(buf)
	if err != nil {
		return nil, fmt.Errorf("decode PCM: %w", err)
	}

	channels := format.NumChannels
	frames := n / channels
	scale := 1 / math.Exp2(float64(bitDepth-1))
	data := core.NewChannels(channels, frames)

	// 8-bit WAV is unsigned.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	for i := range frames {
		for ch := range channels {
			data[ch][i] = float32(float64(buf.Data[i*channels+ch]-offset) * scale)
		}
	}

	return &Audio{SampleRate: float64(format.SampleRate), BitDepth: bitDepth, Data: data}, nil
}

// WriteWAV encodes a to path with q's bit depth.
func WriteWAV(path string, a *Audio, q *dither.Quantizer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("host: %w", err)
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("host: %w", cerr)
		}
	}()

	if err := EncodeWAV(f, a, q); err != nil {
		return fmt.Errorf("host: %s: %w", path, err)
	}

	return nil
}

// EncodeWAV writes a as integer PCM quantized by q.
func EncodeWAV(w io.WriteSeeker, a *Audio, q *dither.Quantizer) error {
	if a.Channels() < 1 {
		return errors.New("no channels to write")
	}

	sr := int(math.Round(a.SampleRate))
	enc := wav.NewEncoder(w, sr, q.BitDepth(), a.Channels(), 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: a.Channels(), SampleRate: sr},
		Data:           q.Interleave(nil, a.Data),
		SourceBitDepth: q.BitDepth(),
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode PCM: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish WAV: %w", err)
	}

	return nil
}

// Resample converts a to rate. The filter delay is removed so the result
// stays time-aligned with the input.
func Resample(a *Audio, rate float64, quality resample.Quality) (*Audio, error) {
	if a.SampleRate == rate {
		return a, nil
	}

	conv, err := resample.NewConverter(a.SampleRate, rate, a.Channels(), resample.WithQuality(quality))
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}

	body := conv.Process(a.Data)
	tail := conv.Flush()

	want := int(math.Round(float64(a.Frames()) * rate / a.SampleRate))
	skip := conv.Latency()
	data := core.NewChannels(a.Channels(), want)

	for ch := range data {
		full := append(body[ch], tail[ch]...)
		if skip < len(full) {
			copy(data[ch], full[skip:])
		}
	}

	return &Audio{SampleRate: rate, BitDepth: a.BitDepth, Data: data}, nil
}
