package host

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-fxrack/dsp/dither"
	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
	"github.com/cwbudde/algo-fxrack/dsp/resample"
	"github.com/cwbudde/algo-fxrack/internal/testutil"
)

func newRack(t *testing.T) *effectchain.Rack {
	t.Helper()

	r, err := effectchain.NewRack(effectchain.Config{Slots: 4, BlockSize: 64, Channels: 2})
	if err != nil {
		t.Fatalf("NewRack: %v", err)
	}

	return r
}

func decodeFloats(p []byte) []float32 {
	out := make([]float32, len(p)/BytesPerSample)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*BytesPerSample:]))
	}

	return out
}

func TestStreamInterleavesRackOutput(t *testing.T) {
	t.Parallel()

	s := NewStream(newRack(t), NewTone(1000, 48000, 0.5))
	p := make([]byte, 150*2*BytesPerSample)

	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read = %d, %v", n, err)
	}

	got := decodeFloats(p)
	want := testutil.Sine(1000, 48000, 0.5, 150)

	for i := range want {
		if math.Abs(float64(got[2*i]-want[i])) > 1e-5 || got[2*i] != got[2*i+1] {
			t.Fatalf("frame %d = (%g, %g), want %g", i, got[2*i], got[2*i+1], want[i])
		}
	}
}

func TestStreamEndsWithBufferSource(t *testing.T) {
	t.Parallel()

	s := NewStream(newRack(t), NewBuffer(testutil.SineChannels(440, 48000, 0.25, 2, 100)))
	p := make([]byte, 256*2*BytesPerSample)

	n, err := s.Read(p)
	if err != nil || n != 100*2*BytesPerSample {
		t.Fatalf("Read = %d, %v; want 100 frames", n, err)
	}

	if !s.Ended() {
		t.Fatal("stream should report the exhausted source")
	}

	if _, err := s.Read(p); !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want EOF", err)
	}

	if s.Reads() != 2 {
		t.Fatalf("reads = %d, want 2", s.Reads())
	}
}

func TestBufferSpreadsMonoSource(t *testing.T) {
	t.Parallel()

	mono := testutil.Sine(440, 48000, 0.5, 64)
	b := NewBuffer([][]float32{mono})

	buf := [][]float32{make([]float32, 64), make([]float32, 64)}
	if n := b.Fill(buf); n != 64 {
		t.Fatalf("Fill = %d, want 64", n)
	}

	for ch := range buf {
		testutil.RequireSliceNearlyEqual(t, buf[ch], mono, 0)
	}

	if b.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", b.Remaining())
	}
}

func TestRenderEmptyRackIsIdentity(t *testing.T) {
	t.Parallel()

	r := newRack(t)
	in := testutil.SineChannels(220, 48000, 0.5, 2, 1000)

	blocks := 0
	out := Render(r, in, WithTail(24), WithBlockHook(func() { blocks++ }))

	if len(out) != 2 || len(out[0]) != 1024 {
		t.Fatalf("shape = %dx%d, want 2x1024", len(out), len(out[0]))
	}

	if blocks != 16 {
		t.Fatalf("blocks = %d, want 16", blocks)
	}

	testutil.RequireSliceNearlyEqual(t, out[0][:1000], in[0], 0)

	for _, v := range out[1][1000:] {
		if v != 0 {
			t.Fatalf("tail sample = %g, want 0", v)
		}
	}

	if peak := r.InputMeter().Meter().Levels(0).Peak; peak == 0 {
		t.Fatal("input meter saw nothing")
	}
}

func TestRenderAppliesParameterChanges(t *testing.T) {
	t.Parallel()

	r := newRack(t)

	m, err := r.Create(effectchain.KindBitcrusher, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.Params().SetValue("Bits", 2); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	in := testutil.SineChannels(220, 48000, 0.8, 2, 2048)
	out := Render(r, in)

	testutil.RequireFinite(t, out...)

	diff, err := testutil.MaxAbsDiff(out[0], in[0])
	if err != nil {
		t.Fatal(err)
	}

	if diff < 0.05 {
		t.Fatalf("2-bit crusher changed the signal by only %g", diff)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{16, 24} {
		q, err := dither.NewQuantizer(dither.WithBitDepth(bits), dither.WithDitherType(dither.DitherNone))
		if err != nil {
			t.Fatalf("NewQuantizer: %v", err)
		}

		in := &Audio{SampleRate: 44100, Data: testutil.SineChannels(1000, 44100, 0.7, 2, 4410)}
		path := filepath.Join(t.TempDir(), "out.wav")

		if err := WriteWAV(path, in, q); err != nil {
			t.Fatalf("WriteWAV: %v", err)
		}

		got, err := ReadWAV(path)
		if err != nil {
			t.Fatalf("ReadWAV: %v", err)
		}

		if got.SampleRate != 44100 || got.BitDepth != bits || got.Channels() != 2 || got.Frames() != 4410 {
			t.Fatalf("%d bit: format = %g Hz %d bit %dx%d", bits, got.SampleRate, got.BitDepth, got.Channels(), got.Frames())
		}

		lsb := math.Exp2(-float64(bits - 1))
		for ch := range 2 {
			testutil.RequireSliceNearlyEqual(t, got.Data[ch], in.Data[ch], lsb)
		}
	}
}

func TestDecodeInvalidWAV(t *testing.T) {
	t.Parallel()

	if _, err := DecodeWAV(bytes.NewReader([]byte("definitely not RIFF data"))); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("err = %v, want ErrInvalidWAV", err)
	}

	if _, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestResampleKeepsTimingAndLevel(t *testing.T) {
	t.Parallel()

	in := &Audio{SampleRate: 44100, BitDepth: 16, Data: testutil.SineChannels(500, 44100, 0.5, 1, 4410)}

	out, err := Resample(in, 48000, resample.QualityBalanced)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}

	if out.SampleRate != 48000 || out.Frames() != 4800 {
		t.Fatalf("got %g Hz, %d frames", out.SampleRate, out.Frames())
	}

	want := testutil.Sine(500, 48000, 0.5, 4800)

	diff, err := testutil.MaxAbsDiff(out.Data[0][200:4600], want[200:4600])
	if err != nil {
		t.Fatal(err)
	}

	if diff > 0.02 {
		t.Fatalf("resampled sine deviates by %g", diff)
	}

	same, err := Resample(out, 48000, resample.QualityFast)
	if err != nil || same != out {
		t.Fatalf("same-rate Resample should return its input: %v", err)
	}
}
