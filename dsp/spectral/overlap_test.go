package spectral

import (
	"math"
	"math/rand"
	"testing"
)

func TestOverlapProcessorValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewOverlapProcessor(2, 4, nil); err == nil {
		t.Fatal("expected error for small order")
	}

	if _, err := NewOverlapProcessor(10, 3, nil); err == nil {
		t.Fatal("expected error for non-dividing overlap")
	}
}

func TestOverlapProcessorIdentityDelay(t *testing.T) {
	t.Parallel()

	p, err := NewOverlapProcessor(8, DefaultOverlap, func([]complex64) {})
	if err != nil {
		t.Fatalf("NewOverlapProcessor() error = %v", err)
	}

	if p.Latency() != 256 || p.HopSize() != 64 || p.Bins() != 129 {
		t.Fatalf("latency=%d hop=%d bins=%d", p.Latency(), p.HopSize(), p.Bins())
	}

	rng := rand.New(rand.NewSource(7))

	in := make([]float32, 4096)
	for i := range in {
		in[i] = float32(rng.Float64() - 0.5)
	}

	out := append([]float32(nil), in...)
	for start := 0; start < len(out); start += 100 {
		p.Process(out[start:min(start+100, len(out))])
	}

	lat := p.Latency()
	for i := range lat {
		if math.Abs(float64(out[i])) > 1e-4 {
			t.Fatalf("pre-latency output %d = %g, want 0", i, out[i])
		}
	}

	for i := lat; i < len(out); i++ {
		if d := math.Abs(float64(out[i] - in[i-lat])); d > 1e-4 {
			t.Fatalf("sample %d: got %g, want %g", i, out[i], in[i-lat])
		}
	}
}

func TestOverlapProcessorCallbackSeesEveryHop(t *testing.T) {
	t.Parallel()

	frames := 0

	p, err := NewOverlapProcessor(6, 4, func(bins []complex64) {
		if len(bins) != 33 {
			t.Errorf("bins = %d, want 33", len(bins))
		}

		frames++
	})
	if err != nil {
		t.Fatalf("NewOverlapProcessor() error = %v", err)
	}

	p.Process(make([]float32, 1600))

	if frames != 1600/16 {
		t.Fatalf("frames = %d, want %d", frames, 1600/16)
	}
}

func TestOverlapProcessorZeroedSpectrumIsSilent(t *testing.T) {
	t.Parallel()

	p, err := NewOverlapProcessor(8, 4, func(bins []complex64) { clear(bins) })
	if err != nil {
		t.Fatalf("NewOverlapProcessor() error = %v", err)
	}

	buf := sineBlock(2048, 0.05, 0.8)
	p.Process(buf)

	for i, x := range buf {
		if math.Abs(float64(x)) > 1e-5 {
			t.Fatalf("sample %d = %g, want silence", i, x)
		}
	}

	p.Reset()
}
