package spectral

import (
	"math"
	"testing"
)

func sineBlock(n int, cyclesPerSample float64, amp float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amp * float32(math.Sin(2*math.Pi*cyclesPerSample*float64(i)))
	}

	return out
}

func TestAnalyzerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewAnalyzer(WithAnalyzerOrder(2)); err == nil {
		t.Fatal("expected error for tiny order")
	}

	if _, err := NewAnalyzer(WithFloorDB(3)); err == nil {
		t.Fatal("expected error for positive floor")
	}

	if _, err := NewAnalyzer(WithQueueCapacity(0)); err == nil {
		t.Fatal("expected error for zero capacity")
	}
}

func TestAnalyzerSinePeak(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	if a.Size() != 2048 || a.Bins() != 1024 {
		t.Fatalf("size=%d bins=%d", a.Size(), a.Bins())
	}

	const bin = 64

	a.Push(sineBlock(a.Size(), float64(bin)/float64(a.Size()), 1))

	if !a.Produce() {
		t.Fatal("Produce() failed")
	}

	mags, ok := a.Magnitudes().TryPop()
	if !ok {
		t.Fatal("no magnitude vector published")
	}

	peak := 0
	for i := range mags {
		if mags[i] > mags[peak] {
			peak = i
		}
	}

	if peak != bin {
		t.Fatalf("peak bin = %d, want %d", peak, bin)
	}

	// Blackman-Harris coherent gain is about 0.359 -> -8.9 dB.
	if mags[bin] < -12 || mags[bin] > -6 {
		t.Fatalf("peak level = %g dB", mags[bin])
	}

	if mags[400] != float32(DefaultFloorDB) {
		t.Fatalf("far bin = %g dB, want floor", mags[400])
	}
}

func TestAnalyzerShiftKeepsNewest(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer(WithAnalyzerOrder(5))
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	block := make([]float32, 8)
	for i := range block {
		block[i] = float32(i + 1)
	}

	a.Push(block)

	if a.ring[len(a.ring)-1] != 8 || a.ring[len(a.ring)-8] != 1 {
		t.Fatalf("tail = %v", a.ring[len(a.ring)-8:])
	}

	long := make([]float32, 40)
	for i := range long {
		long[i] = float32(i)
	}

	a.Push(long)

	if a.ring[0] != 8 || a.ring[31] != 39 {
		t.Fatalf("oversize block kept wrong window: first=%g last=%g", a.ring[0], a.ring[31])
	}
}

func TestAnalyzerSilenceIsFloor(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer(WithAnalyzerOrder(8), WithFloorDB(-60))
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}

	a.Produce()

	mags, _ := a.Magnitudes().TryPop()
	for i, m := range mags {
		if m != -60 {
			t.Fatalf("bin %d = %g, want -60", i, m)
		}
	}
}

func TestPathGeneratorBounds(t *testing.T) {
	t.Parallel()

	const (
		size = 2048
		sr   = 48000.0
	)

	mags := make([]float32, size/2)
	for i := range mags {
		mags[i] = float32(-48 + 48*float64(i)/float64(len(mags)))
	}

	g := NewPathGenerator(len(mags), 2)
	bounds := Rect{X: 10, Y: 5, Width: 400, Height: 200}

	if !g.Generate(mags, bounds, sr/size, -48) {
		t.Fatal("Generate() failed")
	}

	path := g.Paths().Front()
	if path == nil || path.N == 0 {
		t.Fatal("no path published")
	}

	prevX := float32(-1)
	for _, p := range path.Valid() {
		if p.X < bounds.X || p.X > bounds.X+bounds.Width {
			t.Fatalf("x out of bounds: %g", p.X)
		}

		if p.Y < bounds.Y || p.Y > bounds.Y+bounds.Height {
			t.Fatalf("y out of bounds: %g", p.Y)
		}

		if p.X < prevX {
			t.Fatalf("x not monotonic: %g after %g", p.X, prevX)
		}

		prevX = p.X
	}
}

func TestPathProducerEndToEnd(t *testing.T) {
	t.Parallel()

	fifo := NewSampleFifo(512, 8)

	p, err := NewPathProducer(fifo)
	if err != nil {
		t.Fatalf("NewPathProducer() error = %v", err)
	}

	bounds := Rect{Width: 300, Height: 100}

	if p.Process(bounds, 48000) {
		t.Fatal("no input should yield no path update")
	}

	fifo.Push(sineBlock(2048, 1000.0/48000, 0.5))

	if !p.Process(bounds, 48000) {
		t.Fatal("expected a path update")
	}

	if p.Path().N == 0 {
		t.Fatal("kept path is empty")
	}

	if fifo.Available() != 0 {
		t.Fatal("producer should drain the fifo")
	}
}
