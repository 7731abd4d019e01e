package biquad

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// passthrough returns coefficients for a unity gain passthrough (B0=1, all else 0).
func passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// directForm1 filters input with the difference equation
// y[n] = b0 x[n] + b1 x[n-1] + b2 x[n-2] - a1 y[n-1] - a2 y[n-2].
func directForm1(c Coefficients, input []float32) []float64 {
	out := make([]float64, len(input))

	var x1, x2, y1, y2 float64
	for i, xf := range input {
		x := float64(xf)
		y := c.B0*x + c.B1*x1 + c.B2*x2 - c.A1*y1 - c.A2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		out[i] = y
	}

	return out
}

func TestProcessBlock_Passthrough(t *testing.T) {
	s := Section{Coefficients: passthrough()}
	input := []float32{1, 0, -1, 0.5, 0.25}
	buf := append([]float32(nil), input...)

	s.ProcessBlock(buf)

	for i := range input {
		if buf[i] != input[i] {
			t.Errorf("sample %d: got %v, want %v", i, buf[i], input[i])
		}
	}
}

func TestProcessBlock_DFIIT(t *testing.T) {
	// Hand-traced DF-II-T with B0=0.25, B1=0.5, B2=0.25, A1=-0.2, A2=0.04
	// and an impulse input:
	//
	// n=0: y=0.25           d0=0.55  d1=0.24
	// n=1: y=0.55           d0=0.35  d1=-0.022
	// n=2: y=0.35           d0=0.048 d1=-0.014
	// n=3: y=0.048
	s := Section{Coefficients: Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}}

	buf := []float32{1, 0, 0, 0}
	s.ProcessBlock(buf)

	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i, w := range want {
		if !almostEqual(float64(buf[i]), w, 1e-6) {
			t.Errorf("sample %d: got %.9f, want %.9f", i, buf[i], w)
		}
	}
}

func TestProcessBlock_CarriesStateAcrossBlocks(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	input := []float32{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}
	ref := directForm1(c, input)

	s := Section{Coefficients: c}
	block := append([]float32(nil), input...)
	s.ProcessBlock(block[:3])
	s.ProcessBlock(block[3:])

	for i := range block {
		if !almostEqual(float64(block[i]), ref[i], 1e-6) {
			t.Errorf("sample %d: ProcessBlock=%.9f, reference=%.9f", i, block[i], ref[i])
		}
	}
}

func TestReset(t *testing.T) {
	s := Section{Coefficients: Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}}
	s.ProcessBlock([]float32{1})

	s.Reset()

	silence := make([]float32, 4)
	s.ProcessBlock(silence)

	for i, y := range silence {
		if y != 0 {
			t.Fatalf("sample %d = %v after Reset, want 0", i, y)
		}
	}
}

func TestBankProcessesEachChannel(t *testing.T) {
	var b Bank

	b.Prepare(2)
	b.SetCoefficients(Coefficients{B0: 0.5, B1: 0.5})

	buf := [][]float32{{1, 0, 0}, {0, 1, 0}, {1, 1, 1}}
	b.ProcessBlock(buf)

	want := [][]float32{{0.5, 0.5, 0}, {0, 0.5, 0.5}, {1, 1, 1}}
	for ch := range want {
		for i := range want[ch] {
			if buf[ch][i] != want[ch][i] {
				t.Fatalf("ch %d = %v, want %v", ch, buf[ch], want[ch])
			}
		}
	}

	if b.Channels() != 2 || b.Coefficients().B0 != 0.5 {
		t.Fatalf("channels=%d coeffs=%+v", b.Channels(), b.Coefficients())
	}
}

func TestBankResetClearsState(t *testing.T) {
	var b Bank

	b.Prepare(1)
	b.SetCoefficients(Coefficients{B0: 0.5, B1: 0.5})
	b.ProcessBlock([][]float32{{1}})
	b.Reset()

	buf := [][]float32{{0, 0}}
	b.ProcessBlock(buf)

	if buf[0][0] != 0 || buf[0][1] != 0 {
		t.Fatalf("output after Reset = %v, want silence", buf[0])
	}
}
