package effects

import (
	"math"
	"testing"
)

func TestBitCrusherValidation(t *testing.T) {
	bc := NewBitCrusher()

	if err := bc.SetBits(0.5); err == nil {
		t.Fatal("expected error for bit depth below range")
	}

	if err := bc.SetDownsample(0); err == nil {
		t.Fatal("expected error for zero downsample")
	}

	if err := bc.SetMix(-0.1); err == nil {
		t.Fatal("expected error for negative mix")
	}
}

func TestBitCrusherQuantizes(t *testing.T) {
	bc := NewBitCrusher()
	if err := bc.SetBits(2); err != nil {
		t.Fatal(err)
	}

	buf := []float32{0.1, 0.3, -0.4, 0.9, -1}
	bc.Process(0, buf)

	want := []float32{0, 0.5, -0.5, 1, -1}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf = %v, want %v", buf, want)
		}
	}
}

func TestBitCrusherDownsampleHolds(t *testing.T) {
	bc := NewBitCrusher()
	if err := bc.SetDownsample(3); err != nil {
		t.Fatal(err)
	}

	bc.Prepare(2)

	left := []float32{1, 2, 3, 4, 5, 6}
	right := []float32{-1, -1, -1, -1, -1, -1}

	bc.Process(0, left)
	bc.Process(1, right[:2])

	want := []float32{0, 0, 3, 3, 3, 6}
	for i := range want {
		if math.Abs(float64(left[i]-want[i])) > 1e-6 {
			t.Fatalf("left = %v, want %v", left, want)
		}
	}

	if right[0] != 0 || right[1] != 0 {
		t.Fatalf("right channel should still hold zero: %v", right[:2])
	}

	bc.Reset()
	bc.Process(5, left)
}
