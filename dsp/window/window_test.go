package window

import (
	"math"
	"testing"
)

func TestGenerateHannPeriodic(t *testing.T) {
	w := Generate(TypeHann, 8, WithPeriodic())
	if len(w) != 8 {
		t.Fatalf("len = %d, want 8", len(w))
	}

	if math.Abs(w[0]) > 1e-12 {
		t.Fatalf("w[0] = %v, want 0", w[0])
	}

	if math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("w[4] = %v, want 1 (periodic peak)", w[4])
	}
}

func TestBlackmanHarrisSymmetric(t *testing.T) {
	w := Generate(TypeBlackmanHarris4Term, 65)
	for i := range w {
		j := len(w) - 1 - i
		if math.Abs(w[i]-w[j]) > 1e-12 {
			t.Fatalf("asymmetric at %d: %v vs %v", i, w[i], w[j])
		}
	}

	if math.Abs(w[32]-1) > 1e-9 {
		t.Fatalf("centre = %v, want 1", w[32])
	}

	if w[0] > 1e-4 {
		t.Fatalf("edge = %v, want ~6e-5", w[0])
	}
}

func TestOverlapAddGainHann(t *testing.T) {
	w := Generate(TypeHann, 1024, WithPeriodic())

	got := OverlapAddGain(w, 4)
	if math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("OverlapAddGain = %v, want 1.5", got)
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if Generate(TypeHann, 0) != nil {
		t.Fatal("expected nil for zero length")
	}

	if Generate32(TypeHann, -1) != nil {
		t.Fatal("expected nil for negative length")
	}
}

func TestApplyCoefficientsInPlace(t *testing.T) {
	samples := []float64{1, 2, 3, 4}
	ApplyCoefficientsInPlace(samples, []float64{0, 0.5, 1, 2})

	want := []float64{0, 1, 3, 8}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("samples[%d] = %v, want %v", i, samples[i], want[i])
		}
	}
}
