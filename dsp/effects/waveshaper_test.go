package effects

import (
	"math"
	"testing"
)

func TestWaveshaperValidation(t *testing.T) {
	w := NewWaveshaper()

	if err := w.SetMode(ShapeMode(99)); err == nil {
		t.Fatal("expected error for invalid mode")
	}

	if err := w.SetDriveDB(100); err == nil {
		t.Fatal("expected error for invalid drive")
	}

	if err := w.SetMix(1.5); err == nil {
		t.Fatal("expected error for invalid mix")
	}

	if err := w.SetBias(math.NaN()); err == nil {
		t.Fatal("expected error for NaN bias")
	}
}

func TestWaveshaperMixZeroPassthrough(t *testing.T) {
	w := NewWaveshaper()
	if err := w.SetDriveDB(24); err != nil {
		t.Fatal(err)
	}

	if err := w.SetMix(0); err != nil {
		t.Fatal(err)
	}

	for _, in := range []float32{-1.2, -0.5, 0, 0.4, 1.3} {
		if out := w.ProcessSample(in); out != in {
			t.Fatalf("mix=0 passthrough mismatch: in=%g out=%g", in, out)
		}
	}
}

func TestWaveshaperModesBounded(t *testing.T) {
	for m := range ShapeModes() {
		mode := ShapeMode(m)

		w := NewWaveshaper()
		if err := w.SetMode(mode); err != nil {
			t.Fatalf("SetMode(%s) error = %v", mode, err)
		}

		if err := w.SetDriveDB(18); err != nil {
			t.Fatal(err)
		}

		for x := float32(-2); x <= 2; x += 0.01 {
			y := w.ProcessSample(x)
			if math.IsNaN(float64(y)) || y > 1.0001 || y < -1.0001 {
				t.Fatalf("%s: shape(%g) = %g out of range", mode, x, y)
			}
		}

		if y := w.ProcessSample(0); y != 0 {
			t.Fatalf("%s: shape(0) = %g, want 0", mode, y)
		}
	}
}

func TestWaveshaperTransferCurves(t *testing.T) {
	cases := []struct {
		mode ShapeMode
		in   float32
		want float32
	}{
		{ShapeHardClip, 2, 1},
		{ShapeHardClip, -0.25, -0.25},
		{ShapeSoftClip, 1, 1},
		{ShapeSoftClip, 0.5, 1.5 * (0.5 - 0.125/3)},
		{ShapeSaturate, 1, 0.5},
		{ShapeFoldback, 1.5, 0.5},
		{ShapeFoldback, -1.5, -0.5},
		{ShapeFoldback, 2.5, -0.5},
		{ShapeSineFold, 1, 1},
	}

	for _, tc := range cases {
		w := NewWaveshaper()
		if err := w.SetMode(tc.mode); err != nil {
			t.Fatal(err)
		}

		out := make([]float32, 1)
		w.TransferCurve(out, []float32{tc.in})

		if math.Abs(float64(out[0]-tc.want)) > 1e-5 {
			t.Errorf("%s(%g) = %g, want %g", tc.mode, tc.in, out[0], tc.want)
		}
	}
}
