package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}

	if got := Clamp[float32](3, -1, 1); got != 1 {
		t.Fatalf("Clamp[float32]() = %v, want 1", got)
	}
}

func TestGainToDecibelsFloor(t *testing.T) {
	if got := GainToDecibels(0, -48); got != -48 {
		t.Fatalf("GainToDecibels(0) = %v, want floor", got)
	}

	if got := GainToDecibels(1e-6, -48); got != -48 {
		t.Fatalf("GainToDecibels(1e-6) = %v, want floor", got)
	}

	if got := GainToDecibels(1, -48); math.Abs(got) > 1e-12 {
		t.Fatalf("GainToDecibels(1) = %v, want 0", got)
	}

	if got := DecibelsToGain(-48, -48); got != 0 {
		t.Fatalf("DecibelsToGain(floor) = %v, want 0", got)
	}

	db := LinearToDB(DBToLinear(-6))
	if !NearlyEqual(db, -6, 1e-10) {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
}

func TestMapFromLog10(t *testing.T) {
	if got := MapFromLog10(20, 20, 20000); got != 0 {
		t.Fatalf("MapFromLog10(lo) = %v, want 0", got)
	}

	if got := MapFromLog10(20000, 20, 20000); math.Abs(got-1) > 1e-12 {
		t.Fatalf("MapFromLog10(hi) = %v, want 1", got)
	}

	if got := MapFromLog10(632.4555, 20, 20000); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("MapFromLog10(geometric mean) = %v, want 0.5", got)
	}
}

func TestNewChannelsAndMixDown(t *testing.T) {
	buf := NewChannels(2, 4)
	if len(buf) != 2 || Frames(buf) != 4 {
		t.Fatalf("NewChannels shape = %dx%d, want 2x4", len(buf), Frames(buf))
	}

	for i := range 4 {
		buf[0][i] = 1
		buf[1][i] = 3
	}

	dst := make([]float32, 4)
	MixDown(dst, buf)

	for i, v := range dst {
		if v != 2 {
			t.Fatalf("dst[%d] = %v, want 2", i, v)
		}
	}

	ZeroChannels(buf)

	if buf[1][3] != 0 {
		t.Fatal("ZeroChannels left data behind")
	}
}

func TestFlushDenormals(t *testing.T) {
	if FlushDenormals(float32(1e-35)) != 0 {
		t.Fatal("expected denormal to flush to zero")
	}

	if FlushDenormals(0.5) != 0.5 {
		t.Fatal("expected normal value to pass through")
	}
}

func TestFramesUsesShortestChannel(t *testing.T) {
	if got := Frames(nil); got != 0 {
		t.Fatalf("Frames(nil) = %d, want 0", got)
	}

	buf := [][]float32{make([]float32, 8), make([]float32, 3), make([]float32, 5)}
	if got := Frames(buf); got != 3 {
		t.Fatalf("Frames = %d, want 3", got)
	}
}
