package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxrack/dsp/core"
)

const (
	MinWaveshaperDriveDB = -24.0
	MaxWaveshaperDriveDB = 36.0
)

// ShapeMode selects the Waveshaper transfer function.
type ShapeMode int

const (
	ShapeSoftClip ShapeMode = iota
	ShapeHardClip
	ShapeTanh
	ShapeAtan
	ShapeSaturate
	ShapeFoldback
	ShapeSineFold

	shapeModeCount
)

var shapeModeNames = [...]string{
	ShapeSoftClip: "softclip",
	ShapeHardClip: "hardclip",
	ShapeTanh:     "tanh",
	ShapeAtan:     "atan",
	ShapeSaturate: "saturate",
	ShapeFoldback: "foldback",
	ShapeSineFold: "sinefold",
}

// ShapeModes returns the number of modes.
func ShapeModes() int { return int(shapeModeCount) }

func (m ShapeMode) String() string {
	if m < 0 || m >= shapeModeCount {
		return fmt.Sprintf("ShapeMode(%d)", int(m))
	}

	return shapeModeNames[m]
}

// Waveshaper applies a static nonlinearity:
//
//	out = dry + (shape((x+bias)*drive)*output - dry)*mix
//
// It has no memory and may be shared across channels.
type Waveshaper struct {
	mode   ShapeMode
	drive  float32
	bias   float32
	output float32
	mix    float32
}

// NewWaveshaper returns a unity soft-clip shaper.
func NewWaveshaper() *Waveshaper {
	return &Waveshaper{mode: ShapeSoftClip, drive: 1, output: 1, mix: 1}
}

// Mode returns the transfer function.
func (w *Waveshaper) Mode() ShapeMode { return w.mode }

// SetMode selects the transfer function.
func (w *Waveshaper) SetMode(mode ShapeMode) error {
	if mode < 0 || mode >= shapeModeCount {
		return fmt.Errorf("waveshaper mode is invalid: %d", mode)
	}

	w.mode = mode

	return nil
}

// SetDriveDB sets input drive in [-24, 36] dB.
func (w *Waveshaper) SetDriveDB(db float64) error {
	if err := validateRange("waveshaper drive", db, MinWaveshaperDriveDB, MaxWaveshaperDriveDB); err != nil {
		return err
	}

	w.drive = float32(core.DBToLinear(db))

	return nil
}

// SetBias sets the DC offset added before drive, in [-1, 1].
func (w *Waveshaper) SetBias(bias float64) error {
	if err := validateRange("waveshaper bias", bias, -1, 1); err != nil {
		return err
	}

	w.bias = float32(bias)

	return nil
}

// SetOutputDB sets the post-shaper level in dB.
func (w *Waveshaper) SetOutputDB(db float64) error {
	if err := validateRange("waveshaper output", db, -60, 24); err != nil {
		return err
	}

	w.output = float32(core.DBToLinear(db))

	return nil
}

// SetMix sets the dry/wet mix in [0, 1].
func (w *Waveshaper) SetMix(amount float64) error {
	if err := validateRange("waveshaper mix", amount, 0, 1); err != nil {
		return err
	}

	w.mix = float32(amount)

	return nil
}

// ProcessSample shapes one sample.
func (w *Waveshaper) ProcessSample(x float32) float32 {
	wet := w.shape((x+w.bias)*w.drive) * w.output
	if !core.IsFinite(wet) {
		wet = 0
	}

	return mix(x, wet, w.mix)
}

// Process shapes buf in place.
func (w *Waveshaper) Process(buf []float32) {
	for i, x := range buf {
		buf[i] = w.ProcessSample(x)
	}
}

// TransferCurve evaluates the wet transfer function at each input.
func (w *Waveshaper) TransferCurve(dst, inputs []float32) {
	for i, x := range inputs {
		dst[i] = w.shape((x+w.bias)*w.drive) * w.output
	}
}

func (w *Waveshaper) shape(x float32) float32 {
	switch w.mode {
	case ShapeHardClip:
		return clampUnit(x)
	case ShapeTanh:
		return fastTanh(x)
	case ShapeAtan:
		return float32(2 / math.Pi * math.Atan(float64(x)))
	case ShapeSaturate:
		if x < 0 {
			return x / (1 - x)
		}

		return x / (1 + x)
	case ShapeFoldback:
		return foldback(x)
	case ShapeSineFold:
		return float32(math.Sin(math.Pi / 2 * float64(x)))
	default:
		return softClip(x)
	}
}

func softClip(x float32) float32 {
	if x >= 1 {
		return 1
	}

	if x <= -1 {
		return -1
	}

	return 1.5 * (x - x*x*x/3)
}

func fastTanh(x float32) float32 {
	if x > 3 {
		return 1
	}

	if x < -3 {
		return -1
	}

	x2 := x * x

	return clampUnit(x * (27 + x2) / (27 + 9*x2))
}

// foldback reflects the signal at +-1 until it lies inside the unit range.
func foldback(x float32) float32 {
	if x >= -1 && x <= 1 {
		return x
	}

	// Period-4 triangle through the origin.
	v := math.Mod(float64(x)+1, 4)
	if v < 0 {
		v += 4
	}

	if v > 2 {
		return float32(3 - v)
	}

	return float32(v - 1)
}
