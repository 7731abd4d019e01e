package spectral

import (
	"math"

	"github.com/cwbudde/algo-fxrack/dsp/core"
)

const (
	pathMinFrequency = 20.0
	pathMaxFrequency = 20000.0

	// DefaultPathResolution plots every second bin.
	DefaultPathResolution = 2
)

// Point is a pixel coordinate.
type Point struct {
	X, Y float32
}

// Rect is a drawing area in pixels. Y grows downwards.
type Rect struct {
	X, Y, Width, Height float32
}

// Path is a display polyline. Points is preallocated; only the first N
// entries are valid.
type Path struct {
	Points []Point
	N      int
}

// Valid returns the used part of the polyline.
func (p *Path) Valid() []Point { return p.Points[:p.N] }

// CopyFrom replaces p's contents with src, reusing p's storage when possible.
func (p *Path) CopyFrom(src *Path) {
	if cap(p.Points) < src.N {
		p.Points = make([]Point, src.N)
	}

	p.Points = p.Points[:cap(p.Points)]
	p.N = copy(p.Points, src.Valid())
}

// PathGenerator maps dB magnitude vectors to polylines: logarithmic frequency
// (20 Hz to 20 kHz) on x and a linear floor..0 dB range on y.
type PathGenerator struct {
	resolution int
	paths      *Queue[Path]
}

// NewPathGenerator creates a generator for magnitude vectors of bins entries.
func NewPathGenerator(bins, capacity int) *PathGenerator {
	return &PathGenerator{
		resolution: DefaultPathResolution,
		paths: NewQueue(capacity, func(slot *Path) {
			slot.Points = make([]Point, bins)
		}),
	}
}

// SetResolution sets the bin stride (>= 1).
func (g *PathGenerator) SetResolution(stride int) {
	g.resolution = max(stride, 1)
}

// Paths returns the queue of generated polylines.
func (g *PathGenerator) Paths() *Queue[Path] { return g.paths }

// Generate converts one magnitude vector and publishes the result. binWidth
// is sampleRate/fftSize. It reports false when the path queue is full.
func (g *PathGenerator) Generate(magnitudes []float32, bounds Rect, binWidth, floorDB float64) bool {
	slot := g.paths.Reserve()
	if slot == nil {
		return false
	}

	if cap(slot.Points) < len(magnitudes) {
		slot.Points = make([]Point, len(magnitudes))
	}

	slot.Points = slot.Points[:cap(slot.Points)]

	top := float64(bounds.Y)
	bottom := float64(bounds.Y + bounds.Height)
	n := 0

	for bin := 1; bin < len(magnitudes); bin += g.resolution {
		freq := float64(bin) * binWidth
		if freq < pathMinFrequency {
			continue
		}

		if freq > pathMaxFrequency {
			break
		}

		y := core.MapLinear(float64(magnitudes[bin]), floorDB, 0, bottom, top)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}

		normX := core.MapFromLog10(freq, pathMinFrequency, pathMaxFrequency)
		slot.Points[n] = Point{
			X: bounds.X + float32(math.Floor(normX*float64(bounds.Width))),
			Y: float32(y),
		}
		n++
	}

	slot.N = n
	g.paths.Publish()

	return true
}
