package spectral

// PathProducer drives the analysis pipeline of one channel on the consumer
// goroutine: FIFO blocks feed the analyzer, magnitude vectors feed the path
// generator, and the newest path is kept for drawing.
type PathProducer struct {
	fifo      *SampleFifo
	analyzer  *Analyzer
	generator *PathGenerator

	block []float32
	path  Path
}

// NewPathProducer wires fifo into a fresh analyzer and generator.
func NewPathProducer(fifo *SampleFifo, opts ...AnalyzerOption) (*PathProducer, error) {
	analyzer, err := NewAnalyzer(opts...)
	if err != nil {
		return nil, err
	}

	return &PathProducer{
		fifo:      fifo,
		analyzer:  analyzer,
		generator: NewPathGenerator(analyzer.Bins(), analyzer.Magnitudes().Cap()),
		block:     make([]float32, fifo.BlockSize()),
		path:      Path{Points: make([]Point, analyzer.Bins())},
	}, nil
}

// Analyzer returns the producer's analyzer.
func (p *PathProducer) Analyzer() *Analyzer { return p.analyzer }

// Generator returns the producer's path generator.
func (p *PathProducer) Generator() *PathGenerator { return p.generator }

// Process drains everything pending and reports whether the kept path changed.
func (p *PathProducer) Process(bounds Rect, sampleRate float64) bool {
	if len(p.block) != p.fifo.BlockSize() {
		p.block = make([]float32, p.fifo.BlockSize())
	}

	for p.fifo.Pull(p.block) {
		p.analyzer.Push(p.block)
		p.analyzer.Produce()
	}

	binWidth := sampleRate / float64(p.analyzer.Size())
	mags := p.analyzer.Magnitudes()

	for m := mags.Front(); m != nil; m = mags.Front() {
		p.generator.Generate(*m, bounds, binWidth, p.analyzer.FloorDB())
		mags.Pop()
	}

	updated := false
	paths := p.generator.Paths()

	for path := paths.Front(); path != nil; path = paths.Front() {
		p.path.CopyFrom(path)
		paths.Pop()

		updated = true
	}

	return updated
}

// Path returns the newest generated polyline.
func (p *PathProducer) Path() *Path { return &p.path }
