package spectral

// SampleFifo collects mono samples on the audio thread and publishes them in
// fixed-size blocks. The consumer reads whole blocks through Pull.
type SampleFifo struct {
	block []float32
	fill  int
	queue *Queue[[]float32]
}

// NewSampleFifo creates a FIFO publishing blocks of blockSize samples into a
// queue of capacity slots.
func NewSampleFifo(blockSize, capacity int) *SampleFifo {
	f := &SampleFifo{}
	f.Prepare(blockSize, capacity)

	return f
}

// Prepare reallocates the FIFO for a new block size. It must not run while
// either side is active.
func (f *SampleFifo) Prepare(blockSize, capacity int) {
	if blockSize < 1 {
		blockSize = 1
	}

	f.block = make([]float32, blockSize)
	f.fill = 0
	f.queue = NewQueue(capacity, func(slot *[]float32) {
		*slot = make([]float32, blockSize)
	})
}

// BlockSize returns the published block length.
func (f *SampleFifo) BlockSize() int { return len(f.block) }

// Queue exposes the underlying block queue.
func (f *SampleFifo) Queue() *Queue[[]float32] { return f.queue }

// Available returns the number of complete blocks waiting for the consumer.
func (f *SampleFifo) Available() int { return f.queue.Len() }

// Push appends samples. Producer side.
func (f *SampleFifo) Push(samples []float32) {
	for len(samples) > 0 {
		n := copy(f.block[f.fill:], samples)
		f.fill += n
		samples = samples[n:]

		if f.fill < len(f.block) {
			continue
		}

		if slot := f.queue.Reserve(); slot != nil {
			copy(*slot, f.block)
			f.queue.Publish()
		}

		f.fill = 0
	}
}

// Pull copies the oldest complete block into dst and removes it. Consumer side.
func (f *SampleFifo) Pull(dst []float32) bool {
	slot := f.queue.Front()
	if slot == nil {
		return false
	}

	copy(dst, *slot)
	f.queue.Pop()

	return true
}

// StagingPair is the stereo analysis tap owned by an analysis-capable module.
type StagingPair struct {
	Left  *SampleFifo
	Right *SampleFifo
}

// NewStagingPair creates left/right FIFOs with the same geometry.
func NewStagingPair(blockSize, capacity int) *StagingPair {
	return &StagingPair{
		Left:  NewSampleFifo(blockSize, capacity),
		Right: NewSampleFifo(blockSize, capacity),
	}
}

// Prepare reallocates both FIFOs.
func (p *StagingPair) Prepare(blockSize, capacity int) {
	p.Left.Prepare(blockSize, capacity)
	p.Right.Prepare(blockSize, capacity)
}

// Push feeds the first two channels of buf. A mono buffer feeds both sides.
func (p *StagingPair) Push(buf [][]float32) {
	switch len(buf) {
	case 0:
		return
	case 1:
		p.Left.Push(buf[0])
		p.Right.Push(buf[0])
	default:
		p.Left.Push(buf[0])
		p.Right.Push(buf[1])
	}
}
