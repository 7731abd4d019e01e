package effectchain

import (
	"sync"

	"github.com/cwbudde/algo-fxrack/dsp/clipper"
	"github.com/cwbudde/algo-fxrack/dsp/core"
	"github.com/cwbudde/algo-fxrack/dsp/params"
)

// clipperProcessor drives the diode clipper with input gain, then applies
// output gain and a dry/wet mix.
type clipperProcessor struct {
	block *params.Block
	c     *clipper.Clipper

	output float32
	mix    float32
	dry    [][]float32

	previewMu sync.Mutex
	preview   *clipper.Clipper
}

func newClipperParts(cfg Config, block *params.Block) (Parts, error) {
	cfg = cfg.withDefaults()

	c, err := clipper.New(cfg.clipperOptions()...)
	if err != nil {
		return Parts{}, err
	}

	preview, err := clipper.New(cfg.clipperOptions()...)
	if err != nil {
		return Parts{}, err
	}

	p := &clipperProcessor{block: block, c: c, preview: preview}

	return Parts{Processor: p, Clipper: c, Transfer: p}, nil
}

func configureClipper(c *clipper.Clipper, b *params.Block) {
	_ = c.SetCutoff(b.Get(clipperCutoff))
	c.SetInputGain(float32(core.DBToLinear(b.Get(clipperDrive))))
}

func (p *clipperProcessor) PrepareToPlay(ctx Context) error {
	if err := p.c.SetSampleRate(ctx.SampleRate); err != nil {
		return err
	}

	p.c.Prepare(ctx.Channels)
	p.dry = core.NewChannels(ctx.Channels, ctx.BlockSize)
	p.UpdateDSPState(ctx.SampleRate)

	return nil
}

func (p *clipperProcessor) UpdateDSPState(float64) {
	configureClipper(p.c, p.block)
	p.output = float32(core.DBToLinear(p.block.Get(clipperOutput)))
	p.mix = p.block.Get32(clipperMix)
}

func (p *clipperProcessor) ProcessBlock(buf [][]float32, _ float64) {
	for ch := range min(len(buf), len(p.dry)) {
		x := buf[ch]
		if len(x) > len(p.dry[ch]) {
			continue
		}

		dry := p.dry[ch][:len(x)]
		copy(dry, x)
		p.c.Process(ch, x)

		for i := range x {
			wet := x[i] * p.output
			x[i] = dry[i] + p.mix*(wet-dry[i])
		}
	}
}

// TransferCurve renders the steady-state curve of the current parameters,
// output gain included.
func (p *clipperProcessor) TransferCurve(dst, inputs []float32) {
	p.previewMu.Lock()
	defer p.previewMu.Unlock()

	configureClipper(p.preview, p.block)
	p.preview.TransferCurve(dst, inputs)

	out := float32(core.DBToLinear(p.block.Get(clipperOutput)))
	for i := range dst[:len(inputs)] {
		dst[i] *= out
	}
}
