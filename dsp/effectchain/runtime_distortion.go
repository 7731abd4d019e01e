package effectchain

import (
	"sync"

	"github.com/cwbudde/algo-fxrack/dsp/effects"
	"github.com/cwbudde/algo-fxrack/dsp/params"
)

type waveshaperProcessor struct {
	block *params.Block
	ws    *effects.Waveshaper

	previewMu sync.Mutex
	preview   *effects.Waveshaper
}

func newWaveshaperParts(_ Config, block *params.Block) (Parts, error) {
	p := &waveshaperProcessor{
		block:   block,
		ws:      effects.NewWaveshaper(),
		preview: effects.NewWaveshaper(),
	}

	return Parts{Processor: p, Transfer: p}, nil
}

// configureWaveshaper copies the block into ws. Values are clamped by the
// block, so the setters cannot fail.
func configureWaveshaper(ws *effects.Waveshaper, b *params.Block) {
	_ = ws.SetMode(effects.ShapeMode(b.Get(shaperMode)))
	_ = ws.SetDriveDB(b.Get(shaperDrive))
	_ = ws.SetBias(b.Get(shaperBias))
	_ = ws.SetOutputDB(b.Get(shaperOutput))
	_ = ws.SetMix(b.Get(shaperMix))
}

func (p *waveshaperProcessor) PrepareToPlay(Context) error {
	configureWaveshaper(p.ws, p.block)
	return nil
}

func (p *waveshaperProcessor) UpdateDSPState(float64) {
	configureWaveshaper(p.ws, p.block)
}

func (p *waveshaperProcessor) ProcessBlock(buf [][]float32, _ float64) {
	for _, ch := range buf {
		p.ws.Process(ch)
	}
}

// TransferCurve renders the curve of the current parameter values.
func (p *waveshaperProcessor) TransferCurve(dst, inputs []float32) {
	p.previewMu.Lock()
	defer p.previewMu.Unlock()

	configureWaveshaper(p.preview, p.block)
	p.preview.TransferCurve(dst, inputs)
}

type bitcrusherProcessor struct {
	block *params.Block
	bc    *effects.BitCrusher
}

func newBitcrusherParts(_ Config, block *params.Block) (Parts, error) {
	p := &bitcrusherProcessor{block: block, bc: effects.NewBitCrusher()}

	return Parts{Processor: p}, nil
}

func (p *bitcrusherProcessor) PrepareToPlay(ctx Context) error {
	p.bc.Prepare(ctx.Channels)
	p.UpdateDSPState(ctx.SampleRate)

	return nil
}

func (p *bitcrusherProcessor) UpdateDSPState(float64) {
	_ = p.bc.SetBits(p.block.Get(crusherBits))
	_ = p.bc.SetDownsample(int(p.block.Get(crusherDownsample)))
	_ = p.bc.SetMix(p.block.Get(crusherMix))
}

func (p *bitcrusherProcessor) ProcessBlock(buf [][]float32, _ float64) {
	for ch := range buf {
		p.bc.Process(ch, buf[ch])
	}
}

type slewProcessor struct {
	block *params.Block
	sl    *effects.SlewLimiter
}

func newSlewParts(cfg Config, block *params.Block) (Parts, error) {
	sl, err := effects.NewSlewLimiter(cfg.withDefaults().SampleRate)
	if err != nil {
		return Parts{}, err
	}

	p := &slewProcessor{block: block, sl: sl}

	return Parts{Processor: p}, nil
}

func (p *slewProcessor) PrepareToPlay(ctx Context) error {
	if err := p.sl.SetSampleRate(ctx.SampleRate); err != nil {
		return err
	}

	p.sl.Prepare(ctx.Channels)
	p.UpdateDSPState(ctx.SampleRate)

	return nil
}

func (p *slewProcessor) UpdateDSPState(float64) {
	_ = p.sl.SetRise(p.block.Get(slewRise))
	_ = p.sl.SetFall(p.block.Get(slewFall))
	_ = p.sl.SetMix(p.block.Get(slewMix))
}

func (p *slewProcessor) ProcessBlock(buf [][]float32, _ float64) {
	for ch := range buf {
		p.sl.Process(ch, buf[ch])
	}
}
