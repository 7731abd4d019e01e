package effectchain

import (
	"github.com/cwbudde/algo-fxrack/dsp/effects"
	"github.com/cwbudde/algo-fxrack/dsp/params"
)

type spectralCrusherProcessor struct {
	block *params.Block
	sc    *effects.SpectralCrusher
}

func newSpectralCrusherParts(cfg Config, block *params.Block) (Parts, error) {
	cfg = cfg.withDefaults()

	sc, err := effects.NewSpectralCrusher(cfg.SpectralOrder, cfg.SpectralOverlap)
	if err != nil {
		return Parts{}, err
	}

	p := &spectralCrusherProcessor{block: block, sc: sc}

	return Parts{Processor: p}, nil
}

func (p *spectralCrusherProcessor) PrepareToPlay(ctx Context) error {
	if err := p.sc.Prepare(ctx.Channels); err != nil {
		return err
	}

	p.UpdateDSPState(ctx.SampleRate)

	return nil
}

func (p *spectralCrusherProcessor) UpdateDSPState(float64) {
	_ = p.sc.SetBits(p.block.Get(spectralBits))
	_ = p.sc.SetCutoff(p.block.Get(spectralCutoff))
	_ = p.sc.SetMix(p.block.Get(spectralMix))
}

func (p *spectralCrusherProcessor) ProcessBlock(buf [][]float32, _ float64) {
	for ch := range buf {
		p.sc.Process(ch, buf[ch])
	}
}
