package effectchain

import (
	"github.com/cwbudde/algo-fxrack/dsp/filter/biquad"
	"github.com/cwbudde/algo-fxrack/dsp/filter/design"
	"github.com/cwbudde/algo-fxrack/dsp/params"
)

type filterProcessor struct {
	block *params.Block
	bank  biquad.Bank

	// sampleRate is written in PrepareToPlay and read by ResponseDB; both
	// run on the control goroutine.
	sampleRate float64
}

func newFilterParts(cfg Config, block *params.Block) (Parts, error) {
	p := &filterProcessor{block: block, sampleRate: cfg.withDefaults().SampleRate}

	return Parts{Processor: p, Response: p}, nil
}

func (p *filterProcessor) coefficients(sampleRate float64) biquad.Coefficients {
	return design.Design(
		design.Type(p.block.Get(filterType)),
		p.block.Get(filterCutoff),
		p.block.Get(filterQ),
		p.block.Get(filterGain),
		sampleRate,
	)
}

func (p *filterProcessor) PrepareToPlay(ctx Context) error {
	p.sampleRate = ctx.SampleRate
	p.bank.Prepare(ctx.Channels)
	p.bank.SetCoefficients(p.coefficients(ctx.SampleRate))

	return nil
}

func (p *filterProcessor) UpdateDSPState(sampleRate float64) {
	p.bank.SetCoefficients(p.coefficients(sampleRate))
}

func (p *filterProcessor) ProcessBlock(buf [][]float32, _ float64) {
	p.bank.ProcessBlock(buf)
}

// ResponseDB evaluates the response of the current parameter values, which
// may be ahead of the coefficients the audio goroutine is using.
func (p *filterProcessor) ResponseDB(dst, freqs []float64) {
	c := p.coefficients(p.sampleRate)
	c.MagnitudeCurveDB(dst, freqs, p.sampleRate)
}
