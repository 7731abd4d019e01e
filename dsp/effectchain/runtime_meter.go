package effectchain

import (
	"github.com/cwbudde/algo-fxrack/dsp/core"
	"github.com/cwbudde/algo-fxrack/dsp/meter"
	"github.com/cwbudde/algo-fxrack/dsp/params"
	"github.com/cwbudde/algo-fxrack/dsp/spectral"
)

type meterProcessor struct {
	m *meter.Meter
}

func newMeterParts(_ Config, _ *params.Block) (Parts, error) {
	p := &meterProcessor{m: meter.New()}

	return Parts{Processor: p, Meter: p.m}, nil
}

func (p *meterProcessor) PrepareToPlay(Context) error {
	p.m.Reset()
	return nil
}

func (p *meterProcessor) UpdateDSPState(float64) {}

func (p *meterProcessor) ProcessBlock(buf [][]float32, _ float64) {
	p.m.Process(buf)
}

// scopeProcessor passes audio through and publishes its mono mixdown.
type scopeProcessor struct {
	fifo *spectral.SampleFifo
	mono []float32
}

func newScopeParts(cfg Config, _ *params.Block) (Parts, error) {
	cfg = cfg.withDefaults()
	p := &scopeProcessor{
		fifo: spectral.NewSampleFifo(cfg.ScopeBlockSize, cfg.StagingCapacity),
	}

	return Parts{Processor: p, Scope: p.fifo}, nil
}

func (p *scopeProcessor) PrepareToPlay(ctx Context) error {
	p.mono = make([]float32, ctx.BlockSize)
	return nil
}

func (p *scopeProcessor) UpdateDSPState(float64) {}

func (p *scopeProcessor) ProcessBlock(buf [][]float32, _ float64) {
	n := core.Frames(buf)
	if n == 0 || n > len(p.mono) {
		return
	}

	core.MixDown(p.mono, buf)
	p.fifo.Push(p.mono[:n])
}
