package effectchain

import (
	"github.com/cwbudde/algo-fxrack/dsp/clipper"
	"github.com/cwbudde/algo-fxrack/dsp/meter"
	"github.com/cwbudde/algo-fxrack/dsp/params"
	"github.com/cwbudde/algo-fxrack/dsp/spectral"
)

// Processor is the audio side of a module.
//
// PrepareToPlay runs only while the rack is suspended and may allocate.
// UpdateDSPState and ProcessBlock run on the audio goroutine and must not
// allocate, lock or block.
type Processor interface {
	PrepareToPlay(ctx Context) error
	UpdateDSPState(sampleRate float64)
	ProcessBlock(buf [][]float32, sampleRate float64)
}

// TransferCurver renders a static input/output curve for display.
type TransferCurver interface {
	TransferCurve(dst, inputs []float32)
}

// ResponseCurver renders a magnitude response in dB for display.
type ResponseCurver interface {
	ResponseDB(dst, freqs []float64)
}

// Parts is what a factory builds. Only Processor is required; the other
// fields are collaborators the GUI or host may read.
type Parts struct {
	Processor Processor
	Meter     *meter.Meter
	Scope     *spectral.SampleFifo
	Clipper   *clipper.Clipper
	Transfer  TransferCurver
	Response  ResponseCurver
}

// Factory builds the parts of a module bound to block. Meter modules get a
// nil block.
type Factory func(cfg Config, block *params.Block) (Parts, error)
