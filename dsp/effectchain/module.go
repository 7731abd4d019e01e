package effectchain

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-fxrack/dsp/clipper"
	"github.com/cwbudde/algo-fxrack/dsp/meter"
	"github.com/cwbudde/algo-fxrack/dsp/params"
	"github.com/cwbudde/algo-fxrack/dsp/spectral"
)

// Module is one occupant of the chain: identity, parameter block and the
// processor built for its kind.
type Module struct {
	kind       Kind
	slot       int
	paramIndex int
	installed  bool

	block   *params.Block
	parts   Parts
	staging *spectral.StagingPair

	needsUpdate atomic.Bool
}

// newModule builds an uninstalled module of kind using registry.
func newModule(registry *Registry, cfg Config, kind Kind, block *params.Block) (*Module, error) {
	factory := registry.Lookup(kind)
	if factory == nil {
		return nil, fmt.Errorf("effectchain: no factory for %s: %w", kind, ErrInvalidKind)
	}

	parts, err := factory(cfg, block)
	if err != nil {
		return nil, fmt.Errorf("effectchain: build %s: %w", kind, err)
	}

	if parts.Processor == nil {
		return nil, fmt.Errorf("effectchain: factory for %s returned no processor", kind)
	}

	m := &Module{kind: kind, block: block, parts: parts}

	if kind.Analysis() {
		cfg = cfg.withDefaults()
		m.staging = spectral.NewStagingPair(cfg.StagingBlockSize, cfg.StagingCapacity)
	}

	return m, nil
}

// Kind returns the module kind.
func (m *Module) Kind() Kind { return m.kind }

// Slot returns the slot the module was installed at.
func (m *Module) Slot() int { return m.slot }

// ParamIndex returns the parameter-block index (0 for meters).
func (m *Module) ParamIndex() int { return m.paramIndex }

// Installed reports whether Install has been called.
func (m *Module) Installed() bool { return m.installed }

// Install assigns the slot and parameter index. It may be called once.
func (m *Module) Install(slot, paramIndex int) error {
	if m.installed {
		return fmt.Errorf("effectchain: %s at slot %d: %w", m.kind, m.slot, ErrAlreadyInstalled)
	}

	m.slot = slot
	m.paramIndex = paramIndex
	m.installed = true

	return nil
}

// Params returns the parameter block, or nil for meters.
func (m *Module) Params() *params.Block { return m.block }

// Label returns the display name, e.g. "Filter 2".
func (m *Module) Label() string {
	if m.block == nil {
		return m.kind.String()
	}

	return m.block.Label()
}

// SnapshotParams copies the current parameter values.
func (m *Module) SnapshotParams() params.Snapshot {
	if m.block == nil {
		return params.Snapshot{Kind: m.kind.String()}
	}

	return m.block.Snapshot()
}

// ApplyParams writes a snapshot taken from a module of the same kind.
func (m *Module) ApplyParams(s params.Snapshot) error {
	if m.block == nil {
		return nil
	}

	return m.block.Apply(s)
}

// ResetParams restores every parameter to its default.
func (m *Module) ResetParams() {
	if m.block != nil {
		m.block.Reset()
	}
}

// RequestUpdate asks the audio goroutine to recompute coefficients before
// the next block.
func (m *Module) RequestUpdate() {
	m.needsUpdate.Store(true)
}

// PrepareToPlay prepares the processor. The rack must be suspended.
func (m *Module) PrepareToPlay(ctx Context) error {
	m.needsUpdate.Store(false)

	if err := m.parts.Processor.PrepareToPlay(ctx); err != nil {
		return fmt.Errorf("effectchain: prepare %s: %w", m.Label(), err)
	}

	return nil
}

// ProcessBlock applies a pending coefficient update, processes buf in place
// and feeds the staging pair, if any.
func (m *Module) ProcessBlock(buf [][]float32, sampleRate float64) {
	if m.needsUpdate.CompareAndSwap(true, false) {
		m.parts.Processor.UpdateDSPState(sampleRate)
	}

	m.parts.Processor.ProcessBlock(buf, sampleRate)

	if m.staging != nil {
		m.staging.Push(buf)
	}
}

// Staging returns the analysis FIFOs of analysis-capable modules.
func (m *Module) Staging() *spectral.StagingPair { return m.staging }

// Meter returns the level meter of meter modules.
func (m *Module) Meter() *meter.Meter { return m.parts.Meter }

// Scope returns the mono sample FIFO of oscilloscope modules.
func (m *Module) Scope() *spectral.SampleFifo { return m.parts.Scope }

// Clipper returns the solver of analog clipper modules. Only
// ConvergenceFailures is safe to call while audio is running.
func (m *Module) Clipper() *clipper.Clipper { return m.parts.Clipper }

// TransferCurve renders the static curve of shaping modules. It reports
// false for kinds without one.
func (m *Module) TransferCurve(dst, inputs []float32) bool {
	if m.parts.Transfer == nil || len(dst) < len(inputs) {
		return false
	}

	m.parts.Transfer.TransferCurve(dst, inputs)

	return true
}

// FilterResponseDB renders the magnitude response of filter modules at freqs.
// It reports false for kinds without one.
func (m *Module) FilterResponseDB(dst, freqs []float64) bool {
	if m.parts.Response == nil || len(dst) < len(freqs) {
		return false
	}

	m.parts.Response.ResponseDB(dst, freqs)

	return true
}
