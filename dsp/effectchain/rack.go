package effectchain

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-fxrack/dsp/core"
	"github.com/cwbudde/algo-fxrack/dsp/params"
	"github.com/cwbudde/algo-fxrack/dsp/spectral"
)

// Option configures a Rack.
type Option func(*Rack)

// WithLogger sets the logger for structural events.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Rack) {
		r.log = log
	}
}

// WithRegistry replaces the default factory registry.
func WithRegistry(reg *Registry) Option {
	return func(r *Rack) {
		r.registry = reg
	}
}

// Rack is the effect chain together with its allocation table, parameter
// store and analysis staging.
//
// Control methods (Create, Delete, Swap, RestoreState, PrepareToPlay, ...)
// are serialized by an internal mutex and may be called from any goroutine
// other than the audio goroutine. ProcessBlock is the only audio-side entry.
type Rack struct {
	cfg      Config
	log      zerolog.Logger
	registry *Registry
	store    *params.Store

	mu    sync.Mutex
	gate  Gate
	holds int

	// Written only while the gate is suspended.
	chain   *Chain
	staging []*spectral.StagingPair
	ctx     Context
	chunk   [][]float32

	table     AllocationTable
	listeners []func(ChangeEvent)
}

// NewRack builds an empty rack prepared for cfg.
func NewRack(cfg Config, opts ...Option) (*Rack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()

	r := &Rack{
		cfg:   cfg,
		log:   zerolog.Nop(),
		store: newParamStore(),
		ctx:   cfg.context(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.registry == nil {
		r.registry = DefaultRegistry()
	}

	input, err := r.newSentinel(0)
	if err != nil {
		return nil, err
	}

	output, err := r.newSentinel(cfg.Slots + 1)
	if err != nil {
		return nil, err
	}

	r.chain = NewChain(cfg.Slots, input, output)

	if err := r.prepareLocked(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Rack) newSentinel(slot int) (*Module, error) {
	m, err := newModule(r.registry, r.cfg, KindMeter, nil)
	if err != nil {
		return nil, err
	}

	if err := m.Install(slot, 0); err != nil {
		return nil, err
	}

	return m, nil
}

// Config returns the configuration the rack was built with.
func (r *Rack) Config() Config { return r.cfg }

// Slots returns the number of user slots.
func (r *Rack) Slots() int { return r.cfg.Slots }

// Params returns the parameter store.
func (r *Rack) Params() *params.Store { return r.store }

// Context returns the prepared sample rate, block size and channel count.
func (r *Rack) Context() Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ctx
}

// Module returns the module at slot, or nil.
func (r *Rack) Module(slot int) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.chain.At(slot)
}

// Modules returns the user modules in slot order.
func (r *Rack) Modules() []*Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*Module(nil), r.chain.Users()...)
}

// InputMeter returns the sentinel ahead of slot 1.
func (r *Rack) InputMeter() *Module { return r.chain.Input() }

// OutputMeter returns the sentinel after slot N.
func (r *Rack) OutputMeter() *Module { return r.chain.Output() }

// Allocations returns a copy of the allocation table entries.
func (r *Rack) Allocations() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.table.Entries()
}

// Suspend stops audio processing until the matching Resume. ProcessBlock
// outputs silence meanwhile. Calls nest.
func (r *Rack) Suspend() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.suspendLocked()
}

// Resume undoes one Suspend.
func (r *Rack) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resumeLocked()
}

// Suspended reports whether processing is currently suspended.
func (r *Rack) Suspended() bool { return r.gate.Suspended() }

func (r *Rack) suspendLocked() {
	if r.holds == 0 {
		r.gate.Suspend()
	}

	r.holds++
}

func (r *Rack) resumeLocked() {
	if r.holds == 0 {
		return
	}

	r.holds--
	if r.holds == 0 {
		r.gate.Resume()
	}
}

// PrepareToPlay re-prepares every module for a new sample rate or maximum
// block size.
func (r *Rack) PrepareToPlay(sampleRate float64, blockSize int) error {
	ctx := Context{SampleRate: sampleRate, BlockSize: blockSize, Channels: r.cfg.Channels}
	if !ctx.valid() {
		return fmt.Errorf("effectchain: prepare %g Hz / %d frames: invalid host settings", sampleRate, blockSize)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.suspendLocked()
	defer r.resumeLocked()

	r.ctx = ctx

	if err := r.prepareLocked(); err != nil {
		return err
	}

	r.log.Info().Float64("sampleRate", sampleRate).Int("blockSize", blockSize).Msg("rack prepared")

	return nil
}

// prepareLocked prepares every module for r.ctx. The gate must be suspended
// unless the rack is not yet published.
func (r *Rack) prepareLocked() error {
	r.chunk = make([][]float32, r.ctx.Channels)

	for _, m := range r.chain.Modules() {
		if err := m.PrepareToPlay(r.ctx); err != nil {
			return err
		}
	}

	return nil
}

// ProcessBlock runs buf through the chain in place. Buffers longer than the
// prepared block size are processed in chunks; channels beyond the prepared
// count are left untouched. Channels of unequal length are processed up to
// the shortest one. While suspended the buffer is silenced.
func (r *Rack) ProcessBlock(buf [][]float32) {
	if !r.gate.Enter() {
		core.ZeroChannels(buf)
		return
	}
	defer r.gate.Exit()

	channels := min(len(buf), len(r.chunk))
	frames := core.Frames(buf[:channels])
	chunk := r.chunk[:channels]
	sampleRate := r.ctx.SampleRate

	for start := 0; start < frames; start += r.ctx.BlockSize {
		end := min(start+r.ctx.BlockSize, frames)
		for ch := range chunk {
			chunk[ch] = buf[ch][start:end]
		}

		for _, m := range r.chain.Modules() {
			m.ProcessBlock(chunk, sampleRate)
		}
	}

	clear(chunk)
}
