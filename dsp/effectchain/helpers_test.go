package effectchain

import (
	"errors"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/algo-fxrack/dsp/params"
)

const (
	testSampleRate = 48000.0
	testBlockSize  = 64
	testSlots      = 8
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SampleRate = testSampleRate
	cfg.BlockSize = testBlockSize
	cfg.Slots = testSlots

	return cfg
}

// stubProcessor counts calls and records the largest chunk it saw.
type stubProcessor struct {
	prepares  atomic.Int32
	updates   atomic.Int32
	blocks    atomic.Int32
	maxFrames atomic.Int32
	gain      float32
}

func (s *stubProcessor) PrepareToPlay(Context) error {
	s.prepares.Add(1)
	return nil
}

func (s *stubProcessor) UpdateDSPState(float64) {
	s.updates.Add(1)
}

func (s *stubProcessor) ProcessBlock(buf [][]float32, _ float64) {
	s.blocks.Add(1)

	if len(buf) > 0 && int32(len(buf[0])) > s.maxFrames.Load() {
		s.maxFrames.Store(int32(len(buf[0])))
	}

	for _, ch := range buf {
		for i := range ch {
			ch[i] *= s.gain
		}
	}
}

func stubFactory(_ Config, _ *params.Block) (Parts, error) {
	return Parts{Processor: &stubProcessor{gain: 1}}, nil
}

// stubRegistry registers the stub for every kind except the meter, which
// keeps its real implementation for the sentinels.
func stubRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(KindMeter, newMeterParts)

	for _, k := range CreatableKinds() {
		r.MustRegister(k, stubFactory)
	}

	return r
}

var errPrepareFailed = errors.New("prepare failed")

// failingProcessor fails PrepareToPlay while its shared budget is positive.
type failingProcessor struct {
	stubProcessor

	budget *atomic.Int32
}

func (f *failingProcessor) PrepareToPlay(ctx Context) error {
	if f.budget.Add(-1) >= 0 {
		return errPrepareFailed
	}

	return f.stubProcessor.PrepareToPlay(ctx)
}

// newFailingRack is a stub rack whose modules of kind fail to prepare while
// budget is positive.
func newFailingRack(t *testing.T, kind Kind, budget *atomic.Int32) *Rack {
	t.Helper()

	failing := func(Config, *params.Block) (Parts, error) {
		p := &failingProcessor{budget: budget}
		p.gain = 1

		return Parts{Processor: p}, nil
	}

	reg := NewRegistry()
	reg.MustRegister(KindMeter, newMeterParts)

	for _, k := range CreatableKinds() {
		if k == kind {
			reg.MustRegister(k, failing)
		} else {
			reg.MustRegister(k, stubFactory)
		}
	}

	r, err := NewRack(testConfig(), WithRegistry(reg))
	if err != nil {
		t.Fatalf("NewRack: %v", err)
	}

	return r
}

func newStubRack(t *testing.T) *Rack {
	t.Helper()

	r, err := NewRack(testConfig(), WithRegistry(stubRegistry()))
	if err != nil {
		t.Fatalf("NewRack: %v", err)
	}

	return r
}

func newRealRack(t *testing.T) *Rack {
	t.Helper()

	r, err := NewRack(testConfig())
	if err != nil {
		t.Fatalf("NewRack: %v", err)
	}

	return r
}

func stubOf(t *testing.T, m *Module) *stubProcessor {
	t.Helper()

	s, ok := m.parts.Processor.(*stubProcessor)
	if !ok {
		t.Fatalf("%s has no stub processor", m.Label())
	}

	return s
}

func mustCreate(t *testing.T, r *Rack, kind Kind, slot int) *Module {
	t.Helper()

	m, err := r.Create(kind, slot)
	if err != nil {
		t.Fatalf("Create(%s, %d): %v", kind, slot, err)
	}

	return m
}

func mustSet(t *testing.T, m *Module, name string, v float64) {
	t.Helper()

	if err := m.Params().SetValue(name, v); err != nil {
		t.Fatalf("%s.%s: %v", m.Label(), name, err)
	}
}

func value(t *testing.T, m *Module, name string) float64 {
	t.Helper()

	v, err := m.Params().Value(name)
	if err != nil {
		t.Fatalf("%s.%s: %v", m.Label(), name, err)
	}

	return v
}

// checkInvariants verifies that the registry, the allocation table and the
// analysis staging agree.
func checkInvariants(t *testing.T, r *Rack) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.chain.Modules()
	if all[0] != r.chain.Input() || all[len(all)-1] != r.chain.Output() {
		t.Fatal("meters must bracket the chain")
	}

	users := r.chain.Users()
	if !slices.IsSortedFunc(users, func(a, b *Module) int { return a.slot - b.slot }) {
		t.Fatal("modules not in slot order")
	}

	if err := r.table.Validate(r.cfg.Slots); err != nil {
		t.Fatalf("table invalid: %v", err)
	}

	if diff := r.desyncLocked(); diff != "" {
		t.Fatalf("desync: %s", diff)
	}

	var want []int
	for _, m := range users {
		if m.slot < 1 || m.slot > r.cfg.Slots {
			t.Fatalf("module at invalid slot %d", m.slot)
		}

		if m.kind.Analysis() {
			want = append(want, m.slot)
		}
	}

	if len(want) != len(r.staging) {
		t.Fatalf("staging has %d pairs, want %d", len(r.staging), len(want))
	}

	for ord, slot := range want {
		if r.staging[ord] != r.chain.At(slot).Staging() {
			t.Fatalf("staging ordinal %d does not belong to slot %d", ord, slot)
		}
	}
}
