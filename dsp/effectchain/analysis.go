package effectchain

import (
	"slices"

	"github.com/cwbudde/algo-fxrack/dsp/spectral"
)

// AnalysisStaging returns the staging pairs of the analysis-capable modules
// in slot order. Ordinal i belongs to the i-th such module.
func (r *Rack) AnalysisStaging() []*spectral.StagingPair {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.staging)
}

// AnalysisOrdinal returns the staging ordinal of the analysis-capable module
// at slot.
func (r *Rack) AnalysisOrdinal(slot int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.chain.At(slot)
	if m == nil || !m.kind.Analysis() {
		return 0, false
	}

	return r.ordinalLocked(slot), true
}

// ordinalLocked counts the analysis-capable modules below slot.
func (r *Rack) ordinalLocked(slot int) int {
	n := 0

	for _, m := range r.chain.Users() {
		if m.slot >= slot {
			break
		}

		if m.kind.Analysis() {
			n++
		}
	}

	return n
}

// attachLocked inserts the module into the chain and, when analysis-capable,
// its staging pair at its ordinal. The gate must be suspended.
func (r *Rack) attachLocked(m *Module) error {
	if err := r.chain.Insert(m, m.slot); err != nil {
		return err
	}

	if m.kind.Analysis() {
		r.staging = slices.Insert(r.staging, r.ordinalLocked(m.slot), m.staging)
	}

	return nil
}

// detachLocked removes the module at slot and its staging pair. The ordinal
// is taken while the module is still registered. The gate must be suspended.
func (r *Rack) detachLocked(slot int) (*Module, error) {
	m := r.chain.At(slot)
	if m == nil {
		return nil, r.notFound(slot)
	}

	if m.kind.Analysis() {
		ord := r.ordinalLocked(slot)
		r.staging = slices.Delete(r.staging, ord, ord+1)
	}

	return r.chain.RemoveAt(slot)
}
