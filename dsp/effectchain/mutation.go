package effectchain

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-fxrack/dsp/params"
)

func (r *Rack) notFound(slot int) error {
	return fmt.Errorf("effectchain: slot %d: %w", slot, ErrNotFound)
}

func (r *Rack) checkSlot(slot int) error {
	if slot < 1 || slot > r.cfg.Slots {
		return fmt.Errorf("effectchain: slot %d outside [1, %d]: %w", slot, r.cfg.Slots, ErrInvalidSlot)
	}

	return nil
}

// build creates and installs a module of kind for slot using parameter block
// index. It allocates and does not touch the chain.
func (r *Rack) build(kind Kind, slot, index int) (*Module, error) {
	block, err := r.store.Block(kind.String(), index)
	if err != nil {
		return nil, err
	}

	m, err := newModule(r.registry, r.cfg, kind, block)
	if err != nil {
		return nil, err
	}

	if err := m.Install(slot, index); err != nil {
		return nil, err
	}

	return m, nil
}

// Create places a new module of kind at the empty slot and returns it.
func (r *Rack) Create(kind Kind, slot int) (*Module, error) {
	if !kind.Creatable() {
		return nil, fmt.Errorf("effectchain: create %s: %w", kind, ErrInvalidKind)
	}

	if err := r.checkSlot(slot); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if occupant := r.chain.At(slot); occupant != nil {
		r.log.Warn().Int("slot", slot).Str("occupant", occupant.Label()).Msg("create on occupied slot")
		return nil, fmt.Errorf("effectchain: slot %d holds %s: %w", slot, occupant.Label(), ErrInvalidSlot)
	}

	index := r.table.NextParamIndex(kind)

	m, err := r.build(kind, slot, index)
	if err != nil {
		return nil, err
	}

	r.suspendLocked()

	err = r.attachLocked(m)
	if err == nil {
		err = r.prepareLocked()
		if err != nil {
			_, _ = r.detachLocked(slot)
		}
	}

	r.resumeLocked()

	if err != nil {
		r.log.Error().Err(err).Str("kind", kind.String()).Int("slot", slot).Msg("create failed")
		return nil, err
	}

	r.table.Append(kind, slot, index)
	r.log.Debug().Str("module", m.Label()).Int("slot", slot).Msg("module created")
	r.notifyLocked(ChangeEvent{Op: OpCreate, Slots: []int{slot}})

	return m, nil
}

// Delete removes the module at slot. Its parameter block is reset to the
// defaults and kept for the next module of the same kind and index.
func (r *Rack) Delete(slot int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.chain.At(slot)
	if m == nil {
		return r.notFound(slot)
	}

	m.ResetParams()

	r.suspendLocked()

	_, err := r.detachLocked(slot)
	if err == nil {
		err = r.prepareLocked()
	}

	r.resumeLocked()

	if err != nil {
		r.log.Error().Err(err).Int("slot", slot).Msg("delete failed")
		return err
	}

	r.table.Remove(m.kind, slot)
	r.log.Debug().Str("module", m.Label()).Int("slot", slot).Msg("module deleted")
	r.notifyLocked(ChangeEvent{Op: OpDelete, Slots: []int{slot}})

	return nil
}

// Swap exchanges the contents of two slots. Moving a module onto an empty
// slot is allowed; moving an empty slot onto a module is ErrEmptySource; two
// empty slots are a no-op. Moved modules are rebuilt with fresh parameter
// indices and carry their parameter values over.
func (r *Rack) Swap(src, dst int) error {
	if err := r.checkSlot(src); err != nil {
		return err
	}

	if err := r.checkSlot(dst); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, b := r.chain.At(src), r.chain.At(dst)

	switch {
	case src == dst:
		return nil
	case a == nil && b == nil:
		return nil
	case a == nil:
		return fmt.Errorf("effectchain: swap %d -> %d: %w", src, dst, ErrEmptySource)
	}

	plan, err := r.planSwap(a, b, src, dst)
	if err != nil {
		return err
	}

	r.suspendLocked()
	err = r.applySwapLocked(plan)
	r.resumeLocked()

	if err != nil {
		r.log.Error().Err(err).Int("src", src).Int("dst", dst).Msg("swap failed, rolling back")

		if rerr := r.rollbackSwapLocked(a, b, plan); rerr != nil {
			return errors.Join(err, fmt.Errorf("effectchain: swap rollback: %w", rerr))
		}

		return err
	}

	r.table = plan.table
	r.log.Debug().Int("src", src).Int("dst", dst).Bool("exchange", b != nil).Msg("modules swapped")
	r.notifyLocked(ChangeEvent{Op: OpSwap, Slots: []int{src, dst}})

	return nil
}

type swapPlan struct {
	oldSlots     []int
	fresh        []*Module
	table        AllocationTable
	snapA, snapB params.Snapshot
}

// planSwap builds the replacement modules and the resulting table without
// touching the chain.
func (r *Rack) planSwap(a, b *Module, src, dst int) (swapPlan, error) {
	plan := swapPlan{table: r.table.Clone(), oldSlots: []int{src}}

	plan.snapA = a.SnapshotParams()

	if b != nil {
		plan.snapB = b.SnapshotParams()
		plan.oldSlots = append(plan.oldSlots, dst)
	}

	plan.table.Remove(a.kind, src)

	if b != nil {
		plan.table.Remove(b.kind, dst)
	}

	idxA := plan.table.NextParamIndex(a.kind)
	plan.table.Append(a.kind, dst, idxA)

	newA, err := r.build(a.kind, dst, idxA)
	if err != nil {
		return swapPlan{}, err
	}

	plan.fresh = append(plan.fresh, newA)

	var newB *Module

	if b != nil {
		idxB := plan.table.NextParamIndex(b.kind)
		plan.table.Append(b.kind, src, idxB)

		newB, err = r.build(b.kind, src, idxB)
		if err != nil {
			return swapPlan{}, err
		}

		plan.fresh = append(plan.fresh, newB)
	}

	// Blocks persist per (kind, index): clear the outgoing ones first, since
	// a fresh module may reuse the same block.
	a.ResetParams()

	if b != nil {
		b.ResetParams()
	}

	if err := newA.ApplyParams(plan.snapA); err != nil {
		return swapPlan{}, err
	}

	if newB != nil {
		if err := newB.ApplyParams(plan.snapB); err != nil {
			return swapPlan{}, err
		}
	}

	return plan, nil
}

// rollbackSwapLocked puts the pre-swap parameter values back and rebuilds the
// chain from the unchanged allocation table.
func (r *Rack) rollbackSwapLocked(a, b *Module, plan swapPlan) error {
	for _, m := range plan.fresh {
		m.ResetParams()
	}

	if err := a.ApplyParams(plan.snapA); err != nil {
		return err
	}

	if b != nil {
		if err := b.ApplyParams(plan.snapB); err != nil {
			return err
		}
	}

	return r.rebuildLocked(r.table.Clone())
}

// applySwapLocked tears down the old modules and attaches the new ones. The
// gate must be suspended.
func (r *Rack) applySwapLocked(plan swapPlan) error {
	for _, slot := range plan.oldSlots {
		if _, err := r.detachLocked(slot); err != nil {
			return err
		}
	}

	for _, m := range plan.fresh {
		if err := r.attachLocked(m); err != nil {
			return err
		}
	}

	return r.prepareLocked()
}
