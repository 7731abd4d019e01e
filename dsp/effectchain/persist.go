package effectchain

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-fxrack/dsp/state"
)

// SaveState writes the allocation table and every parameter value to tree.
func (r *Rack) SaveState(tree *state.Tree) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.table.Save(tree)
	r.store.Save(tree)
}

// RestoreState replaces the rack contents with the modules recorded in tree.
// Every parameter block is reset before the tree's values are applied.
// Invalid or conflicting allocation entries are skipped and logged. The
// returned count is the number of modules restored.
func (r *Rack) RestoreState(tree *state.Tree) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, skipped := LoadAllocationTable(tree, r.cfg.Slots)
	for _, e := range skipped {
		r.log.Warn().Int("kind", int(e.Kind)).Int("slot", e.Slot).Int("index", e.ParamIndex).
			Msg("skipping invalid allocation entry")
	}

	r.store.ResetAll()
	loaded := r.store.Load(tree)

	if err := r.rebuildLocked(table); err != nil {
		return 0, err
	}

	r.log.Info().Int("modules", table.Len()).Int("params", loaded).Int("skipped", len(skipped)).Msg("state restored")
	r.notifyLocked(ChangeEvent{Op: OpRestore})

	return table.Len(), nil
}

// rebuildLocked replaces every user module with the entries of table, which
// must be valid for the rack. Blocks of outgoing modules that table no
// longer allocates are reset, as Delete does.
func (r *Rack) rebuildLocked(table AllocationTable) error {
	modules := make([]*Module, 0, table.Len())
	kept := make(map[Entry]bool, table.Len())

	for _, e := range table.Entries() {
		kept[Entry{Kind: e.Kind, ParamIndex: e.ParamIndex}] = true

		m, err := r.build(e.Kind, e.Slot, e.ParamIndex)
		if err != nil {
			return err
		}

		modules = append(modules, m)
	}

	slices.SortFunc(modules, func(a, b *Module) int { return a.slot - b.slot })

	for _, m := range r.chain.Users() {
		if !kept[Entry{Kind: m.kind, ParamIndex: m.paramIndex}] {
			m.ResetParams()
		}
	}

	r.suspendLocked()
	defer r.resumeLocked()

	r.chain.removeAll()
	r.staging = r.staging[:0]

	for _, m := range modules {
		if err := r.attachLocked(m); err != nil {
			return err
		}
	}

	if err := r.prepareLocked(); err != nil {
		return err
	}

	r.table = table

	return nil
}

// Reconcile compares the registry with the allocation table. On mismatch the
// registry is rebuilt from the table, which is the source of truth, and an
// error wrapping ErrDesync reports what was repaired.
func (r *Rack) Reconcile() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	diff := r.desyncLocked()
	if diff == "" {
		return nil
	}

	r.log.Warn().Str("diff", diff).Msg("registry out of sync, rebuilding from allocation table")

	table, skipped := LoadAllocationTable(r.tableTree(), r.cfg.Slots)
	if err := r.rebuildLocked(table); err != nil {
		return err
	}

	r.notifyLocked(ChangeEvent{Op: OpRestore})

	return fmt.Errorf("effectchain: %s (%d entries dropped): %w", diff, len(skipped), ErrDesync)
}

func (r *Rack) tableTree() *state.Tree {
	tree := state.New()
	r.table.Save(tree)

	return tree
}

// desyncLocked describes the first difference between registry and table.
func (r *Rack) desyncLocked() string {
	entries := r.table.Entries()
	users := r.chain.Users()

	if len(entries) != len(users) {
		return fmt.Sprintf("%d modules registered, %d allocated", len(users), len(entries))
	}

	for _, e := range entries {
		idx, ok := r.chain.Find(e.Kind, e.Slot)
		if !ok {
			return fmt.Sprintf("%s at slot %d allocated but not registered", e.Kind, e.Slot)
		}

		if idx != e.ParamIndex {
			return fmt.Sprintf("%s at slot %d uses index %d, allocated %d", e.Kind, e.Slot, idx, e.ParamIndex)
		}
	}

	return ""
}
