package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-fxrack/dsp/state"
)

// State tree keys of the allocation table.
const (
	KeyModuleTypes        = "moduleTypes"
	KeyModuleSlots        = "moduleSlots"
	KeyModuleParamIndices = "moduleParamIndices"
)

// Entry is one allocation: which kind sits at which slot with which
// parameter block.
type Entry struct {
	Kind       Kind
	Slot       int
	ParamIndex int
}

// AllocationTable is the persisted record of the rack's modules, kept as
// three parallel lists in insertion order.
type AllocationTable struct {
	kinds   []int
	slots   []int
	indices []int
}

// Len returns the number of entries.
func (t *AllocationTable) Len() int { return len(t.kinds) }

// Entries returns a copy of the entries in insertion order.
func (t *AllocationTable) Entries() []Entry {
	out := make([]Entry, len(t.kinds))
	for i := range t.kinds {
		out[i] = Entry{Kind: Kind(t.kinds[i]), Slot: t.slots[i], ParamIndex: t.indices[i]}
	}

	return out
}

// NextParamIndex returns the smallest index >= 1 not used by kind. Entries
// listed in ignore are treated as absent.
func (t *AllocationTable) NextParamIndex(kind Kind, ignore ...Entry) int {
	for idx := 1; ; idx++ {
		if !t.used(kind, idx, ignore) {
			return idx
		}
	}
}

func (t *AllocationTable) used(kind Kind, idx int, ignore []Entry) bool {
	for i := range t.kinds {
		if Kind(t.kinds[i]) != kind || t.indices[i] != idx {
			continue
		}

		e := Entry{Kind: kind, Slot: t.slots[i], ParamIndex: idx}
		if !containsEntry(ignore, e) {
			return true
		}
	}

	return false
}

func containsEntry(list []Entry, e Entry) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}

	return false
}

// Append records a new allocation.
func (t *AllocationTable) Append(kind Kind, slot, paramIndex int) {
	t.kinds = append(t.kinds, int(kind))
	t.slots = append(t.slots, slot)
	t.indices = append(t.indices, paramIndex)
}

// Remove deletes the entry of kind at slot and returns its parameter index.
func (t *AllocationTable) Remove(kind Kind, slot int) (int, bool) {
	for i := range t.kinds {
		if Kind(t.kinds[i]) != kind || t.slots[i] != slot {
			continue
		}

		idx := t.indices[i]
		t.kinds = append(t.kinds[:i], t.kinds[i+1:]...)
		t.slots = append(t.slots[:i], t.slots[i+1:]...)
		t.indices = append(t.indices[:i], t.indices[i+1:]...)

		return idx, true
	}

	return 0, false
}

// Clone returns an independent copy.
func (t *AllocationTable) Clone() AllocationTable {
	return AllocationTable{
		kinds:   append([]int(nil), t.kinds...),
		slots:   append([]int(nil), t.slots...),
		indices: append([]int(nil), t.indices...),
	}
}

// Reset removes every entry.
func (t *AllocationTable) Reset() {
	t.kinds = t.kinds[:0]
	t.slots = t.slots[:0]
	t.indices = t.indices[:0]
}

// Validate checks that slots lie in [1, slots], that no slot is used twice
// and that (kind, index) pairs are unique.
func (t *AllocationTable) Validate(slots int) error {
	if len(t.kinds) != len(t.slots) || len(t.kinds) != len(t.indices) {
		return fmt.Errorf("effectchain: allocation lists differ in length %d/%d/%d: %w",
			len(t.kinds), len(t.slots), len(t.indices), ErrDesync)
	}

	seenSlot := make(map[int]struct{}, len(t.slots))
	seenIndex := make(map[[2]int]struct{}, len(t.kinds))

	for i, e := range t.Entries() {
		if err := validateEntry(e, slots); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		if _, dup := seenSlot[e.Slot]; dup {
			return fmt.Errorf("effectchain: slot %d allocated twice: %w", e.Slot, ErrInvalidSlot)
		}

		key := [2]int{int(e.Kind), e.ParamIndex}
		if _, dup := seenIndex[key]; dup {
			return fmt.Errorf("effectchain: %s index %d allocated twice: %w", e.Kind, e.ParamIndex, ErrDesync)
		}

		seenSlot[e.Slot] = struct{}{}
		seenIndex[key] = struct{}{}
	}

	return nil
}

func validateEntry(e Entry, slots int) error {
	switch {
	case !e.Kind.Creatable():
		return fmt.Errorf("effectchain: kind %d: %w", int(e.Kind), ErrInvalidKind)
	case e.Slot < 1 || e.Slot > slots:
		return fmt.Errorf("effectchain: slot %d of %d: %w", e.Slot, slots, ErrInvalidSlot)
	case e.ParamIndex < 1:
		return fmt.Errorf("effectchain: %s index %d must be >= 1: %w", e.Kind, e.ParamIndex, ErrDesync)
	}

	return nil
}

// Save writes the three lists into tree.
func (t *AllocationTable) Save(tree *state.Tree) {
	tree.SetInts(KeyModuleTypes, t.kinds)
	tree.SetInts(KeyModuleSlots, t.slots)
	tree.SetInts(KeyModuleParamIndices, t.indices)
}

// LoadAllocationTable reads the lists from tree, keeping valid entries in
// order and returning the skipped ones. Missing keys yield an empty table.
func LoadAllocationTable(tree *state.Tree, slots int) (AllocationTable, []Entry) {
	kinds, _ := tree.IntsFor(KeyModuleTypes)
	slotList, _ := tree.IntsFor(KeyModuleSlots)
	indices, _ := tree.IntsFor(KeyModuleParamIndices)

	n := min(len(kinds), len(slotList), len(indices))

	var (
		table   AllocationTable
		skipped []Entry
	)

	for i := range max(len(kinds), len(slotList), len(indices)) {
		if i >= n {
			skipped = append(skipped, partialEntry(kinds, slotList, indices, i))
			continue
		}

		e := Entry{Kind: Kind(kinds[i]), Slot: slotList[i], ParamIndex: indices[i]}
		if validateEntry(e, slots) != nil || table.conflicts(e) {
			skipped = append(skipped, e)
			continue
		}

		table.Append(e.Kind, e.Slot, e.ParamIndex)
	}

	return table, skipped
}

func partialEntry(kinds, slots, indices []int, i int) Entry {
	var e Entry
	if i < len(kinds) {
		e.Kind = Kind(kinds[i])
	}

	if i < len(slots) {
		e.Slot = slots[i]
	}

	if i < len(indices) {
		e.ParamIndex = indices[i]
	}

	return e
}

func (t *AllocationTable) conflicts(e Entry) bool {
	for i := range t.kinds {
		if t.slots[i] == e.Slot {
			return true
		}

		if Kind(t.kinds[i]) == e.Kind && t.indices[i] == e.ParamIndex {
			return true
		}
	}

	return false
}
