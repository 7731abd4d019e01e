package effectchain

import (
	"fmt"
	"slices"
)

// Chain is the slot registry: modules in ascending slot order between the
// input meter (slot 0) and the output meter (slot N+1). It is not safe for
// concurrent mutation; the Rack mutates it only while suspended.
type Chain struct {
	slots   int
	input   *Module
	output  *Module
	modules []*Module
}

// NewChain returns a chain of n user slots bracketed by the two meters.
func NewChain(n int, input, output *Module) *Chain {
	c := &Chain{
		slots:   n,
		input:   input,
		output:  output,
		modules: make([]*Module, 0, n+2),
	}

	c.modules = append(c.modules, input, output)

	return c
}

// Slots returns the number of user slots N.
func (c *Chain) Slots() int { return c.slots }

// Input returns the input meter module.
func (c *Chain) Input() *Module { return c.input }

// Output returns the output meter module.
func (c *Chain) Output() *Module { return c.output }

func (c *Chain) validSlot(slot int) bool {
	return slot >= 1 && slot <= c.slots
}

// search returns the position of slot among the user modules and whether it
// is occupied. Positions count from the input meter.
func (c *Chain) search(slot int) (int, bool) {
	users := c.modules[1 : len(c.modules)-1]

	i, found := slices.BinarySearchFunc(users, slot, func(m *Module, s int) int {
		return m.slot - s
	})

	return i + 1, found
}

// Insert places an installed module at slot.
func (c *Chain) Insert(m *Module, slot int) error {
	if !c.validSlot(slot) {
		return fmt.Errorf("effectchain: insert at %d of %d: %w", slot, c.slots, ErrInvalidSlot)
	}

	if m.slot != slot {
		return fmt.Errorf("effectchain: %s installed at %d, inserted at %d: %w", m.Label(), m.slot, slot, ErrInvalidSlot)
	}

	pos, occupied := c.search(slot)
	if occupied {
		return fmt.Errorf("effectchain: slot %d occupied by %s: %w", slot, c.modules[pos].Label(), ErrInvalidSlot)
	}

	c.modules = slices.Insert(c.modules, pos, m)

	return nil
}

// RemoveAt removes and returns the module at slot.
func (c *Chain) RemoveAt(slot int) (*Module, error) {
	pos, occupied := c.search(slot)
	if !c.validSlot(slot) || !occupied {
		return nil, fmt.Errorf("effectchain: remove slot %d: %w", slot, ErrNotFound)
	}

	m := c.modules[pos]
	c.modules = slices.Delete(c.modules, pos, pos+1)

	return m, nil
}

// At returns the module at slot, or nil.
func (c *Chain) At(slot int) *Module {
	if !c.validSlot(slot) {
		return nil
	}

	pos, occupied := c.search(slot)
	if !occupied {
		return nil
	}

	return c.modules[pos]
}

// Find returns the parameter index of the module of kind at slot.
func (c *Chain) Find(kind Kind, slot int) (int, bool) {
	m := c.At(slot)
	if m == nil || m.kind != kind {
		return 0, false
	}

	return m.paramIndex, true
}

// Modules returns every module in processing order, meters included. The
// slice is shared; callers must not modify it.
func (c *Chain) Modules() []*Module { return c.modules }

// Users returns the slot modules without the meters.
func (c *Chain) Users() []*Module {
	return c.modules[1 : len(c.modules)-1]
}

// Len returns the number of occupied user slots.
func (c *Chain) Len() int { return len(c.modules) - 2 }

// removeAll removes every user module.
func (c *Chain) removeAll() {
	clear(c.modules[1 : len(c.modules)-1])
	c.modules = append(c.modules[:1], c.output)
}
