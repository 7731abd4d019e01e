package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// ErrUnknownParameter is returned for names outside a block's layout.
var ErrUnknownParameter = errors.New("unknown parameter")

// ErrSnapshotMismatch is returned when a snapshot does not fit a block.
var ErrSnapshotMismatch = errors.New("snapshot does not match block layout")

// Block is the parameter set of one module instance.
type Block struct {
	kind   string
	index  int
	layout Layout

	values  []atomic.Uint64
	changed atomic.Bool
}

// NewBlock creates a block initialized to the layout defaults.
func NewBlock(kind string, index int, layout Layout) *Block {
	b := &Block{
		kind:   kind,
		index:  index,
		layout: layout,
		values: make([]atomic.Uint64, len(layout)),
	}

	for i, s := range layout {
		b.values[i].Store(math.Float64bits(s.Default))
	}

	return b
}

// Kind returns the module kind name.
func (b *Block) Kind() string { return b.kind }

// Index returns the parameter-block index.
func (b *Block) Index() int { return b.index }

// Layout returns the parameter specs.
func (b *Block) Layout() Layout { return b.layout }

// Len returns the number of parameters.
func (b *Block) Len() int { return len(b.values) }

// Label returns the human label, e.g. "Filter 3".
func (b *Block) Label() string {
	return Label(b.kind, b.index)
}

// ParamID returns the stable identifier of a parameter in this block.
func (b *Block) ParamID(name string) string {
	return ParamID(b.kind, b.index, name)
}

// Get returns parameter i. Safe from any goroutine.
func (b *Block) Get(i int) float64 {
	return math.Float64frombits(b.values[i].Load())
}

// Get32 returns parameter i as float32.
func (b *Block) Get32(i int) float32 {
	return float32(b.Get(i))
}

// Value returns the parameter called name.
func (b *Block) Value(name string) (float64, error) {
	i, ok := b.layout.Index(name)
	if !ok {
		return 0, fmt.Errorf("%s: %w: %s", b.Label(), ErrUnknownParameter, name)
	}

	return b.Get(i), nil
}

// Set clamps v into range, stores it and marks the block changed when the
// stored value differs. It never blocks.
func (b *Block) Set(i int, v float64) {
	v = b.layout[i].Clamp(v)

	old := b.values[i].Swap(math.Float64bits(v))
	if old != math.Float64bits(v) {
		b.changed.Store(true)
	}
}

// SetValue sets the parameter called name.
func (b *Block) SetValue(name string, v float64) error {
	i, ok := b.layout.Index(name)
	if !ok {
		return fmt.Errorf("%s: %w: %s", b.Label(), ErrUnknownParameter, name)
	}

	b.Set(i, v)

	return nil
}

// Changed reports whether any value changed since the last TakeChanged.
func (b *Block) Changed() bool { return b.changed.Load() }

// MarkChanged forces the change flag.
func (b *Block) MarkChanged() { b.changed.Store(true) }

// TakeChanged clears the change flag and reports whether it was set.
func (b *Block) TakeChanged() bool {
	return b.changed.CompareAndSwap(true, false)
}

// Snapshot is a copy of a block's values.
type Snapshot struct {
	Kind   string
	Values []float64
}

// Snapshot copies the current values.
func (b *Block) Snapshot() Snapshot {
	s := Snapshot{Kind: b.kind, Values: make([]float64, len(b.values))}
	for i := range b.values {
		s.Values[i] = b.Get(i)
	}

	return s
}

// Apply overwrites every value from s.
func (b *Block) Apply(s Snapshot) error {
	if s.Kind != b.kind || len(s.Values) != len(b.values) {
		return fmt.Errorf("%s: %w", b.Label(), ErrSnapshotMismatch)
	}

	for i, v := range s.Values {
		b.Set(i, v)
	}

	return nil
}

// Reset restores every default.
func (b *Block) Reset() {
	for i, s := range b.layout {
		b.Set(i, s.Default)
	}
}

// Label formats a kind/index pair as "<kind> <index>".
func Label(kind string, index int) string {
	return kind + " " + strconv.Itoa(index)
}

// ParamID formats the stable identifier "<kind>_<index>_<name>".
func ParamID(kind string, index int, name string) string {
	return kind + "_" + strconv.Itoa(index) + "_" + name
}
