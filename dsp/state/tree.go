// Package state is the host-style key/value state tree the rack persists
// into: integer arrays for structure and float values for parameters.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
)

// CurrentVersion is the schema version written by this package.
const CurrentVersion = 1

// ErrUnsupportedVersion is returned when decoding a tree written by a newer
// schema.
var ErrUnsupportedVersion = errors.New("unsupported state version")

// Tree holds integer arrays and float values under string keys. The zero
// value is not usable; call New.
type Tree struct {
	Version int                `json:"version"`
	Ints    map[string][]int   `json:"ints,omitempty"`
	Floats  map[string]float64 `json:"floats,omitempty"`
}

// New returns an empty tree at CurrentVersion.
func New() *Tree {
	return &Tree{
		Version: CurrentVersion,
		Ints:    make(map[string][]int),
		Floats:  make(map[string]float64),
	}
}

// SetInts stores a copy of values under key.
func (t *Tree) SetInts(key string, values []int) {
	t.Ints[key] = slices.Clone(values)
}

// IntsFor returns a copy of the array under key.
func (t *Tree) IntsFor(key string) ([]int, bool) {
	v, ok := t.Ints[key]
	if !ok {
		return nil, false
	}

	return slices.Clone(v), true
}

// SetFloat stores v under key.
func (t *Tree) SetFloat(key string, v float64) {
	t.Floats[key] = v
}

// Float returns the value under key.
func (t *Tree) Float(key string) (float64, bool) {
	v, ok := t.Floats[key]
	return v, ok
}

// FloatKeys returns every float key in sorted order.
func (t *Tree) FloatKeys() []string {
	return slices.Sorted(maps.Keys(t.Floats))
}

// IntKeys returns every array key in sorted order.
func (t *Tree) IntKeys() []string {
	return slices.Sorted(maps.Keys(t.Ints))
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	c := New()
	c.Version = t.Version

	for k, v := range t.Ints {
		c.SetInts(k, v)
	}

	maps.Copy(c.Floats, t.Floats)

	return c
}

// Encode writes t as JSON.
func (t *Tree) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("state: encode: %w", err)
	}

	return nil
}

// Decode reads a tree written by Encode. Trees without a version field are
// treated as version 0 and accepted.
func Decode(r io.Reader) (*Tree, error) {
	t := New()
	t.Version = 0

	if err := json.NewDecoder(r).Decode(t); err != nil {
		return nil, fmt.Errorf("state: decode: %w", err)
	}

	if t.Version > CurrentVersion {
		return nil, fmt.Errorf("state: %w: %d", ErrUnsupportedVersion, t.Version)
	}

	if t.Ints == nil {
		t.Ints = make(map[string][]int)
	}

	if t.Floats == nil {
		t.Floats = make(map[string]float64)
	}

	return t, nil
}
