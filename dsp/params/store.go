package params

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownKind is returned for kinds without a registered layout.
var ErrUnknownKind = errors.New("unknown parameter kind")

type blockKey struct {
	kind  string
	index int
}

// Store owns the parameter blocks of every module kind. Blocks are created
// lazily on first access and persist after their module is deleted, so a
// later module in the same block sees the values left behind (Reset is the
// caller's job).
type Store struct {
	mu      sync.Mutex
	layouts map[string]Layout
	blocks  map[blockKey]*Block
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		layouts: make(map[string]Layout),
		blocks:  make(map[blockKey]*Block),
	}
}

// Register declares the layout for kind.
func (s *Store) Register(kind string, layout Layout) error {
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("params: register %s: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.layouts[kind] = layout

	return nil
}

// Layout returns the registered layout for kind.
func (s *Store) Layout(kind string) (Layout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.layouts[kind]

	return l, ok
}

// Block returns the block for (kind, index), creating it on first use.
func (s *Store) Block(kind string, index int) (*Block, error) {
	if index < 1 {
		return nil, fmt.Errorf("params: %s index must be >= 1: %d", kind, index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := blockKey{kind: kind, index: index}
	if b, ok := s.blocks[key]; ok {
		return b, nil
	}

	layout, ok := s.layouts[kind]
	if !ok {
		return nil, fmt.Errorf("params: %w: %s", ErrUnknownKind, kind)
	}

	b := NewBlock(kind, index, layout)
	s.blocks[key] = b

	return b, nil
}

// Blocks returns every created block ordered by kind, then index.
func (s *Store) Blocks() []*Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Block, 0, len(s.blocks))
	for _, b := range s.blocks {
		out = append(out, b)
	}

	slices.SortFunc(out, func(a, b *Block) int {
		if c := cmp.Compare(a.kind, b.kind); c != 0 {
			return c
		}

		return cmp.Compare(a.index, b.index)
	})

	return out
}

// ResetAll restores the defaults of every created block.
func (s *Store) ResetAll() {
	for _, b := range s.Blocks() {
		b.Reset()
	}
}

// Lookup resolves a stable parameter identifier to its block and position.
func (s *Store) Lookup(id string) (*Block, int, bool) {
	for _, b := range s.Blocks() {
		for i, spec := range b.layout {
			if b.ParamID(spec.Name) == id {
				return b, i, true
			}
		}
	}

	return nil, -1, false
}
