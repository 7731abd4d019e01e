package session

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
	"github.com/cwbudde/algo-fxrack/dsp/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "sessions", "fxrack.db")})
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func rackTree(t *testing.T) *state.Tree {
	t.Helper()

	rack, err := effectchain.NewRack(effectchain.Config{Slots: 6})
	require.NoError(t, err)

	_, err = rack.Create(effectchain.KindFilter, 2)
	require.NoError(t, err)

	ws, err := rack.Create(effectchain.KindWaveshaper, 5)
	require.NoError(t, err)
	require.NoError(t, ws.Params().SetValue("Drive", 12))

	tree := state.New()
	rack.SaveState(tree)

	return tree
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	tree := rackTree(t)

	require.NoError(t, s.Save("crunch", tree))

	got, err := s.Load("crunch")
	require.NoError(t, err)

	assert.Equal(t, tree.Version, got.Version)
	assert.Equal(t, tree.Ints, got.Ints)
	assert.Equal(t, tree.Floats, got.Floats)

	rack, err := effectchain.NewRack(effectchain.Config{Slots: 6})
	require.NoError(t, err)

	n, err := rack.RestoreState(got)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m := rack.Module(5)
	require.NotNil(t, m)
	assert.Equal(t, effectchain.KindWaveshaper, m.Kind())

	drive, err := m.Params().Value("Drive")
	require.NoError(t, err)
	assert.InDelta(t, 12, drive, 1e-9)
}

func TestSaveReplaces(t *testing.T) {
	s := openStore(t)

	first := state.New()
	first.SetInts("moduleTypes", []int{3, 4})
	first.SetFloat("Filter_1_Cutoff", 500)
	require.NoError(t, s.Save("a", first))

	second := state.New()
	second.SetInts("moduleTypes", []int{})
	require.NoError(t, s.Save("a", second))

	got, err := s.Load("a")
	require.NoError(t, err)

	types, ok := got.IntsFor("moduleTypes")
	require.True(t, ok)
	assert.Empty(t, types)
	assert.Empty(t, got.Floats)
}

func TestListAndDelete(t *testing.T) {
	s := openStore(t)

	tree := state.New()
	tree.SetFloat("Bitcrusher_1_Bits", 4)
	tree.SetFloat("Bitcrusher_1_Mix", 1)

	require.NoError(t, s.Save("b", tree))
	require.NoError(t, s.Save("a", state.New()))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, 0, list[0].Params)
	assert.Equal(t, "b", list[1].Name)
	assert.Equal(t, 2, list[1].Params)
	assert.False(t, list[1].UpdatedAt.IsZero())

	require.NoError(t, s.Delete("b"))
	assert.ErrorIs(t, s.Delete("b"), ErrNotFound)

	_, err = s.Load("b")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err = s.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInvalidInput(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)

	s := openStore(t)
	assert.Error(t, s.Save("  ", state.New()))
}
