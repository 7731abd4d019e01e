package effectchain

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cwbudde/algo-fxrack/dsp/state"
)

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	src := newStubRack(t)
	f := mustCreate(t, src, KindFilter, 2)
	mustCreate(t, src, KindFilter, 6)
	c := mustCreate(t, src, KindAnalogClipper, 4)
	mustSet(t, f, "Cutoff", 1234)
	mustSet(t, c, "Drive", 18)

	if err := src.Swap(6, 7); err != nil {
		t.Fatal(err)
	}

	tree := state.New()
	src.SaveState(tree)

	var encoded bytes.Buffer
	if err := tree.Encode(&encoded); err != nil {
		t.Fatal(err)
	}

	decoded, err := state.Decode(&encoded)
	if err != nil {
		t.Fatal(err)
	}

	dst := newStubRack(t)

	var restored int
	dst.OnChange(func(ev ChangeEvent) {
		if ev.Op == OpRestore {
			restored++
		}
	})

	n, err := dst.RestoreState(decoded)
	if err != nil {
		t.Fatal(err)
	}

	if n != 3 || restored != 1 {
		t.Fatalf("restored %d modules, %d events", n, restored)
	}

	want := src.Allocations()
	got := dst.Allocations()

	if len(got) != len(want) {
		t.Fatalf("allocations = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}

	if v := value(t, dst.Module(2), "Cutoff"); v != 1234 {
		t.Fatalf("Cutoff = %v, want 1234", v)
	}

	if v := value(t, dst.Module(4), "Drive"); v != 18 {
		t.Fatalf("Drive = %v, want 18", v)
	}

	checkInvariants(t, dst)
}

func TestRestoreReplacesExistingModules(t *testing.T) {
	t.Parallel()

	r := newStubRack(t)
	mustCreate(t, r, KindFilter, 1)
	mustCreate(t, r, KindWaveshaper, 2)

	tree := state.New()
	tree.SetInts(KeyModuleTypes, []int{int(KindSlewLimiter)})
	tree.SetInts(KeyModuleSlots, []int{5})
	tree.SetInts(KeyModuleParamIndices, []int{3})

	if _, err := r.RestoreState(tree); err != nil {
		t.Fatal(err)
	}

	if r.Module(1) != nil || r.Module(2) != nil {
		t.Fatal("old modules survived the restore")
	}

	if m := r.Module(5); m == nil || m.ParamIndex() != 3 {
		t.Fatal("slot 5 should hold SlewLimiter 3")
	}

	if len(r.AnalysisStaging()) != 0 {
		t.Fatal("stale staging pairs survived the restore")
	}

	checkInvariants(t, r)
}

func TestRestoreSkipsInvalidEntries(t *testing.T) {
	t.Parallel()

	tree := state.New()
	tree.SetInts(KeyModuleTypes, []int{
		int(KindFilter), int(KindMeter), int(KindWaveshaper), int(KindBitcrusher), int(KindFilter), 77, int(KindFilter),
	})
	tree.SetInts(KeyModuleSlots, []int{1, 2, testSlots + 1, 1, 3, 4, 5})
	tree.SetInts(KeyModuleParamIndices, []int{1, 1, 1, 1, 1, 1})

	r := newStubRack(t)

	n, err := r.RestoreState(tree)
	if err != nil {
		t.Fatal(err)
	}

	// Only the first filter survives: meter kind, slot out of range,
	// duplicate slot, duplicate (kind, index), unknown kind and the entry
	// without an index are skipped.
	if n != 1 {
		t.Fatalf("restored %d, want 1: %v", n, r.Allocations())
	}

	if m := r.Module(1); m == nil || m.Kind() != KindFilter {
		t.Fatal("slot 1 should hold the filter")
	}

	checkInvariants(t, r)
}

func TestRestoreEmptyTree(t *testing.T) {
	t.Parallel()

	r := newStubRack(t)
	mustCreate(t, r, KindOscilloscope, 3)

	n, err := r.RestoreState(state.New())
	if err != nil || n != 0 {
		t.Fatalf("RestoreState = %d, %v", n, err)
	}

	if len(r.Modules()) != 0 {
		t.Fatal("empty state should clear the rack")
	}
}

func TestRestoreResetsStaleParameters(t *testing.T) {
	t.Parallel()

	r := newStubRack(t)
	mustSet(t, mustCreate(t, r, KindWaveshaper, 1), "Drive", 24)
	mustSet(t, mustCreate(t, r, KindFilter, 2), "Cutoff", 500)

	tree := state.New()
	tree.SetInts(KeyModuleTypes, []int{int(KindFilter)})
	tree.SetInts(KeyModuleSlots, []int{3})
	tree.SetInts(KeyModuleParamIndices, []int{1})

	if _, err := r.RestoreState(tree); err != nil {
		t.Fatal(err)
	}

	if v := value(t, r.Module(3), "Cutoff"); v == 500 {
		t.Fatal("restored filter kept the Cutoff the tree did not record")
	}

	w := mustCreate(t, r, KindWaveshaper, 4)
	if w.ParamIndex() != 1 {
		t.Fatalf("index = %d, want 1", w.ParamIndex())
	}

	if v := value(t, w, "Drive"); v != 0 {
		t.Fatalf("Drive after restore and create = %v, want default 0", v)
	}
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	r := newStubRack(t)
	mustSet(t, mustCreate(t, r, KindFilter, 1), "Cutoff", 500)
	mustSet(t, mustCreate(t, r, KindWaveshaper, 2), "Drive", 24)

	if err := r.Reconcile(); err != nil {
		t.Fatalf("in-sync rack: %v", err)
	}

	r.mu.Lock()
	r.table.Remove(KindWaveshaper, 2)
	r.table.Append(KindBitcrusher, 6, 1)
	r.mu.Unlock()

	if err := r.Reconcile(); !errors.Is(err, ErrDesync) {
		t.Fatalf("Reconcile = %v, want ErrDesync", err)
	}

	if r.Module(2) != nil {
		t.Fatal("unallocated waveshaper should be gone")
	}

	if m := r.Module(6); m == nil || m.Kind() != KindBitcrusher {
		t.Fatal("allocated bitcrusher should be built")
	}

	if v := value(t, r.Module(1), "Cutoff"); v != 500 {
		t.Fatalf("surviving filter Cutoff = %v, want 500", v)
	}

	if v := value(t, mustCreate(t, r, KindWaveshaper, 3), "Drive"); v != 0 {
		t.Fatalf("Drive of a waveshaper created after repair = %v, want default 0", v)
	}

	if err := r.Reconcile(); err != nil {
		t.Fatalf("after repair: %v", err)
	}

	checkInvariants(t, r)
}
