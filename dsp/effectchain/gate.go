package effectchain

import (
	"runtime"
	"sync/atomic"
)

// Gate lets the control goroutine exclude the audio goroutine from the chain
// without the audio side ever taking a lock.
type Gate struct {
	suspended atomic.Bool
	active    atomic.Int32
}

// Enter marks a block as in flight. It returns false, without entering,
// while the gate is suspended. Audio side.
func (g *Gate) Enter() bool {
	if g.suspended.Load() {
		return false
	}

	g.active.Add(1)

	if g.suspended.Load() {
		g.active.Add(-1)
		return false
	}

	return true
}

// Exit ends a block started by a successful Enter.
func (g *Gate) Exit() {
	g.active.Add(-1)
}

// Suspend closes the gate and waits until no block is in flight.
func (g *Gate) Suspend() {
	g.suspended.Store(true)

	for g.active.Load() != 0 {
		runtime.Gosched()
	}
}

// Resume reopens the gate.
func (g *Gate) Resume() {
	g.suspended.Store(false)
}

// Suspended reports whether the gate is closed.
func (g *Gate) Suspended() bool {
	return g.suspended.Load()
}
