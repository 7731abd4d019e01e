package effectchain

// Op names a structural change.
type Op int

const (
	OpCreate Op = iota + 1
	OpDelete
	OpSwap
	OpRestore
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	case OpSwap:
		return "swap"
	case OpRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// ChangeEvent describes a completed structural change. Slots lists the
// affected slots; it is empty for restores.
type ChangeEvent struct {
	Op    Op
	Slots []int
}

// OnChange registers fn to run on the mutating goroutine after every
// structural change. Listeners must not call back into mutating Rack methods.
func (r *Rack) OnChange(fn func(ChangeEvent)) {
	if fn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, fn)
}

func (r *Rack) notifyLocked(ev ChangeEvent) {
	for _, fn := range r.listeners {
		fn(ev)
	}
}
