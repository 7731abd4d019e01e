package effectchain

import "errors"

var (
	// ErrInvalidSlot is returned for slots outside [1, N] or already occupied.
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrNotFound is returned when a slot holds no module.
	ErrNotFound = errors.New("module not found")
	// ErrInvalidKind is returned for kinds that cannot be placed in a slot.
	ErrInvalidKind = errors.New("invalid module kind")
	// ErrEmptySource is returned when swapping an empty slot onto an occupied one.
	ErrEmptySource = errors.New("swap source is empty")
	// ErrAlreadyInstalled is returned when a module is installed twice.
	ErrAlreadyInstalled = errors.New("module already installed")
	// ErrDesync is returned when the registry and the allocation table disagree.
	ErrDesync = errors.New("registry and allocation table out of sync")

	errDuplicateKind = errors.New("duplicate module kind")
)
