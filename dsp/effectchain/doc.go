// Package effectchain hosts a fixed row of effect slots between an input and
// an output meter.
//
// A Rack owns the slot registry, the parameter allocation table and the
// analysis staging FIFOs. Structural edits (Create, Delete, Swap, restore)
// run on a control goroutine and briefly suspend audio processing; the audio
// goroutine only ever calls ProcessBlock.
package effectchain
