// Package biquad provides the second-order IIR section used by the rack's
// filter module.
//
// A [Section] runs Direct Form II Transposed with float64 state over float32
// audio buffers. Coefficient design lives in dsp/filter/design.
package biquad
