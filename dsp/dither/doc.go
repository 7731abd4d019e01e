// Package dither converts float samples to fixed-point integers with optional
// dither noise and first-order noise shaping.
//
// It is used when rendering the rack's float32 output to 16- or 24-bit PCM.
package dither
