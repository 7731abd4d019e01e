// Package clipper models an RC network loaded by a pair of anti-parallel
// diodes, the classic "diode clipper" found in overdrive pedals.
//
// The capacitor voltage v obeys
//
//	dv/dt = (vIn - v)/(Rin*C) - (2*beta/C)*sinh(alpha*v)
//
// which is discretized with backward Euler at h = 1/sampleRate. Every sample
// solves the resulting implicit equation with a damped Newton-Raphson
// iteration seeded from the previous output. The iteration count is capped so
// a single sample can never stall the audio thread; an unconverged iterate is
// used as-is and counted in [Clipper.ConvergenceFailures].
//
// All per-sample arithmetic is float32. Process never allocates, locks or
// panics.
package clipper
