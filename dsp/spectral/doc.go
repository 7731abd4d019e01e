// Package spectral holds the frequency-domain plumbing of the rack.
//
// Two pipelines live here. The analysis pipeline moves audio-thread samples
// through a [SampleFifo] into an [Analyzer], whose dB magnitudes are turned
// into display polylines by a [PathGenerator]; a [PathProducer] drives the
// consumer side for one channel. The processing pipeline ([OverlapProcessor])
// runs a windowed STFT with overlap-add resynthesis inside the audio thread
// and hands every frame's spectrum to a caller-supplied [FrameFunc].
//
// All hand-offs between threads use the bounded single-producer,
// single-consumer [Queue]. Producers never block: a full queue drops the
// write and counts it.
package spectral
