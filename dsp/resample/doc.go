// Package resample converts multichannel float32 audio between sample rates
// with a polyphase windowed-sinc FIR.
//
// Quality modes trade CPU for stopband attenuation:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
//
// The converter is meant for offline file I/O and allocates per call.
package resample
