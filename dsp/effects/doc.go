// Package effects provides the float32 effect kernels behind the rack's
// distortion modules.
//
//   - Waveshaper: static transfer-curve distortion with drive and bias.
//   - BitCrusher: bit-depth and sample-rate reduction.
//   - SlewLimiter: rise/fall rate limiting.
//   - SpectralCrusher: magnitude quantization and bin truncation inside an
//     overlapping STFT.
//
// Kernels with memory keep one state per channel; call Prepare with the
// channel count before processing. Hot paths are zero-allocation.
package effects
