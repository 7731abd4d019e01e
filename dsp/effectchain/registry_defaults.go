package effectchain

// DefaultRegistry returns a registry with every built-in kind, including the
// meter used for the input and output sentinels.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)

	return r
}

func registerBuiltins(r *Registry) {
	r.MustRegister(KindMeter, newMeterParts)
	r.MustRegister(KindOscilloscope, newScopeParts)
	r.MustRegister(KindFilter, newFilterParts)
	r.MustRegister(KindWaveshaper, newWaveshaperParts)
	r.MustRegister(KindBitcrusher, newBitcrusherParts)
	r.MustRegister(KindSlewLimiter, newSlewParts)
	r.MustRegister(KindSpectrumBitcrusher, newSpectralCrusherParts)
	r.MustRegister(KindAnalogClipper, newClipperParts)
}
