package clipper

// softStart is a linear 0 -> 1 gain ramp. The increment is derived from a
// duration in seconds so the ramp length is independent of the sample rate.
type softStart struct {
	gain      float32
	increment float32
}

func softStartIncrement(seconds, sampleRate float64) float32 {
	if seconds <= 0 || sampleRate <= 0 {
		return 1
	}

	return float32(1 / (seconds * sampleRate))
}

// next returns the gain for the current sample and advances the ramp.
func (s *softStart) next() float32 {
	g := s.gain
	if g < 1 {
		s.gain = min(g+s.increment, 1)
	}

	return g
}

// reset restarts the ramp from silence with the given increment.
func (s *softStart) reset(increment float32) {
	s.gain = 0
	s.increment = increment
}
