package effects

import "math"

const (
	MinSlewTimeMs = 0.01
	MaxSlewTimeMs = 1000.0
)

// SlewLimiter bounds how fast the signal may rise or fall. Rise and fall
// are given as the time in milliseconds for a full-scale (-1 to +1) swing.
type SlewLimiter struct {
	sampleRate float64
	riseMs     float64
	fallMs     float64
	mix        float32

	maxUp   float32
	maxDown float32
	last    []float32
}

// NewSlewLimiter creates a limiter with 1 ms rise and fall.
func NewSlewLimiter(sampleRate float64) (*SlewLimiter, error) {
	if err := validateSampleRate("slew limiter", sampleRate); err != nil {
		return nil, err
	}

	s := &SlewLimiter{sampleRate: sampleRate, riseMs: 1, fallMs: 1, mix: 1}
	s.update()
	s.Prepare(1)

	return s, nil
}

// Prepare allocates per-channel state.
func (s *SlewLimiter) Prepare(channels int) {
	s.last = make([]float32, max(channels, 1))
}

// SetSampleRate updates the per-sample limits.
func (s *SlewLimiter) SetSampleRate(sampleRate float64) error {
	if err := validateSampleRate("slew limiter", sampleRate); err != nil {
		return err
	}

	s.sampleRate = sampleRate
	s.update()

	return nil
}

// SetRise sets the full-scale rise time in ms.
func (s *SlewLimiter) SetRise(ms float64) error {
	if err := validateRange("slew limiter rise", ms, MinSlewTimeMs, MaxSlewTimeMs); err != nil {
		return err
	}

	s.riseMs = ms
	s.update()

	return nil
}

// SetFall sets the full-scale fall time in ms.
func (s *SlewLimiter) SetFall(ms float64) error {
	if err := validateRange("slew limiter fall", ms, MinSlewTimeMs, MaxSlewTimeMs); err != nil {
		return err
	}

	s.fallMs = ms
	s.update()

	return nil
}

// SetMix sets the dry/wet mix in [0, 1].
func (s *SlewLimiter) SetMix(amount float64) error {
	if err := validateRange("slew limiter mix", amount, 0, 1); err != nil {
		return err
	}

	s.mix = float32(amount)

	return nil
}

// MaxStep returns the per-sample rise and fall limits.
func (s *SlewLimiter) MaxStep() (up, down float32) { return s.maxUp, s.maxDown }

// Reset clears channel history.
func (s *SlewLimiter) Reset() {
	clear(s.last)
}

// Process limits channel ch of buf in place.
func (s *SlewLimiter) Process(ch int, buf []float32) {
	if ch < 0 || ch >= len(s.last) {
		return
	}

	y := s.last[ch]

	for i, x := range buf {
		d := x - y
		if d > s.maxUp {
			d = s.maxUp
		} else if d < -s.maxDown {
			d = -s.maxDown
		}

		y += d
		buf[i] = mix(x, y, s.mix)
	}

	s.last[ch] = y
}

func (s *SlewLimiter) update() {
	s.maxUp = float32(2 / (s.riseMs * 1e-3 * s.sampleRate))
	s.maxDown = float32(2 / (s.fallMs * 1e-3 * s.sampleRate))

	if math.IsInf(float64(s.maxUp), 0) {
		s.maxUp = 2
	}

	if math.IsInf(float64(s.maxDown), 0) {
		s.maxDown = 2
	}
}
