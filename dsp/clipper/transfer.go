package clipper

import "math"

// TransferCurve writes the static (DC steady-state) response of the circuit
// for each input voltage into dst, including the current input gain but not
// the soft-start ramp. It is meant for transfer-function displays and runs on
// the control thread. len(dst) must be >= len(inputs).
func (c *Clipper) TransferCurve(dst, inputs []float32) {
	// At steady state dv/dt = 0: (vIn - v) = 2*beta*R*sinh(alpha*v).
	k := 2 * c.cfg.beta * c.cfg.resistance
	alpha := c.cfg.alpha
	gain := float64(c.inputGain)

	v := 0.0
	for i, x := range inputs {
		vIn := float64(x) * gain
		for range c.cfg.maxIterations {
			arg := math.Max(-maxHyperbolicArg, math.Min(maxHyperbolicArg, alpha*v))
			g := vIn - v - k*math.Sinh(arg)
			dg := -1 - k*alpha*math.Cosh(arg)

			step := g / dg
			step = math.Max(-c.cfg.maxStep, math.Min(c.cfg.maxStep, step))
			v -= step

			if math.Abs(step) < c.cfg.threshold {
				break
			}
		}

		dst[i] = float32(v)
	}
}
