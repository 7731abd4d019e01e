package params

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxrack/dsp/core"
)

// Spec describes one parameter.
type Spec struct {
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	// Steps > 0 marks a discrete (choice or integer) parameter whose values
	// are rounded to the nearest integer step from Min.
	Steps int
}

// Clamp limits v to [Min, Max] and rounds discrete parameters. NaN maps to
// the default.
func (s Spec) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return s.Default
	}

	v = core.Clamp(v, s.Min, s.Max)

	if s.Steps > 0 {
		v = s.Min + math.Round(v-s.Min)
		if v > s.Max {
			v = s.Max
		}
	}

	return v
}

// Normalize maps v onto [0, 1].
func (s Spec) Normalize(v float64) float64 {
	if s.Max <= s.Min {
		return 0
	}

	return (s.Clamp(v) - s.Min) / (s.Max - s.Min)
}

// Denormalize maps n in [0, 1] onto the parameter range.
func (s Spec) Denormalize(n float64) float64 {
	return s.Clamp(s.Min + n*(s.Max-s.Min))
}

// Validate checks that the spec describes a usable range.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("parameter name must not be empty")
	}

	if !(s.Max > s.Min) {
		return fmt.Errorf("parameter %s range must satisfy min < max: [%g, %g]", s.Name, s.Min, s.Max)
	}

	if s.Default < s.Min || s.Default > s.Max {
		return fmt.Errorf("parameter %s default must be in [%g, %g]: %g", s.Name, s.Min, s.Max, s.Default)
	}

	return nil
}

// Choice returns a discrete spec with n options indexed 0..n-1.
func Choice(name string, n, def int) Spec {
	return Spec{Name: name, Min: 0, Max: float64(n - 1), Default: float64(def), Steps: n - 1}
}

// Layout is the ordered parameter list of one module kind.
type Layout []Spec

// Validate checks every spec and name uniqueness.
func (l Layout) Validate() error {
	seen := make(map[string]struct{}, len(l))

	for _, s := range l {
		if err := s.Validate(); err != nil {
			return err
		}

		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("parameter %s declared twice", s.Name)
		}

		seen[s.Name] = struct{}{}
	}

	return nil
}

// Index returns the position of name.
func (l Layout) Index(name string) (int, bool) {
	for i, s := range l {
		if s.Name == name {
			return i, true
		}
	}

	return -1, false
}
