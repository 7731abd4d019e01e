package effectchain

import (
	"fmt"
	"strings"
)

// Kind identifies a module variant. The numeric values are persisted.
type Kind int

const (
	KindUnset Kind = iota
	KindMeter
	KindFilter
	KindOscilloscope
	KindWaveshaper
	KindBitcrusher
	KindSlewLimiter
	KindSpectrumBitcrusher
	KindAnalogClipper

	kindCount
)

var kindNames = [kindCount]string{
	KindUnset:              "Unset",
	KindMeter:              "Meter",
	KindFilter:             "Filter",
	KindOscilloscope:       "Oscilloscope",
	KindWaveshaper:         "Waveshaper",
	KindBitcrusher:         "Bitcrusher",
	KindSlewLimiter:        "SlewLimiter",
	KindSpectrumBitcrusher: "SpectrumBitcrusher",
	KindAnalogClipper:      "AnalogClipper",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// Valid reports whether k is a known kind other than KindUnset.
func (k Kind) Valid() bool {
	return k > KindUnset && k < kindCount
}

// Creatable reports whether k may occupy a user slot. Meters only exist as
// the fixed input and output sentinels.
func (k Kind) Creatable() bool {
	return k.Valid() && k != KindMeter
}

// Analysis reports whether modules of kind k feed an analysis staging pair.
func (k Kind) Analysis() bool {
	return k == KindFilter || k == KindSpectrumBitcrusher
}

// CreatableKinds lists the user-creatable kinds in numeric order.
func CreatableKinds() []Kind {
	out := make([]Kind, 0, kindCount)

	for k := KindUnset; k < kindCount; k++ {
		if k.Creatable() {
			out = append(out, k)
		}
	}

	return out
}

// ParseKind resolves a kind by name, ignoring case.
func ParseKind(name string) (Kind, error) {
	for k := KindUnset + 1; k < kindCount; k++ {
		if strings.EqualFold(kindNames[k], name) {
			return k, nil
		}
	}

	return KindUnset, fmt.Errorf("effectchain: %q: %w", name, ErrInvalidKind)
}
