package dither

import (
	"fmt"
	"strings"
)

// DitherType selects the probability distribution used for dither noise.
type DitherType int

const (
	// DitherNone applies plain rounding.
	DitherNone DitherType = iota
	// DitherRectangular uses a uniform PDF of one LSB peak-to-peak.
	DitherRectangular
	// DitherTriangular uses a triangular PDF of two LSB peak-to-peak.
	DitherTriangular

	ditherTypeCount
)

var ditherTypeNames = [ditherTypeCount]string{"None", "Rectangular", "Triangular"}

func (dt DitherType) String() string {
	if dt.Valid() {
		return ditherTypeNames[dt]
	}

	return fmt.Sprintf("DitherType(%d)", int(dt))
}

// Valid reports whether dt is a known dither type.
func (dt DitherType) Valid() bool {
	return dt >= 0 && dt < ditherTypeCount
}

// ParseDitherType resolves a case-insensitive name such as "tpdf" or
// "triangular".
func ParseDitherType(name string) (DitherType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "off", "":
		return DitherNone, nil
	case "rectangular", "rpdf":
		return DitherRectangular, nil
	case "triangular", "tpdf":
		return DitherTriangular, nil
	default:
		return DitherNone, fmt.Errorf("dither: unknown type %q", name)
	}
}
