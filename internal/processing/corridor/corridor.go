// Package corridor builds the per-attribute tolerance band used to binarize
// every class against one designated base class.
package corridor

import (
	"fmt"
	"math"

	"satpr/internal/models"
)

// MeanMode selects how the per-attribute expectation is averaged.
type MeanMode int

const (
	// MeanRealizations divides each attribute sum by the realization count.
	MeanRealizations MeanMode = iota
	// MeanLegacyAttributes divides each attribute sum by the attribute count
	// and truncates the result to a byte, the divisor older builds used.
	MeanLegacyAttributes
)

func (m MeanMode) String() string {
	switch m {
	case MeanRealizations:
		return "realizations"
	case MeanLegacyAttributes:
		return "legacy-attributes"
	default:
		return "unknown"
	}
}

// ParseMeanMode maps a configuration name onto a MeanMode.
func ParseMeanMode(name string) (MeanMode, error) {
	switch name {
	case "", "realizations":
		return MeanRealizations, nil
	case "legacy-attributes", "legacy":
		return MeanLegacyAttributes, nil
	default:
		return MeanRealizations, fmt.Errorf("unknown mean mode %q", name)
	}
}

// Corridor is the tolerance band derived from a base class. Lower and Upper
// saturate at the byte range and never wrap.
type Corridor struct {
	Expectation []float64
	Lower       []byte
	Upper       []byte
	Delta       byte
}

// Build computes the corridor of base for the given tolerance.
func Build(base *models.AttributeMatrix, delta byte, mode MeanMode) *Corridor {
	expectation := expectation(base, mode)

	lower := make([]byte, len(expectation))
	upper := make([]byte, len(expectation))
	for a, e := range expectation {
		lower[a] = saturatingSub(e, delta)
		upper[a] = saturatingAdd(e, delta)
	}

	values := make([]float64, len(expectation))
	for a, e := range expectation {
		values[a] = float64(e)
	}

	return &Corridor{
		Expectation: values,
		Lower:       lower,
		Upper:       upper,
		Delta:       delta,
	}
}

// WithDelta returns a new corridor sharing the expectation but with a different
// tolerance.
func (c *Corridor) WithDelta(delta byte) *Corridor {
	lower := make([]byte, len(c.Expectation))
	upper := make([]byte, len(c.Expectation))
	for a, e := range c.Expectation {
		lower[a] = saturatingSub(byte(e), delta)
		upper[a] = saturatingAdd(byte(e), delta)
	}

	return &Corridor{
		Expectation: c.Expectation,
		Lower:       lower,
		Upper:       upper,
		Delta:       delta,
	}
}

// Contains reports whether value lies inside the band of attribute.
func (c *Corridor) Contains(attribute int, value byte) bool {
	return value >= c.Lower[attribute] && value <= c.Upper[attribute]
}

// Attributes returns the number of attributes the corridor covers.
func (c *Corridor) Attributes() int {
	return len(c.Expectation)
}

func expectation(base *models.AttributeMatrix, mode MeanMode) []byte {
	out := make([]byte, base.Attributes)
	if base.Realizations == 0 {
		return out
	}

	for a := 0; a < base.Attributes; a++ {
		var sum uint64
		for r := 0; r < base.Realizations; r++ {
			sum += uint64(base.At(a, r))
		}

		switch mode {
		case MeanLegacyAttributes:
			out[a] = byte(sum / uint64(base.Attributes))
		default:
			out[a] = byte(sum / uint64(base.Realizations))
		}
	}

	return out
}

func saturatingSub(value, delta byte) byte {
	if delta > value {
		return 0
	}
	return value - delta
}

func saturatingAdd(value, delta byte) byte {
	if int(value)+int(delta) > math.MaxUint8 {
		return math.MaxUint8
	}
	return value + delta
}
