package skymatch

import (
	"math"

	"github.com/soniakeys/unit"
)

// A physical length unit, expressed as a scale relative to meters. The zero
// value is the dimensionless unit of collections projected onto the unit
// sphere; it cannot be converted to or from a physical unit.
type LengthUnit struct {
	Name  string
	Scale float64
}

var (
	Dimensionless    = LengthUnit{}
	Meter            = LengthUnit{Name: "m", Scale: 1}
	Kilometer        = LengthUnit{Name: "km", Scale: 1000}
	AstronomicalUnit = LengthUnit{Name: "AU", Scale: 1.495978707e11}
	LightYear        = LengthUnit{Name: "lyr", Scale: 9.4607304725808e15}
	Parsec           = LengthUnit{Name: "pc", Scale: 3.0856775814913673e16}
)

func (u LengthUnit) IsDimensionless() bool {
	return u.Scale == 0
}

func (u LengthUnit) String() string {
	if u.IsDimensionless() {
		return "dimensionless"
	}
	return u.Name
}

// Convert rescales a length value between units. Mixing a physical unit with
// the dimensionless unit sphere fails with a UnitError.
func Convert(value float64, from LengthUnit, to LengthUnit) (float64, error) {
	if from == to || from.IsDimensionless() && to.IsDimensionless() {
		return value, nil
	}
	if from.IsDimensionless() || to.IsDimensionless() {
		return 0, NewUnitError(from, to)
	}
	return value * from.Scale / to.Scale, nil
}

// Degrees builds an angle from a value in degrees.
func Degrees(d float64) unit.Angle {
	return unit.Angle(d * math.Pi / 180)
}

// chordLength converts a great-circle separation into the straight-line
// distance between the two points on a unit sphere. This is the exact bridge
// between angular thresholds and the euclidean metric the k-d tree queries
// operate in.
func chordLength(sep unit.Angle) float64 {
	return 2 * math.Sin(0.5*sep.Rad())
}
