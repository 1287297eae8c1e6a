package skymatch

import (
	"errors"
	"fmt"
)

var (
	ErrScalarCatalog  = errors.New("catalog for coordinate matching cannot be a scalar or length-0")
	ErrNoDistance     = errors.New("coordinates do not carry distance information")
	ErrLengthMismatch = errors.New("coordinate collections have mismatched lengths")
)

// NaNError reports NaN components found in the cartesian projection of a
// coordinate collection. Indexing or querying with NaN would silently return
// meaningless neighbors, so it is rejected up front.
type NaNError struct {
	Role string
}

func NewNaNError(role string) *NaNError {
	return &NaNError{Role: role}
}

func (e NaNError) Error() string {
	return fmt.Sprintf("%s coordinates cannot contain NaN entries", e.Role)
}

// DimensionError reports a pair-search call on coordinates that are not
// one-dimensional arrays.
type DimensionError struct {
	Op     string
	Scalar bool
}

func NewDimensionError(op string, scalar bool) *DimensionError {
	return &DimensionError{Op: op, Scalar: scalar}
}

func (e DimensionError) Error() string {
	msg := fmt.Sprintf("%s only supports 1-dimensional coordinate arrays", e.Op)
	if e.Scalar {
		msg += "; for scalar coordinates compare Separation or Separation3D against the limit directly"
	}
	return msg
}

// CacheTypeError reports a cache entry found under a tree key that is not
// actually a cartesian k-d tree.
type CacheTypeError struct {
	Key string
}

func NewCacheTypeError(key string) *CacheTypeError {
	return &CacheTypeError{Key: key}
}

func (e CacheTypeError) Error() string {
	return fmt.Sprintf("cache entry '%s' is not a cartesian k-d tree", e.Key)
}

// LimitError reports a per-point search limit whose length does not match the
// coordinate array it applies to.
type LimitError struct {
	Points int
	Limits int
}

func NewLimitError(points, limits int) *LimitError {
	return &LimitError{Points: points, Limits: limits}
}

func (e LimitError) Error() string {
	return fmt.Sprintf("per-point limit length %d does not match coordinate length %d", e.Limits, e.Points)
}

// NeighborError reports a neighbor rank outside the valid range for the
// catalog being matched against.
type NeighborError struct {
	Nth  int
	Size int
}

func NewNeighborError(nth, size int) *NeighborError {
	return &NeighborError{Nth: nth, Size: size}
}

func (e NeighborError) Error() string {
	return fmt.Sprintf("cannot take neighbor %d from a catalog of %d points", e.Nth, e.Size)
}

// UnitError reports a conversion between incompatible length units, such as
// a physical distance and the dimensionless unit sphere.
type UnitError struct {
	From LengthUnit
	To   LengthUnit
}

func NewUnitError(from, to LengthUnit) *UnitError {
	return &UnitError{From: from, To: to}
}

func (e UnitError) Error() string {
	return fmt.Sprintf("cannot convert distances from %s to %s", e.From, e.To)
}
