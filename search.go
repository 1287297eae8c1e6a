package skymatch

import (
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
)

// PairResult is the outcome of a radius pair search: parallel slices with
// one entry per matched pair. Idx1 indexes the first collection and is
// non-decreasing; Idx2 indexes the second. Sep2D is the on-sky separation
// of each pair and Dist3D the euclidean distance in DistUnit.
type PairResult struct {
	Idx1     []int
	Idx2     []int
	Sep2D    []unit.Angle
	Dist3D   []float64
	DistUnit LengthUnit
}

// DistanceLimit is a physical search radius: either one value for every
// point or one value per point of the first collection.
type DistanceLimit struct {
	values []float64
	unit   LengthUnit
	scalar bool
}

func FixedDistance(value float64, u LengthUnit) DistanceLimit {
	return DistanceLimit{values: []float64{value}, unit: u, scalar: true}
}

func PerPointDistances(values []float64, u LengthUnit) DistanceLimit {
	return DistanceLimit{values: values, unit: u}
}

// SeparationLimit is an on-sky search radius: either one angle for every
// point or one angle per point of the first collection.
type SeparationLimit struct {
	angles []unit.Angle
	scalar bool
}

func FixedSeparation(a unit.Angle) SeparationLimit {
	return SeparationLimit{angles: []unit.Angle{a}, scalar: true}
}

func PerPointSeparations(as []unit.Angle) SeparationLimit {
	return SeparationLimit{angles: as}
}

// SearchAround3D finds all pairs of points between coords1 and coords2
// whose euclidean distance is within the limit. Both collections must be
// one-dimensional arrays.
//
// By convention coords2 is the catalog: coords1 is transformed into its
// frame, and the tree built over coords2 is what the store directive
// caches (CacheAs(CacheKey3D) conventionally). The operation is symmetric
// apart from that caching.
func SearchAround3D(coords1, coords2 *Coords, limit DistanceLimit, store TreeCache) (PairResult, error) {
	if err := checkSearchDims("SearchAround3D", coords1, coords2); err != nil {
		return PairResult{}, err
	}
	if coords1.Len() == 0 || coords2.Len() == 0 {
		return emptyPairResult(coords1.unit), nil
	}

	kdt2, err := cartesianTree(coords2, store, nil)
	if err != nil {
		return PairResult{}, err
	}
	cunit := kdt2.Unit()

	c1t := coords1.TransformTo(coords2.frame)
	xyz1, err := searchPoints(c1t, cunit)
	if err != nil {
		return PairResult{}, err
	}

	radii, err := limitRadii(limit, len(xyz1), cunit)
	if err != nil {
		return PairResult{}, err
	}
	idx1, idx2 := collectPairs(xyz1, kdt2, radii)

	g1 := c1t.Take(idx1)
	g2 := coords2.Take(idx2)
	sep2d, err := g1.Separation(g2)
	if err != nil {
		return PairResult{}, err
	}
	dist3d, du, err := g1.Separation3D(g2)
	if err != nil {
		return PairResult{}, err
	}
	return PairResult{Idx1: idx1, Idx2: idx2, Sep2D: sep2d, Dist3D: dist3d, DistUnit: du}, nil
}

// SearchAroundSky finds all pairs of points between coords1 and coords2
// whose on-sky separation is within the limit. Both collections must be
// one-dimensional arrays.
//
// Both sides are projected onto the unit sphere and the angular limit is
// converted to the equivalent chord length, since the tree queries run in
// euclidean space. The projected catalog tree is cached on coords2 per the
// store directive (CacheAs(CacheKeySky) conventionally). Dist3D comes from
// the original coordinates when both sides carry distances, else it is the
// unit-sphere chord of the separation.
func SearchAroundSky(coords1, coords2 *Coords, limit SeparationLimit, store TreeCache) (PairResult, error) {
	if err := checkSearchDims("SearchAroundSky", coords1, coords2); err != nil {
		return PairResult{}, err
	}
	if coords1.Len() == 0 || coords2.Len() == 0 {
		u := Dimensionless
		if coords1.HasDistance() && coords2.HasDistance() {
			u = coords1.unit
		}
		return emptyPairResult(u), nil
	}

	c1t := coords1.TransformTo(coords2.frame)
	xyz1, err := searchPoints(c1t.UnitSphere(), Dimensionless)
	if err != nil {
		return PairResult{}, err
	}

	// Catalog-side tree: reuse one cached on coords2 under the requested
	// key, else build from the projection and store it there.
	var kdt2 *CartesianTree
	key := store.keyName()
	if store.mode == useTreeMode {
		kdt2 = store.tree
	} else if key != "" {
		if v, ok := coords2.Cache().Get(key); ok {
			t, isTree := v.(*CartesianTree)
			if !isTree {
				return PairResult{}, NewCacheTypeError(key)
			}
			kdt2 = t
		}
	}
	if kdt2 == nil {
		kdt2, err = newCartesianTree(coords2.UnitSphere(), nil)
		if err != nil {
			return PairResult{}, err
		}
		if key != "" {
			coords2.Cache().Set(key, kdt2)
		}
	}

	radii, err := chordRadii(limit, len(xyz1))
	if err != nil {
		return PairResult{}, err
	}
	idx1, idx2 := collectPairs(xyz1, kdt2, radii)

	g1 := c1t.Take(idx1)
	g2 := coords2.Take(idx2)
	sep2d, err := g1.Separation(g2)
	if err != nil {
		return PairResult{}, err
	}

	if coords1.HasDistance() && coords2.HasDistance() {
		dist3d, du, err := g1.Separation3D(g2)
		if err != nil {
			return PairResult{}, err
		}
		return PairResult{Idx1: idx1, Idx2: idx2, Sep2D: sep2d, Dist3D: dist3d, DistUnit: du}, nil
	}
	// no true distances anywhere, so report the unit-sphere chord.
	dist3d := make([]float64, len(sep2d))
	for i, s := range sep2d {
		dist3d[i] = chordLength(s)
	}
	return PairResult{Idx1: idx1, Idx2: idx2, Sep2D: sep2d, Dist3D: dist3d, DistUnit: Dimensionless}, nil
}

// searchPoints converts the search side to cartesian in the given unit,
// rejecting NaN coordinates. Order follows the collection.
func searchPoints(c *Coords, u LengthUnit) ([]coord.Cart, error) {
	xyz, err := c.Cartesian(u)
	if err != nil {
		return nil, err
	}
	for _, p := range xyz {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			return nil, NewNaNError("matching")
		}
	}
	return xyz, nil
}

// collectPairs walks the search points in collection order, gathering the
// catalog tree's points within each radius. Appending i once per match
// makes Idx1 non-decreasing by construction.
func collectPairs(queries []coord.Cart, kdt *CartesianTree, radii []float64) ([]int, []int) {
	idx1 := make([]int, 0)
	idx2 := make([]int, 0)
	for i, q := range queries {
		matches := kdt.Within(q, radii[i])
		for _, j := range matches {
			idx1 = append(idx1, i)
			idx2 = append(idx2, j)
		}
	}
	return idx1, idx2
}

// limitRadii expands a distance limit to one radius per point in the
// search unit.
func limitRadii(limit DistanceLimit, points int, cunit LengthUnit) ([]float64, error) {
	if limit.scalar {
		r, err := Convert(limit.values[0], limit.unit, cunit)
		if err != nil {
			return nil, err
		}
		radii := make([]float64, points)
		for i := range radii {
			radii[i] = r
		}
		return radii, nil
	}
	if len(limit.values) != points {
		return nil, NewLimitError(points, len(limit.values))
	}
	radii := make([]float64, points)
	for i, v := range limit.values {
		r, err := Convert(v, limit.unit, cunit)
		if err != nil {
			return nil, err
		}
		radii[i] = r
	}
	return radii, nil
}

// chordRadii expands a separation limit to one unit-sphere chord radius
// per point.
func chordRadii(limit SeparationLimit, points int) ([]float64, error) {
	if limit.scalar {
		r := chordLength(limit.angles[0])
		radii := make([]float64, points)
		for i := range radii {
			radii[i] = r
		}
		return radii, nil
	}
	if len(limit.angles) != points {
		return nil, NewLimitError(points, len(limit.angles))
	}
	radii := make([]float64, points)
	for i, a := range limit.angles {
		radii[i] = chordLength(a)
	}
	return radii, nil
}

func checkSearchDims(op string, c1, c2 *Coords) error {
	if c1.NDim() != 1 || c2.NDim() != 1 {
		return NewDimensionError(op, c1.IsScalar() || c2.IsScalar())
	}
	return nil
}

func emptyPairResult(u LengthUnit) PairResult {
	return PairResult{
		Idx1:     []int{},
		Idx2:     []int{},
		Sep2D:    []unit.Angle{},
		Dist3D:   []float64{},
		DistUnit: u,
	}
}
