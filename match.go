package skymatch

import (
	"math"

	"github.com/soniakeys/unit"
)

// MatchResult is the outcome of a nearest-neighbor match: for each query
// point, the index of the matched catalog point, the on-sky separation to
// it, and the euclidean distance in DistUnit. Slices have one entry per
// query point (a scalar query yields length-1 slices).
type MatchResult struct {
	Idx      []int
	Sep2D    []unit.Angle
	Dist3D   []float64
	DistUnit LengthUnit
}

// MatchCoordinates3D finds, for each point of match, the nth-nearest point
// of catalog in 3-dimensional space. The 3d match differs from the on-sky
// match only when radial distances are set on either side.
//
// nth is normally 1; use 2 when matching a catalog against itself, since
// every point then finds itself at rank 1. The tree built over the catalog
// is cached per the store directive; CacheAs(CacheKey3D) is the
// conventional choice.
func MatchCoordinates3D(match, catalog *Coords, nth int, store TreeCache) (MatchResult, error) {
	if catalog.IsScalar() || catalog.Len() < 1 {
		return MatchResult{}, ErrScalarCatalog
	}
	if nth < 1 || nth > catalog.Len() {
		return MatchResult{}, NewNeighborError(nth, catalog.Len())
	}
	kdt, err := cartesianTree(catalog, store, nil)
	if err != nil {
		return MatchResult{}, err
	}
	return matchAgainst(kdt, match, catalog, nth)
}

// MatchCoordinatesSky finds, for each point of match, the nth-nearest point
// of catalog on the sky. Both sides are projected onto the unit sphere
// before querying, so radial distance has no effect on the ranking.
//
// When both sides carry true distances, Dist3D is recomputed from the
// original coordinates; otherwise it is the chord distance on the unit
// sphere. A tree built over the projected catalog is stored back on the
// original catalog under the directive's key, so repeated sky matches reuse
// it; CacheAs(CacheKeySky) is the conventional choice.
func MatchCoordinatesSky(match, catalog *Coords, nth int, store TreeCache) (MatchResult, error) {
	if catalog.IsScalar() || catalog.Len() < 1 {
		return MatchResult{}, ErrScalarCatalog
	}
	if nth < 1 || nth > catalog.Len() {
		return MatchResult{}, NewNeighborError(nth, catalog.Len())
	}

	newmatch := match.TransformTo(catalog.frame)
	umatch := newmatch.UnitSphere()
	ucat := catalog.UnitSphere()

	// A tree cached on the original catalog under a sky key was built from
	// the projected points, so it can be used directly.
	var kdt *CartesianTree
	key := store.keyName()
	if key != "" {
		if v, ok := catalog.Cache().Get(key); ok {
			t, isTree := v.(*CartesianTree)
			if !isTree {
				return MatchResult{}, NewCacheTypeError(key)
			}
			kdt = t
		}
	} else if store.mode == useTreeMode {
		kdt = store.tree
	}
	if kdt == nil {
		var err error
		kdt, err = newCartesianTree(ucat, nil)
		if err != nil {
			return MatchResult{}, err
		}
	}

	res, err := matchAgainst(kdt, umatch, ucat, nth)
	if err != nil {
		return MatchResult{}, err
	}

	// The distances from the unit-sphere query are chord lengths; replace
	// them with true separations when both sides have distance data.
	if catalog.HasDistance() && newmatch.HasDistance() {
		d3, du, err := catalog.Take(res.Idx).Separation3D(newmatch)
		if err != nil {
			return MatchResult{}, err
		}
		res.Dist3D = d3
		res.DistUnit = du
	}

	if key != "" {
		catalog.Cache().Set(key, kdt)
	}
	return res, nil
}

// matchAgainst runs the per-point nth-nearest queries of match against the
// catalog's tree, with the query converted to the tree's unit first.
func matchAgainst(kdt *CartesianTree, match, catalog *Coords, nth int) (MatchResult, error) {
	m := match.TransformTo(catalog.frame)
	xyz, err := m.Cartesian(kdt.unit)
	if err != nil {
		return MatchResult{}, err
	}
	for _, p := range xyz {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			return MatchResult{}, NewNaNError("matching")
		}
	}

	idx := make([]int, len(xyz))
	dist := make([]float64, len(xyz))
	for i, p := range xyz {
		idx[i], dist[i] = kdt.Nearest(p, nth)
	}

	sep, err := catalog.Take(idx).Separation(m)
	if err != nil {
		return MatchResult{}, err
	}
	return MatchResult{Idx: idx, Sep2D: sep, Dist3D: dist, DistUnit: kdt.unit}, nil
}
