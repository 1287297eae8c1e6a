package skymatch

import (
	"math"
	"sort"

	"github.com/soniakeys/coord"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Conventional cache key names for trees stored on a collection. The plain
// "kdtree" name is a compatibility shim for callers of the historical single
// cache slot; new callers should use the 3d/sky names.
const (
	CacheKey3D     = "kdtree_3d"
	CacheKeySky    = "kdtree_sky"
	LegacyCacheKey = "kdtree"
)

// CartesianTree is an immutable k-d tree over the cartesian projection of a
// coordinate collection, tagged with the length unit its points were built
// in. Nearest-neighbor queries cost O(log N) expected and radius queries
// O(log N + m) for m results.
type CartesianTree struct {
	tree *kdtree.Tree
	pts  treePoints
	unit LengthUnit
}

// NewCartesianTree builds a tree over the collection's cartesian projection
// in its own length unit. Any NaN component is rejected.
func NewCartesianTree(c *Coords) (*CartesianTree, error) {
	return newCartesianTree(c, nil)
}

func newCartesianTree(c *Coords, force *LengthUnit) (*CartesianTree, error) {
	u := c.unit
	if force != nil {
		u = *force
	}
	xyz, err := c.Cartesian(u)
	if err != nil {
		return nil, err
	}
	pts := make(treePoints, len(xyz))
	for i, p := range xyz {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			return nil, NewNaNError("catalog")
		}
		pts[i] = treePoint{x: p.X, y: p.Y, z: p.Z, id: i}
	}
	return &CartesianTree{tree: kdtree.New(pts, false), pts: pts, unit: u}, nil
}

func (t *CartesianTree) Len() int {
	return len(t.pts)
}

// Unit returns the length unit the tree's points are expressed in.
func (t *CartesianTree) Unit() LengthUnit {
	return t.unit
}

// Nearest returns the index of the nth-nearest point to p and its euclidean
// distance in the tree's unit. The caller guarantees 1 <= nth <= Len.
func (t *CartesianTree) Nearest(p coord.Cart, nth int) (int, float64) {
	q := treePoint{x: p.X, y: p.Y, z: p.Z, id: -1}
	if nth == 1 {
		got, dist := t.tree.Nearest(q)
		return got.(treePoint).id, math.Sqrt(dist)
	}
	keep := kdtree.NewNKeeper(nth)
	t.tree.NearestSet(keep, q)
	// the keeper holds the nth nearest points; its max is the nth.
	best := keep.Heap[0]
	return best.Comparable.(treePoint).id, math.Sqrt(best.Dist)
}

// Within returns the indices of all points within radius of p, ascending.
func (t *CartesianTree) Within(p coord.Cart, radius float64) []int {
	keep := kdtree.NewDistKeeper(radius * radius)
	t.tree.NearestSet(keep, treePoint{x: p.X, y: p.Y, z: p.Z, id: -1})
	ids := make([]int, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		// the keeper retains its boundary element, which has no point.
		if cd.Comparable == nil {
			continue
		}
		ids = append(ids, cd.Comparable.(treePoint).id)
	}
	sort.Ints(ids)
	return ids
}

type treeCacheMode int

const (
	noCacheMode treeCacheMode = iota
	cacheKeyMode
	useTreeMode
)

// TreeCache directs where a match or search looks for, and stores, the
// cartesian k-d tree of a catalog: not at all, under a named cache key on
// the catalog, or an already-built tree supplied by the caller.
type TreeCache struct {
	mode treeCacheMode
	key  string
	tree *CartesianTree
}

// NoCache builds a transient tree that is discarded after the call.
func NoCache() TreeCache {
	return TreeCache{mode: noCacheMode}
}

// CacheAs reuses the tree stored under key on the catalog's cache, building
// and storing it on a miss. An empty key disables caching.
func CacheAs(key string) TreeCache {
	if key == "" {
		return NoCache()
	}
	return TreeCache{mode: cacheKeyMode, key: key}
}

// UseTree bypasses both build and cache, querying the supplied tree
// directly. Nothing is stored back on the catalog.
func UseTree(t *CartesianTree) TreeCache {
	if t == nil {
		return NoCache()
	}
	return TreeCache{mode: useTreeMode, tree: t}
}

// LegacyCache caches under the historical "kdtree" slot. Compatibility shim
// for callers that predate the separate 3d and sky key names.
func LegacyCache() TreeCache {
	return CacheAs(LegacyCacheKey)
}

// keyName returns the cache key this directive stores under, or "" when the
// directive does not cache.
func (tc TreeCache) keyName() string {
	if tc.mode == cacheKeyMode {
		return tc.key
	}
	return ""
}

// cartesianTree resolves a directive against a collection: returning the
// caller's tree as-is, building a transient one, or consulting the
// collection's cache before building and storing.
func cartesianTree(c *Coords, store TreeCache, force *LengthUnit) (*CartesianTree, error) {
	switch store.mode {
	case useTreeMode:
		return store.tree, nil
	case cacheKeyMode:
		if v, ok := c.Cache().Get(store.key); ok {
			t, isTree := v.(*CartesianTree)
			if !isTree {
				return nil, NewCacheTypeError(store.key)
			}
			return t, nil
		}
		t, err := newCartesianTree(c, force)
		if err != nil {
			return nil, err
		}
		c.Cache().Set(store.key, t)
		return t, nil
	default:
		return newCartesianTree(c, force)
	}
}

// treePoint is one cartesian point tagged with its index in the source
// collection, in the form the gonum k-d tree works over.
type treePoint struct {
	x, y, z float64
	id      int
}

func (p treePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(treePoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		return p.z - q.z
	}
}

func (p treePoint) Dims() int {
	return 3
}

// Distance returns the squared euclidean distance, per the kdtree contract.
func (p treePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(treePoint)
	dx, dy, dz := p.x-q.x, p.y-q.y, p.z-q.z
	return dx*dx + dy*dy + dz*dz
}

type treePoints []treePoint

func (p treePoints) Index(i int) kdtree.Comparable {
	return p[i]
}

func (p treePoints) Len() int {
	return len(p)
}

// Pivot partitions on the deterministic median-of-medians, so neighbor
// ordering is reproducible for identical input.
func (p treePoints) Pivot(d kdtree.Dim) int {
	return treePlane{Dim: d, treePoints: p}.Pivot()
}

func (p treePoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

type treePlane struct {
	kdtree.Dim
	treePoints
}

func (p treePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.treePoints[i].x < p.treePoints[j].x
	case 1:
		return p.treePoints[i].y < p.treePoints[j].y
	default:
		return p.treePoints[i].z < p.treePoints[j].z
	}
}

func (p treePlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p treePlane) Slice(start, end int) kdtree.SortSlicer {
	p.treePoints = p.treePoints[start:end]
	return p
}

func (p treePlane) Swap(i, j int) {
	p.treePoints[i], p.treePoints[j] = p.treePoints[j], p.treePoints[i]
}
