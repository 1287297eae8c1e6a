package skymatch

import (
	"github.com/owlpinetech/flatsphere"
	"github.com/owlpinetech/healpix"
)

// PixelIndices assigns each point of the collection to a HEALPix pixel at
// the given order and scheme. Partitioning two catalogs by pixel lets large
// cross-matches run cell by cell instead of all at once.
func PixelIndices(c *Coords, order healpix.HealpixOrder, scheme healpix.HealpixScheme) ([]int, error) {
	if c.IsScalar() {
		return nil, NewDimensionError("PixelIndices", true)
	}
	ids := make([]int, c.Len())
	for i, p := range c.points {
		ids[i] = healpix.NewLatLonCoordinate(p.Lat.Rad(), p.Lon.Rad()).PixelId(order, scheme)
	}
	return ids, nil
}

// GroupByPixel buckets point indices by their HEALPix pixel.
func GroupByPixel(c *Coords, order healpix.HealpixOrder, scheme healpix.HealpixScheme) (map[int][]int, error) {
	ids, err := PixelIndices(c, order, scheme)
	if err != nil {
		return nil, err
	}
	groups := map[int][]int{}
	for i, id := range ids {
		groups[id] = append(groups[id], i)
	}
	return groups, nil
}

type PlanarPoint struct {
	X float64
	Y float64
}

// ProjectPoints maps each point of the collection onto the plane of the
// given projection, for plotting or planar binning of match results.
func ProjectPoints(c *Coords, proj flatsphere.Projection) ([]PlanarPoint, error) {
	if c.IsScalar() {
		return nil, NewDimensionError("ProjectPoints", true)
	}
	out := make([]PlanarPoint, c.Len())
	for i, p := range c.points {
		x, y := proj.Project(p.Lat.Rad(), p.Lon.Rad())
		out[i] = PlanarPoint{X: x, Y: y}
	}
	return out, nil
}
