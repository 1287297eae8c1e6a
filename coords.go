package skymatch

import (
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
)

// Coords is an ordered collection of points on the celestial sphere, each
// with a longitude/latitude position and an optional radial distance. A
// collection is either an array of any length or a single scalar point;
// operations that need an array reject scalar collections.
type Coords struct {
	frame  Frame
	points coord.SphrS
	dist   []float64
	unit   LengthUnit
	scalar bool
	cache  *Cache
}

// NewCoords creates an array collection on the unit sphere, with no radial
// distance information.
func NewCoords(frame Frame, points coord.SphrS) *Coords {
	return &Coords{frame: frame, points: points}
}

// NewCoords3D creates an array collection with a radial distance per point.
func NewCoords3D(frame Frame, points coord.SphrS, distances []float64, u LengthUnit) (*Coords, error) {
	if len(points) != len(distances) {
		return nil, ErrLengthMismatch
	}
	return &Coords{frame: frame, points: points, dist: distances, unit: u}, nil
}

// NewCoordsEqua creates an array collection from equatorial coordinates.
func NewCoordsEqua(frame Frame, e coord.EquaS) *Coords {
	return NewCoords(frame, e.SphrS())
}

// NewPoint creates a scalar collection holding a single point on the unit
// sphere.
func NewPoint(frame Frame, lon, lat unit.Angle) *Coords {
	return &Coords{
		frame:  frame,
		points: coord.SphrS{{Lon: lon, Lat: lat}},
		scalar: true,
	}
}

// NewPoint3D creates a scalar collection holding a single point with a
// radial distance.
func NewPoint3D(frame Frame, lon, lat unit.Angle, distance float64, u LengthUnit) *Coords {
	return &Coords{
		frame:  frame,
		points: coord.SphrS{{Lon: lon, Lat: lat}},
		dist:   []float64{distance},
		unit:   u,
		scalar: true,
	}
}

func (c *Coords) Len() int {
	return len(c.points)
}

func (c *Coords) IsScalar() bool {
	return c.scalar
}

// NDim reports the dimensionality of the collection: 0 for a scalar point,
// 1 for an array.
func (c *Coords) NDim() int {
	if c.scalar {
		return 0
	}
	return 1
}

// HasDistance reports whether the collection carries true radial distances,
// as opposed to lying on the unit sphere.
func (c *Coords) HasDistance() bool {
	return c.dist != nil
}

func (c *Coords) Frame() Frame {
	return c.frame
}

func (c *Coords) Unit() LengthUnit {
	return c.unit
}

// At returns the angular position of the i-th point.
func (c *Coords) At(i int) coord.Sphr {
	return c.points[i]
}

// DistanceAt returns the radial distance of the i-th point, or 1 for
// collections on the unit sphere.
func (c *Coords) DistanceAt(i int) float64 {
	if c.dist == nil {
		return 1
	}
	return c.dist[i]
}

// Cache returns the artifact cache owned by this collection, allocating it
// on first use.
func (c *Coords) Cache() *Cache {
	if c.cache == nil {
		c.cache = NewCache()
	}
	return c.cache
}

// TransformTo reprojects the collection into the target frame. Shape, point
// count and radial distances are preserved; the result owns a fresh cache.
func (c *Coords) TransformTo(target Frame) *Coords {
	out := &Coords{frame: target, unit: c.unit, scalar: c.scalar}
	if c.dist != nil {
		out.dist = append([]float64(nil), c.dist...)
	}
	if c.frame.equal(target) {
		out.points = append(coord.SphrS{}, c.points...)
		return out
	}
	rotated := rotateFrame(c.frame, target, unitCartS(c.points))
	var s coord.SphrS
	s.FromCartS(rotated)
	out.points = s
	return out
}

// UnitSphere strips radial distance, projecting the collection onto the unit
// sphere in the same frame. The result owns a fresh cache.
func (c *Coords) UnitSphere() *Coords {
	return &Coords{
		frame:  c.frame,
		points: append(coord.SphrS{}, c.points...),
		scalar: c.scalar,
	}
}

// Take gathers a new collection from the points at the given indices.
func (c *Coords) Take(idx []int) *Coords {
	out := &Coords{frame: c.frame, unit: c.unit}
	out.points = make(coord.SphrS, len(idx))
	for i, j := range idx {
		out.points[i] = c.points[j]
	}
	if c.dist != nil {
		out.dist = make([]float64, len(idx))
		for i, j := range idx {
			out.dist[i] = c.dist[j]
		}
	}
	return out
}

// Separation returns the great-circle angular separation between paired
// points of the two collections. The other collection is brought into this
// one's frame first. Lengths must match, or either side may be a single
// point broadcast against the other.
func (c *Coords) Separation(o *Coords) ([]unit.Angle, error) {
	o = o.TransformTo(c.frame)
	n, err := broadcastLen(c.Len(), o.Len())
	if err != nil {
		return nil, err
	}
	a := unitCartS(c.points)
	b := unitCartS(o.points)
	seps := make([]unit.Angle, n)
	for i := 0; i < n; i++ {
		p := a[min(i, len(a)-1)]
		q := b[min(i, len(b)-1)]
		var x coord.Cart
		x.Cross(&p, &q)
		seps[i] = unit.Angle(math.Atan2(math.Sqrt(x.Square()), dot(p, q)))
	}
	return seps, nil
}

// Separation3D returns the euclidean distance between paired points of the
// two collections, in this collection's length unit. Both sides must carry
// true radial distances; use HasDistance to check beforehand.
func (c *Coords) Separation3D(o *Coords) ([]float64, LengthUnit, error) {
	if !c.HasDistance() || !o.HasDistance() {
		return nil, Dimensionless, ErrNoDistance
	}
	o = o.TransformTo(c.frame)
	n, err := broadcastLen(c.Len(), o.Len())
	if err != nil {
		return nil, Dimensionless, err
	}
	a, err := c.Cartesian(c.unit)
	if err != nil {
		return nil, Dimensionless, err
	}
	b, err := o.Cartesian(c.unit)
	if err != nil {
		return nil, Dimensionless, err
	}
	dists := make([]float64, n)
	for i := 0; i < n; i++ {
		p := a[min(i, len(a)-1)]
		q := b[min(i, len(b)-1)]
		dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
		dists[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return dists, c.unit, nil
}

// Cartesian returns the xyz projection of each point in the requested length
// unit, with radius 1 for collections on the unit sphere.
func (c *Coords) Cartesian(u LengthUnit) ([]coord.Cart, error) {
	pts := unitCartS(c.points)
	out := make([]coord.Cart, len(pts))
	for i, p := range pts {
		r := 1.0
		if c.dist != nil {
			r = c.dist[i]
		}
		r, err := Convert(r, c.unit, u)
		if err != nil {
			return nil, err
		}
		out[i] = coord.Cart{X: p.X * r, Y: p.Y * r, Z: p.Z * r}
	}
	return out, nil
}

func unitCartS(s coord.SphrS) coord.CartS {
	var c coord.CartS
	return c.FromSphrS(s)
}

func dot(a, b coord.Cart) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func broadcastLen(n1, n2 int) (int, error) {
	if n1 == n2 || n2 == 1 {
		return n1, nil
	}
	if n1 == 1 {
		return n2, nil
	}
	return 0, ErrLengthMismatch
}
