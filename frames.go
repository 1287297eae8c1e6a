package skymatch

import (
	"github.com/soniakeys/coord"
)

// A Frame names an orientation of the celestial sphere. Orientation is held
// as the rotation taking ICRS vectors into the frame, so any frame-to-frame
// conversion composes through ICRS with one transpose.
type Frame struct {
	Name string
	rot  coord.M3
}

func NewFrame(name string, rotation coord.M3) Frame {
	return Frame{Name: name, rot: rotation}
}

var (
	ICRS = Frame{Name: "icrs", rot: coord.M3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}}

	// IAU 1958 galactic frame, rotation matrix relative to ICRS.
	Galactic = Frame{Name: "galactic", rot: coord.M3{
		-0.0548755604162154, -0.8734370902348850, -0.4838350155487132,
		0.4941094278755837, -0.4448296299600112, 0.7469822444972189,
		-0.8676661490190047, -0.1980763734312015, 0.4559837761750669,
	}}

	// Mean ecliptic of J2000, obliquity 23.4392911 degrees.
	Ecliptic = Frame{Name: "ecliptic", rot: coord.M3{
		1, 0, 0,
		0, 0.9174820620691818, 0.3977771559319137,
		0, -0.3977771559319137, 0.9174820620691818,
	}}
)

func (f Frame) equal(g Frame) bool {
	return f.Name == g.Name && f.rot == g.rot
}

// rotate carries unit vectors from frame f into frame g.
func rotateFrame(f, g Frame, pts coord.CartS) coord.CartS {
	var inv coord.M3
	inv.Transpose(&f.rot)
	var toBase, toTarget coord.CartS
	base := toBase.Mult3S(&inv, pts)
	return toTarget.Mult3S(&g.rot, base)
}
