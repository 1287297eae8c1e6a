package skymatch

import (
	"errors"
	"math"
	"testing"

	"github.com/soniakeys/coord"
)

// equatorLine builds a unit-sphere catalog of n points one degree apart
// along the equator.
func equatorLine(n int) *Coords {
	pts := make(coord.SphrS, n)
	for i := range pts {
		pts[i] = sph(float64(i), 0)
	}
	return NewCoords(ICRS, pts)
}

func cartOf(s coord.Sphr) coord.Cart {
	return unitCartS(coord.SphrS{s})[0]
}

func TestCartesianTreeNearest(t *testing.T) {
	kdt, err := NewCartesianTree(equatorLine(5))
	if err != nil {
		t.Fatal(err)
	}
	if kdt.Len() != 5 {
		t.Fatalf("expected 5 points in tree, got %d", kdt.Len())
	}

	testCases := []struct {
		name     string
		query    coord.Sphr
		nth      int
		expectId int
	}{
		{"nearest", sph(0.4, 0), 1, 0},
		{"nearest other side", sph(0.6, 0), 1, 1},
		{"second nearest", sph(0.4, 0), 2, 1},
		{"third nearest", sph(0.4, 0), 3, 2},
		{"exact hit", sph(3, 0), 1, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, dist := kdt.Nearest(cartOf(tc.query), tc.nth)
			if id != tc.expectId {
				t.Errorf("expected index %d, got %d", tc.expectId, id)
			}
			want := chordLength(Degrees(math.Abs(tc.query.Lon.Rad()*180/math.Pi - float64(tc.expectId))))
			checkFloat(t, dist, want, 1e-9)
		})
	}
}

func TestCartesianTreeWithin(t *testing.T) {
	kdt, err := NewCartesianTree(equatorLine(5))
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name      string
		query     coord.Sphr
		radiusDeg float64
		expect    []int
	}{
		{"two neighbors", sph(0, 0), 1.5, []int{0, 1}},
		{"centered", sph(2, 0), 1.1, []int{1, 2, 3}},
		{"none", sph(90, 0), 1, []int{}},
		{"all", sph(2, 0), 10, []int{0, 1, 2, 3, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := kdt.Within(cartOf(tc.query), chordLength(Degrees(tc.radiusDeg)))
			if len(got) != len(tc.expect) {
				t.Fatalf("expected ids %v, got %v", tc.expect, got)
			}
			for i := range got {
				if got[i] != tc.expect[i] {
					t.Fatalf("expected ids %v, got %v", tc.expect, got)
				}
			}
		})
	}
}

func TestCartesianTreeRejectsNaN(t *testing.T) {
	bad := NewCoords(ICRS, coord.SphrS{sph(0, 0), {Lon: Degrees(1), Lat: Degrees(math.NaN())}})
	_, err := NewCartesianTree(bad)
	var ne *NaNError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NaNError, got %v", err)
	}
	if ne.Role != "catalog" {
		t.Errorf("expected catalog role, got %q", ne.Role)
	}
}

func TestCartesianTreeForcedUnit(t *testing.T) {
	c, err := NewCoords3D(ICRS, coord.SphrS{sph(0, 0)}, []float64{2000}, Meter)
	if err != nil {
		t.Fatal(err)
	}
	km := Kilometer
	kdt, err := newCartesianTree(c, &km)
	if err != nil {
		t.Fatal(err)
	}
	if kdt.Unit() != Kilometer {
		t.Errorf("expected unit %v, got %v", Kilometer, kdt.Unit())
	}
	checkFloat(t, kdt.pts[0].x, 2, 1e-12)
}

func TestCartesianTreeCaching(t *testing.T) {
	t.Run("stores under key", func(t *testing.T) {
		c := equatorLine(4)
		kdt, err := cartesianTree(c, CacheAs(CacheKey3D), nil)
		if err != nil {
			t.Fatal(err)
		}
		v, ok := c.Cache().Get(CacheKey3D)
		if !ok {
			t.Fatal("expected tree stored in cache")
		}
		if v.(*CartesianTree) != kdt {
			t.Error("cached tree is not the returned tree")
		}
		again, err := cartesianTree(c, CacheAs(CacheKey3D), nil)
		if err != nil {
			t.Fatal(err)
		}
		if again != kdt {
			t.Error("second lookup rebuilt the tree instead of reusing it")
		}
	})

	t.Run("no cache", func(t *testing.T) {
		c := equatorLine(4)
		if _, err := cartesianTree(c, NoCache(), nil); err != nil {
			t.Fatal(err)
		}
		if c.Cache().Len() != 0 {
			t.Errorf("expected empty cache, found keys %v", c.Cache().Keys())
		}
	})

	t.Run("empty key means no cache", func(t *testing.T) {
		c := equatorLine(4)
		if _, err := cartesianTree(c, CacheAs(""), nil); err != nil {
			t.Fatal(err)
		}
		if c.Cache().Len() != 0 {
			t.Errorf("expected empty cache, found keys %v", c.Cache().Keys())
		}
	})

	t.Run("use existing tree", func(t *testing.T) {
		built, err := NewCartesianTree(equatorLine(6))
		if err != nil {
			t.Fatal(err)
		}
		c := equatorLine(4)
		got, err := cartesianTree(c, UseTree(built), nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != built {
			t.Error("expected the supplied tree back")
		}
		if c.Cache().Len() != 0 {
			t.Error("supplied tree should not be stored on the collection")
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		c := equatorLine(4)
		c.Cache().Set("poisoned", "not a tree")
		_, err := cartesianTree(c, CacheAs("poisoned"), nil)
		var cte *CacheTypeError
		if !errors.As(err, &cte) {
			t.Fatalf("expected CacheTypeError, got %v", err)
		}
		if cte.Key != "poisoned" {
			t.Errorf("expected error to name key 'poisoned', got %q", cte.Key)
		}
	})

	t.Run("legacy alias", func(t *testing.T) {
		c := equatorLine(4)
		if _, err := cartesianTree(c, LegacyCache(), nil); err != nil {
			t.Fatal(err)
		}
		if _, ok := c.Cache().Get(LegacyCacheKey); !ok {
			t.Errorf("expected tree under %q, found keys %v", LegacyCacheKey, c.Cache().Keys())
		}
	})
}
