package shapes

import (
	"math"
	"reflect"
	"testing"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
)

func TestLineDash(t *testing.T) {
	tests := []struct {
		name    string
		pattern uint16
		spacing float64
		want    []float64
	}{
		{"solid", SolidStipplePattern, 2, nil},
		{"half on", 0x00ff, 1, []float64{8, 8}},
		{"half off", 0xff00, 2, []float64{0, 16, 16, 0}},
		{"alternating", 0x5555, 1, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{"odd runs", 0x0f0f, 3, []float64{12, 12, 12, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineDash(tt.pattern, tt.spacing)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LineDash(%#x, %v) = %v, want %v", tt.pattern, tt.spacing, got, tt.want)
			}
			if len(got)%2 != 0 {
				t.Errorf("dash array has odd length %d", len(got))
			}
		})
	}
}

func TestAttributes_OutlineDash(t *testing.T) {
	a := DefaultAttributes()
	if a.IsStippled() || a.OutlineDash() != nil {
		t.Error("default attributes should draw a solid outline")
	}

	a.OutlineStipplePattern = 0x00ff
	if a.IsStippled() {
		t.Error("a zero stipple factor disables stippling")
	}

	a.OutlineStippleFactor = 2
	if !reflect.DeepEqual(a.OutlineDash(), []float64{16, 16}) {
		t.Errorf("OutlineDash = %v", a.OutlineDash())
	}

	c := a.Copy()
	c.OutlineWidth = 5
	if a.OutlineWidth == 5 {
		t.Error("Copy should not share state")
	}
}

func TestSetters_BumpRevision(t *testing.T) {
	circle := NewCircle(geometry.NewLocation(0, 0), 1000, nil)
	polygon := NewPolygon(nil, nil)

	steps := []struct {
		name  string
		shape Shape
		apply func()
	}{
		{"radius", circle, func() { circle.SetRadius(2000) }},
		{"center", circle, func() { circle.SetCenter(geometry.NewLocation(1, 1)) }},
		{"theta", circle, func() { circle.SetTheta(90) }},
		{"path type", circle, func() { circle.SetPathType(geometry.RhumbLine) }},
		{"edge tolerance", circle, func() { circle.SetEdgeTolerance(0.5) }},
		{"enabled", polygon, func() { polygon.SetEnabled(false) }},
		{"boundaries", polygon, func() { polygon.SetBoundaries([][]geometry.Location{locations(0, 0, 1, 1)}) }},
		{"attributes", polygon, func() { polygon.SetAttributes(nil) }},
	}

	for _, step := range steps {
		before := step.shape.Revision()
		step.apply()
		if step.shape.Revision() <= before {
			t.Errorf("%s: revision %d not bumped", step.name, step.shape.Revision())
		}
	}

	if circle.EdgeTolerance() != 0.5 || circle.PathType() != geometry.RhumbLine {
		t.Error("setters did not store their values")
	}
	circle.SetEdgeTolerance(-1)
	if circle.EdgeTolerance() != DefaultEdgeTolerance {
		t.Errorf("non positive tolerance should restore the default, got %v", circle.EdgeTolerance())
	}
	if polygon.IsEnabled() {
		t.Error("polygon should be disabled")
	}
}

func TestEllipse_Boundaries(t *testing.T) {
	g := globe.NewGlobe(nil)
	center := geometry.NewLocation(20, 30)

	e := NewEllipse(center, 2e5, 1e5, 0, nil)
	boundary := e.ComputeBoundaries(g)[0]

	if len(boundary) != DefaultEllipseIntervals+1 {
		t.Fatalf("got %d locations, want %d", len(boundary), DefaultEllipseIntervals+1)
	}
	if !boundary[0].Equals(boundary[len(boundary)-1]) {
		t.Error("ellipse should end where it starts")
	}

	radius := g.RadiusAt(center.Latitude, center.Longitude)
	for i, l := range boundary {
		d := geometry.GreatCircleDistance(center, l) * radius
		if d < 1e5-1 || d > 2e5+1 {
			t.Errorf("location %d at %v m from the center", i, d)
		}
	}

	// with no heading the major axis points east
	if boundary[0].Longitude <= center.Longitude || math.Abs(boundary[0].Latitude-center.Latitude) > 0.05 {
		t.Errorf("first location %v should lie east of the center", boundary[0])
	}

	e.SetIntervals(3)
	if got := len(e.ComputeBoundaries(g)[0]); got != MinEllipseIntervals+1 {
		t.Errorf("got %d locations, intervals should be raised to %d", got, MinEllipseIntervals)
	}

	e.SetIntervals(1 << 30)
	if e.Intervals() != MaxEllipseIntervals {
		t.Errorf("Intervals() = %d, want %d", e.Intervals(), MaxEllipseIntervals)
	}
	if got := len(e.ComputeBoundaries(g)[0]); got != MaxEllipseIntervals+1 {
		t.Errorf("got %d locations, intervals should be lowered to %d", got, MaxEllipseIntervals)
	}
}

func TestSetEdgeTolerance_Clamped(t *testing.T) {
	tests := []struct {
		name      string
		tolerance float64
		want      float64
	}{
		{"default for zero", 0, DefaultEdgeTolerance},
		{"default for negative", -3, DefaultEdgeTolerance},
		{"tiny", 1e-9, MinEdgeTolerance},
		{"in range", 0.25, 0.25},
		{"huge", 1e6, MaxEdgeTolerance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCircle(geometry.NewLocation(0, 0), 1e5, nil)
			c.SetEdgeTolerance(tt.tolerance)
			if c.EdgeTolerance() != tt.want {
				t.Errorf("EdgeTolerance() = %v, want %v", c.EdgeTolerance(), tt.want)
			}
		})
	}
}

func TestInterpolateLocations_TinyToleranceIsBounded(t *testing.T) {
	path := []geometry.Location{geometry.NewLocation(0, 0), geometry.NewLocation(10, 0)}
	result := InterpolateLocations(path, geometry.Linear, 1e-9, false)
	if limit := 4 * int(10/MinEdgeTolerance); len(result) > limit {
		t.Errorf("got %d locations, want at most %d", len(result), limit)
	}
}

func TestEllipse_Wedge(t *testing.T) {
	g := globe.NewGlobe(nil)
	center := geometry.NewLocation(0, 0)

	e := NewEllipse(center, 1e5, 1e5, 0, nil)
	e.SetTheta(90)
	boundary := e.ComputeBoundaries(g)[0]

	if len(boundary) != DefaultEllipseIntervals+2 {
		t.Fatalf("got %d locations, want %d", len(boundary), DefaultEllipseIntervals+2)
	}
	if !boundary[0].Equals(center) {
		t.Errorf("wedge should start at the center, got %v", boundary[0])
	}

	// a quarter wedge from the east axis stays in the north east quadrant
	for _, l := range boundary[1:] {
		if l.Latitude < -1e-9 || l.Longitude < -1e-9 {
			t.Errorf("location %v outside the wedge", l)
		}
	}
}

func TestRectangle_Boundaries(t *testing.T) {
	g := globe.NewGlobe(nil)
	center := geometry.NewLocation(10, 10)
	r := NewRectangle(center, 2e4, 1e4, 0, nil)

	boundary := r.ComputeBoundaries(g)[0]
	if len(boundary) != 4 {
		t.Fatalf("got %d corners", len(boundary))
	}

	sw, se, ne, nw := boundary[0], boundary[1], boundary[2], boundary[3]
	if sw.Latitude >= center.Latitude || sw.Longitude >= center.Longitude {
		t.Errorf("first corner %v should be south west of the center", sw)
	}
	if ne.Latitude <= center.Latitude || ne.Longitude <= center.Longitude {
		t.Errorf("third corner %v should be north east of the center", ne)
	}
	if math.Abs(se.Latitude-sw.Latitude) > 1e-3 || math.Abs(nw.Longitude-sw.Longitude) > 1e-3 {
		t.Errorf("unrotated rectangle should be axis aligned: %v", boundary)
	}

	width := geometry.GreatCircleDistance(sw, se) * g.RadiusAt(center.Latitude, center.Longitude)
	if math.Abs(width-2e4) > 50 {
		t.Errorf("width = %v, want about 2e4", width)
	}
}

func TestSectorShape_Boundaries(t *testing.T) {
	s := NewSectorShape(geometry.NewSector(-5, 5, 10, 20), nil)
	got := s.ComputeBoundaries(nil)[0]
	want := locations(-5, 10, 5, 10, 5, 20, -5, 20)

	if !reflect.DeepEqual(got, want) {
		t.Errorf("boundaries = %v, want %v", got, want)
	}
}

func TestPolygon_BoundariesAreCopied(t *testing.T) {
	boundaries := [][]geometry.Location{locations(0, 0, 1, 0, 1, 1)}
	p := NewPolygon(boundaries, nil)

	boundaries[0][0] = geometry.NewLocation(50, 50)
	if p.Boundaries()[0][0].Latitude != 0 {
		t.Error("polygon should not alias the caller's boundaries")
	}

	computed := p.ComputeBoundaries(nil)
	computed[0][1] = geometry.NewLocation(50, 50)
	if p.Boundaries()[0][1].Latitude != 1 {
		t.Error("computed boundaries should be a copy")
	}
}

func TestGeometryCache(t *testing.T) {
	g := globe.NewGlobe(nil)
	cache := NewGeometryCache()
	circle := NewCircle(geometry.NewLocation(0, 0), 1e4, nil)
	sector := NewSectorShape(geometry.NewSector(0, 1, 0, 1), nil)

	if _, ok := cache.Lookup(circle, g, 1); ok {
		t.Fatal("empty cache should miss")
	}
	if stale := cache.Stale([]Shape{circle, sector}, g); len(stale) != 2 {
		t.Fatalf("stale = %d, want 2", len(stale))
	}

	first, hit := cache.Get(circle, g, 1)
	if hit {
		t.Error("first Get should be a miss")
	}
	cache.Store(Prepare(sector, g), 1)

	second, hit := cache.Get(circle, g, 2)
	if !hit || second != first {
		t.Error("unchanged shape should reuse its prepared geometry")
	}

	circle.SetRadius(2e4)
	if stale := cache.Stale([]Shape{circle, sector}, g); len(stale) != 1 || stale[0] != Shape(circle) {
		t.Errorf("stale = %v, want only the circle", stale)
	}
	if _, ok := cache.Lookup(circle, globe.NewGlobe(nil), 2); ok {
		t.Error("a different globe should miss")
	}

	third, hit := cache.Get(circle, g, 2)
	if hit || third == first {
		t.Error("modified shape should be prepared again")
	}

	// the sector was last used in frame 1
	if removed := cache.Prune(2); removed != 1 {
		t.Errorf("Prune removed %d entries, want 1", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Error("Clear should empty the cache")
	}
}
