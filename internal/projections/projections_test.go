package projections

import (
	"math"
	"testing"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/golang/geo/r3"
)

const degreeTolerance = 1e-6

func testProjections() []globe.GeographicProjection {
	return []globe.GeographicProjection{
		NewPolarEquidistant(geometry.PoleNorth),
		NewPolarEquidistant(geometry.PoleSouth),
		NewUPS(geometry.PoleNorth),
		NewUPS(geometry.PoleSouth),
	}
}

// sign of the hemisphere handled by the projection
func hemisphere(p globe.GeographicProjection) float64 {
	switch v := p.(type) {
	case *PolarEquidistant:
		return v.Pole.Latitude() / 90
	case *UPS:
		return v.Pole.Latitude() / 90
	}
	return 1
}

func TestRoundTrip(t *testing.T) {
	for _, p := range testProjections() {
		g := globe.NewGlobe(p)
		sign := hemisphere(p)

		t.Run(p.DisplayName(), func(t *testing.T) {
			for lat := 1.0; lat < 90; lat += 7 {
				for lon := -179.0; lon < 180; lon += 23 {
					point := p.GeographicToCartesian(g, lat*sign, lon, 12)
					gotLat, gotLon, gotElevation := p.CartesianToGeographic(g, point.X, point.Y, point.Z)

					if math.Abs(gotLat-lat*sign) > degreeTolerance || math.Abs(gotLon-lon) > degreeTolerance {
						t.Fatalf("round trip of (%v, %v) gave (%v, %v)", lat*sign, lon, gotLat, gotLon)
					}
					if gotElevation != 12 {
						t.Fatalf("elevation = %v, want 12", gotElevation)
					}
				}
			}
		})
	}
}

func TestPoleIsOrigin(t *testing.T) {
	for _, p := range testProjections() {
		g := globe.NewGlobe(p)
		poleLat := 90 * hemisphere(p)

		t.Run(p.DisplayName(), func(t *testing.T) {
			point := p.GeographicToCartesian(g, poleLat, 123, 0)
			if point.X != 0 || point.Y != 0 {
				t.Errorf("pole projected to %v, want the origin", point)
			}

			lat, lon, _ := p.CartesianToGeographic(g, 0, 0, 0)
			if lat != poleLat || lon != 0 {
				t.Errorf("origin = (%v, %v), want (%v, 0)", lat, lon, poleLat)
			}
			if !p.Is2D() {
				t.Error("polar projections are 2D")
			}
		})
	}
}

func TestPolarEquidistant_DistanceFromPole(t *testing.T) {
	p := NewPolarEquidistant(geometry.PoleNorth)
	g := globe.NewGlobe(p)

	point := p.GeographicToCartesian(g, 0, 0, 0)
	want := g.EquatorialRadius * math.Pi / 2
	if math.Abs(math.Hypot(point.X, point.Y)-want) > 1e-6 {
		t.Errorf("equator distance = %v, want %v", math.Hypot(point.X, point.Y), want)
	}
	if point.Y >= 0 {
		t.Errorf("prime meridian should point down in the north projection, got %v", point)
	}

	south := NewPolarEquidistant(geometry.PoleSouth)
	point = south.GeographicToCartesian(g, 0, 0, 0)
	if point.Y <= 0 {
		t.Errorf("prime meridian should point up in the south projection, got %v", point)
	}
}

func TestGrid_MatchesSinglePoint(t *testing.T) {
	for _, p := range testProjections() {
		g := globe.NewGlobe(p)
		sign := hemisphere(p)
		sector := geometry.NewSector(10, 80, -170, 170)
		if sign < 0 {
			sector = geometry.NewSector(-80, -10, -170, 170)
		}

		t.Run(p.DisplayName(), func(t *testing.T) {
			numLat, numLon := 5, 7
			elevations := make([]float64, numLat*numLon)
			for i := range elevations {
				elevations[i] = float64(i)
			}
			result := make([]r3.Vector, numLat*numLon)
			if err := p.GeographicToCartesianGrid(g, sector, numLat, numLon, elevations, result); err != nil {
				t.Fatal(err)
			}

			deltaLat := sector.DeltaLatitude() / float64(numLat-1)
			deltaLon := sector.DeltaLongitude() / float64(numLon-1)
			for j := 0; j < numLat; j++ {
				for i := 0; i < numLon; i++ {
					index := j*numLon + i
					want := p.GeographicToCartesian(g,
						sector.MinLatitude+float64(j)*deltaLat,
						sector.MinLongitude+float64(i)*deltaLon,
						float64(index))
					if result[index].Distance(want) > 1e-3 {
						t.Fatalf("grid point %d = %v, want %v", index, result[index], want)
					}
				}
			}
		})
	}
}

func TestGrid_InvalidArguments(t *testing.T) {
	p := NewUPS(geometry.PoleNorth)
	g := globe.NewGlobe(p)

	err := p.GeographicToCartesianGrid(g, geometry.NewSector(0, 10, 0, 10), 4, 4, nil, make([]r3.Vector, 3))
	if err != globe.ErrInvalidGrid {
		t.Errorf("error = %v, want %v", err, globe.ErrInvalidGrid)
	}
}

func TestNorthTangent(t *testing.T) {
	for _, p := range testProjections() {
		g := globe.NewGlobe(p)
		sign := hemisphere(p)

		t.Run(p.DisplayName(), func(t *testing.T) {
			for _, lon := range []float64{-135, -30, 0, 60, 170} {
				lat := 45 * sign
				point := p.GeographicToCartesian(g, lat, lon, 0)
				fromLocation := p.NorthTangentAtLocation(g, lat, lon)
				fromPoint := p.NorthTangentAtPoint(g, point.X, point.Y, point.Z)

				if fromLocation.Distance(fromPoint) > 1e-9 {
					t.Errorf("tangent at lon %v: from location %v, from point %v", lon, fromLocation, fromPoint)
				}

				// moving north must follow the tangent
				ahead := p.GeographicToCartesian(g, lat+0.01, lon, 0)
				if ahead.Sub(point).Dot(fromLocation) <= 0 {
					t.Errorf("tangent at lon %v does not point north", lon)
				}
			}

			if got := p.NorthTangentAtPoint(g, 0, 0, 0); got != (r3.Vector{X: 0, Y: 1, Z: 0}) {
				t.Errorf("tangent at the pole = %v, want the y axis", got)
			}
		})
	}
}

func TestUPS_Limits(t *testing.T) {
	north := NewUPS(geometry.PoleNorth).ProjectionLimits()
	if north == nil || *north != geometry.NewSector(0, 90, -180, 180) {
		t.Errorf("north limits = %v", north)
	}
	south := NewUPS(geometry.PoleSouth).ProjectionLimits()
	if south == nil || *south != geometry.NewSector(-90, 0, -180, 180) {
		t.Errorf("south limits = %v", south)
	}
	if NewPolarEquidistant(geometry.PoleNorth).ProjectionLimits() != nil {
		t.Error("equidistant projection should have no limits")
	}
}
