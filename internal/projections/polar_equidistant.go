package projections

import (
	"math"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"seehuhn.de/go/geom/vec"
)

// below this distance in meters from the origin a point is treated as the pole
const poleRadiusThreshold = 1.0e-4

// Polar equidistant projection centered on either pole.
// Formulas from "Map Projections -- A Working Manual", Snyder, USGS paper 1395, pg. 195/196.
type PolarEquidistant struct {
	Pole geometry.Pole
}

func NewPolarEquidistant(pole geometry.Pole) *PolarEquidistant {
	if pole != geometry.PoleSouth {
		pole = geometry.PoleNorth
	}
	return &PolarEquidistant{Pole: pole}
}

func (p *PolarEquidistant) north() bool {
	return p.Pole != geometry.PoleSouth
}

func (p *PolarEquidistant) DisplayName() string {
	if p.north() {
		return "North Polar"
	}
	return "South Polar"
}

func (p *PolarEquidistant) Is2D() bool {
	return true
}

func (p *PolarEquidistant) ProjectionLimits() *geometry.Sector {
	return nil
}

// Planar coordinates of a location, in meters from the pole
func (p *PolarEquidistant) project(g *globe.Globe, latitude, longitude float64) vec.Vec2 {
	if latitude == p.Pole.Latitude() {
		return vec.Vec2{}
	}

	// -1 for the north pole, 1 for the south pole
	nsf := 1.0
	if p.north() {
		nsf = -1
	}

	lat := latitude * s1.Degree.Radians()
	lon := longitude * s1.Degree.Radians()
	a := g.EquatorialRadius * (math.Pi/2 + lat*nsf)

	return vec.Vec2{X: a * math.Sin(lon), Y: a * math.Cos(lon) * nsf}
}

func (p *PolarEquidistant) GeographicToCartesian(g *globe.Globe, latitude, longitude, elevation float64) r3.Vector {
	xy := p.project(g, latitude, longitude)
	return r3.Vector{X: xy.X, Y: xy.Y, Z: elevation}
}

func (p *PolarEquidistant) GeographicToCartesianGrid(g *globe.Globe, sector geometry.Sector, numLat, numLon int, elevations []float64, result []r3.Vector) error {
	if err := globe.ValidateGrid(numLat, numLon, elevations, result); err != nil {
		return err
	}

	nsf := 1.0
	if p.north() {
		nsf = -1
	}
	poleLat := p.Pole.Latitude() * s1.Degree.Radians()

	minLat := sector.MinLatitude * s1.Degree.Radians()
	maxLat := sector.MaxLatitude * s1.Degree.Radians()
	deltaLat := (maxLat - minLat) / float64(steps(numLat))
	cosLon, sinLon := longitudeTerms(sector, numLon)

	index := 0
	for j := 0; j < numLat; j++ {
		lat := minLat + float64(j)*deltaLat
		if j == numLat-1 {
			lat = maxLat
		}

		// latitude is constant for each row
		a := g.EquatorialRadius * (math.Pi/2 + lat*nsf)
		if lat == poleLat {
			a = 0
		}

		for i := 0; i < numLon; i++ {
			result[index] = r3.Vector{
				X: a * sinLon[i],
				Y: a * cosLon[i] * nsf,
				Z: globe.ElevationAt(elevations, index),
			}
			index++
		}
	}

	return nil
}

func (p *PolarEquidistant) CartesianToGeographic(g *globe.Globe, x, y, z float64) (float64, float64, float64) {
	rho := math.Hypot(x, y)
	if rho < poleRadiusThreshold {
		return p.Pole.Latitude(), 0, z
	}

	c := math.Min(rho/g.EquatorialRadius, math.Pi)

	var lat, lon float64
	if p.north() {
		lat = math.Asin(math.Cos(c))
		lon = math.Atan2(x, -y)
	} else {
		lat = math.Asin(-math.Cos(c))
		lon = math.Atan2(x, y)
	}

	return (s1.Angle(lat) * s1.Radian).Degrees(), (s1.Angle(lon) * s1.Radian).Degrees(), z
}

func (p *PolarEquidistant) NorthTangentAtLocation(g *globe.Globe, latitude, longitude float64) r3.Vector {
	lon := longitude * s1.Degree.Radians()
	sign := 1.0
	if p.north() {
		sign = -1
	}
	return r3.Vector{X: math.Sin(lon) * sign, Y: math.Cos(lon), Z: 0}
}

func (p *PolarEquidistant) NorthTangentAtPoint(g *globe.Globe, x, y, z float64) r3.Vector {
	return radialNorthTangent(x, y, p.north())
}

// Unit vector pointing north at the planar point, away from the center for the south pole and towards it for the
// north pole
func radialNorthTangent(x, y float64, north bool) r3.Vector {
	xy := vec.Vec2{X: x, Y: y}
	r := xy.Length()
	if r < poleRadiusThreshold {
		return r3.Vector{X: 0, Y: 1, Z: 0}
	}

	sign := 1.0
	if north {
		sign = -1
	}
	unit := xy.Mul(sign / r)
	return r3.Vector{X: unit.X, Y: unit.Y, Z: 0}
}

// Per column sine and cosine of the grid longitudes, computed once for all rows
func longitudeTerms(sector geometry.Sector, numLon int) ([]float64, []float64) {
	minLon := sector.MinLongitude * s1.Degree.Radians()
	maxLon := sector.MaxLongitude * s1.Degree.Radians()
	deltaLon := (maxLon - minLon) / float64(steps(numLon))

	cosLon := make([]float64, numLon)
	sinLon := make([]float64, numLon)
	for i := 0; i < numLon; i++ {
		lon := minLon + float64(i)*deltaLon
		if i == numLon-1 {
			lon = maxLon
		}
		cosLon[i] = math.Cos(lon)
		sinLon[i] = math.Sin(lon)
	}

	return cosLon, sinLon
}

func steps(n int) int {
	if n > 1 {
		return n - 1
	}
	return 1
}
