package projections

import (
	"math"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"seehuhn.de/go/geom/vec"
)

// standard UPS scale factor, Snyder pg. 157
const upsScaleFactor = 0.994

// Universal Polar Stereographic projection centered on either pole.
// Formulas from "Map Projections -- A Working Manual", Snyder, USGS paper 1395, pg. 161.
type UPS struct {
	Pole   geometry.Pole
	limits geometry.Sector
}

func NewUPS(pole geometry.Pole) *UPS {
	if pole == geometry.PoleSouth {
		return &UPS{Pole: pole, limits: geometry.NewSector(-90, 0, -180, 180)}
	}
	return &UPS{Pole: geometry.PoleNorth, limits: geometry.NewSector(0, 90, -180, 180)}
}

func (p *UPS) north() bool {
	return p.Pole != geometry.PoleSouth
}

func (p *UPS) poleFactor() float64 {
	if p.north() {
		return 1
	}
	return -1
}

func (p *UPS) DisplayName() string {
	if p.north() {
		return "North UPS"
	}
	return "South UPS"
}

func (p *UPS) Is2D() bool {
	return true
}

func (p *UPS) ProjectionLimits() *geometry.Sector {
	limits := p.limits
	return &limits
}

// eccentricity dependent constant of the forward and inverse formulas
func upsConstant(ecc float64) float64 {
	return math.Sqrt(math.Pow(1+ecc, 1+ecc) * math.Pow(1-ecc, 1-ecc))
}

// Distance in meters from the pole of a latitude in radians, clamped to the projected hemisphere
func (p *UPS) radius(g *globe.Globe, lat float64) float64 {
	if (p.north() && lat < 0) || (!p.north() && lat > 0) {
		lat = 0
	}

	ecc := math.Sqrt(g.EccentricitySquared)
	sp := math.Sin(lat * p.poleFactor())
	t := math.Sqrt(((1 - sp) / (1 + sp)) * math.Pow((1+ecc*sp)/(1-ecc*sp), ecc))
	return 2 * g.EquatorialRadius * upsScaleFactor * t / upsConstant(ecc)
}

func (p *UPS) project(g *globe.Globe, latitude, longitude float64) vec.Vec2 {
	if latitude == p.Pole.Latitude() {
		return vec.Vec2{}
	}

	lon := longitude * s1.Degree.Radians()
	r := p.radius(g, latitude*s1.Degree.Radians())
	return vec.Vec2{X: r * math.Sin(lon), Y: -r * math.Cos(lon) * p.poleFactor()}
}

func (p *UPS) GeographicToCartesian(g *globe.Globe, latitude, longitude, elevation float64) r3.Vector {
	xy := p.project(g, latitude, longitude)
	return r3.Vector{X: xy.X, Y: xy.Y, Z: elevation}
}

func (p *UPS) GeographicToCartesianGrid(g *globe.Globe, sector geometry.Sector, numLat, numLon int, elevations []float64, result []r3.Vector) error {
	if err := globe.ValidateGrid(numLat, numLon, elevations, result); err != nil {
		return err
	}

	minLat := math.Max(sector.MinLatitude, p.limits.MinLatitude) * s1.Degree.Radians()
	maxLat := math.Min(sector.MaxLatitude, p.limits.MaxLatitude) * s1.Degree.Radians()
	deltaLat := (maxLat - minLat) / float64(steps(numLat))
	cosLon, sinLon := longitudeTerms(sector, numLon)
	poleLat := p.Pole.Latitude() * s1.Degree.Radians()

	index := 0
	for j := 0; j < numLat; j++ {
		lat := minLat + float64(j)*deltaLat
		if j == numLat-1 {
			lat = maxLat
		}

		r := 0.0
		if lat != poleLat {
			r = p.radius(g, lat)
		}

		for i := 0; i < numLon; i++ {
			result[index] = r3.Vector{
				X: r * sinLon[i],
				Y: -r * cosLon[i] * p.poleFactor(),
				Z: globe.ElevationAt(elevations, index),
			}
			index++
		}
	}

	return nil
}

// Inverts the projection with the truncated series for the latitude in terms of the conformal latitude (Snyder
// eq. 3-5), evaluated in nested form so only one sine and one cosine are needed.
func (p *UPS) CartesianToGeographic(g *globe.Globe, x, y, z float64) (float64, float64, float64) {
	r := math.Hypot(x, y)
	if r < poleRadiusThreshold {
		return p.Pole.Latitude(), 0, z
	}

	lon := math.Atan2(x, y*-p.poleFactor())
	ecc := math.Sqrt(g.EccentricitySquared)
	t := r * upsConstant(ecc) / (2 * g.EquatorialRadius * upsScaleFactor)

	e2 := g.EccentricitySquared
	e4 := e2 * e2
	e6 := e4 * e2
	e8 := e6 * e2

	chi := math.Pi/2 - 2*math.Atan(t)
	b := e2/2 + 5*e4/24 + e6/12 + 13*e8/360
	c := 7*e4/48 + 29*e6/240 + 811*e8/11520
	d := 7*e6/120 + 81*e8/1120
	e := 4279 * e8 / 161280

	sin2, cos2 := math.Sin(2*chi), math.Cos(2*chi)
	lat := chi + sin2*(b-d+cos2*(2*c-4*e+cos2*(4*d+cos2*8*e)))
	lat *= p.poleFactor()

	return (s1.Angle(lat) * s1.Radian).Degrees(), (s1.Angle(lon) * s1.Radian).Degrees(), z
}

func (p *UPS) NorthTangentAtLocation(g *globe.Globe, latitude, longitude float64) r3.Vector {
	lon := longitude * s1.Degree.Radians()
	return r3.Vector{X: -math.Sin(lon) * p.poleFactor(), Y: math.Cos(lon), Z: 0}
}

func (p *UPS) NorthTangentAtPoint(g *globe.Globe, x, y, z float64) r3.Vector {
	return radialNorthTangent(x, y, p.north())
}
