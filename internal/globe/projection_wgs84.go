package globe

import (
	"math"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

// The 3D ellipsoidal projection. The y axis points to the north pole, the z axis to the intersection of the
// equator and the prime meridian, the x axis to longitude 90 east.
type ProjectionWgs84 struct{}

func NewProjectionWgs84() *ProjectionWgs84 {
	return &ProjectionWgs84{}
}

func (p *ProjectionWgs84) DisplayName() string {
	return "WGS84"
}

func (p *ProjectionWgs84) Is2D() bool {
	return false
}

func (p *ProjectionWgs84) ProjectionLimits() *geometry.Sector {
	return nil
}

func (p *ProjectionWgs84) GeographicToCartesian(g *Globe, latitude, longitude, elevation float64) r3.Vector {
	lat := latitude * s1.Degree.Radians()
	lon := longitude * s1.Degree.Radians()
	cosLat, sinLat := math.Cos(lat), math.Sin(lat)
	cosLon, sinLon := math.Cos(lon), math.Sin(lon)

	rpm := g.EquatorialRadius / math.Sqrt(1-g.EccentricitySquared*sinLat*sinLat)

	return r3.Vector{
		X: (rpm + elevation) * cosLat * sinLon,
		Y: (rpm*(1-g.EccentricitySquared) + elevation) * sinLat,
		Z: (rpm + elevation) * cosLat * cosLon,
	}
}

func (p *ProjectionWgs84) GeographicToCartesianGrid(g *Globe, sector geometry.Sector, numLat, numLon int, elevations []float64, result []r3.Vector) error {
	if err := ValidateGrid(numLat, numLon, elevations, result); err != nil {
		return err
	}

	minLat := sector.MinLatitude * s1.Degree.Radians()
	maxLat := sector.MaxLatitude * s1.Degree.Radians()
	minLon := sector.MinLongitude * s1.Degree.Radians()
	maxLon := sector.MaxLongitude * s1.Degree.Radians()
	deltaLat := (maxLat - minLat) / float64(gridSteps(numLat))
	deltaLon := (maxLon - minLon) / float64(gridSteps(numLon))

	// longitude terms are the same for every row
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

	index := 0
	for j := 0; j < numLat; j++ {
		lat := minLat + float64(j)*deltaLat
		if j == numLat-1 {
			lat = maxLat
		}
		cosLat, sinLat := math.Cos(lat), math.Sin(lat)
		rpm := g.EquatorialRadius / math.Sqrt(1-g.EccentricitySquared*sinLat*sinLat)

		for i := 0; i < numLon; i++ {
			elevation := ElevationAt(elevations, index)
			result[index] = r3.Vector{
				X: (rpm + elevation) * cosLat * sinLon[i],
				Y: (rpm*(1-g.EccentricitySquared) + elevation) * sinLat,
				Z: (rpm + elevation) * cosLat * cosLon[i],
			}
			index++
		}
	}

	return nil
}

// Closed form inversion of the ellipsoidal coordinates (Vermeille, 2002)
func (p *ProjectionWgs84) CartesianToGeographic(g *Globe, x, y, z float64) (float64, float64, float64) {
	// swap to earth centered earth fixed axes
	ex, ey, ez := z, x, y

	a := g.EquatorialRadius
	e2 := g.EccentricitySquared
	ra2 := 1 / (a * a)
	e4 := e2 * e2
	pp := (ex*ex + ey*ey) * ra2
	q := ez * ez * (1 - e2) * ra2
	r := (pp + q - e4) / 6
	evoluteBorderTest := 8*r*r*r + e4*pp*q

	var h, phi float64
	if evoluteBorderTest > 0 || q != 0 {
		var u float64
		if evoluteBorderTest > 0 {
			rad1 := math.Sqrt(evoluteBorderTest)
			rad2 := math.Sqrt(e4 * pp * q)
			if evoluteBorderTest > 10*e2 {
				rad3 := math.Cbrt((rad1 + rad2) * (rad1 + rad2))
				u = r + 0.5*rad3 + 2*r*r/rad3
			} else {
				u = r + 0.5*math.Cbrt((rad1+rad2)*(rad1+rad2)) + 0.5*math.Cbrt((rad1-rad2)*(rad1-rad2))
			}
		} else {
			// near the evolute
			rad1 := math.Sqrt(-evoluteBorderTest)
			rad2 := math.Sqrt(-8 * r * r * r)
			rad3 := math.Sqrt(e4 * pp * q)
			angle := 2 * math.Atan2(rad3, rad1+rad2) / 3
			u = -4 * r * math.Sin(angle) * math.Cos(math.Pi/6+angle)
		}

		v := math.Sqrt(u*u + e4*q)
		w := e2 * (u + v - q) / (2 * v)
		k := (u + v) / (math.Sqrt(w*w+u+v) + w)
		d := k * math.Sqrt(ex*ex+ey*ey) / (k + e2)
		sqrtDDpZZ := math.Sqrt(d*d + ez*ez)
		h = (k + e2 - 1) * sqrtDDpZZ / k
		phi = 2 * math.Atan2(ez, sqrtDDpZZ+d)
	} else {
		// singular disk
		rad1 := math.Sqrt(1 - e2)
		rad2 := math.Sqrt(e2 - pp)
		e := math.Sqrt(e2)
		h = -a * rad1 * rad2 / e
		phi = rad2 / (e*rad2 + rad1*math.Sqrt(pp))
	}

	lambda := math.Atan2(ey, ex)

	return (s1.Angle(phi) * s1.Radian).Degrees(), (s1.Angle(lambda) * s1.Radian).Degrees(), h
}

func (p *ProjectionWgs84) NorthTangentAtLocation(g *Globe, latitude, longitude float64) r3.Vector {
	lat := latitude * s1.Degree.Radians()
	lon := longitude * s1.Degree.Radians()
	cosLat, sinLat := math.Cos(lat), math.Sin(lat)
	cosLon, sinLon := math.Cos(lon), math.Sin(lon)

	return r3.Vector{X: -sinLat * sinLon, Y: cosLat, Z: -sinLat * cosLon}.Normalize()
}

func (p *ProjectionWgs84) NorthTangentAtPoint(g *Globe, x, y, z float64) r3.Vector {
	lat, lon, _ := p.CartesianToGeographic(g, x, y, z)
	return p.NorthTangentAtLocation(g, lat, lon)
}

func gridSteps(n int) int {
	if n > 1 {
		return n - 1
	}
	return 1
}
