package globe

import (
	"errors"
	"math"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

const (
	WGS84EquatorialRadius    = 6378137.0
	WGS84EccentricitySquared = 0.00669437999013
)

var ErrInvalidGrid = errors.New("invalid grid: result buffer or elevations too small for the requested size")

// Converts geographic coordinates to the cartesian coordinate system used to place geometry in the scene.
// 2D projections map (latitude, longitude) to the (x, y) plane and use the elevation as z.
type GeographicProjection interface {
	DisplayName() string
	Is2D() bool
	// nil means the projection is defined everywhere
	ProjectionLimits() *geometry.Sector
	GeographicToCartesian(g *Globe, latitude, longitude, elevation float64) r3.Vector
	GeographicToCartesianGrid(g *Globe, sector geometry.Sector, numLat, numLon int, elevations []float64, result []r3.Vector) error
	CartesianToGeographic(g *Globe, x, y, z float64) (latitude, longitude, elevation float64)
	NorthTangentAtLocation(g *Globe, latitude, longitude float64) r3.Vector
	NorthTangentAtPoint(g *Globe, x, y, z float64) r3.Vector
}

// An ellipsoidal globe together with the projection used to display it
type Globe struct {
	EquatorialRadius    float64
	EccentricitySquared float64
	Projection          GeographicProjection
}

// Instantiates a WGS84 globe using the given projection, or the 3D ellipsoidal one if projection is nil
func NewGlobe(projection GeographicProjection) *Globe {
	if projection == nil {
		projection = NewProjectionWgs84()
	}

	return &Globe{
		EquatorialRadius:    WGS84EquatorialRadius,
		EccentricitySquared: WGS84EccentricitySquared,
		Projection:          projection,
	}
}

func (g *Globe) DisplayName() string {
	return g.Projection.DisplayName()
}

func (g *Globe) PolarRadius() float64 {
	return g.EquatorialRadius * math.Sqrt(1-g.EccentricitySquared)
}

// Distance in meters from the center of the ellipsoid to its surface at the given location
func (g *Globe) RadiusAt(latitude, longitude float64) float64 {
	sinLat := math.Sin(latitude * s1.Degree.Radians())
	e2 := g.EccentricitySquared
	rpm := g.EquatorialRadius / math.Sqrt(1-e2*sinLat*sinLat)
	return rpm * math.Sqrt(1+(e2*e2-2*e2)*sinLat*sinLat)
}

func (g *Globe) Is2D() bool {
	return g.Projection.Is2D()
}

func (g *Globe) ProjectionLimits() *geometry.Sector {
	return g.Projection.ProjectionLimits()
}

func (g *Globe) ComputePointFromLocation(latitude, longitude, elevation float64) r3.Vector {
	return g.Projection.GeographicToCartesian(g, latitude, longitude, elevation)
}

func (g *Globe) ComputeLocationFromPoint(point r3.Vector) (geometry.Location, float64) {
	lat, lon, elevation := g.Projection.CartesianToGeographic(g, point.X, point.Y, point.Z)
	return geometry.NewLocation(lat, lon), elevation
}

func (g *Globe) NorthTangentAtLocation(latitude, longitude float64) r3.Vector {
	return g.Projection.NorthTangentAtLocation(g, latitude, longitude)
}

// Checks that a grid of numLat x numLon points fits the result buffer and the optional elevations
func ValidateGrid(numLat, numLon int, elevations []float64, result []r3.Vector) error {
	numPoints := numLat * numLon
	if numLat < 1 || numLon < 1 || len(result) < numPoints {
		return ErrInvalidGrid
	}
	if elevations != nil && len(elevations) < numPoints {
		return ErrInvalidGrid
	}
	return nil
}

// Returns the elevation at the given index or zero if no elevations are specified
func ElevationAt(elevations []float64, index int) float64 {
	if elevations == nil {
		return 0
	}
	return elevations[index]
}
