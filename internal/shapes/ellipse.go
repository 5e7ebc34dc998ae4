package shapes

import (
	"math"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/golang/geo/s1"
	"github.com/golang/glog"
)

const (
	MinEllipseIntervals     = 8
	DefaultEllipseIntervals = 32
	MaxEllipseIntervals     = 4096
)

// An ellipse on the surface of the globe. Radii are in meters, the heading is the counterclockwise angle in degrees
// from east to the major axis. A Theta between 0 and 360 degrees restricts the ellipse to a wedge starting at the
// major axis.
type Ellipse struct {
	shapeBase
	center      geometry.Location
	majorRadius float64
	minorRadius float64
	heading     float64
	theta       float64
	intervals   int
}

func NewEllipse(center geometry.Location, majorRadius, minorRadius, heading float64, attributes *Attributes) *Ellipse {
	return &Ellipse{
		shapeBase:   newShapeBase("Surface Ellipse", attributes),
		center:      center,
		majorRadius: majorRadius,
		minorRadius: minorRadius,
		heading:     heading,
		intervals:   DefaultEllipseIntervals,
	}
}

func (e *Ellipse) IsClosed() bool {
	return true
}

func (e *Ellipse) Center() geometry.Location {
	return e.center
}

func (e *Ellipse) MajorRadius() float64 {
	return e.majorRadius
}

func (e *Ellipse) MinorRadius() float64 {
	return e.minorRadius
}

func (e *Ellipse) Heading() float64 {
	return e.heading
}

func (e *Ellipse) Theta() float64 {
	return e.theta
}

func (e *Ellipse) Intervals() int {
	return e.intervals
}

func (e *Ellipse) SetCenter(center geometry.Location) {
	e.center = center
	e.touch()
}

func (e *Ellipse) SetRadii(majorRadius, minorRadius float64) {
	e.majorRadius = majorRadius
	e.minorRadius = minorRadius
	e.touch()
}

func (e *Ellipse) SetHeading(heading float64) {
	e.heading = heading
	e.touch()
}

// Sets the wedge angle in degrees. 0 or any value of at least 360 draws the whole ellipse.
func (e *Ellipse) SetTheta(theta float64) {
	e.theta = theta
	e.touch()
}

// Sets the number of intervals used to approximate the ellipse, clamped to [MinEllipseIntervals, MaxEllipseIntervals]
func (e *Ellipse) SetIntervals(intervals int) {
	switch {
	case intervals < MinEllipseIntervals:
		glog.V(1).Infof("ellipse %q: %d intervals raised to %d", e.displayName, intervals, MinEllipseIntervals)
		intervals = MinEllipseIntervals
	case intervals > MaxEllipseIntervals:
		glog.V(1).Infof("ellipse %q: %d intervals lowered to %d", e.displayName, intervals, MaxEllipseIntervals)
		intervals = MaxEllipseIntervals
	}
	e.intervals = intervals
	e.touch()
}

func (e *Ellipse) isWedge() bool {
	return e.theta > 0 && e.theta < 360
}

func (e *Ellipse) ComputeBoundaries(g *globe.Globe) [][]geometry.Location {
	if e.majorRadius <= 0 || e.minorRadius <= 0 {
		return nil
	}

	intervals := e.intervals
	if intervals < MinEllipseIntervals {
		intervals = MinEllipseIntervals
	}

	span := 2 * math.Pi
	wedge := e.isWedge()
	if wedge {
		span = e.theta * s1.Degree.Radians()
	}

	globeRadius := g.RadiusAt(e.center.Latitude, e.center.Longitude)
	da := span / float64(intervals)

	locations := make([]geometry.Location, 0, intervals+2)
	if wedge {
		locations = append(locations, e.center)
	}

	for i := 0; i <= intervals; i++ {
		angle := float64(i) * da
		// the full ellipse ends exactly where it starts
		if !wedge && i == intervals {
			angle = 0
		}

		x := e.majorRadius * math.Cos(angle)
		y := e.minorRadius * math.Sin(angle)
		locations = append(locations, offsetLocation(e.center, x, y, e.heading, globeRadius))
	}

	return [][]geometry.Location{locations}
}

// A circle is an ellipse with equal radii
type Circle struct {
	Ellipse
}

func NewCircle(center geometry.Location, radius float64, attributes *Attributes) *Circle {
	c := &Circle{Ellipse: *NewEllipse(center, radius, radius, 0, attributes)}
	c.displayName = "Surface Circle"
	return c
}

func (c *Circle) Radius() float64 {
	return c.majorRadius
}

func (c *Circle) SetRadius(radius float64) {
	c.SetRadii(radius, radius)
}

// Location at the planar offset (x along the heading axis, y across it) in meters from center
func offsetLocation(center geometry.Location, x, y, heading, globeRadius float64) geometry.Location {
	distance := math.Hypot(x, y)
	if distance == 0 {
		return center
	}

	// azimuth runs clockwise from north
	azimuth := math.Pi/2 - (math.Atan2(y, x) + heading*s1.Degree.Radians())
	return geometry.GreatCircleLocation(center, (s1.Angle(azimuth) * s1.Radian).Degrees(), distance/globeRadius)
}
