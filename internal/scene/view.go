package scene

import (
	"math"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"seehuhn.de/go/geom/rect"
)

const (
	DefaultFieldOfView = 45 * s1.Degree
	minimumAltitude    = 1.0
)

// Camera state for one frame: position and orientation in model coordinates, the viewport in pixels and the
// derived viewing frustum
type View struct {
	Eye          r3.Vector
	Forward      r3.Vector
	Up           r3.Vector
	FieldOfView  s1.Angle
	Viewport     rect.Rect
	NearDistance float64
	FarDistance  float64

	frustum Frustum
}

// Instantiates a perspective view. forward and up need not be unit length nor orthogonal.
func NewView(eye, forward, up r3.Vector, fieldOfView s1.Angle, viewport rect.Rect, near, far float64) *View {
	forward = forward.Normalize()
	up = up.Sub(forward.Mul(up.Dot(forward)))
	if up.Norm() < 1e-12 {
		up = forward.Ortho()
	}
	up = up.Normalize()

	v := &View{
		Eye:          eye,
		Forward:      forward,
		Up:           up,
		FieldOfView:  fieldOfView,
		Viewport:     viewport,
		NearDistance: near,
		FarDistance:  far,
	}

	if v.HasViewport() {
		v.frustum = NewPerspectiveFrustum(eye, forward, up, fieldOfView, v.ViewportHeight()/v.ViewportWidth(), near, far)
	}

	return v
}

// Instantiates a view looking straight down at target from the given altitude in meters, with north up
func NewLookAtView(g *globe.Globe, target geometry.Location, altitude float64, fieldOfView s1.Angle, viewport rect.Rect) *View {
	altitude = math.Max(altitude, minimumAltitude)

	eye := g.ComputePointFromLocation(target.Latitude, target.Longitude, altitude)
	center := g.ComputePointFromLocation(target.Latitude, target.Longitude, 0)
	up := g.NorthTangentAtLocation(target.Latitude, target.Longitude)

	near := math.Max(minimumAltitude, altitude*1e-3)
	far := altitude + 2*g.EquatorialRadius
	if g.Is2D() {
		far = altitude + 4*math.Pi*g.EquatorialRadius
	}

	return NewView(eye, center.Sub(eye), up, fieldOfView, viewport, near, far)
}

func (v *View) ViewportWidth() float64 {
	return v.Viewport.URx - v.Viewport.LLx
}

func (v *View) ViewportHeight() float64 {
	return v.Viewport.URy - v.Viewport.LLy
}

// Returns true if the viewport has a non zero area
func (v *View) HasViewport() bool {
	return v.ViewportWidth() > 0 && v.ViewportHeight() > 0
}

func (v *View) Frustum() Frustum {
	return v.frustum
}

// Size in meters of a screen pixel at the given distance from the eye
func (v *View) PixelSizeAtDistance(distance float64) float64 {
	if !v.HasViewport() {
		return 0
	}
	frustumWidth := 2 * math.Tan(v.FieldOfView.Radians()/2)
	return frustumWidth / v.ViewportWidth() * distance
}

// Everything the tile builder needs to know about the current frame
type DrawContext struct {
	Globe       *globe.Globe
	View        *View
	FrameNumber uint64
}

func NewDrawContext(g *globe.Globe, view *View) *DrawContext {
	return &DrawContext{Globe: g, View: view}
}

func (dc *DrawContext) EyePoint() r3.Vector {
	return dc.View.Eye
}

func (dc *DrawContext) PixelSizeAtDistance(distance float64) float64 {
	return dc.View.PixelSizeAtDistance(distance)
}

// Advances to the next frame
func (dc *DrawContext) NextFrame() {
	dc.FrameNumber++
}
