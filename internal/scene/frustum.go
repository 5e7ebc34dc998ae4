package scene

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

// A plane in Hessian normal form. Points on the side the normal points to have a positive distance.
type Plane struct {
	Normal   r3.Vector
	Distance float64
}

// Builds the plane with the given normal passing through point
func NewPlane(normal r3.Vector, point r3.Vector) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Distance: -n.Dot(point)}
}

func (p Plane) DistanceTo(point r3.Vector) float64 {
	return p.Normal.Dot(point) + p.Distance
}

// A convex volume bounded by inward facing planes. A frustum without planes is unbounded.
type Frustum struct {
	planes []Plane
}

func NewFrustum(planes ...Plane) Frustum {
	return Frustum{planes: planes}
}

// Builds the viewing frustum of a perspective camera. fieldOfView is the horizontal field of view and aspect
// the viewport height divided by its width.
func NewPerspectiveFrustum(eye, forward, up r3.Vector, fieldOfView s1.Angle, aspect, near, far float64) Frustum {
	forward = forward.Normalize()
	up = up.Normalize()
	right := forward.Cross(up).Normalize()

	tanH := math.Tan(fieldOfView.Radians() / 2)
	tanV := tanH * aspect

	leftPlane := NewPlane(right.Add(forward.Mul(tanH)), eye)
	rightPlane := NewPlane(right.Mul(-1).Add(forward.Mul(tanH)), eye)
	bottomPlane := NewPlane(up.Add(forward.Mul(tanV)), eye)
	topPlane := NewPlane(up.Mul(-1).Add(forward.Mul(tanV)), eye)
	nearPlane := NewPlane(forward, eye.Add(forward.Mul(near)))
	farPlane := NewPlane(forward.Mul(-1), eye.Add(forward.Mul(far)))

	return NewFrustum(leftPlane, rightPlane, bottomPlane, topPlane, nearPlane, farPlane)
}

func (f Frustum) Planes() []Plane {
	return f.planes
}

func (f Frustum) IsUnbounded() bool {
	return len(f.planes) == 0
}

func (f Frustum) ContainsPoint(point r3.Vector) bool {
	for _, p := range f.planes {
		if p.DistanceTo(point) < 0 {
			return false
		}
	}
	return true
}

// Returns false only if the sphere lies entirely outside one of the planes
func (f Frustum) IntersectsSphere(center r3.Vector, radius float64) bool {
	for _, p := range f.planes {
		if p.DistanceTo(center) < -radius {
			return false
		}
	}
	return true
}

// Sphere enclosing a set of points, used as the extent of a tile
type BoundingSphere struct {
	Center r3.Vector
	Radius float64
}

// Computes a sphere centered on the average of the points and enclosing all of them
func NewBoundingSphere(points []r3.Vector) BoundingSphere {
	if len(points) == 0 {
		return BoundingSphere{}
	}

	var center r3.Vector
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1 / float64(len(points)))

	radius := 0.0
	for _, p := range points {
		radius = math.Max(radius, center.Distance(p))
	}

	return BoundingSphere{Center: center, Radius: radius}
}

func (s BoundingSphere) IntersectsFrustum(f Frustum) bool {
	return f.IntersectsSphere(s.Center, s.Radius)
}
