package wmo

import (
	"fmt"

	"github.com/Faultbox/wmo-go/pkg/math"
)

// Portal is a planar convex opening shared by exactly two groups. Only the
// polygon's plane and axis-aligned extent are kept; that pair is enough for
// the nearest-point and side-of-plane tests the transition logic needs.
// Immutable after construction.
type Portal struct {
	plane  math.Plane
	bounds math.AABB
}

// NewPortal builds a portal from a decoded boundary polygon. The plane is
// derived from the first three vertices, the bounds from all of them.
func NewPortal(def PortalDef) (*Portal, error) {
	if len(def.Vertices) < 3 {
		return nil, fmt.Errorf("%w: %d", ErrPortalVertexCount, len(def.Vertices))
	}

	points := make([]math.Vec3, len(def.Vertices))
	for i, v := range def.Vertices {
		points[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}

	return &Portal{
		plane:  math.NewPlaneFromPoints(points[0], points[1], points[2]),
		bounds: math.AABBFromPoints(points),
	}, nil
}

// Plane returns the portal's plane.
func (p *Portal) Plane() math.Plane {
	return p.plane
}

// Bounds returns the axis-aligned extent of the boundary polygon.
func (p *Portal) Bounds() math.AABB {
	return p.bounds
}

// ProjectAndClamp projects pt orthogonally onto the portal plane, then clamps
// each coordinate into the polygon's bounding box. This approximates the
// closest point on the convex opening: for a point that is off the polygon
// but inside its box on the plane, the result under-measures the true
// distance. The upstream asset pipeline expects exactly this measure, so no
// polygon clipping is attempted.
func (p *Portal) ProjectAndClamp(pt math.Vec3) math.Vec3 {
	return p.bounds.Clamp(p.plane.Project(pt))
}

// SignedSide returns the signed distance of pt to the portal plane. Negative
// means pt is behind the portal (back side), non-negative in front.
func (p *Portal) SignedSide(pt math.Vec3) float32 {
	return p.plane.DistanceTo(pt)
}
