package math

// Plane is a plane in normal form: Normal·p + D = 0.
// Normal is unit length; constructors normalize.
type Plane struct {
	Normal Vec3
	D      float32
}

// NewPlane builds a plane from a normal and scalar offset, normalizing both
// so that signed distances stay in world units.
func NewPlane(normal Vec3, d float32) Plane {
	l := normal.Length()
	if l == 0 {
		return Plane{Normal: Vec3{}, D: d}
	}
	return Plane{Normal: normal.Scale(1 / l), D: d / l}
}

// NewPlaneFromPoints builds the plane through three points, with the normal
// following the right-hand winding a→b→c.
func NewPlaneFromPoints(a, b, c Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// DistanceTo returns the signed distance from p to the plane.
// Positive means p lies on the side the normal points toward.
func (pl Plane) DistanceTo(p Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Project returns the orthogonal projection of p onto the plane.
func (pl Plane) Project(p Vec3) Vec3 {
	return p.Sub(pl.Normal.Scale(pl.DistanceTo(p)))
}
