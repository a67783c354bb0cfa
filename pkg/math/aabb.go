package math

import "github.com/chewxy/math32"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// AABBFromPoints returns the smallest box enclosing all points.
// The zero box is returned for an empty slice.
func AABBFromPoints(points []Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box = box.Expand(p)
	}
	return box
}

// Expand returns the box grown to include p.
func (b AABB) Expand(p Vec3) AABB {
	return AABB{
		Min: Vec3{math32.Min(b.Min.X, p.X), math32.Min(b.Min.Y, p.Y), math32.Min(b.Min.Z, p.Z)},
		Max: Vec3{math32.Max(b.Max.X, p.X), math32.Max(b.Max.Y, p.Y), math32.Max(b.Max.Z, p.Z)},
	}
}

// Clamp returns p clamped component-wise into the box.
func (b AABB) Clamp(p Vec3) Vec3 {
	return p.Clamp(b.Min, b.Max)
}

// Contains reports whether p lies inside the box (boundary inclusive).
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
