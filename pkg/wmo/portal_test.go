package wmo

import (
	"errors"
	"testing"

	"github.com/Faultbox/wmo-go/pkg/math"
)

// unitSquarePortal builds a portal from the square [(-1,-1,0), (1,1,0)] whose
// winding puts the front side toward +z.
func unitSquarePortal(t *testing.T) *Portal {
	t.Helper()

	portal, err := NewPortal(PortalDef{Vertices: [][3]float32{
		{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
	}})
	if err != nil {
		t.Fatalf("NewPortal failed: %v", err)
	}
	return portal
}

func TestNewPortal_TooFewVertices(t *testing.T) {
	_, err := NewPortal(PortalDef{Vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}}})
	if !errors.Is(err, ErrPortalVertexCount) {
		t.Errorf("NewPortal error = %v, want %v", err, ErrPortalVertexCount)
	}
}

func TestPortal_PlaneAndBounds(t *testing.T) {
	portal := unitSquarePortal(t)

	plane := portal.Plane()
	if plane.Normal.Distance(math.Vec3{Z: 1}) > 1e-5 {
		t.Errorf("plane normal %v, want (0,0,1)", plane.Normal)
	}
	if plane.D != 0 {
		t.Errorf("plane d = %v, want 0", plane.D)
	}

	bounds := portal.Bounds()
	if bounds.Min != (math.Vec3{X: -1, Y: -1}) || bounds.Max != (math.Vec3{X: 1, Y: 1}) {
		t.Errorf("bounds = %+v, want [(-1,-1,0),(1,1,0)]", bounds)
	}
}

func TestPortal_SignedSide(t *testing.T) {
	portal := unitSquarePortal(t)

	if got := portal.SignedSide(math.Vec3{Z: 5}); got != 5 {
		t.Errorf("SignedSide(front point) = %v, want 5", got)
	}
	if got := portal.SignedSide(math.Vec3{Z: -3}); got != -3 {
		t.Errorf("SignedSide(back point) = %v, want -3", got)
	}
}

func TestPortal_ProjectAndClamp(t *testing.T) {
	portal := unitSquarePortal(t)

	tests := []struct {
		name  string
		point math.Vec3
		want  math.Vec3
	}{
		{"above interior", math.Vec3{X: 0.5, Y: -0.5, Z: 4}, math.Vec3{X: 0.5, Y: -0.5}},
		{"outside box in-plane", math.Vec3{X: 5, Y: 5, Z: 2}, math.Vec3{X: 1, Y: 1}},
		{"behind", math.Vec3{X: 0, Y: 0, Z: -2}, math.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := portal.ProjectAndClamp(tt.point)
			if got.Distance(tt.want) > 1e-5 {
				t.Errorf("ProjectAndClamp(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}
