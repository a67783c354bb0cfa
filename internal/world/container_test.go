package world

import (
	"os"
	"testing"

	"github.com/Faultbox/wmo-go/internal/logger"
	"github.com/Faultbox/wmo-go/pkg/math"
	"github.com/Faultbox/wmo-go/pkg/wmo"
)

func TestMain(m *testing.M) {
	// Silence logging: no console, no file.
	if err := logger.InitWithFileConfig("error", logger.FileConfig{}, false); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// floorGroup builds a group definition with a two-triangle floor quad at
// height z under a single-leaf BSP.
func floorGroup(index int, z float32, bounds [2][3]float32, portalStart, portalCount uint16) wmo.GroupDef {
	return wmo.GroupDef{
		Path:  "test/rooms.wmo",
		Index: index,
		ID:    uint32(1000 + index),
		Header: wmo.GroupHeader{
			Bounds:      bounds,
			PortalStart: portalStart,
			PortalCount: portalCount,
		},
		MaterialRefs: []uint8{0},
		Geometry: wmo.GeometryDef{
			Positions: []float32{
				-5, -5, z,
				5, -5, z,
				5, 5, z,
				-5, 5, z,
			},
			Indices: []uint32{0, 1, 2, 0, 2, 3},
		},
		Batches:      []wmo.BatchDef{{IndexStart: 0, IndexCount: 6, MaterialSlot: 0}},
		Nodes:        []wmo.BSPNodeDef{{Flags: wmo.BSPNodeLeaf, FaceStart: 0, FaceCount: 2}},
		PlaneIndices: []uint16{0},
	}
}

// twoRoomWorld builds two rooms stacked along z, joined by a square portal in
// the z=0 plane whose front side faces room 1 (z > 0).
func twoRoomWorld() *wmo.WorldDef {
	return &wmo.WorldDef{
		Name: "tworooms",
		Portals: []wmo.PortalDef{{Vertices: [][3]float32{
			{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		}}},
		PortalRefs: []wmo.PortalRefDef{
			{PortalIndex: 0, GroupIndex: 1, Side: -1}, // room 0 sits behind the portal
			{PortalIndex: 0, GroupIndex: 0, Side: 1},  // room 1 in front
		},
		Materials: []wmo.MaterialDef{{Texture: "stone.blp"}, {Texture: "wood.blp"}},
		Groups: []wmo.GroupDef{
			floorGroup(0, -2, [2][3]float32{{-5, -5, -4}, {5, 5, 0}}, 0, 1),
			floorGroup(1, 2, [2][3]float32{{-5, -5, 0}, {5, 5, 4}}, 1, 1),
		},
	}
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(twoRoomWorld())
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}

	if len(c.Groups()) != 2 {
		t.Errorf("container has %d groups, want 2", len(c.Groups()))
	}
	if len(c.Portals()) != 1 {
		t.Errorf("container has %d portals, want 1", len(c.Portals()))
	}
	group, ok := c.Group(0)
	if !ok {
		t.Fatal("group 0 missing")
	}
	if got := len(group.PortalRefs()); got != 1 {
		t.Errorf("group 0 has %d portal refs, want 1", got)
	}
}

func TestNewContainer_MalformedGroupAborts(t *testing.T) {
	def := twoRoomWorld()
	def.Groups[1].Header.PortalCount = 40

	if _, err := NewContainer(def); err == nil {
		t.Fatal("expected construction error for malformed group")
	}
}

func TestContainer_GroupAt(t *testing.T) {
	c, err := NewContainer(twoRoomWorld())
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}

	group, ok := c.GroupAt(math.Vec3{X: 1, Y: 1, Z: -1})
	if !ok || group.Index() != 0 {
		t.Errorf("GroupAt(lower room) = %v ok=%v, want group 0", group, ok)
	}

	group, ok = c.GroupAt(math.Vec3{X: 1, Y: 1, Z: 1})
	if !ok || group.Index() != 1 {
		t.Errorf("GroupAt(upper room) = %v ok=%v, want group 1", group, ok)
	}

	if _, ok := c.GroupAt(math.Vec3{X: 100}); ok {
		t.Error("GroupAt(outside) found a group")
	}
}

func TestContainer_ResolveTransition(t *testing.T) {
	c, err := NewContainer(twoRoomWorld())
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}

	// Just under the portal, inside room 0: behind the plane, so the signed
	// distance is negative, and the crossing leads into room 1.
	tr, ok := c.ResolveTransition(0, math.Vec3{Z: -0.5}, 0)
	if !ok {
		t.Fatal("expected a transition")
	}
	if tr.To.Index() != 1 {
		t.Errorf("transition target = group %d, want 1", tr.To.Index())
	}
	if tr.Hit.Distance != -0.5 {
		t.Errorf("transition distance = %v, want -0.5", tr.Hit.Distance)
	}

	// Far corner of room 0: outside the search radius.
	if _, ok := c.ResolveTransition(0, math.Vec3{X: 4, Y: 4, Z: -3}, 1); ok {
		t.Error("expected no transition within max distance 1")
	}

	if _, ok := c.ResolveTransition(9, math.Vec3{}, 0); ok {
		t.Error("expected no transition for an unknown group index")
	}
}

func TestContainer_MaterialRefCounting(t *testing.T) {
	c, err := NewContainer(twoRoomWorld())
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}

	handles, err := c.LoadMaterials([]uint8{0, 0, 1})
	if err != nil {
		t.Fatalf("LoadMaterials failed: %v", err)
	}
	if len(handles) != 3 {
		t.Fatalf("got %d handles, want 3", len(handles))
	}
	if c.MaterialRefCount(0) != 2 || c.MaterialRefCount(1) != 1 {
		t.Errorf("ref counts = %d,%d, want 2,1", c.MaterialRefCount(0), c.MaterialRefCount(1))
	}

	for _, h := range handles {
		c.UnloadMaterial(h)
	}
	if c.MaterialRefCount(0) != 0 || c.MaterialRefCount(1) != 0 {
		t.Errorf("ref counts after unload = %d,%d, want 0,0", c.MaterialRefCount(0), c.MaterialRefCount(1))
	}

	if _, err := c.LoadMaterials([]uint8{9}); err == nil {
		t.Error("expected error for out-of-range material ref")
	}
}

func TestContainer_Close(t *testing.T) {
	c, err := NewContainer(twoRoomWorld())
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}

	group, _ := c.Group(0)
	if err := group.CreateView(&captureFactory{}); err != nil {
		t.Fatalf("CreateView failed: %v", err)
	}
	if c.MaterialRefCount(0) != 1 {
		t.Fatalf("ref count after view = %d, want 1", c.MaterialRefCount(0))
	}

	c.Close()
	if c.MaterialRefCount(0) != 0 {
		t.Errorf("ref count after close = %d, want 0", c.MaterialRefCount(0))
	}

	// Close is idempotent.
	c.Close()
}

type captureFactory struct {
	materials []wmo.MaterialHandle
}

func (f *captureFactory) CreateView(_ *wmo.GeometryDef, _ []wmo.BatchDef, m []wmo.MaterialHandle) error {
	f.materials = m
	return nil
}
