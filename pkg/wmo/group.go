package wmo

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/wmo-go/pkg/math"
)

// PortalRef is a group-local, non-owning reference into the root's portal
// table: the resolved portal plus the ref-table metadata for this group.
type PortalRef struct {
	Portal *Portal
	// Index is the portal's offset in the root portal table.
	Index int
	// GroupIndex is the group on the other side of the portal.
	GroupIndex uint16
	// Side records which side of the portal plane the owning group occupies.
	Side int16
}

// PortalHit is the result of a closest-portal query. Distance is signed: its
// magnitude is the distance to the clamped projection on the opening, its
// sign is the side of the portal plane the query point is on (negative =
// behind). Callers use the sign to decide crossing direction.
type PortalHit struct {
	Portal   *Portal
	Ref      PortalRef
	Distance float32
}

// Group is one enclosed room/cell of a world model. It owns its BSP tree,
// bounding box and portal-ref subset; portals and materials stay owned by the
// root. A Group is immutable once NewGroup returns, so queries are safe from
// multiple goroutines. Updates require building a new Group.
type Group struct {
	path   string
	index  int
	id     uint32
	header GroupHeader

	root Root

	geometry  *GeometryDef
	batches   []BatchDef
	doodads   []uint16
	matRefs   []uint8
	positions []math.Vec3

	bounds  math.AABB
	bsp     *BSPTree
	portals []PortalRef

	materials []MaterialHandle
}

// NewGroup validates a decoded group definition against the root's shared
// tables and builds the group: portal-ref subset, BSP tree, bounding box.
// On any malformed-definition error no partial Group is returned.
func NewGroup(root Root, def *GroupDef) (*Group, error) {
	if err := def.Geometry.Validate(); err != nil {
		return nil, fmt.Errorf("group %q: %w", def.Path, err)
	}

	positions := make([]math.Vec3, def.Geometry.VertexCount())
	for i := range positions {
		positions[i] = math.Vec3{
			X: def.Geometry.Positions[i*3],
			Y: def.Geometry.Positions[i*3+1],
			Z: def.Geometry.Positions[i*3+2],
		}
	}

	portals, err := slicePortalRefs(root, def.Header)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", def.Path, err)
	}

	bsp, err := NewBSPTree(def.Nodes, def.PlaneIndices, def.Planes, def.Geometry.Indices, positions)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", def.Path, err)
	}

	return &Group{
		path:      def.Path,
		index:     def.Index,
		id:        def.ID,
		header:    def.Header,
		root:      root,
		geometry:  &def.Geometry,
		batches:   def.Batches,
		doodads:   def.DoodadRefs,
		matRefs:   def.MaterialRefs,
		positions: positions,
		bounds:    groupBounds(def.Header, positions),
		bsp:       bsp,
		portals:   portals,
	}, nil
}

// slicePortalRefs resolves the header's subrange of the root portal-ref
// table into group-local references.
func slicePortalRefs(root Root, header GroupHeader) ([]PortalRef, error) {
	refs := root.PortalRefs()
	start, count := int(header.PortalStart), int(header.PortalCount)
	if start+count > len(refs) {
		return nil, fmt.Errorf("%w: [%d,%d), %d refs", ErrPortalRefRange, start, start+count, len(refs))
	}

	table := root.Portals()
	out := make([]PortalRef, 0, count)
	for _, ref := range refs[start : start+count] {
		if int(ref.PortalIndex) >= len(table) {
			return nil, fmt.Errorf("%w: portal %d, %d portals", ErrPortalIndexRange, ref.PortalIndex, len(table))
		}
		out = append(out, PortalRef{
			Portal:     table[ref.PortalIndex],
			Index:      int(ref.PortalIndex),
			GroupIndex: ref.GroupIndex,
			Side:       ref.Side,
		})
	}
	return out, nil
}

// groupBounds prefers the decoded header bounds and falls back to the
// positions when the header carries a degenerate box.
func groupBounds(header GroupHeader, positions []math.Vec3) math.AABB {
	min := math.Vec3{X: header.Bounds[0][0], Y: header.Bounds[0][1], Z: header.Bounds[0][2]}
	max := math.Vec3{X: header.Bounds[1][0], Y: header.Bounds[1][1], Z: header.Bounds[1][2]}
	if min == max {
		return math.AABBFromPoints(positions)
	}
	return math.AABB{Min: min, Max: max}
}

// Path returns the group's path identifier.
func (g *Group) Path() string { return g.path }

// Index returns the group's numeric index in the world model.
func (g *Group) Index() int { return g.index }

// ID returns the decoded group id.
func (g *Group) ID() uint32 { return g.id }

// Bounds returns the group's bounding box in local space.
func (g *Group) Bounds() math.AABB { return g.bounds }

// BSP returns the group's spatial index.
func (g *Group) BSP() *BSPTree { return g.bsp }

// PortalRefs returns the group's portal-ref subset, in attachment order.
func (g *Group) PortalRefs() []PortalRef { return g.portals }

// DoodadRefs returns the group's doodad references, carried through untouched
// for the doodad-placement collaborator.
func (g *Group) DoodadRefs() []uint16 { return g.doodads }

// ClosestPortal scans the group's portals for the one nearest to p, measured
// to the clamped projection on each opening. maxDist bounds the search when
// positive; zero or negative means unbounded. Ties on distance keep the first
// portal in attachment order. The second return is false when the group has
// no portals or none lies strictly inside the bound; that is a normal
// outcome, not an error.
func (g *Group) ClosestPortal(p math.Vec3, maxDist float32) (PortalHit, bool) {
	best := maxDist
	if best <= 0 {
		best = math32.MaxFloat32
	}

	var hit PortalHit
	found := false
	for i := range g.portals {
		ref := &g.portals[i]
		dist := ref.Portal.ProjectAndClamp(p).Distance(p)
		if dist >= best {
			continue
		}
		best = dist

		signed := dist
		if ref.Portal.SignedSide(p) < 0 {
			signed = -dist
		}
		hit = PortalHit{Portal: ref.Portal, Ref: *ref, Distance: signed}
		found = true
	}
	return hit, found
}

// ContainsPoint reports whether p falls inside the group: within its bounding
// box and reaching a non-empty leaf of its BSP tree.
func (g *Group) ContainsPoint(p math.Vec3) bool {
	if !g.bounds.Contains(p) {
		return false
	}
	leaf, ok := g.bsp.LeafAt(p)
	return ok && leaf.FaceCount > 0
}

// CreateView loads the group's materials through the root and hands geometry,
// batches and material handles to the factory. The handles stay held by the
// group until Dispose.
func (g *Group) CreateView(factory ViewFactory) error {
	if g.materials == nil {
		materials, err := g.root.LoadMaterials(g.matRefs)
		if err != nil {
			return fmt.Errorf("group %q: loading materials: %w", g.path, err)
		}
		g.materials = materials
	}
	return factory.CreateView(g.geometry, g.batches, g.materials)
}

// Dispose releases the group's geometry references and returns every held
// material handle to the root. Safe to call when CreateView never ran, and
// safe to call more than once.
func (g *Group) Dispose() {
	for _, handle := range g.materials {
		g.root.UnloadMaterial(handle)
	}
	g.materials = nil
	g.geometry = nil
}
