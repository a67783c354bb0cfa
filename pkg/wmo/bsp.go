package wmo

import (
	"fmt"

	"github.com/Faultbox/wmo-go/pkg/math"
)

// BSPTree is the static spatial index over one group's triangle geometry.
// It is built once from the decoded node/plane arrays and is immutable
// afterwards, so queries are safe from multiple goroutines.
//
// The partitioning itself is produced by the upstream asset pipeline; the
// tree only validates and walks it.
type BSPTree struct {
	nodes        []BSPNodeDef
	planeIndices []uint16
	planes       []math.Plane
	indices      []uint32
	positions    []math.Vec3
}

// BSPLeaf is the result of a point-location query: the reached leaf node and
// its contiguous triangle subrange of the group's index buffer.
type BSPLeaf struct {
	Node      int
	FaceStart int
	FaceCount int
}

// TriangleHit is the result of a nearest-triangle query.
type TriangleHit struct {
	// Triangle is the triangle offset into the index buffer (triple index).
	Triangle int
	// Point is the closest point on that triangle.
	Point math.Vec3
	// Distance is the Euclidean distance from the query point.
	Distance float32
}

// NewBSPTree validates the decoded BSP arrays against the geometry buffers
// and builds the tree. The slices are retained read-only, not copied.
func NewBSPTree(nodes []BSPNodeDef, planeIndices []uint16, planes []PlaneDef, indices []uint32, positions []math.Vec3) (*BSPTree, error) {
	if len(planeIndices) != len(nodes) {
		return nil, fmt.Errorf("%w: %d plane indices, %d nodes", ErrBSPNodeCount, len(planeIndices), len(nodes))
	}

	for i, idx := range indices {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("%w: index %d at offset %d, %d vertices", ErrGeometryIndexRange, idx, i, len(positions))
		}
	}

	triangles := len(indices) / 3
	for i, n := range nodes {
		if n.IsLeaf() {
			if int(n.FaceStart)+int(n.FaceCount) > triangles {
				return nil, fmt.Errorf("%w: node %d faces [%d,%d), %d triangles",
					ErrBSPFaceRange, i, n.FaceStart, int(n.FaceStart)+int(n.FaceCount), triangles)
			}
			continue
		}
		if int(planeIndices[i]) >= len(planes) {
			return nil, fmt.Errorf("%w: node %d plane %d, %d planes",
				ErrBSPPlaneIndex, i, planeIndices[i], len(planes))
		}
		if n.FrontChild < -1 || int(n.FrontChild) >= len(nodes) {
			return nil, fmt.Errorf("%w: node %d front child %d", ErrBSPChildIndex, i, n.FrontChild)
		}
		if n.BackChild < -1 || int(n.BackChild) >= len(nodes) {
			return nil, fmt.Errorf("%w: node %d back child %d", ErrBSPChildIndex, i, n.BackChild)
		}
	}

	// Every node must be reachable at most once from the root, or a descent
	// could revisit a node and never terminate.
	if len(nodes) > 0 {
		visited := make([]bool, len(nodes))
		stack := []int32{0}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[node] {
				return nil, fmt.Errorf("%w: node %d reachable twice", ErrBSPNodeCycle, node)
			}
			visited[node] = true

			n := nodes[node]
			if n.IsLeaf() {
				continue
			}
			if n.FrontChild >= 0 {
				stack = append(stack, n.FrontChild)
			}
			if n.BackChild >= 0 {
				stack = append(stack, n.BackChild)
			}
		}
	}

	unitPlanes := make([]math.Plane, len(planes))
	for i, p := range planes {
		unitPlanes[i] = math.NewPlane(math.Vec3{X: p.Normal[0], Y: p.Normal[1], Z: p.Normal[2]}, p.D)
	}

	return &BSPTree{
		nodes:        nodes,
		planeIndices: planeIndices,
		planes:       unitPlanes,
		indices:      indices,
		positions:    positions,
	}, nil
}

// LeafAt locates the leaf containing p. At each internal node the point
// descends into the front child when its signed plane distance is >= 0 and
// into the back child otherwise; a point exactly on a splitting plane is
// therefore always classified as front. The second return is false when the
// tree is empty or the descent reaches an empty side.
func (t *BSPTree) LeafAt(p math.Vec3) (BSPLeaf, bool) {
	if len(t.nodes) == 0 {
		return BSPLeaf{}, false
	}

	node := int32(0)
	for {
		n := t.nodes[node]
		if n.IsLeaf() {
			return BSPLeaf{
				Node:      int(node),
				FaceStart: int(n.FaceStart),
				FaceCount: int(n.FaceCount),
			}, true
		}

		next := n.BackChild
		if t.planes[t.planeIndices[node]].DistanceTo(p) >= 0 {
			next = n.FrontChild
		}
		if next < 0 {
			return BSPLeaf{}, false
		}
		node = next
	}
}

// ClosestTriangle locates the leaf containing p and returns the nearest
// triangle within it by point-to-triangle distance. The second return is
// false when no leaf is reached or the leaf holds no triangles. Ties keep
// the earliest triangle in the leaf's subrange.
func (t *BSPTree) ClosestTriangle(p math.Vec3) (TriangleHit, bool) {
	leaf, ok := t.LeafAt(p)
	if !ok || leaf.FaceCount == 0 {
		return TriangleHit{}, false
	}

	var best TriangleHit
	found := false
	for face := leaf.FaceStart; face < leaf.FaceStart+leaf.FaceCount; face++ {
		a := t.positions[t.indices[face*3]]
		b := t.positions[t.indices[face*3+1]]
		c := t.positions[t.indices[face*3+2]]

		closest := math.ClosestPointOnTriangle(p, a, b, c)
		dist := closest.Distance(p)
		if found && dist >= best.Distance {
			continue
		}
		best = TriangleHit{Triangle: face, Point: closest, Distance: dist}
		found = true
	}
	return best, found
}

// Leaves returns every leaf of the tree, in node order. Mostly useful for
// integrity checks over decoded definitions.
func (t *BSPTree) Leaves() []BSPLeaf {
	var leaves []BSPLeaf
	for i, n := range t.nodes {
		if n.IsLeaf() {
			leaves = append(leaves, BSPLeaf{Node: i, FaceStart: int(n.FaceStart), FaceCount: int(n.FaceCount)})
		}
	}
	return leaves
}
