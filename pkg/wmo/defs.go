// Package wmo implements the geometry core of an indoor world model: typed
// definition records decoded from a model file by an external collaborator,
// the per-group BSP spatial index, and the portal system linking groups.
//
// The package performs no I/O and never renders; it operates on already
// decoded numeric arrays and exposes geometric queries over them.
package wmo

import (
	"errors"
	"fmt"
)

// Definition validation errors.
var (
	ErrGeometryIndexCount = errors.New("geometry index count is not a multiple of 3")
	ErrGeometryIndexRange = errors.New("geometry index exceeds position buffer")
	ErrPositionCount      = errors.New("position count is not a multiple of 3")
	ErrBSPNodeCount       = errors.New("bsp plane-index array does not match node array")
	ErrBSPPlaneIndex      = errors.New("bsp node references plane index out of range")
	ErrBSPChildIndex      = errors.New("bsp node references child index out of range")
	ErrBSPNodeCycle       = errors.New("bsp node array is not a tree")
	ErrBSPFaceRange       = errors.New("bsp leaf face range exceeds index buffer")
	ErrPortalVertexCount  = errors.New("portal polygon has fewer than 3 vertices")
	ErrPortalRefRange     = errors.New("group portal subrange exceeds portal-ref table")
	ErrPortalIndexRange   = errors.New("portal ref references portal out of range")
)

// GeometryDef holds a group's decoded vertex and triangle data.
// Normals, UVs and Colors are carried for the rendering collaborator and are
// not consulted by the geometric queries.
type GeometryDef struct {
	Positions []float32 `json:"positions"` // xyz triples
	Normals   []float32 `json:"normals,omitempty"`
	UVs       []float32 `json:"uvs,omitempty"`
	Colors    []uint8   `json:"colors,omitempty"`
	Indices   []uint32  `json:"indices"` // triangle index triples
}

// VertexCount returns the number of positions in the buffer.
func (g *GeometryDef) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles in the index buffer.
func (g *GeometryDef) TriangleCount() int {
	return len(g.Indices) / 3
}

// Validate checks the internal consistency of the geometry buffers.
func (g *GeometryDef) Validate() error {
	if len(g.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d floats", ErrPositionCount, len(g.Positions))
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrGeometryIndexCount, len(g.Indices))
	}
	vertices := uint32(g.VertexCount())
	for i, idx := range g.Indices {
		if idx >= vertices {
			return fmt.Errorf("%w: index %d at offset %d, %d vertices", ErrGeometryIndexRange, idx, i, vertices)
		}
	}
	return nil
}

// BatchDef names a contiguous index range drawn with one material slot.
type BatchDef struct {
	IndexStart   uint32 `json:"index_start"`
	IndexCount   uint32 `json:"index_count"`
	MaterialSlot uint8  `json:"material_slot"`
}

// GroupHeader carries the per-group header record, including the subrange of
// the root's portal-ref table that belongs to this group.
type GroupHeader struct {
	Flags       uint32        `json:"flags"`
	Bounds      [2][3]float32 `json:"bounds"` // min, max corners
	PortalStart uint16        `json:"portal_start"`
	PortalCount uint16        `json:"portal_count"`
}

// BSPNodeLeaf marks a BSP node as a leaf in BSPNodeDef.Flags.
const BSPNodeLeaf uint16 = 0x4

// BSPNodeDef is one entry of a group's decoded BSP node array. Internal nodes
// reference children by index into the same array (-1 for an empty side);
// leaves reference a contiguous triangle subrange of the index buffer.
type BSPNodeDef struct {
	Flags      uint16 `json:"flags"`
	FrontChild int32  `json:"front_child"`
	BackChild  int32  `json:"back_child"`
	FaceStart  uint32 `json:"face_start"`
	FaceCount  uint16 `json:"face_count"`
}

// IsLeaf reports whether the node is a leaf.
func (n BSPNodeDef) IsLeaf() bool {
	return n.Flags&BSPNodeLeaf != 0
}

// PlaneDef is one entry of a group's splitting-plane table.
type PlaneDef struct {
	Normal [3]float32 `json:"normal"`
	D      float32    `json:"d"`
}

// GroupDef is the decoded definition of one group (room/cell).
type GroupDef struct {
	Path         string      `json:"path"`
	Index        int         `json:"index"`
	ID           uint32      `json:"id"`
	Header       GroupHeader `json:"header"`
	DoodadRefs   []uint16    `json:"doodad_refs,omitempty"` // opaque, passed through
	MaterialRefs []uint8     `json:"material_refs,omitempty"`
	Geometry     GeometryDef `json:"geometry"`
	Batches      []BatchDef  `json:"batches,omitempty"`

	// BSP arrays: Nodes and PlaneIndices are parallel; PlaneIndices maps each
	// internal node to an entry of Planes.
	Nodes        []BSPNodeDef `json:"nodes"`
	PlaneIndices []uint16     `json:"plane_indices"`
	Planes       []PlaneDef   `json:"planes"`
}

// PortalDef is the decoded boundary polygon of one portal. The polygon is
// planar and convex; winding determines which side is "front".
type PortalDef struct {
	Vertices [][3]float32 `json:"vertices"`
}

// PortalRefDef is one entry of the root's flat portal-ref table: which portal,
// which group lies on the other side, and which side of the portal plane the
// owning group occupies.
type PortalRefDef struct {
	PortalIndex uint16 `json:"portal_index"`
	GroupIndex  uint16 `json:"group_index"`
	Side        int16  `json:"side"`
}

// MaterialDef is opaque to the geometry core; it is resolved into handles by
// the root container and handed to the rendering collaborator.
type MaterialDef struct {
	Texture   string `json:"texture"`
	BlendMode uint8  `json:"blend_mode"`
}

// WorldDef is the decoded definition of a whole world model: the shared
// portal, portal-ref and material tables plus every group definition.
type WorldDef struct {
	Name       string         `json:"name"`
	Portals    []PortalDef    `json:"portals"`
	PortalRefs []PortalRefDef `json:"portal_refs"`
	Materials  []MaterialDef  `json:"materials"`
	Groups     []GroupDef     `json:"groups"`
}
