package wmo

// MaterialHandle is an opaque handle to a loaded material. Handles are issued
// and reclaimed by the root container; the geometry core never inspects them.
type MaterialHandle any

// Root is the contract a world-model container fulfils toward its groups.
// The container owns the shared portal, portal-ref and material tables;
// groups hold non-owning references into them.
//
// Portals and PortalRefs must not be mutated once any group has been built
// from them. LoadMaterials and UnloadMaterial may be called from whichever
// goroutine builds or disposes a group, so implementations serialize access
// to their material table.
type Root interface {
	Portals() []*Portal
	PortalRefs() []PortalRefDef
	LoadMaterials(refs []uint8) ([]MaterialHandle, error)
	UnloadMaterial(handle MaterialHandle)
}

// ViewFactory receives a ready group's geometry and material handles and
// turns them into whatever view object the rendering side uses. The geometry
// core stops at this handoff.
type ViewFactory interface {
	CreateView(geometry *GeometryDef, batches []BatchDef, materials []MaterialHandle) error
}
