// Package world implements the root container of a world model: the owner of
// the shared portal, portal-ref and material tables, and of every group built
// from a decoded definition.
package world

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/wmo-go/internal/logger"
	"github.com/Faultbox/wmo-go/pkg/math"
	"github.com/Faultbox/wmo-go/pkg/wmo"
)

// Material is the handle the container issues for one entry of its material
// table. Opaque to the geometry core.
type Material struct {
	Index int
	Def   wmo.MaterialDef
}

// Container owns a loaded world model. The shared tables are written only
// during NewContainer; afterwards groups hold read-only references into them,
// so queries are safe from multiple goroutines. The material reference counts
// are the one mutable piece and are guarded by a mutex.
type Container struct {
	name       string
	portals    []*wmo.Portal
	portalRefs []wmo.PortalRefDef
	groups     []*wmo.Group

	mu        sync.Mutex
	materials []*Material
	refCounts []int
}

// NewContainer builds the shared tables and every group of the definition.
// Groups are independent once the tables exist, so they are built
// concurrently; any malformed group definition aborts the whole load.
func NewContainer(def *wmo.WorldDef) (*Container, error) {
	c := &Container{
		name:       def.Name,
		portalRefs: def.PortalRefs,
		groups:     make([]*wmo.Group, len(def.Groups)),
		refCounts:  make([]int, len(def.Materials)),
	}

	for i, pd := range def.Portals {
		portal, err := wmo.NewPortal(pd)
		if err != nil {
			return nil, fmt.Errorf("world %q: portal %d: %w", def.Name, i, err)
		}
		c.portals = append(c.portals, portal)
	}

	c.materials = make([]*Material, len(def.Materials))
	for i, md := range def.Materials {
		c.materials[i] = &Material{Index: i, Def: md}
	}

	var g errgroup.Group
	for i := range def.Groups {
		i := i
		g.Go(func() error {
			group, err := wmo.NewGroup(c, &def.Groups[i])
			if err != nil {
				return fmt.Errorf("world %q: %w", def.Name, err)
			}
			c.groups[i] = group
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("world model loaded",
		zap.String("name", def.Name),
		zap.Int("groups", len(c.groups)),
		zap.Int("portals", len(c.portals)),
		zap.Int("materials", len(c.materials)))

	return c, nil
}

// Portals returns the shared portal table.
func (c *Container) Portals() []*wmo.Portal { return c.portals }

// PortalRefs returns the shared portal-ref table.
func (c *Container) PortalRefs() []wmo.PortalRefDef { return c.portalRefs }

// LoadMaterials resolves material refs into handles, bumping reference
// counts. An out-of-range ref fails the whole load and leaves counts
// untouched.
func (c *Container) LoadMaterials(refs []uint8) ([]wmo.MaterialHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ref := range refs {
		if int(ref) >= len(c.materials) {
			return nil, fmt.Errorf("world %q: material ref %d out of range (%d materials)", c.name, ref, len(c.materials))
		}
	}

	handles := make([]wmo.MaterialHandle, len(refs))
	for i, ref := range refs {
		c.refCounts[ref]++
		handles[i] = c.materials[ref]
	}
	return handles, nil
}

// UnloadMaterial returns one handle, dropping its reference count.
func (c *Container) UnloadMaterial(handle wmo.MaterialHandle) {
	material, ok := handle.(*Material)
	if !ok {
		logger.Warn("unload of foreign material handle", zap.String("world", c.name))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refCounts[material.Index] > 0 {
		c.refCounts[material.Index]--
	}
}

// Groups returns the container's groups in definition order.
func (c *Container) Groups() []*wmo.Group { return c.groups }

// Group returns the group at the given index.
func (c *Container) Group(index int) (*wmo.Group, bool) {
	if index < 0 || index >= len(c.groups) {
		return nil, false
	}
	return c.groups[index], true
}

// GroupAt locates the group containing p, checking bounding boxes first and
// confirming against each candidate's BSP tree. Returns false when no group
// contains the point.
func (c *Container) GroupAt(p math.Vec3) (*wmo.Group, bool) {
	for _, group := range c.groups {
		if group.ContainsPoint(p) {
			return group, true
		}
	}
	return nil, false
}

// Transition is the outcome of a portal-transition query: the portal hit and
// the group on the other side, when it exists.
type Transition struct {
	Hit wmo.PortalHit
	To  *wmo.Group
}

// ResolveTransition finds the portal of the given group nearest to p (within
// maxDist, unbounded when <= 0) and resolves the neighboring group the point
// would cross into. Returns false when the group has no qualifying portal;
// that is a normal outcome.
func (c *Container) ResolveTransition(groupIndex int, p math.Vec3, maxDist float32) (Transition, bool) {
	group, ok := c.Group(groupIndex)
	if !ok {
		return Transition{}, false
	}

	hit, ok := group.ClosestPortal(p, maxDist)
	if !ok {
		return Transition{}, false
	}

	to, ok := c.Group(int(hit.Ref.GroupIndex))
	if !ok {
		logger.Warn("portal ref points at missing group",
			zap.String("world", c.name),
			zap.Int("from", groupIndex),
			zap.Uint16("to", hit.Ref.GroupIndex))
		return Transition{}, false
	}

	logger.Debug("portal transition resolved",
		zap.String("world", c.name),
		zap.Int("from", groupIndex),
		zap.Int("to", to.Index()),
		zap.Float32("distance", hit.Distance))

	return Transition{Hit: hit, To: to}, true
}

// MaterialRefCount reports the live reference count of one material table
// entry.
func (c *Container) MaterialRefCount(index int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.refCounts) {
		return 0
	}
	return c.refCounts[index]
}

// Close disposes every group, releasing geometry references and material
// handles. Safe to call more than once.
func (c *Container) Close() {
	for _, group := range c.groups {
		group.Dispose()
	}
	logger.Info("world model closed", zap.String("name", c.name))
}
