package resources

import (
	"github.com/google/uuid"
)

type ResourceType int

/** @brief Resource kinds known to the Manager. */
const (
	ResourceTypeMesh ResourceType = iota
	ResourceTypeLineGroup
	ResourceTypeMaterial
	ResourceTypeMaterialProperties
	ResourceTypeTexture
	ResourceTypeCubemap
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeMesh:
		return "Mesh"
	case ResourceTypeLineGroup:
		return "LineGroup"
	case ResourceTypeMaterial:
		return "Material"
	case ResourceTypeMaterialProperties:
		return "MaterialProperties"
	case ResourceTypeTexture:
		return "Texture"
	case ResourceTypeCubemap:
		return "Cubemap"
	}
	return "Unknown"
}

/**
 * @brief Base for every engine asset whose lifetime is independent of any renderer.
 * Resources are compared by pointer identity. The Manager back-reference is weak:
 * it is cleared when the Manager is destroyed.
 *
 * Resources and their caches are not safe for concurrent use. Every call must
 * come from the render thread.
 */
type Resource struct {
	ID        uuid.UUID
	Name      string
	Type      ResourceType
	manager   *Manager
	destroyed bool
}

func newResource(rt ResourceType, manager *Manager) Resource {
	return Resource{
		ID:      uuid.New(),
		Type:    rt,
		manager: manager,
	}
}

// ResourceManager returns the owning manager, or nil.
func (r *Resource) ResourceManager() *Manager {
	if r == nil {
		return nil
	}
	return r.manager
}

func (r *Resource) Destroyed() bool {
	return r == nil || r.destroyed
}

func (r *Resource) markDestroyed() {
	if r.manager != nil {
		r.manager.forget(r)
	}
	r.destroyed = true
}
