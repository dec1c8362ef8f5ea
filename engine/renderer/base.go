package renderer

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

/**
 * @brief Backend independent renderer state: identity, the caches built so
 * far, the deferred deletion queue and the frame bracket. Backends embed it
 * and hand it the function that frees one cache's GPU objects.
 */
type Base struct {
	id       core.Identifier
	ctx      Context
	provider ContextProvider
	free     func(resources.Cache)

	caches  []resources.Cache
	pending *deferredDeletions

	inFrame bool
	camera  *scene.Camera
	scene   *scene.Scene
	items   DrawList

	maxLights int
}

/**
 * @brief Creates the shared renderer state.
 * @param owner The backend renderer. Resources look it up by identity to delete caches.
 * @param opts The renderer options.
 * @param free Frees the GPU objects of a cache. Always called with the context current.
 */
func NewBase(owner resources.CacheDeleter, opts Options, free func(resources.Cache)) *Base {
	maxLights := opts.MaxLights
	if maxLights <= 0 || maxLights > core.MaxLightSlots {
		maxLights = core.MaxLightSlots
	}
	b := &Base{
		id:        core.IdentifierAquireNewID(owner),
		ctx:       opts.Context,
		provider:  opts.Provider,
		free:      free,
		pending:   newDeferredDeletions(opts.DeferredDeletionCapacity),
		maxLights: maxLights,
	}
	core.LogDebug("renderer %s created", b.id)
	return b
}

func (b *Base) ID() core.Identifier   { return b.id }
func (b *Base) Context() Context      { return b.ctx }
func (b *Base) MaxLights() int        { return b.maxLights }
func (b *Base) InFrame() bool         { return b.inFrame }
func (b *Base) Camera() *scene.Camera { return b.camera }
func (b *Base) Scene() *scene.Scene   { return b.scene }
func (b *Base) Items() *DrawList      { return &b.items }

// Track records a cache created by this renderer.
func (b *Base) Track(c resources.Cache) {
	b.caches = append(b.caches, c)
}

func (b *Base) untrack(c resources.Cache) bool {
	for i, tracked := range b.caches {
		if tracked == c {
			b.caches = append(b.caches[:i], b.caches[i+1:]...)
			return true
		}
	}
	return false
}

// TrackedCaches returns the number of live caches built by this renderer.
func (b *Base) TrackedCaches() int { return len(b.caches) }

// PendingDeletions returns the number of caches waiting for the context.
func (b *Base) PendingDeletions() int { return b.pending.len() }

// BeginFrame opens the frame bracket and clears the draw list.
func (b *Base) BeginFrame(camera *scene.Camera, sc *scene.Scene) error {
	if b.inFrame {
		return core.ErrFrameInProgress
	}
	b.inFrame = true
	b.camera = camera
	b.scene = sc
	b.items.Reset()
	return nil
}

// Queue files one visible group into the open frame.
func (b *Base) Queue(item scene.DrawItem) error {
	if !b.inFrame {
		return core.ErrNoFrameInProgress
	}
	b.items.Add(item)
	return nil
}

func (b *Base) EndFrame() error {
	if !b.inFrame {
		return core.ErrNoFrameInProgress
	}
	b.inFrame = false
	b.camera = nil
	b.scene = nil
	return nil
}

/**
 * @brief Runs fn with the renderer's context current, restoring the
 * previous context afterwards.
 * @return core.ErrContextUnavailable if the context cannot be made current; fn is not called.
 */
func (b *Base) WithContext(fn func()) error {
	restore, err := SwitchContext(b.provider, b.ctx)
	if err != nil {
		return err
	}
	defer restore()
	fn()
	return nil
}

/**
 * @brief Frees one cache on the renderer's context. Without a usable
 * context the cache is released at once and its GPU objects are queued
 * until the context comes back. When the queue is full the objects leak.
 */
func (b *Base) DeleteCache(c resources.Cache) {
	if c == nil || c.Released() {
		return
	}
	b.untrack(c)

	err := b.WithContext(func() {
		b.free(c)
	})
	c.Release()
	if err == nil {
		return
	}
	if b.pending.push(c) {
		core.LogDebug("renderer %s: deletion of %T deferred, %s", b.id, c, err)
		return
	}
	core.LogInfo("Couldn't delete %T: %s. A memory leak might have happened.", c, err)
}

// FlushDeferred frees the queued caches. Backends call it once the context is current.
func (b *Base) FlushDeferred() {
	if b.pending.len() == 0 {
		return
	}
	err := b.WithContext(func() {
		n := b.pending.flush(b.free)
		core.LogDebug("renderer %s: flushed %d deferred deletions", b.id, n)
	})
	if err != nil {
		core.LogDebug("renderer %s: %d deletions still deferred, %s", b.id, b.pending.len(), err)
	}
}

/**
 * @brief Frees every cache built by this renderer and the deferred ones.
 * Without a usable context the caches are released and their GPU objects
 * leak.
 */
func (b *Base) DeleteAll(extra func()) {
	caches := b.caches
	b.caches = nil

	err := b.WithContext(func() {
		b.pending.flush(b.free)
		for _, c := range caches {
			if !c.Released() {
				b.free(c)
			}
		}
		if extra != nil {
			extra()
		}
	})
	for _, c := range caches {
		c.Release()
	}
	if err != nil {
		lost := b.pending.drop()
		core.LogInfo("Couldn't delete resources of renderer %s (%d caches, %d deferred): %s. A memory leak might have happened.", b.id, len(caches), lost, err)
	}
}

// CleanupOrphans deletes the caches whose owning resource has been destroyed
// and forgets the ones released elsewhere.
func (b *Base) CleanupOrphans() int {
	var orphans []resources.Cache
	kept := b.caches[:0]
	for _, c := range b.caches {
		switch {
		case c.Released():
		case c.Orphaned():
			orphans = append(orphans, c)
		default:
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(b.caches); i++ {
		b.caches[i] = nil
	}
	b.caches = kept

	for _, c := range orphans {
		b.DeleteCache(c)
	}
	return len(orphans)
}

// ReleaseIdentity gives the renderer identity back. Resources destroyed
// afterwards skip this renderer's caches.
func (b *Base) ReleaseIdentity() error {
	if b.id == core.InvalidID {
		return nil
	}
	err := core.IdentifierReleaseID(b.id)
	core.LogDebug("renderer %s released", b.id)
	b.id = core.InvalidID
	return err
}
