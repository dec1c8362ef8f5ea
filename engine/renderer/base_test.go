package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
)

type fakeContext struct {
	name  string
	valid bool
	// shared by every context of one test
	thread *fakeThread
}

type fakeThread struct {
	current  *fakeContext
	switches []string
}

func (t *fakeThread) Current() Context {
	if t.current == nil {
		return nil
	}
	return t.current
}

func newFakeContext(thread *fakeThread, name string) *fakeContext {
	return &fakeContext{name: name, valid: true, thread: thread}
}

func (c *fakeContext) MakeCurrent() {
	c.thread.current = c
	c.thread.switches = append(c.thread.switches, "make:"+c.name)
}

func (c *fakeContext) DoneCurrent() {
	if c.thread.current == c {
		c.thread.current = nil
	}
	c.thread.switches = append(c.thread.switches, "done:"+c.name)
}

func (c *fakeContext) IsCurrent() bool { return c.thread.current == c }
func (c *fakeContext) Valid() bool     { return c.valid }

type testCache struct {
	resources.MeshCacheBase
}

func newTestCache(m *resources.Mesh) *testCache {
	return &testCache{MeshCacheBase: resources.NewMeshCacheBase(m)}
}

type testRenderer struct {
	*Base
	freed []resources.Cache
	// contexts current while freeing
	freedOn []Context
}

func newTestRenderer(t *testing.T, opts Options) *testRenderer {
	r := &testRenderer{}
	r.Base = NewBase(r, opts, func(c resources.Cache) {
		r.freed = append(r.freed, c)
		if opts.Provider != nil {
			r.freedOn = append(r.freedOn, opts.Provider.Current())
		}
	})
	t.Cleanup(func() { _ = r.ReleaseIdentity() })
	return r
}

func (r *testRenderer) build(t *testing.T, m *resources.Mesh) *testCache {
	c, created, err := resources.GetOrEmplaceMeshCache(m, r.ID(), newTestCache)
	require.NoError(t, err)
	if created {
		r.Track(c)
	}
	return c
}

func TestSwitchContextAlreadyCurrent(t *testing.T) {
	thread := &fakeThread{}
	ctx := newFakeContext(thread, "a")
	ctx.MakeCurrent()
	thread.switches = nil

	restore, err := SwitchContext(thread, ctx)
	require.NoError(t, err)
	restore()

	assert.Empty(t, thread.switches)
	assert.True(t, ctx.IsCurrent())
}

func TestSwitchContextRestoresPrevious(t *testing.T) {
	thread := &fakeThread{}
	a := newFakeContext(thread, "a")
	b := newFakeContext(thread, "b")
	a.MakeCurrent()
	thread.switches = nil

	restore, err := SwitchContext(thread, b)
	require.NoError(t, err)
	assert.True(t, b.IsCurrent())
	restore()

	assert.True(t, a.IsCurrent())
	assert.Equal(t, []string{"make:b", "make:a"}, thread.switches)
}

func TestSwitchContextDetachesWhenNothingWasCurrent(t *testing.T) {
	thread := &fakeThread{}
	b := newFakeContext(thread, "b")

	restore, err := SwitchContext(thread, b)
	require.NoError(t, err)
	restore()

	assert.Nil(t, thread.Current())
	assert.Equal(t, []string{"make:b", "done:b"}, thread.switches)
}

func TestSwitchContextUnavailable(t *testing.T) {
	thread := &fakeThread{}
	b := newFakeContext(thread, "b")
	b.valid = false

	restore, err := SwitchContext(thread, b)
	assert.ErrorIs(t, err, core.ErrContextUnavailable)
	assert.NotNil(t, restore)
	restore()
	assert.Empty(t, thread.switches)

	_, err = SwitchContext(thread, nil)
	assert.ErrorIs(t, err, core.ErrContextUnavailable)
}

func TestDeleteCacheRunsOnRendererContext(t *testing.T) {
	thread := &fakeThread{}
	other := newFakeContext(thread, "other")
	ctx := newFakeContext(thread, "renderer")
	other.MakeCurrent()

	r := newTestRenderer(t, Options{Context: ctx, Provider: thread, DeferredDeletionCapacity: 4})
	m := resources.NewMesh(nil)
	c := r.build(t, m)
	require.Equal(t, 1, r.TrackedCaches())

	r.DeleteCache(c)

	require.Len(t, r.freed, 1)
	assert.Same(t, ctx, r.freedOn[0])
	assert.True(t, c.Released())
	assert.Equal(t, 0, r.TrackedCaches())
	assert.True(t, other.IsCurrent(), "previous context restored")

	// A released cache is not freed twice.
	r.DeleteCache(c)
	assert.Len(t, r.freed, 1)
}

func TestDeleteCacheDefersWithoutContext(t *testing.T) {
	thread := &fakeThread{}
	ctx := newFakeContext(thread, "renderer")
	ctx.valid = false

	r := newTestRenderer(t, Options{Context: ctx, Provider: thread, DeferredDeletionCapacity: 4})
	m := resources.NewMesh(nil)
	c := r.build(t, m)

	r.DeleteCache(c)
	assert.Empty(t, r.freed)
	assert.True(t, c.Released(), "entry reads as absent right away")
	assert.Equal(t, 1, r.PendingDeletions())

	// Still unavailable, nothing happens.
	r.FlushDeferred()
	assert.Empty(t, r.freed)

	ctx.valid = true
	r.FlushDeferred()
	require.Len(t, r.freed, 1)
	assert.Same(t, c, r.freed[0])
	assert.Equal(t, 0, r.PendingDeletions())
}

func TestDeleteCacheLeaksWhenQueueIsFull(t *testing.T) {
	thread := &fakeThread{}
	ctx := newFakeContext(thread, "renderer")
	ctx.valid = false

	r := newTestRenderer(t, Options{Context: ctx, Provider: thread, DeferredDeletionCapacity: 1})
	first := r.build(t, resources.NewMesh(nil))
	second := r.build(t, resources.NewMesh(nil))

	r.DeleteCache(first)
	r.DeleteCache(second)
	assert.Equal(t, 1, r.PendingDeletions())
	assert.True(t, second.Released())

	ctx.valid = true
	r.FlushDeferred()
	require.Len(t, r.freed, 1)
	assert.Same(t, first, r.freed[0])
}

func TestDeleteAllFreesEverything(t *testing.T) {
	thread := &fakeThread{}
	ctx := newFakeContext(thread, "renderer")
	r := newTestRenderer(t, Options{Context: ctx, Provider: thread, DeferredDeletionCapacity: 4})

	meshes := []*resources.Mesh{resources.NewMesh(nil), resources.NewMesh(nil), resources.NewMesh(nil)}
	var caches []*testCache
	for _, m := range meshes {
		caches = append(caches, r.build(t, m))
	}

	extra := false
	r.DeleteAll(func() { extra = true })

	assert.True(t, extra)
	assert.Len(t, r.freed, 3)
	assert.Equal(t, 0, r.TrackedCaches())
	for i, c := range caches {
		assert.True(t, c.Released())
		// The next request builds a fresh cache.
		again := r.build(t, meshes[i])
		assert.NotSame(t, c, again)
	}
}

func TestDeleteAllWithoutContextLeaks(t *testing.T) {
	thread := &fakeThread{}
	ctx := newFakeContext(thread, "renderer")
	r := newTestRenderer(t, Options{Context: ctx, Provider: thread, DeferredDeletionCapacity: 4})

	a := r.build(t, resources.NewMesh(nil))
	b := r.build(t, resources.NewMesh(nil))
	ctx.valid = false
	r.DeleteCache(a)
	require.Equal(t, 1, r.PendingDeletions())

	extra := false
	r.DeleteAll(func() { extra = true })

	assert.False(t, extra)
	assert.Empty(t, r.freed)
	assert.True(t, b.Released())
	assert.Equal(t, 0, r.PendingDeletions())
}

func TestResourceDestroyCascadesToRenderer(t *testing.T) {
	thread := &fakeThread{}
	ctx := newFakeContext(thread, "renderer")
	r := newTestRenderer(t, Options{Context: ctx, Provider: thread})

	m := resources.NewMesh(nil)
	c := r.build(t, m)

	m.Destroy()

	require.Len(t, r.freed, 1)
	assert.Same(t, c, r.freed[0])
	assert.Equal(t, 0, r.TrackedCaches())
}

func TestResourceDestroyAfterRendererReleased(t *testing.T) {
	thread := &fakeThread{}
	ctx := newFakeContext(thread, "renderer")
	r := newTestRenderer(t, Options{Context: ctx, Provider: thread})

	m := resources.NewMesh(nil)
	r.build(t, m)
	require.NoError(t, r.ReleaseIdentity())

	assert.NotPanics(t, m.Destroy)
	assert.Empty(t, r.freed)
}

func TestCleanupOrphans(t *testing.T) {
	thread := &fakeThread{}
	ctx := newFakeContext(thread, "renderer")
	r := newTestRenderer(t, Options{Context: ctx, Provider: thread})

	live := resources.NewMesh(nil)
	r.build(t, live)

	// A cache the mesh does not know about, so destroying the mesh does not
	// reach the renderer.
	gone := resources.NewMesh(nil)
	orphan := newTestCache(gone)
	r.Track(orphan)
	gone.Destroy()
	require.True(t, orphan.Orphaned())

	assert.Equal(t, 1, r.CleanupOrphans())
	require.Len(t, r.freed, 1)
	assert.Same(t, orphan, r.freed[0])
	assert.Equal(t, 1, r.TrackedCaches())
	assert.Equal(t, 0, r.CleanupOrphans())
}

func TestFrameBracket(t *testing.T) {
	r := newTestRenderer(t, Options{})

	assert.ErrorIs(t, r.EndFrame(), core.ErrNoFrameInProgress)
	require.NoError(t, r.BeginFrame(nil, nil))
	assert.True(t, r.InFrame())
	assert.ErrorIs(t, r.BeginFrame(nil, nil), core.ErrFrameInProgress)
	require.NoError(t, r.EndFrame())
	assert.False(t, r.InFrame())
}

func TestMaxLightsIsBounded(t *testing.T) {
	assert.Equal(t, core.MaxLightSlots, newTestRenderer(t, Options{MaxLights: 100}).MaxLights())
	assert.Equal(t, core.MaxLightSlots, newTestRenderer(t, Options{}).MaxLights())
	assert.Equal(t, 2, newTestRenderer(t, Options{MaxLights: 2}).MaxLights())
}

func TestIdentityLookupFindsRenderer(t *testing.T) {
	r := newTestRenderer(t, Options{})
	owner, ok := core.IdentifierLookup(r.ID())
	require.True(t, ok)
	assert.Same(t, r, owner)

	other := newTestRenderer(t, Options{})
	assert.NotEqual(t, r.ID(), other.ID())
}
