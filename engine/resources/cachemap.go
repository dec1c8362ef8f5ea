package resources

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/spaghettifunk/lumen/engine/core"
)

type cacheEntry struct {
	cache Cache
	// kind is the concrete type the cache was built as. A request for a
	// different type under the same renderer identity is rejected.
	kind reflect.Type
}

func (e cacheEntry) expired() bool {
	return e.cache == nil || e.cache.Released()
}

/**
 * @brief Maps renderer identities to the cache built for them. Entries hold a
 * released-aware handle: once the renderer releases a cache, the entry reads
 * as absent.
 */
type CacheMap struct {
	entries map[core.Identifier]cacheEntry
}

func (cm *CacheMap) lazyInit() {
	if cm.entries == nil {
		cm.entries = make(map[core.Identifier]cacheEntry)
	}
}

// GetOrEmplace returns the cache stored for id, or builds, stores and returns a
// new one. created reports whether build was called. A live entry of a
// different concrete type yields core.ErrCacheTypeMismatch.
func GetOrEmplace[T Cache](cm *CacheMap, id core.Identifier, build func() T) (cache T, created bool, err error) {
	cm.lazyInit()
	want := reflect.TypeFor[T]()

	if e, ok := cm.entries[id]; ok && !e.expired() {
		c, ok := e.cache.(T)
		if !ok {
			return cache, false, fmt.Errorf("%w: renderer %s holds %s, requested %s", core.ErrCacheTypeMismatch, id, e.kind, want)
		}
		return c, false, nil
	}

	cache = build()
	cm.entries[id] = cacheEntry{cache: cache, kind: reflect.TypeOf(cache)}
	return cache, true, nil
}

// GetCacheT returns the live cache stored for id, or the zero value of T if
// there is none.
func GetCacheT[T Cache](cm *CacheMap, id core.Identifier) (T, error) {
	var zero T
	e, ok := cm.entries[id]
	if !ok || e.expired() {
		return zero, nil
	}
	c, ok := e.cache.(T)
	if !ok {
		return zero, fmt.Errorf("%w: renderer %s holds %s, requested %s", core.ErrCacheTypeMismatch, id, e.kind, reflect.TypeFor[T]())
	}
	return c, nil
}

// Invalidate marks caches dirty. With core.AllRenderers every live cache is
// marked and expired entries are dropped. With a single identity an expired
// entry is erased and a live one marked.
func (cm *CacheMap) Invalidate(id core.Identifier) {
	if id == core.AllRenderers {
		for k, e := range cm.entries {
			if e.expired() {
				delete(cm.entries, k)
				continue
			}
			e.cache.MarkDirty()
		}
		return
	}

	e, ok := cm.entries[id]
	if !ok {
		return
	}
	if e.expired() {
		delete(cm.entries, id)
		return
	}
	e.cache.MarkDirty()
}

// Forget drops the entry for id without touching the cache.
func (cm *CacheMap) Forget(id core.Identifier) {
	delete(cm.entries, id)
}

// Len counts live entries.
func (cm *CacheMap) Len() int {
	n := 0
	for _, e := range cm.entries {
		if !e.expired() {
			n++
		}
	}
	return n
}

// Each visits live entries in identity order.
func (cm *CacheMap) Each(fn func(id core.Identifier, c Cache)) {
	ids := make([]core.Identifier, 0, len(cm.entries))
	for id, e := range cm.entries {
		if !e.expired() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(id, cm.entries[id].cache)
	}
}

// release hands every live cache back to the renderer that built it. Renderers
// that no longer exist are skipped: their teardown already freed the GPU
// objects, or the context is gone.
func (cm *CacheMap) release(rt ResourceType) {
	cm.Each(func(id core.Identifier, c Cache) {
		owner, ok := core.IdentifierLookup(id)
		if !ok {
			core.LogInfo("%s destroyed: potential memory leak? Renderer %s not available.", rt, id)
			return
		}
		deleter, ok := owner.(CacheDeleter)
		if !ok {
			core.LogInfo("%s destroyed: owner of renderer id %s cannot delete caches", rt, id)
			return
		}
		deleter.DeleteCache(c)
	})
	cm.entries = nil
}
