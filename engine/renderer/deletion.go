package renderer

import (
	"github.com/spaghettifunk/lumen/engine/containers"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// deferredDeletions holds caches whose GPU objects could not be freed because
// the context was unavailable when the deletion was requested.
type deferredDeletions struct {
	queue *containers.RingQueue[resources.Cache]
}

func newDeferredDeletions(capacity int) *deferredDeletions {
	if capacity <= 0 {
		return &deferredDeletions{}
	}
	return &deferredDeletions{queue: containers.NewRingQueue[resources.Cache](capacity)}
}

// push queues c. It returns false when there is no room, the caller leaks.
func (d *deferredDeletions) push(c resources.Cache) bool {
	if d.queue == nil {
		return false
	}
	if err := d.queue.Enqueue(c); err != nil {
		core.LogInfo("deferred deletion queue is full (%d). A memory leak might have happened.", d.queue.Cap())
		return false
	}
	return true
}

func (d *deferredDeletions) flush(free func(resources.Cache)) int {
	if d.queue == nil {
		return 0
	}
	n := d.queue.Len()
	d.queue.Drain(free)
	return n
}

// drop forgets every pending deletion. Returns how many were lost.
func (d *deferredDeletions) drop() int {
	if d.queue == nil {
		return 0
	}
	n := d.queue.Len()
	d.queue.Drain(func(resources.Cache) {})
	return n
}

func (d *deferredDeletions) len() int {
	if d.queue == nil {
		return 0
	}
	return d.queue.Len()
}
