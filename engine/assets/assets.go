package assets

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
)

var ErrWatcherClosed = errors.New("shader watcher already closed")

/**
 * @brief Watches the files materials load their shaders from. File events
 * arrive on a background goroutine and are only recorded; Poll applies them
 * on the render thread, since materials are not safe for concurrent use.
 */
type ShaderWatcher struct {
	mutex sync.Mutex

	// Cleaned file path to the materials reading it.
	materials map[string][]*resources.Material
	// Watched directory to the number of files in it.
	dirs    map[string]int
	pending map[string]struct{}

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewShaderWatcher() (*ShaderWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	sw := &ShaderWatcher{
		materials: make(map[string][]*resources.Material),
		dirs:      make(map[string]int),
		pending:   make(map[string]struct{}),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		fsnotify:  fsWatch,
	}
	go sw.start()
	return sw, nil
}

/**
 * @brief Starts watching every file m loaded a shader from. Directories are
 * watched rather than files, editors often save by replacing the file.
 */
func (sw *ShaderWatcher) Watch(m *resources.Material) error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	if sw.isClosed {
		return ErrWatcherClosed
	}

	for _, p := range m.ShaderFiles() {
		path := cleanPath(p)
		if containsMaterial(sw.materials[path], m) {
			continue
		}
		if len(sw.materials[path]) == 0 {
			dir := filepath.Dir(path)
			if sw.dirs[dir] == 0 {
				if err := sw.fsnotify.Add(dir); err != nil {
					return err
				}
			}
			sw.dirs[dir]++
		}
		sw.materials[path] = append(sw.materials[path], m)
	}
	return nil
}

// Unwatch stops reloading m. Directories nobody reads from any more are released.
func (sw *ShaderWatcher) Unwatch(m *resources.Material) {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	for path, ms := range sw.materials {
		sw.removeLocked(path, ms, m)
	}
}

func (sw *ShaderWatcher) removeLocked(path string, ms []*resources.Material, m *resources.Material) {
	for i, e := range ms {
		if e != m {
			continue
		}
		ms = append(ms[:i], ms[i+1:]...)
		if len(ms) > 0 {
			sw.materials[path] = ms
			return
		}
		delete(sw.materials, path)
		delete(sw.pending, path)
		dir := filepath.Dir(path)
		sw.dirs[dir]--
		if sw.dirs[dir] <= 0 {
			delete(sw.dirs, dir)
			if !sw.isClosed {
				sw.fsnotify.Remove(dir)
			}
		}
		return
	}
}

// Watched returns the number of files being watched.
func (sw *ShaderWatcher) Watched() int {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	return len(sw.materials)
}

/**
 * @brief Reloads the shaders of every material whose files changed since the
 * last call. Must run on the render thread. Destroyed materials are dropped.
 * @return The number of materials reloaded.
 */
func (sw *ShaderWatcher) Poll() int {
	sw.mutex.Lock()
	var reload []*resources.Material
	for path := range sw.pending {
		for _, m := range sw.materials[path] {
			if !containsMaterial(reload, m) {
				reload = append(reload, m)
			}
		}
	}
	clear(sw.pending)
	sw.mutex.Unlock()

	reloaded := 0
	for _, m := range reload {
		if m.Destroyed() {
			sw.Unwatch(m)
			continue
		}
		if err := m.ReloadShaders(); err != nil {
			core.LogWarn("failed to reload shaders of material %q: %s", m.Name, err)
			continue
		}
		core.LogDebug("reloaded shaders of material %q", m.Name)
		reloaded++
	}
	return reloaded
}

func (sw *ShaderWatcher) Close() error {
	sw.mutex.Lock()
	if sw.isClosed {
		sw.mutex.Unlock()
		return nil
	}
	sw.isClosed = true
	sw.mutex.Unlock()

	close(sw.done)
	<-sw.stopped
	return sw.fsnotify.Close()
}

func (sw *ShaderWatcher) start() {
	defer close(sw.stopped)
	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			// Handle create, modify or replace events
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				sw.notify(e.Name)
			}

		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("shader watcher: %s", err)

		case <-sw.done:
			return
		}
	}
}

// notify marks path for reload when a material reads from it.
func (sw *ShaderWatcher) notify(name string) {
	path := cleanPath(name)
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	if _, ok := sw.materials[path]; ok {
		sw.pending[path] = struct{}{}
	}
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func containsMaterial(ms []*resources.Material, m *resources.Material) bool {
	for _, e := range ms {
		if e == m {
			return true
		}
	}
	return false
}
