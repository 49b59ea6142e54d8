// Package resource implements a reference-counted typed resource cache:
// single-flight loads keyed by "domain:path[:variant]" strings, scoped
// Handles, and either immediate or deferred unload.
//
// Grounded in fizzle's TextureManager (a string-keyed cache of loaded GL
// handles, cache-hit-or-load-and-store), generalized to generic value
// types, reference counting, and concurrent access.
package resource

import "sync"

// Loader loads the value for key, or returns an error (which Manager.Get
// surfaces as *LoadError, leaving the cache untouched).
type Loader[T any] func(key string) (T, error)

// Unloader releases whatever external state v owns (GPU objects, file
// handles). Called with the manager's entry lock held.
type Unloader[T any] func(v T)

type entry[T any] struct {
	mu       sync.Mutex
	value    T
	alive    bool
	refcount int32
}

// Manager is a typed, reference-counted cache. The zero value is not
// usable; construct with NewManager.
type Manager[T any] struct {
	mu              sync.Mutex
	entries         map[string]*entry[T]
	load            Loader[T]
	unload          Unloader[T]
	immediateUnload bool
}

// NewManager returns a Manager backed by load/unload. immediateUnload
// controls whether Release reaching a zero refcount unloads right away
// (true) or waits for Cleanup/Dispose (false).
func NewManager[T any](load Loader[T], unload Unloader[T], immediateUnload bool) *Manager[T] {
	return &Manager[T]{
		entries:         make(map[string]*entry[T]),
		load:            load,
		unload:          unload,
		immediateUnload: immediateUnload,
	}
}

// Get returns a Handle on cache hit (incrementing the refcount) or loads
// under a single-flight per-key lock on miss, caching the result with
// refcount = 1. On load failure it returns a *LoadError and leaves the
// cache untouched — no placeholder entry survives a failed load.
func (m *Manager[T]) Get(key string) (*Handle[T], error) {
	e := m.entryFor(key)

	e.mu.Lock()
	if e.alive {
		e.refcount++
		e.mu.Unlock()
		return newHandle(m, key, e), nil
	}

	v, err := m.load(key)
	if err != nil {
		e.mu.Unlock()
		m.dropIfEmpty(key, e)
		return nil, &LoadError{Key: key, Err: err}
	}
	e.value = v
	e.alive = true
	e.refcount = 1
	e.mu.Unlock()

	return newHandle(m, key, e), nil
}

// Preload warms the cache for key: it acquires then immediately releases.
// With immediateUnload == false, the zero-ref resource stays cached until
// Cleanup or Dispose.
func (m *Manager[T]) Preload(key string) error {
	h, err := m.Get(key)
	if err != nil {
		return err
	}
	h.Release()
	return nil
}

// IsCached reports whether key currently has a live entry, regardless of
// refcount.
func (m *Manager[T]) IsCached(key string) bool {
	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alive
}

// Cleanup sweeps every entry with refcount == 0, unloads it, and removes
// it from the cache. Returns the count purged.
func (m *Manager[T]) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for key, e := range m.entries {
		e.mu.Lock()
		if e.alive && e.refcount == 0 {
			m.unload(e.value)
			e.alive = false
			purged++
			delete(m.entries, key)
		}
		e.mu.Unlock()
	}
	return purged
}

// Dispose unconditionally invalidates and unloads every entry, regardless
// of refcount.
func (m *Manager[T]) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		e.mu.Lock()
		if e.alive {
			m.unload(e.value)
			e.alive = false
		}
		e.mu.Unlock()
		delete(m.entries, key)
	}
}

func (m *Manager[T]) entryFor(key string) *entry[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry[T]{}
		m.entries[key] = e
	}
	return e
}

// dropIfEmpty removes a just-created placeholder entry after a failed
// load, so a subsequent Get retries the loader instead of seeing a dead
// entry. Only removes it if nothing else attached to it in the meantime.
func (m *Manager[T]) dropIfEmpty(key string, e *entry[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[key]; ok && cur == e {
		e.mu.Lock()
		empty := !e.alive && e.refcount == 0
		e.mu.Unlock()
		if empty {
			delete(m.entries, key)
		}
	}
}

func (m *Manager[T]) release(key string, e *entry[T]) {
	e.mu.Lock()
	if e.refcount > 0 {
		e.refcount--
	}
	shouldUnload := e.refcount == 0 && e.alive && m.immediateUnload
	if shouldUnload {
		m.unload(e.value)
		e.alive = false
	}
	e.mu.Unlock()

	if shouldUnload {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur == e {
			delete(m.entries, key)
		}
		m.mu.Unlock()
	}
}

// acquire bumps the entry's refcount again for Handle.Acquire, failing if
// the entry has been invalidated.
func (m *Manager[T]) acquire(key string, e *entry[T]) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return &InvalidError{Key: key}
	}
	e.refcount++
	return nil
}

func (m *Manager[T]) get(key string, e *entry[T]) (T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		var zero T
		return zero, &InvalidError{Key: key}
	}
	return e.value, nil
}

// refcountFor is a test/debug hook exposing the current refcount for key.
func (m *Manager[T]) refcountFor(key string) int32 {
	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refcount
}
