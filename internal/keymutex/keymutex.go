// Package keymutex provides a mutex keyed by an arbitrary comparable value.
// Entries are reference counted and removed once the last holder releases,
// so the table does not grow with the id space.
package keymutex

import (
	"sync"
	"sync/atomic"
)

type entry struct {
	mu   sync.Mutex
	refs int32
}

// KeyedMutex serializes critical sections per key. The zero value is ready
// to use.
type KeyedMutex[K comparable] struct {
	table sync.Map // map[K]*entry
}

// Lock acquires the mutex for key, blocking until it is available.
func (m *KeyedMutex[K]) Lock(key K) {
	for {
		v, _ := m.table.LoadOrStore(key, &entry{})
		e := v.(*entry)
		atomic.AddInt32(&e.refs, 1)
		e.mu.Lock()
		// The entry may have been retired by an Unlock that raced with
		// the registration above; only an entry still in the table
		// guards the key.
		if cur, ok := m.table.Load(key); ok && cur == v {
			return
		}
		e.mu.Unlock()
		atomic.AddInt32(&e.refs, -1)
	}
}

// Unlock releases the mutex for key. It must only be called by the holder.
func (m *KeyedMutex[K]) Unlock(key K) {
	v, ok := m.table.Load(key)
	if !ok {
		panic("keymutex: unlock of unheld key")
	}
	e := v.(*entry)
	if atomic.AddInt32(&e.refs, -1) == 0 {
		m.table.CompareAndDelete(key, v)
	}
	e.mu.Unlock()
}
