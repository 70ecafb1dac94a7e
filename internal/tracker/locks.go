package tracker

import "sync"

type lockEntry struct {
	sync.RWMutex
	refs int
}

// keyedLocks hands out one RWMutex per key and forgets keys nobody holds.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{entries: make(map[string]*lockEntry)}
}

func (k *keyedLocks) acquire(key string) *lockEntry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *keyedLocks) release(key string, e *lockEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Lock takes the exclusive side for key and returns its unlock func.
func (k *keyedLocks) Lock(key string) func() {
	e := k.acquire(key)
	e.Lock()
	return func() {
		e.Unlock()
		k.release(key, e)
	}
}

// RLock takes the shared side for key and returns its unlock func.
func (k *keyedLocks) RLock(key string) func() {
	e := k.acquire(key)
	e.RLock()
	return func() {
		e.RUnlock()
		k.release(key, e)
	}
}

func (k *keyedLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
