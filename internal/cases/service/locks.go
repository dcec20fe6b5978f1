package service

import (
	"sync"
)

// caseLocks serializes the check-then-dispatch sequence per case identity so
// two concurrent commands cannot both observe the same legal-action set and
// race conflicting transitions. Locks are created on first use and kept for
// the process lifetime; the per-case footprint is one mutex.
type caseLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCaseLocks() *caseLocks {
	return &caseLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the named case and returns the release function. Callers must
// release on every exit path, including dispatcher failure.
func (c *caseLocks) acquire(key string) func() {
	c.mu.Lock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
