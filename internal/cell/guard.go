package cell

import (
	"sync"

	"treenav/internal/herr"
)

// Guard is the borrow check embedded in the shared node storage of the
// dyntree and xml backends: a read/write lock whose borrows fail fast
// with KindCannotLock on conflict instead of blocking, per the spec's
// borrow model.
type Guard struct {
	mu sync.RWMutex
}

// RLock attempts a read borrow, returning a release function.
func (g *Guard) RLock() (func(), error) {
	if !g.mu.TryRLock() {
		return nil, herr.CannotLockErr("storage is exclusively locked for writing")
	}
	return g.mu.RUnlock, nil
}

// Lock attempts a write borrow, returning a release function.
func (g *Guard) Lock() (func(), error) {
	if !g.mu.TryLock() {
		return nil, herr.CannotLockErr("storage already has a live borrow")
	}
	return g.mu.Unlock, nil
}
