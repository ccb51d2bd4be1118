package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"atelier/internal/config"
)

// WorkshopLock guards the multi-effect stage advance across concurrent
// workstation processes. Advancing an item moves the stage flag, seeds the
// next checklist, and appends a timeline entry in separate writes; holding
// the lock keeps two workstations from interleaving those writes on the same
// database. It narrows the documented read-then-write race, it does not
// close it for writers that bypass the lock.
type WorkshopLock struct {
	lock    *flock.Flock
	timeout time.Duration
}

// NewWorkshopLock builds the advisory lock for a configured data directory.
func NewWorkshopLock(cfg *config.Config) *WorkshopLock {
	return &WorkshopLock{
		lock:    flock.New(filepath.Join(cfg.DataDir, "workshop.lock")),
		timeout: time.Duration(cfg.Workshop.AdvanceLockTimeout) * time.Second,
	}
}

// Acquire takes the lock, polling until the configured timeout.
func (w *WorkshopLock) Acquire(ctx context.Context) error {
	lockCtx, cancel := context.WithTimeout(ensureContext(ctx), w.timeout)
	defer cancel()

	ok, err := w.lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire workshop lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("workshop lock at %s is held by another process", w.lock.Path())
	}
	return nil
}

// Release drops the lock.
func (w *WorkshopLock) Release() error {
	return w.lock.Unlock()
}
