// Package store implements the persistent record store: durable
// key-to-collection storage with read-in-full / replace-in-full semantics.
// Multi-collection updates are composed by callers from single-collection
// read-modify-write steps; there are no cross-collection transactions.
package store

import (
	"context"
	"sync"
)

// Collection keys.
const (
	CollectionUsers     = "users"
	CollectionClients   = "clients"
	CollectionProjects  = "projects"
	CollectionDevs      = "developers"
	CollectionTasks     = "tasks"
	CollectionProgress  = "progress_logs"
	CollectionIssues    = "issues"
	CollectionMessages  = "messages"
	CollectionAuditLogs = "audit_logs"
)

// CollectionStore reads and replaces whole collection documents. Load
// returns a nil document for a collection that has never been saved.
type CollectionStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Locker serializes read-modify-write sequences per collection key.
// Concurrent writers to the same collection would otherwise lose updates
// under replace-in-full semantics.
type Locker interface {
	LockCollection(key string) func()
}

// keyLocker implements Locker with one mutex per collection key.
type keyLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocker returns a per-key collection locker.
func NewLocker() Locker {
	return &keyLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *keyLocker) LockCollection(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
