// Package session holds the single process-wide session slot: at most one
// authenticated user at a time, empty at process start, consulted by every
// component before acting on behalf of a role.
package session

import (
	"context"
	"sync"

	"github.com/spec-kit/crm-service/internal/domain"
)

// Slot stores and clears the current session user.
type Slot interface {
	Current(ctx context.Context) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Clear(ctx context.Context) error
}

// MemorySlot is the in-process implementation.
type MemorySlot struct {
	mu   sync.RWMutex
	user *domain.User
}

// NewMemorySlot returns an empty slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Current(_ context.Context) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *MemorySlot) Set(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return nil
	}
	u := *user
	s.user = &u
	return nil
}

func (s *MemorySlot) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}
