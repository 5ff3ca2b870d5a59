package session

import (
	"context"
	"testing"

	"github.com/spec-kit/crm-service/internal/domain"
)

func TestMemorySlot_EmptyAtStart(t *testing.T) {
	slot := NewMemorySlot()
	user, err := slot.Current(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Errorf("Current = %+v, want nil before any login", user)
	}
}

func TestMemorySlot_SetReplacesAndClearEmpties(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()

	if err := slot.Set(ctx, &domain.User{ID: "u1", Username: "maria"}); err != nil {
		t.Fatal(err)
	}
	// A later login replaces the slot; there is only ever one session.
	if err := slot.Set(ctx, &domain.User{ID: "u2", Username: "dana"}); err != nil {
		t.Fatal(err)
	}
	current, _ := slot.Current(ctx)
	if current == nil || current.ID != "u2" {
		t.Errorf("Current = %+v, want u2", current)
	}

	if err := slot.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	current, _ = slot.Current(ctx)
	if current != nil {
		t.Errorf("Current = %+v, want nil after clear", current)
	}
}

func TestMemorySlot_ReturnsCopies(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()

	slot.Set(ctx, &domain.User{ID: "u1", Username: "maria"})
	first, _ := slot.Current(ctx)
	first.Username = "mutated"

	second, _ := slot.Current(ctx)
	if second.Username != "maria" {
		t.Errorf("slot state mutated through returned pointer: %s", second.Username)
	}
}
