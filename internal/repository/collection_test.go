package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/store"
)

func newUserCollection() *Collection[domain.User] {
	backend := store.NewMemoryStore()
	return NewCollection[domain.User](store.CollectionUsers, backend, store.NewLocker())
}

func TestCollection_EmptyReadsAsEmptySlice(t *testing.T) {
	c := newUserCollection()
	users, err := c.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("All = %v, want empty slice", users)
	}
}

func TestCollection_ReplaceAllRoundTrip(t *testing.T) {
	c := newUserCollection()
	ctx := context.Background()

	in := []domain.User{
		{ID: "u1", Username: "owner", Role: domain.RoleOwner},
		{ID: "u2", Username: "maria", Role: domain.RoleManager},
	}
	if err := c.Replace(ctx, in); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	out, err := c.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(out) != 2 || out[0].ID != "u1" || out[1].Username != "maria" {
		t.Errorf("All = %+v, want round-tripped input", out)
	}
}

func TestCollection_MutateAbortLeavesCollectionUntouched(t *testing.T) {
	c := newUserCollection()
	ctx := context.Background()
	c.Replace(ctx, []domain.User{{ID: "u1"}})

	boom := errors.New("boom")
	_, err := c.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		return append(users, domain.User{ID: "u2"}), boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	users, _ := c.All(ctx)
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1 after aborted mutate", len(users))
	}
}

func TestCollection_ConcurrentAppendsLoseNothing(t *testing.T) {
	c := newUserCollection()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Append(ctx, domain.User{ID: string(rune('a' + n%26))})
		}(i)
	}
	wg.Wait()

	users, err := c.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 50 {
		t.Errorf("len(users) = %d, want 50", len(users))
	}
}

func TestRepositories_ByIDHelpers(t *testing.T) {
	repos := New(store.NewMemoryStore())
	ctx := context.Background()

	repos.Users.Append(ctx, domain.User{ID: "u1", Username: "owner"})
	user, err := repos.UserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if user.Username != "owner" {
		t.Errorf("username = %s, want owner", user.Username)
	}

	if _, err := repos.UserByID(ctx, "missing"); err == nil {
		t.Error("expected not-found for missing user")
	}
	if _, err := repos.ProjectByID(ctx, "missing"); err == nil {
		t.Error("expected not-found for missing project")
	}
}
