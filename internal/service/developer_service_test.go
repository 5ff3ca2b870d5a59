package service

import (
	"context"
	"testing"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

func TestCreateDeveloper_PairsRosterAndAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")

	dev := env.seedDeveloper(t, manager, "dana")
	if dev.ManagerID != manager.ID {
		t.Errorf("manager = %s, want %s", dev.ManagerID, manager.ID)
	}

	user, err := env.repos.UserByID(ctx, dev.UserID)
	if err != nil {
		t.Fatalf("paired account missing: %v", err)
	}
	if user.Role != domain.RoleDeveloper || user.Username != dev.Username {
		t.Errorf("paired account = %s/%s, want DEVELOPER/%s", user.Role, user.Username, dev.Username)
	}

	// The fresh developer can log in.
	if _, _, _, err := env.identity.Login(ctx, "dana", "dev-secret"); err != nil {
		t.Errorf("developer login: %v", err)
	}
}

func TestCreateDeveloper_ManagerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")

	_, err := env.developers.CreateDeveloper(context.Background(), owner, DeveloperDraft{
		Name: "Dana", Username: "dana", Secret: "x",
	})
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeForbidden)
	}
}

func TestSetDeveloperActive_TogglesPair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	other := env.seedUser(t, domain.RoleManager, "oscar", "s")
	dev := env.seedDeveloper(t, manager, "dana")

	// A foreign manager cannot touch the record.
	err := env.developers.SetDeveloperActive(ctx, other, dev.ID, false)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("foreign manager: err = %v, want %s", err, apperrors.CodeForbidden)
	}

	if err := env.developers.SetDeveloperActive(ctx, manager, dev.ID, false); err != nil {
		t.Fatalf("SetDeveloperActive: %v", err)
	}

	stored, err := env.repos.DeveloperByID(ctx, dev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Active {
		t.Error("roster record still active")
	}
	user, err := env.repos.UserByID(ctx, dev.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if user.Active {
		t.Error("paired account still active")
	}

	// The deactivated pair can no longer log in.
	if _, _, _, err := env.identity.Login(ctx, "dana", "dev-secret"); err == nil {
		t.Error("deactivated developer logged in")
	}
}

func TestListDevelopers_Scoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	maria := env.seedUser(t, domain.RoleManager, "maria", "s")
	oscar := env.seedUser(t, domain.RoleManager, "oscar", "s")
	env.seedDeveloper(t, maria, "dana")
	env.seedDeveloper(t, oscar, "dave")

	all, err := env.developers.ListDevelopers(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("owner sees %d developers, want 2", len(all))
	}

	mine, err := env.developers.ListDevelopers(ctx, maria)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Username != "dana" {
		t.Errorf("maria sees %v, want only dana", mine)
	}
}
