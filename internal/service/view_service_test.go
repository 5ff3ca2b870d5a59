package service

import (
	"context"
	"testing"

	"github.com/spec-kit/crm-service/internal/domain"
)

func TestProjectsFor_RoleScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	maria := env.seedUser(t, domain.RoleManager, "maria", "s")
	oscar := env.seedUser(t, domain.RoleManager, "oscar", "s")

	p1 := env.seedActiveProject(t, owner, maria, validCreds())
	p2 := env.seedActiveProject(t, owner, oscar, ActivationCredentials{
		Username: "jane", Secret: "pw2", Email: "jane@example.com", Name: "Jane",
	})

	all, err := env.views.ProjectsFor(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("owner sees %d projects, want 2", len(all))
	}

	mine, err := env.views.ProjectsFor(ctx, maria)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != p1.ID {
		t.Errorf("maria sees %d projects, want only %s", len(mine), p1.ID)
	}

	clientUser, err := env.repos.UserByID(ctx, p2.ClientUserID)
	if err != nil {
		t.Fatal(err)
	}
	theirs, err := env.views.ProjectsFor(ctx, clientUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(theirs) != 1 || theirs[0].ID != p2.ID {
		t.Errorf("client sees %d projects, want only %s", len(theirs), p2.ID)
	}
}

func TestProjectsFor_DeveloperViaPhaseAssignment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	maria := env.seedUser(t, domain.RoleManager, "maria", "s")
	project := env.seedActiveProject(t, owner, maria, validCreds())
	dev := env.seedDeveloper(t, maria, "dana")
	devUser, err := env.repos.UserByID(ctx, dev.UserID)
	if err != nil {
		t.Fatal(err)
	}

	none, err := env.views.ProjectsFor(ctx, devUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("unassigned dev sees %d projects, want 0", len(none))
	}

	if err := env.projects.AssignDeveloperToPhase(ctx, maria, project.ID, project.Phases[1].ID, dev.ID); err != nil {
		t.Fatal(err)
	}
	visible, err := env.views.ProjectsFor(ctx, devUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].ID != project.ID {
		t.Errorf("assigned dev sees %d projects, want only %s", len(visible), project.ID)
	}
}

func TestDeveloperProjectIDs_DerivedFromPhases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	maria := env.seedUser(t, domain.RoleManager, "maria", "s")
	project := env.seedActiveProject(t, owner, maria, validCreds())
	dev := env.seedDeveloper(t, maria, "dana")

	if err := env.projects.AssignDeveloperToPhase(ctx, maria, project.ID, project.Phases[0].ID, dev.ID); err != nil {
		t.Fatal(err)
	}
	// Assigning to a second phase of the same project must not duplicate
	// the project in the derived view.
	if err := env.projects.AssignDeveloperToPhase(ctx, maria, project.ID, project.Phases[2].ID, dev.ID); err != nil {
		t.Fatal(err)
	}

	// Corrupt the mirror on purpose; the derived view must not care.
	_, err := env.repos.Devs.Mutate(ctx, func(devs []domain.Developer) ([]domain.Developer, error) {
		for i := range devs {
			devs[i].ProjectIDs = []string{"stale-id"}
		}
		return devs, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ids, err := env.views.DeveloperProjectIDs(ctx, dev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != project.ID {
		t.Errorf("derived ids = %v, want [%s]", ids, project.ID)
	}
}

func TestTasksFor_FilteredToVisibleProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	maria := env.seedUser(t, domain.RoleManager, "maria", "s")
	oscar := env.seedUser(t, domain.RoleManager, "oscar", "s")
	p1 := env.seedActiveProject(t, owner, maria, validCreds())
	p2 := env.seedActiveProject(t, owner, oscar, ActivationCredentials{
		Username: "jane", Secret: "pw2", Email: "jane@example.com", Name: "Jane",
	})
	d1 := env.seedDeveloper(t, maria, "dana")
	d2 := env.seedDeveloper(t, oscar, "dave")

	if _, err := env.work.CreateTask(ctx, maria, TaskDraft{ProjectID: p1.ID, DeveloperID: d1.ID, Title: "one"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.work.CreateTask(ctx, oscar, TaskDraft{ProjectID: p2.ID, DeveloperID: d2.ID, Title: "two"}); err != nil {
		t.Fatal(err)
	}

	tasks, err := env.views.TasksFor(ctx, maria)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].ProjectID != p1.ID {
		t.Errorf("maria sees %d tasks, want only project %s", len(tasks), p1.ID)
	}

	all, err := env.views.TasksFor(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("owner sees %d tasks, want 2", len(all))
	}
}
