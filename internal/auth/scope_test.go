package auth

import (
	"testing"

	"github.com/spec-kit/crm-service/internal/domain"
)

func TestCanManageProject(t *testing.T) {
	project := &domain.Project{ID: "p1", ManagerID: "m1"}

	cases := []struct {
		name string
		user *domain.User
		want bool
	}{
		{"nil user", nil, false},
		{"owner", &domain.User{ID: "o1", Role: domain.RoleOwner}, true},
		{"assigned manager", &domain.User{ID: "m1", Role: domain.RoleManager}, true},
		{"foreign manager", &domain.User{ID: "m2", Role: domain.RoleManager}, false},
		{"developer", &domain.User{ID: "d1", Role: domain.RoleDeveloper}, false},
		{"client", &domain.User{ID: "c1", Role: domain.RoleClient}, false},
	}
	for _, tc := range cases {
		if got := CanManageProject(tc.user, project); got != tc.want {
			t.Errorf("%s: CanManageProject = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDeveloperAssignedToProject(t *testing.T) {
	dev := &domain.Developer{ID: "d1"}
	project := &domain.Project{
		Phases: []domain.Phase{
			{ID: "ph1", AssignedDevelopers: []string{"other"}},
			{ID: "ph2", AssignedDevelopers: []string{"d1"}},
		},
	}
	if !DeveloperAssignedToProject(dev, project) {
		t.Error("assigned developer not recognized")
	}
	if DeveloperAssignedToProject(&domain.Developer{ID: "d9"}, project) {
		t.Error("unassigned developer recognized")
	}
	if DeveloperAssignedToProject(nil, project) {
		t.Error("nil developer recognized")
	}
}

func TestClientOwnsProject(t *testing.T) {
	project := &domain.Project{
		ID:       "p1",
		ClientID: "c1",
		ClientCredentials: &domain.ClientCredentials{
			Username: "john",
		},
	}
	clients := []domain.Client{{ID: "c1", Email: "john@example.com"}}

	byRef := &domain.User{Role: domain.RoleClient, ProjectID: "p1"}
	if !ClientOwnsProject(byRef, project, clients) {
		t.Error("direct project reference not recognized")
	}

	byUsername := &domain.User{Role: domain.RoleClient, Username: "john"}
	if !ClientOwnsProject(byUsername, project, clients) {
		t.Error("embedded portal username not recognized")
	}

	byEmail := &domain.User{Role: domain.RoleClient, Username: "other", Email: "john@example.com"}
	if !ClientOwnsProject(byEmail, project, clients) {
		t.Error("lead email match not recognized")
	}

	stranger := &domain.User{Role: domain.RoleClient, Username: "sue", Email: "sue@example.com"}
	if ClientOwnsProject(stranger, project, clients) {
		t.Error("unrelated client recognized")
	}

	notClient := &domain.User{Role: domain.RoleManager, ProjectID: "p1"}
	if ClientOwnsProject(notClient, project, clients) {
		t.Error("non-client role recognized")
	}
}

func TestCanCreateUser(t *testing.T) {
	owner := &domain.User{Role: domain.RoleOwner}
	manager := &domain.User{Role: domain.RoleManager}
	developer := &domain.User{Role: domain.RoleDeveloper}

	cases := []struct {
		name   string
		actor  *domain.User
		target domain.Role
		want   bool
	}{
		{"owner creates manager", owner, domain.RoleManager, true},
		{"owner creates developer", owner, domain.RoleDeveloper, true},
		{"owner creates client", owner, domain.RoleClient, true},
		{"owner creates owner", owner, domain.RoleOwner, false},
		{"manager creates developer", manager, domain.RoleDeveloper, true},
		{"manager creates client", manager, domain.RoleClient, true},
		{"manager creates manager", manager, domain.RoleManager, false},
		{"developer creates anything", developer, domain.RoleClient, false},
		{"nil actor", nil, domain.RoleClient, false},
	}
	for _, tc := range cases {
		if got := CanCreateUser(tc.actor, tc.target); got != tc.want {
			t.Errorf("%s: CanCreateUser = %v, want %v", tc.name, got, tc.want)
		}
	}
}
