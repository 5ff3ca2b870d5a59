package service

import (
	"context"
	"testing"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

func validCreds() ActivationCredentials {
	return ActivationCredentials{
		Username: "john",
		Secret:   "pw1",
		Email:    "john@example.com",
		Name:     "John",
	}
}

func TestCreateProjectForClient_SeedsFourPhases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	client := env.seedClient(t, "John", "john@example.com")

	project, err := env.projects.CreateProjectForClient(ctx, owner, client.ID)
	if err != nil {
		t.Fatalf("CreateProjectForClient: %v", err)
	}
	if project.Status != domain.ProjectStatusPending {
		t.Errorf("status = %s, want %s", project.Status, domain.ProjectStatusPending)
	}
	if len(project.Phases) != domain.PhaseCount {
		t.Fatalf("len(phases) = %d, want %d", len(project.Phases), domain.PhaseCount)
	}
	for _, phase := range project.Phases {
		if phase.Status != domain.PhaseStatusNotStarted {
			t.Errorf("phase %s status = %s, want %s", phase.Name, phase.Status, domain.PhaseStatusNotStarted)
		}
	}
}

func TestCreateProjectForClient_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	client := env.seedClient(t, "John", "john@example.com")

	_, err := env.projects.CreateProjectForClient(context.Background(), manager, client.ID)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeForbidden)
	}
}

func TestActivateProject_EmbedsCredentialsAndClientAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")

	project := env.seedActiveProject(t, owner, manager, validCreds())

	if project.Status != domain.ProjectStatusActive {
		t.Errorf("status = %s, want %s", project.Status, domain.ProjectStatusActive)
	}
	if project.ManagerID != manager.ID {
		t.Errorf("manager = %s, want %s", project.ManagerID, manager.ID)
	}
	if project.ClientCredentials == nil {
		t.Fatal("no embedded credentials after activation")
	}
	if project.ClientCredentials.SecretHash == "" {
		t.Error("embedded credentials carry no secret hash")
	}
	if project.ClientCredentials.SecretHash == "pw1" {
		t.Error("embedded secret stored in plaintext")
	}

	clientUser, err := env.repos.UserByID(ctx, project.ClientUserID)
	if err != nil {
		t.Fatalf("client user missing: %v", err)
	}
	if clientUser.Role != domain.RoleClient || clientUser.Username != "john" {
		t.Errorf("client user = %s/%s, want CLIENT/john", clientUser.Role, clientUser.Username)
	}
	if clientUser.PasswordHash != project.ClientCredentials.SecretHash {
		t.Error("embedded hash diverges from the user directory")
	}
}

func TestActivateProject_DuplicateUsernameLeavesProjectPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	// The requested portal username already belongs to a non-client account.
	env.seedUser(t, domain.RoleDeveloper, "john", "other")

	client := env.seedClient(t, "John", "john@example.com")
	project, err := env.projects.CreateProjectForClient(ctx, owner, client.ID)
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.projects.ActivateProject(ctx, owner, project.ID, manager.ID, 500, validCreds())
	if !apperrors.HasCode(err, apperrors.CodeActivationFailed) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeActivationFailed)
	}

	stored, err := env.repos.ProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.ProjectStatusPending {
		t.Errorf("status = %s, want %s after failed activation", stored.Status, domain.ProjectStatusPending)
	}
	if stored.ClientCredentials != nil {
		t.Error("failed activation left embedded credentials behind")
	}
	if stored.ManagerID != "" {
		t.Error("failed activation left a manager assigned")
	}
}

func TestActivateProject_IncompleteCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	client := env.seedClient(t, "John", "john@example.com")
	project, err := env.projects.CreateProjectForClient(ctx, owner, client.ID)
	if err != nil {
		t.Fatal(err)
	}

	creds := validCreds()
	creds.Email = ""
	_, err = env.projects.ActivateProject(ctx, owner, project.ID, manager.ID, 500, creds)
	if !apperrors.HasCode(err, apperrors.CodeActivationFailed) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeActivationFailed)
	}
}

func TestActivateProject_AlreadyActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	project := env.seedActiveProject(t, owner, manager, validCreds())

	_, err := env.projects.ActivateProject(ctx, owner, project.ID, manager.ID, 500, validCreds())
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeInvalidTransition)
	}
}

func TestDeliverProject_FreezesPhases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	project := env.seedActiveProject(t, owner, manager, validCreds())

	delivered, err := env.projects.DeliverProject(ctx, manager, project.ID)
	if err != nil {
		t.Fatalf("DeliverProject: %v", err)
	}
	if delivered.Status != domain.ProjectStatusDelivered {
		t.Errorf("status = %s, want %s", delivered.Status, domain.ProjectStatusDelivered)
	}
	if delivered.DeliveredAt == nil {
		t.Error("DeliveredAt not stamped")
	}

	// Phase state is frozen after delivery.
	err = env.projects.AdvancePhaseStatus(ctx, manager, project.ID, project.Phases[0].ID, domain.PhaseStatusInProgress)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("advance on delivered project: err = %v, want %s", err, apperrors.CodeInvalidTransition)
	}

	// And delivery is terminal.
	_, err = env.projects.DeliverProject(ctx, manager, project.ID)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("second delivery: err = %v, want %s", err, apperrors.CodeInvalidTransition)
	}
}

func TestAssignDeveloperToPhase_IdempotentBothSides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	project := env.seedActiveProject(t, owner, manager, validCreds())
	dev := env.seedDeveloper(t, manager, "dana")
	phaseID := project.Phases[0].ID

	for i := 0; i < 2; i++ {
		if err := env.projects.AssignDeveloperToPhase(ctx, manager, project.ID, phaseID, dev.ID); err != nil {
			t.Fatalf("AssignDeveloperToPhase #%d: %v", i+1, err)
		}
	}

	stored, err := env.repos.ProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	phase := stored.PhaseByID(phaseID)
	if got := len(phase.AssignedDevelopers); got != 1 {
		t.Errorf("len(AssignedDevelopers) = %d, want 1", got)
	}

	storedDev, err := env.repos.DeveloperByID(ctx, dev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(storedDev.ProjectIDs); got != 1 {
		t.Errorf("len(ProjectIDs) = %d, want 1", got)
	}
	if storedDev.ProjectIDs[0] != project.ID {
		t.Errorf("mirrored project = %s, want %s", storedDev.ProjectIDs[0], project.ID)
	}
}

func TestAssignDeveloperToPhase_RequiresActiveProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	dev := env.seedDeveloper(t, manager, "dana")

	client := env.seedClient(t, "John", "john@example.com")
	pending, err := env.projects.CreateProjectForClient(ctx, owner, client.ID)
	if err != nil {
		t.Fatal(err)
	}

	err = env.projects.AssignDeveloperToPhase(ctx, manager, pending.ID, pending.Phases[0].ID, dev.ID)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("err = %v, want %s", err, apperrors.CodeInvalidTransition)
	}
}

func TestAdvancePhaseStatus_Monotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	project := env.seedActiveProject(t, owner, manager, validCreds())
	phaseID := project.Phases[0].ID

	// NOT_STARTED cannot jump straight to COMPLETED.
	err := env.projects.AdvancePhaseStatus(ctx, manager, project.ID, phaseID, domain.PhaseStatusCompleted)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("skip forward: err = %v, want %s", err, apperrors.CodeInvalidTransition)
	}

	if err := env.projects.AdvancePhaseStatus(ctx, manager, project.ID, phaseID, domain.PhaseStatusInProgress); err != nil {
		t.Fatalf("to in_progress: %v", err)
	}
	if err := env.projects.AdvancePhaseStatus(ctx, manager, project.ID, phaseID, domain.PhaseStatusCompleted); err != nil {
		t.Fatalf("to completed: %v", err)
	}

	// No reverting.
	err = env.projects.AdvancePhaseStatus(ctx, manager, project.ID, phaseID, domain.PhaseStatusInProgress)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("revert: err = %v, want %s", err, apperrors.CodeInvalidTransition)
	}

	stored, _ := env.repos.ProjectByID(ctx, project.ID)
	phase := stored.PhaseByID(phaseID)
	if phase.StartDate == nil || phase.EndDate == nil {
		t.Error("phase start/end dates not stamped")
	}
}

func TestAdvancePhaseStatus_AssignedDeveloperAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	project := env.seedActiveProject(t, owner, manager, validCreds())
	dev := env.seedDeveloper(t, manager, "dana")
	phaseID := project.Phases[0].ID

	devUser, err := env.repos.UserByID(ctx, dev.UserID)
	if err != nil {
		t.Fatal(err)
	}

	// Not assigned yet: forbidden.
	err = env.projects.AdvancePhaseStatus(ctx, devUser, project.ID, phaseID, domain.PhaseStatusInProgress)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("unassigned dev: err = %v, want %s", err, apperrors.CodeForbidden)
	}

	if err := env.projects.AssignDeveloperToPhase(ctx, manager, project.ID, phaseID, dev.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.projects.AdvancePhaseStatus(ctx, devUser, project.ID, phaseID, domain.PhaseStatusInProgress); err != nil {
		t.Fatalf("assigned dev advance: %v", err)
	}
}

func TestManagerCannotTouchForeignProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	other := env.seedUser(t, domain.RoleManager, "oscar", "s")
	project := env.seedActiveProject(t, owner, manager, validCreds())

	_, err := env.projects.DeliverProject(ctx, other, project.ID)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("foreign deliver: err = %v, want %s", err, apperrors.CodeForbidden)
	}

	dev := env.seedDeveloper(t, other, "dana")
	err = env.projects.AssignDeveloperToPhase(ctx, other, project.ID, project.Phases[0].ID, dev.ID)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("foreign assign: err = %v, want %s", err, apperrors.CodeForbidden)
	}
}

func TestListProjects_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")
	env.seedActiveProject(t, owner, manager, validCreds())

	projects, err := env.projects.ListProjects(ctx, owner)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("len(projects) = %d, want 1", len(projects))
	}
	if _, err := env.projects.ListProjects(ctx, manager); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("manager list: err = %v, want %s", err, apperrors.CodeForbidden)
	}
}
