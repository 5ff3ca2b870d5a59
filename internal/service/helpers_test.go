package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/session"
	"github.com/spec-kit/crm-service/internal/store"
)

// testEnv wires every service over the in-memory record store.
type testEnv struct {
	repos      *repository.Repositories
	slot       session.Slot
	audit      *AuditService
	identity   *IdentityService
	clients    *ClientService
	projects   *ProjectService
	developers *DeveloperService
	work       *WorkService
	messages   *MessageService
	views      *ViewService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos := repository.New(store.NewMemoryStore())
	slot := session.NewMemorySlot()
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 15,
			BcryptCost:              bcrypt.MinCost,
		},
		Bootstrap: config.BootstrapConfig{
			OwnerUsername: "owner",
			OwnerSecret:   "owner-secret",
			OwnerName:     "Owner",
			OwnerEmail:    "owner@example.com",
		},
	}

	audit := NewAuditService(repos, slot, logger)
	identity := NewIdentityService(cfg, IdentityDependencies{
		Repos:      repos,
		Slot:       slot,
		Audit:      audit,
		Resets:     NewMemoryResetTokenStore(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	projects := NewProjectService(ProjectDependencies{
		Repos:      repos,
		Identity:   identity,
		Audit:      audit,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	return &testEnv{
		repos:      repos,
		slot:       slot,
		audit:      audit,
		identity:   identity,
		clients:    NewClientService(repos, audit),
		projects:   projects,
		developers: NewDeveloperService(repos, identity, audit, logger),
		work:       NewWorkService(repos, audit, dispatcher),
		messages:   NewMessageService(repos),
		views:      NewViewService(repos),
	}
}

// seedUser inserts an account directly, bypassing creation rules.
func (e *testEnv) seedUser(t *testing.T, role domain.Role, username, secret string) *domain.User {
	t.Helper()
	hash, err := auth.HashSecret(secret, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Name:         username,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := e.repos.Users.Append(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

// seedClient inserts a valid lead.
func (e *testEnv) seedClient(t *testing.T, name, email string) *domain.Client {
	t.Helper()
	client := domain.Client{
		ID:          uuid.NewString(),
		FullName:    name,
		Email:       email,
		Source:      domain.ClientSourceManual,
		Status:      domain.ClientStatusValid,
		Active:      true,
		SubmittedAt: time.Now(),
	}
	if err := e.repos.Clients.Append(context.Background(), client); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return &client
}

// seedActiveProject walks a project through intake and activation.
func (e *testEnv) seedActiveProject(t *testing.T, owner, manager *domain.User, creds ActivationCredentials) *domain.Project {
	t.Helper()
	ctx := context.Background()
	client := e.seedClient(t, creds.Name, creds.Email)
	project, err := e.projects.CreateProjectForClient(ctx, owner, client.ID)
	if err != nil {
		t.Fatalf("CreateProjectForClient: %v", err)
	}
	active, err := e.projects.ActivateProject(ctx, owner, project.ID, manager.ID, 1000, creds)
	if err != nil {
		t.Fatalf("ActivateProject: %v", err)
	}
	return active
}

// seedDeveloper creates a roster entry through the manager flow.
func (e *testEnv) seedDeveloper(t *testing.T, manager *domain.User, username string) *domain.Developer {
	t.Helper()
	dev, err := e.developers.CreateDeveloper(context.Background(), manager, DeveloperDraft{
		Name:           username,
		Username:       username,
		Secret:         "dev-secret",
		Specialization: "backend",
	})
	if err != nil {
		t.Fatalf("CreateDeveloper: %v", err)
	}
	return dev
}
