package repository

import (
	"context"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/store"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// Repositories bundles the typed collections over one record store.
type Repositories struct {
	Users     *Collection[domain.User]
	Clients   *Collection[domain.Client]
	Projects  *Collection[domain.Project]
	Devs      *Collection[domain.Developer]
	Tasks     *Collection[domain.Task]
	Progress  *Collection[domain.ProgressLog]
	Issues    *Collection[domain.Issue]
	Messages  *Collection[domain.Message]
	AuditLogs *Collection[domain.AuditEntry]
}

// New wires every collection to the backend with a shared per-key locker.
func New(backend store.CollectionStore) *Repositories {
	locker := store.NewLocker()
	return &Repositories{
		Users:     NewCollection[domain.User](store.CollectionUsers, backend, locker),
		Clients:   NewCollection[domain.Client](store.CollectionClients, backend, locker),
		Projects:  NewCollection[domain.Project](store.CollectionProjects, backend, locker),
		Devs:      NewCollection[domain.Developer](store.CollectionDevs, backend, locker),
		Tasks:     NewCollection[domain.Task](store.CollectionTasks, backend, locker),
		Progress:  NewCollection[domain.ProgressLog](store.CollectionProgress, backend, locker),
		Issues:    NewCollection[domain.Issue](store.CollectionIssues, backend, locker),
		Messages:  NewCollection[domain.Message](store.CollectionMessages, backend, locker),
		AuditLogs: NewCollection[domain.AuditEntry](store.CollectionAuditLogs, backend, locker),
	}
}

// UserByID resolves a user by id.
func (r *Repositories) UserByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
}

// ProjectByID resolves a project by id.
func (r *Repositories) ProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	projects, err := r.Projects.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, apperrors.NewNotFound("project", map[string]any{"project_id": id})
}

// ClientByID resolves a client record by id.
func (r *Repositories) ClientByID(ctx context.Context, id string) (*domain.Client, error) {
	clients, err := r.Clients.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, apperrors.NewNotFound("client", map[string]any{"client_id": id})
}

// DeveloperByID resolves a developer record by id.
func (r *Repositories) DeveloperByID(ctx context.Context, id string) (*domain.Developer, error) {
	devs, err := r.Devs.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devs {
		if devs[i].ID == id {
			return &devs[i], nil
		}
	}
	return nil, apperrors.NewNotFound("developer", map[string]any{"developer_id": id})
}
