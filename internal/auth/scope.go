package auth

import "github.com/spec-kit/crm-service/internal/domain"

// Role-scope rules. Pure functions of (role, entity ownership); every
// service operation re-checks these regardless of what the transport
// layer already filtered.

// CanManageProject reports whether user may mutate the project.
func CanManageProject(user *domain.User, project *domain.Project) bool {
	if user == nil || project == nil {
		return false
	}
	switch user.Role {
	case domain.RoleOwner:
		return true
	case domain.RoleManager:
		return project.ManagerID == user.ID
	}
	return false
}

// CanManageDeveloper reports whether user may mutate the developer record.
func CanManageDeveloper(user *domain.User, dev *domain.Developer) bool {
	if user == nil || dev == nil {
		return false
	}
	switch user.Role {
	case domain.RoleOwner:
		return true
	case domain.RoleManager:
		return dev.ManagerID == user.ID
	}
	return false
}

// DeveloperAssignedToProject reports whether the developer record appears
// in any phase assignment of the project. The phase relation is the
// authoritative source; Developer.ProjectIDs is only a persisted mirror.
func DeveloperAssignedToProject(dev *domain.Developer, project *domain.Project) bool {
	if dev == nil || project == nil {
		return false
	}
	for _, phase := range project.Phases {
		for _, id := range phase.AssignedDevelopers {
			if id == dev.ID {
				return true
			}
		}
	}
	return false
}

// ClientOwnsProject resolves whether a client-role user's single visible
// project is this one: by direct reference, by the embedded portal
// credentials' username, or by a Client record email match.
func ClientOwnsProject(user *domain.User, project *domain.Project, clients []domain.Client) bool {
	if user == nil || project == nil || user.Role != domain.RoleClient {
		return false
	}
	if user.ProjectID != "" && user.ProjectID == project.ID {
		return true
	}
	if creds := project.ClientCredentials; creds != nil && creds.Username == user.Username {
		return true
	}
	if user.Email == "" {
		return false
	}
	for i := range clients {
		if clients[i].ID == project.ClientID && clients[i].Email == user.Email {
			return true
		}
	}
	return false
}

// CanReadProject reports read access for any role.
func CanReadProject(user *domain.User, project *domain.Project, dev *domain.Developer, clients []domain.Client) bool {
	if user == nil || project == nil {
		return false
	}
	switch user.Role {
	case domain.RoleOwner:
		return true
	case domain.RoleManager:
		return project.ManagerID == user.ID
	case domain.RoleDeveloper:
		return DeveloperAssignedToProject(dev, project)
	case domain.RoleClient:
		return ClientOwnsProject(user, project, clients)
	}
	return false
}

// CanCreateUser encodes who provisions accounts for which role: owner for
// managers, managers for developers, the activation flow (owner or
// manager) for clients. Owners are only created at bootstrap.
func CanCreateUser(actor *domain.User, target domain.Role) bool {
	if actor == nil {
		return false
	}
	switch target {
	case domain.RoleManager:
		return actor.Role == domain.RoleOwner
	case domain.RoleDeveloper:
		return actor.Role == domain.RoleOwner || actor.Role == domain.RoleManager
	case domain.RoleClient:
		return actor.Role == domain.RoleOwner || actor.Role == domain.RoleManager
	}
	return false
}
