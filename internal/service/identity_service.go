package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/session"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// IdentityService is the identity directory: it owns the user collection,
// resolves credentials, and manages the session slot.
type IdentityService struct {
	repos      *repository.Repositories
	slot       session.Slot
	audit      *AuditService
	resets     ResetTokenStore
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	bootstrap  config.BootstrapConfig
}

// IdentityDependencies bundles requirements for the identity service.
type IdentityDependencies struct {
	Repos      *repository.Repositories
	Slot       session.Slot
	Audit      *AuditService
	Resets     ResetTokenStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// UserDraft describes a new account.
type UserDraft struct {
	Role      domain.Role
	Name      string
	Username  string
	Secret    string
	Email     string
	ProjectID string
	Active    bool
}

// NewIdentityService builds the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) *IdentityService {
	return &IdentityService{
		repos:      deps.Repos,
		slot:       deps.Slot,
		audit:      deps.Audit,
		resets:     deps.Resets,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   cfg.Auth.ResetTTL(),
		bootstrap:  cfg.Bootstrap,
	}
}

// Bootstrap seeds the sole owner account when the user collection is empty.
func (s *IdentityService) Bootstrap(ctx context.Context) error {
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := auth.HashSecret(s.bootstrap.OwnerSecret, s.bcryptCost)
	if err != nil {
		return err
	}
	owner := domain.User{
		ID:           uuid.NewString(),
		Username:     s.bootstrap.OwnerUsername,
		PasswordHash: hash,
		Role:         domain.RoleOwner,
		Name:         s.bootstrap.OwnerName,
		Email:        s.bootstrap.OwnerEmail,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := s.repos.Users.Append(ctx, owner); err != nil {
		return err
	}
	s.audit.RecordFor(ctx, nil, domain.AuditActionUserCreated,
		fmt.Sprintf("bootstrap owner account %s created", owner.Username))
	s.logger.Info("owner account bootstrapped", zap.String("username", owner.Username))
	return nil
}

// Login resolves credentials to a user, establishes the session, and
// issues a bearer token for the transport layer.
//
// Resolution order: (a) an active user whose username and secret match;
// (b) failing that, an active project whose embedded portal credentials
// carry the username, which still requires a verifying active client-role
// user behind it. Embedded credentials never grant access on their own.
func (s *IdentityService) Login(ctx context.Context, username, secret string) (*domain.User, string, time.Time, error) {
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := findVerifiedUser(users, username, secret, "")
	if user == nil {
		user, err = s.resolvePortalLogin(ctx, users, username, secret)
		if err != nil {
			return nil, "", time.Time{}, err
		}
	}
	if user == nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	if err := s.slot.Set(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, user, domain.AuditActionLogin,
		fmt.Sprintf("user %s logged in", user.Username))
	return user, token, exp, nil
}

// resolvePortalLogin handles the embedded-credential path. A matching
// embedded username without a verifying client user is a data-consistency
// fault and is surfaced to operators, not silently tolerated.
func (s *IdentityService) resolvePortalLogin(ctx context.Context, users []domain.User, username, secret string) (*domain.User, error) {
	projects, err := s.repos.Projects.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range projects {
		project := &projects[i]
		if project.Status != domain.ProjectStatusActive || project.ClientCredentials == nil {
			continue
		}
		if project.ClientCredentials.Username != username {
			continue
		}
		if user := findVerifiedUser(users, username, secret, domain.RoleClient); user != nil {
			return user, nil
		}
		s.logger.Warn("portal credentials diverge from user directory",
			zap.String("project_id", project.ID),
			zap.String("username", username))
	}
	return nil, nil
}

func findVerifiedUser(users []domain.User, username, secret string, role domain.Role) *domain.User {
	for i := range users {
		u := &users[i]
		if !u.Active || u.Username != username {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		if auth.CompareSecret(u.PasswordHash, secret) == nil {
			return u
		}
	}
	return nil
}

// Logout clears the session slot and audits the event.
func (s *IdentityService) Logout(ctx context.Context) error {
	current, err := s.slot.Current(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	if current != nil {
		s.audit.RecordFor(ctx, current, domain.AuditActionLogout,
			fmt.Sprintf("user %s logged out", current.Username))
	}
	if err := s.slot.Clear(ctx); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// CurrentSession returns the session user, or nil when none is established.
func (s *IdentityService) CurrentSession(ctx context.Context) (*domain.User, error) {
	return s.slot.Current(ctx)
}

// CreateUser provisions an account: owner creates managers, managers
// create developers, the activation flow creates clients. Usernames must
// be unique among active users.
func (s *IdentityService) CreateUser(ctx context.Context, actor *domain.User, draft UserDraft) (*domain.User, error) {
	if !draft.Role.Valid() || draft.Role == domain.RoleOwner {
		return nil, apperrors.NewValidationError("invalid role for account creation",
			map[string]any{"role": draft.Role})
	}
	if !auth.CanCreateUser(actor, draft.Role) {
		return nil, apperrors.NewForbidden("cannot create accounts for this role")
	}
	if draft.Username == "" || draft.Secret == "" || draft.Name == "" {
		return nil, apperrors.NewValidationError("name, username and secret required", nil)
	}

	hash, err := auth.HashSecret(draft.Secret, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     draft.Username,
		PasswordHash: hash,
		Role:         draft.Role,
		Name:         draft.Name,
		Email:        draft.Email,
		ProjectID:    draft.ProjectID,
		Active:       draft.Active,
		CreatedAt:    time.Now(),
	}

	_, err = s.repos.Users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].Active && users[i].Username == draft.Username {
				return nil, apperrors.NewDuplicateUsername(draft.Username)
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionUserCreated,
		fmt.Sprintf("new %s created: %s", user.Role, user.Username))
	s.publishUserCreated(ctx, actor, &user)
	return &user, nil
}

// ListUsersByRole returns users with the given role. Owner only.
func (s *IdentityService) ListUsersByRole(ctx context.Context, actor *domain.User, role domain.Role) ([]domain.User, error) {
	if actor == nil || actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbidden("user directory is owner-only")
	}
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// DeactivateUser soft-deletes an account. Accounts are never hard-deleted.
func (s *IdentityService) DeactivateUser(ctx context.Context, actor *domain.User, userID string) error {
	if actor == nil || actor.Role != domain.RoleOwner {
		return apperrors.NewForbidden("only the owner deactivates accounts")
	}

	var username string
	_, err := s.repos.Users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == userID {
				users[i].Active = false
				username = users[i].Username
				return users, nil
			}
		}
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionUserDeactivated,
		fmt.Sprintf("user %s deactivated", username))
	return nil
}

// ChangePassword verifies the current secret before storing a new hash.
func (s *IdentityService) ChangePassword(ctx context.Context, actor *domain.User, currentSecret, newSecret string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("login required")
	}
	if err := auth.CompareSecret(actor.PasswordHash, currentSecret); err != nil {
		return apperrors.NewInvalidCredentials()
	}
	return s.setSecret(ctx, actor, actor.ID, newSecret)
}

// RequestPasswordReset issues a short-lived reset token for the username.
// The token is returned to the presentation layer, which decides delivery.
func (s *IdentityService) RequestPasswordReset(ctx context.Context, username string) (string, error) {
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	for i := range users {
		if users[i].Active && users[i].Username == username {
			token := uuid.NewString()
			if err := s.resets.Put(ctx, token, users[i].ID, s.resetTTL); err != nil {
				return "", apperrors.MapError(err)
			}
			return token, nil
		}
	}
	return "", apperrors.NewNotFound("user", map[string]any{"username": username})
}

// ConfirmPasswordReset redeems a reset token and stores the new secret.
func (s *IdentityService) ConfirmPasswordReset(ctx context.Context, token, newSecret string) error {
	userID, err := s.resets.Get(ctx, token)
	if err != nil {
		if err == ErrResetTokenNotFound {
			return apperrors.NewNotFound("reset token", nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.setSecret(ctx, nil, userID, newSecret); err != nil {
		return err
	}
	return s.resets.Delete(ctx, token)
}

func (s *IdentityService) setSecret(ctx context.Context, actor *domain.User, userID, newSecret string) error {
	if newSecret == "" {
		return apperrors.NewValidationError("secret required", nil)
	}
	hash, err := auth.HashSecret(newSecret, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	var username string
	_, err = s.repos.Users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == userID {
				users[i].PasswordHash = hash
				username = users[i].Username
				return users, nil
			}
		}
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionPasswordChanged,
		fmt.Sprintf("credentials updated for %s", username))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *IdentityService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *IdentityService) publishUserCreated(ctx context.Context, actor *domain.User, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserCreated,
		Timestamp: time.Now(),
		Payload: events.UserCreatedPayload{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}
	if actor != nil {
		event.Actor = events.Actor{UserID: actor.ID, Username: actor.Username, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}
