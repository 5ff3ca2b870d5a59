package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// MessageService handles direct messages between users.
type MessageService struct {
	repos *repository.Repositories
}

// NewMessageService builds the service.
func NewMessageService(repos *repository.Repositories) *MessageService {
	return &MessageService{repos: repos}
}

// Send delivers a message from the acting user to another user.
func (s *MessageService) Send(ctx context.Context, actor *domain.User, toUserID, projectID, subject, content string) (*domain.Message, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("login required")
	}
	if subject == "" && content == "" {
		return nil, apperrors.NewValidationError("subject or content required", nil)
	}
	if _, err := s.repos.UserByID(ctx, toUserID); err != nil {
		return nil, apperrors.MapError(err)
	}

	msg := domain.Message{
		ID:         uuid.NewString(),
		FromUserID: actor.ID,
		ToUserID:   toUserID,
		ProjectID:  projectID,
		Subject:    subject,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.repos.Messages.Append(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &msg, nil
}

// Inbox returns messages sent to or by the acting user, newest first.
func (s *MessageService) Inbox(ctx context.Context, actor *domain.User) ([]domain.Message, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("login required")
	}
	msgs, err := s.repos.Messages.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]domain.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].ToUserID == actor.ID || msgs[i].FromUserID == actor.ID {
			out = append(out, msgs[i])
		}
	}
	return out, nil
}

// MarkRead flags a received message as read. Recipient only.
func (s *MessageService) MarkRead(ctx context.Context, actor *domain.User, messageID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("login required")
	}

	_, err := s.repos.Messages.Mutate(ctx, func(msgs []domain.Message) ([]domain.Message, error) {
		for i := range msgs {
			if msgs[i].ID != messageID {
				continue
			}
			if msgs[i].ToUserID != actor.ID {
				return nil, apperrors.NewForbidden("only the recipient marks a message read")
			}
			msgs[i].Read = true
			return msgs, nil
		}
		return nil, apperrors.NewNotFound("message", map[string]any{"message_id": messageID})
	})
	return apperrors.MapError(err)
}
