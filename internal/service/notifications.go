package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/events"
	"github.com/fjod/artverse/internal/repository"
	"go.uber.org/zap"
)

type NotificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

func (s *NotificationService) List(ctx context.Context, p Principal, unreadOnly bool, page repository.Page) ([]domain.Notification, int64, error) {
	if err := requireAuth(p); err != nil {
		return nil, 0, err
	}
	list, err := s.repo.List(ctx, p.UserID, unreadOnly, page)
	if err != nil {
		s.log.Error("repo list notifications error", zap.Error(err))
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, p.UserID)
	if err != nil {
		s.log.Error("repo count unread error", zap.Error(err))
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, p Principal) (int64, error) {
	if err := requireAuth(p); err != nil {
		return 0, err
	}
	n, err := s.repo.CountUnread(ctx, p.UserID)
	if err != nil {
		s.log.Error("repo count unread error", zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, p Principal, id string) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	nid, err := parseID(id, "notification")
	if err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, nid, p.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("notification not found")
		}
		s.log.Error("repo mark read error", zap.Error(err))
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, p Principal) (int64, error) {
	if err := requireAuth(p); err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllRead(ctx, p.UserID)
	if err != nil {
		s.log.Error("repo mark all read error", zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, p Principal, id string) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	nid, err := parseID(id, "notification")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, nid, p.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("notification not found")
		}
		s.log.Error("repo delete notification error", zap.Error(err))
		return err
	}
	return nil
}

// HandleEvent stores an event in the recipient's inbox.
func (s *NotificationService) HandleEvent(ctx context.Context, e events.Event) error {
	n := &domain.Notification{
		UserID:    e.RecipientID,
		Type:      notificationType(e.Type),
		Message:   e.Message,
		Link:      e.Link,
		CreatedAt: e.OccurredAt,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.log.Debug("notification stored", zap.String("event_id", e.ID), zap.String("user_id", e.RecipientID.Hex()))
	return nil
}

func notificationType(t events.Type) domain.NotificationType {
	prefix, _, _ := strings.Cut(string(t), ".")
	switch prefix {
	case "order":
		return domain.NotificationOrder
	case "commission":
		return domain.NotificationCommission
	case "artwork":
		return domain.NotificationArtwork
	case "course":
		return domain.NotificationCourse
	}
	return domain.NotificationSystem
}
