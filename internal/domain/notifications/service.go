package notifications

import (
	"context"
	"errors"
	"strings"
)

type StoreAPI interface {
	CreateNotification(ctx context.Context, tenantID, userID, ntype, title, body string) error
	ListNotifications(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]Notification, error)
	CountNotifications(ctx context.Context, tenantID, userID string, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, tenantID, userID, notificationID string) (bool, error)
}

// Service delivers in-app notifications.
type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, tenantID, userID, ntype, title, body string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("notification recipient required")
	}
	return s.store.CreateNotification(ctx, tenantID, userID, ntype, title, body)
}

func (s *Service) List(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, tenantID, userID, unreadOnly, limit, offset)
}

func (s *Service) Count(ctx context.Context, tenantID, userID string, unreadOnly bool) (int, error) {
	return s.store.CountNotifications(ctx, tenantID, userID, unreadOnly)
}

// MarkRead only touches notifications owned by userID.
func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	ok, err := s.store.MarkRead(ctx, tenantID, userID, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
