package notifications

import (
	"context"
	"errors"
	"testing"
)

type memStore struct {
	created []string
	owned   map[string]string
}

func (m *memStore) CreateNotification(_ context.Context, _, userID, ntype, _, _ string) error {
	m.created = append(m.created, userID+":"+ntype)
	return nil
}

func (m *memStore) ListNotifications(context.Context, string, string, bool, int, int) ([]Notification, error) {
	return nil, nil
}

func (m *memStore) CountNotifications(context.Context, string, string, bool) (int, error) {
	return len(m.created), nil
}

func (m *memStore) MarkRead(_ context.Context, _, userID, notificationID string) (bool, error) {
	return m.owned[notificationID] == userID, nil
}

func TestCreateRequiresRecipient(t *testing.T) {
	store := &memStore{}
	svc := New(store)
	if err := svc.Create(context.Background(), "t1", " ", TypeSelfEvaluationSubmitted, "x", "y"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
	if err := svc.Create(context.Background(), "t1", "u1", TypeSelfEvaluationSubmitted, "x", "y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.created) != 1 || store.created[0] != "u1:"+TypeSelfEvaluationSubmitted {
		t.Fatalf("unexpected notifications: %v", store.created)
	}
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	svc := New(&memStore{owned: map[string]string{"n1": "u1"}})
	if err := svc.MarkRead(context.Background(), "t1", "u1", "n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.MarkRead(context.Background(), "t1", "u2", "n1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
