package cycles

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memStore struct {
	cycles  map[string]Cycle
	nextID  int
	closeAt time.Time
}

func newMemStore() *memStore {
	return &memStore{cycles: map[string]Cycle{}}
}

func (m *memStore) CreateCycle(_ context.Context, _ string, title string, startDate, endDate time.Time, status Status) (string, error) {
	m.nextID++
	id := "cycle-" + string(rune('0'+m.nextID))
	m.cycles[id] = Cycle{ID: id, Title: title, StartDate: startDate, EndDate: endDate, Status: status, IsEditable: true}
	return id, nil
}

func (m *memStore) GetCycle(_ context.Context, _ string, cycleID string) (Cycle, error) {
	c, ok := m.cycles[cycleID]
	if !ok {
		return Cycle{}, ErrNotFound
	}
	return c, nil
}

func (m *memStore) ListCycles(_ context.Context, _ string, status Status) ([]Cycle, error) {
	var out []Cycle
	for _, c := range m.cycles {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) UpdateCycleStatus(_ context.Context, _ string, cycleID string, from, to Status) (bool, error) {
	c, ok := m.cycles[cycleID]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	m.cycles[cycleID] = c
	return true, nil
}

func (m *memStore) CloseExpiredCycles(_ context.Context, _ string, today time.Time) (int64, error) {
	m.closeAt = today
	var n int64
	for id, c := range m.cycles {
		if c.Status == StatusOpen && c.EndDate.Before(today) {
			c.Status = StatusClosed
			m.cycles[id] = c
			n++
		}
	}
	return n, nil
}

func TestServiceCreateStartsInDraft(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	c, err := svc.Create(context.Background(), "t1", CreateInput{
		Title:     "  Annual 2026 ",
		StartDate: time.Date(2026, 1, 1, 15, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusDraft || c.Title != "Annual 2026" {
		t.Fatalf("unexpected cycle: %+v", c)
	}
	if c.StartDate.Hour() != 0 {
		t.Fatalf("expected start date truncated to a day, got %v", c.StartDate)
	}
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	inputs := []CreateInput{
		{Title: "", StartDate: start, EndDate: start},
		{Title: "x", StartDate: start},
		{Title: "x", StartDate: start, EndDate: start.AddDate(0, 0, -1)},
	}
	for _, in := range inputs {
		if _, err := svc.Create(context.Background(), "t1", in); !errors.Is(err, ErrInvalidCycle) {
			t.Fatalf("expected ErrInvalidCycle for %+v, got %v", in, err)
		}
	}
}

func TestServiceLifecycle(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	c, err := svc.Create(ctx, "t1", CreateInput{
		Title:     "Q1",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Close(ctx, "t1", c.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected draft->closed rejected, got %v", err)
	}
	opened, err := svc.Open(ctx, "t1", c.ID)
	if err != nil || opened.Status != StatusOpen {
		t.Fatalf("expected open, got %+v %v", opened, err)
	}
	closed, err := svc.Close(ctx, "t1", c.ID)
	if err != nil || closed.Status != StatusClosed || closed.IsEditable {
		t.Fatalf("expected closed, got %+v %v", closed, err)
	}
	if _, err := svc.Open(ctx, "t1", c.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected reopen rejected, got %v", err)
	}
}

func TestServiceValidity(t *testing.T) {
	store := newMemStore()
	store.cycles["c1"] = sampleCycle()
	svc := NewService(store, fixedGuard(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)))

	_, v, err := svc.Validity(context.Background(), "t1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IsValid || v.Message == "" {
		t.Fatalf("expected invalid with message, got %+v", v)
	}

	if _, _, err := svc.Validity(context.Background(), "t1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceCloseExpired(t *testing.T) {
	store := newMemStore()
	store.cycles["c1"] = sampleCycle()
	svc := NewService(store, fixedGuard(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)))

	n, err := svc.CloseExpired(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || store.cycles["c1"].Status != StatusClosed {
		t.Fatalf("expected cycle closed, got n=%d %+v", n, store.cycles["c1"])
	}
	if store.closeAt.Hour() != 0 {
		t.Fatalf("expected store to receive a calendar day, got %v", store.closeAt)
	}
}
