package cycles

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	store StoreAPI
	Guard *Guard
}

func NewService(store StoreAPI, guard *Guard) *Service {
	if guard == nil {
		guard = NewGuard()
	}
	return &Service{store: store, Guard: guard}
}

// Create registers a new cycle in draft status.
func (s *Service) Create(ctx context.Context, tenantID string, in CreateInput) (Cycle, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Cycle{}, fmt.Errorf("%w: title required", ErrInvalidCycle)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Cycle{}, fmt.Errorf("%w: start and end dates required", ErrInvalidCycle)
	}
	start, end := civilDate(in.StartDate), civilDate(in.EndDate)
	if end.Before(start) {
		return Cycle{}, fmt.Errorf("%w: end date before start date", ErrInvalidCycle)
	}

	id, err := s.store.CreateCycle(ctx, tenantID, title, start, end, StatusDraft)
	if err != nil {
		return Cycle{}, err
	}
	return Cycle{ID: id, Title: title, StartDate: start, EndDate: end, Status: StatusDraft, IsEditable: true}, nil
}

func (s *Service) Get(ctx context.Context, tenantID, cycleID string) (Cycle, error) {
	return s.store.GetCycle(ctx, tenantID, cycleID)
}

func (s *Service) List(ctx context.Context, tenantID string, status Status) ([]Cycle, error) {
	return s.store.ListCycles(ctx, tenantID, status)
}

// Validity loads a cycle and reports its write window along with the status
// half of the gate.
func (s *Service) Validity(ctx context.Context, tenantID, cycleID string) (Cycle, Validation, error) {
	c, err := s.store.GetCycle(ctx, tenantID, cycleID)
	if err != nil {
		return Cycle{}, Validation{}, err
	}
	if err := s.Guard.CheckWritable(c); err != nil {
		return c, Validation{IsValid: false, Message: err.Error()}, nil
	}
	return c, Validation{IsValid: true}, nil
}

func (s *Service) Open(ctx context.Context, tenantID, cycleID string) (Cycle, error) {
	return s.transition(ctx, tenantID, cycleID, StatusOpen)
}

func (s *Service) Close(ctx context.Context, tenantID, cycleID string) (Cycle, error) {
	return s.transition(ctx, tenantID, cycleID, StatusClosed)
}

func (s *Service) transition(ctx context.Context, tenantID, cycleID string, to Status) (Cycle, error) {
	c, err := s.store.GetCycle(ctx, tenantID, cycleID)
	if err != nil {
		return Cycle{}, err
	}
	if !CanTransition(c.Status, to) {
		return c, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.Status, to)
	}
	ok, err := s.store.UpdateCycleStatus(ctx, tenantID, cycleID, c.Status, to)
	if err != nil {
		return c, err
	}
	if !ok {
		// Someone else moved the cycle between the read and the update.
		return c, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
	}
	c.Status = to
	c.IsEditable = to != StatusClosed
	return c, nil
}

// CloseExpired closes every open cycle whose end date is before today.
func (s *Service) CloseExpired(ctx context.Context, tenantID string) (int64, error) {
	return s.store.CloseExpiredCycles(ctx, tenantID, s.Guard.Today())
}
