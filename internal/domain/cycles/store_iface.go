package cycles

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateCycle(ctx context.Context, tenantID, title string, startDate, endDate time.Time, status Status) (string, error)
	GetCycle(ctx context.Context, tenantID, cycleID string) (Cycle, error)
	ListCycles(ctx context.Context, tenantID string, status Status) ([]Cycle, error)
	UpdateCycleStatus(ctx context.Context, tenantID, cycleID string, from, to Status) (bool, error)
	CloseExpiredCycles(ctx context.Context, tenantID string, today time.Time) (int64, error)
}
