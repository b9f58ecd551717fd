package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const JobCloseExpiredCycles = "cycles.close_expired"

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// CycleCloser closes open cycles whose end date has passed.
type CycleCloser interface {
	CloseExpired(ctx context.Context, tenantID string) (int64, error)
}

type Recorder interface {
	JobRun(job, status string)
}

type Service struct {
	Store    StoreAPI
	Cycles   CycleCloser
	Metrics  Recorder
	Interval time.Duration
	queue    chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(store StoreAPI, cycles CycleCloser, interval time.Duration) *Service {
	return &Service{
		Store:    store,
		Cycles:   cycles,
		Interval: interval,
		queue:    make(chan job, 128),
	}
}

// Start runs the worker and the cycle scheduler until ctx is cancelled. The
// first close pass happens immediately so a restart never leaves stale
// cycles open for a whole interval.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Interval > 0 && s.Cycles != nil {
		s.enqueueCycleClose(ctx)
		go s.scheduleCycleClose(ctx, s.Interval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID, err := s.Store.StartRun(ctx, j.TenantID, j.Type)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	details, runErr := j.Run(ctx)
	status := statusCompleted
	if runErr != nil {
		status = statusFailed
	}
	if s.Metrics != nil {
		s.Metrics.JobRun(j.Type, status)
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if err := s.Store.FinishRun(ctx, runID, status, detailsJSON); err != nil {
			slog.Warn("job run update failed", "runId", runID, "err", err)
		}
	}
	return details, runErr
}

func (s *Service) scheduleCycleClose(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueCycleClose(ctx)
		}
	}
}

func (s *Service) enqueueCycleClose(ctx context.Context) {
	tenants, err := s.Store.ListTenants(ctx)
	if err != nil {
		slog.Warn("cycle scheduler tenant lookup failed", "err", err)
		return
	}
	for _, tenantID := range tenants {
		tenant := tenantID
		s.Enqueue(JobCloseExpiredCycles, tenant, func(ctx context.Context) (any, error) {
			closed, err := s.Cycles.CloseExpired(ctx, tenant)
			if closed > 0 {
				slog.Info("expired cycles closed", "tenantId", tenant, "closed", closed)
			}
			return map[string]any{"closed": closed}, err
		})
	}
}
