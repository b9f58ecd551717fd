package jobs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	StartRun(ctx context.Context, tenantID, jobType string) (string, error)
	FinishRun(ctx context.Context, runID, status string, details []byte) error
	ListTenants(ctx context.Context) ([]string, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) StartRun(ctx context.Context, tenantID, jobType string) (string, error) {
	var runID string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, jobType, statusRunning).Scan(&runID)
	return runID, err
}

func (s *Store) FinishRun(ctx context.Context, runID, status string, details []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, runID)
	return err
}

func (s *Store) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
