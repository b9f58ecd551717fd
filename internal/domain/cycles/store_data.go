package cycles

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const cycleColumns = "id, title, start_date, end_date, status, is_editable, created_at"

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	var status string
	if err := row.Scan(&c.ID, &c.Title, &c.StartDate, &c.EndDate, &status, &c.IsEditable, &c.CreatedAt); err != nil {
		return Cycle{}, err
	}
	c.Status = Status(status)
	return c, nil
}

func (s *Store) CreateCycle(ctx context.Context, tenantID, title string, startDate, endDate time.Time, status Status) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_cycles (tenant_id, title, start_date, end_date, status, is_editable)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, tenantID, title, startDate, endDate, string(status), status != StatusClosed).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetCycle(ctx context.Context, tenantID, cycleID string) (Cycle, error) {
	if uuid.Validate(cycleID) != nil {
		return Cycle{}, ErrNotFound
	}
	c, err := scanCycle(s.DB.QueryRow(ctx, `
    SELECT `+cycleColumns+`
    FROM evaluation_cycles
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, cycleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Cycle{}, ErrNotFound
	}
	return c, err
}

func (s *Store) ListCycles(ctx context.Context, tenantID string, status Status) ([]Cycle, error) {
	query := `
    SELECT ` + cycleColumns + `
    FROM evaluation_cycles
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, string(status))
	}
	query += " ORDER BY start_date DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCycleStatus moves a cycle only if it is still in the expected status.
func (s *Store) UpdateCycleStatus(ctx context.Context, tenantID, cycleID string, from, to Status) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_cycles
    SET status = $1, is_editable = $2, updated_at = now()
    WHERE tenant_id = $3 AND id = $4 AND status = $5
  `, string(to), to != StatusClosed, tenantID, cycleID, string(from))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) CloseExpiredCycles(ctx context.Context, tenantID string, today time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_cycles
    SET status = $1, is_editable = false, updated_at = now()
    WHERE tenant_id = $2 AND status = $3 AND end_date < $4
  `, string(StatusClosed), tenantID, string(StatusOpen), today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
