package evaluations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"talentreview/internal/domain/scoring"
)

const evaluationColumns = `id, cycle_id, employee_id, evaluator_id, type, status,
  criteria_json, potential_json, created_at, updated_at, submitted_at`

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var ev Evaluation
	var evalType, status string
	var criteriaJSON, potentialJSON []byte
	var submittedAt *time.Time
	if err := row.Scan(&ev.ID, &ev.CycleID, &ev.EmployeeID, &ev.EvaluatorID, &evalType, &status,
		&criteriaJSON, &potentialJSON, &ev.CreatedAt, &ev.UpdatedAt, &submittedAt); err != nil {
		return Evaluation{}, err
	}
	ev.Type = Type(evalType)
	ev.Status = Status(status)
	ev.SubmittedAt = submittedAt
	if err := json.Unmarshal(criteriaJSON, &ev.Criteria); err != nil {
		return Evaluation{}, fmt.Errorf("decode criteria: %w", err)
	}
	if len(potentialJSON) > 0 && string(potentialJSON) != "null" {
		var items scoring.PotentialItems
		if err := json.Unmarshal(potentialJSON, &items); err != nil {
			return Evaluation{}, fmt.Errorf("decode potential: %w", err)
		}
		ev.PotentialItems = &items
	}
	applyScores(&ev)
	return ev, nil
}

func (s *Store) GetEvaluation(ctx context.Context, tenantID, evaluationID string) (Evaluation, error) {
	if uuid.Validate(evaluationID) != nil {
		return Evaluation{}, ErrNotFound
	}
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, evaluationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return ev, err
}

func (s *Store) FindEvaluation(ctx context.Context, tenantID, cycleID, employeeID string, evalType Type) (Evaluation, error) {
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE tenant_id = $1 AND cycle_id = $2 AND employee_id = $3 AND type = $4
  `, tenantID, cycleID, employeeID, string(evalType)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	return ev, err
}

// filterClause appends the WHERE conditions of filter after the tenant.
func filterClause(tenantID string, filter Filter) (string, []any) {
	where := " WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.CycleID != "" {
		args = append(args, filter.CycleID)
		where += fmt.Sprintf(" AND cycle_id = $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	return where, args
}

// ListEvaluations returns the newest evaluations first. A zero Limit returns
// every match.
func (s *Store) ListEvaluations(ctx context.Context, tenantID string, filter Filter) ([]Evaluation, error) {
	where, args := filterClause(tenantID, filter)
	query := "SELECT " + evaluationColumns + " FROM evaluations" + where + " ORDER BY updated_at DESC, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) CountEvaluations(ctx context.Context, tenantID string, filter Filter) (int, error) {
	where, args := filterClause(tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM evaluations"+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// UpsertEvaluation creates the evaluation on first save and updates it
// afterwards. A completed row is never touched: the conditional update
// returns no row and ErrEvaluationCompleted is reported.
func (s *Store) UpsertEvaluation(ctx context.Context, tenantID string, ev Evaluation) (Evaluation, error) {
	criteriaJSON, err := json.Marshal(ev.Criteria)
	if err != nil {
		return Evaluation{}, err
	}
	var potentialJSON []byte
	var potentialFinal any
	if ev.PotentialItems != nil {
		potentialJSON, err = json.Marshal(ev.PotentialItems)
		if err != nil {
			return Evaluation{}, err
		}
	}
	if ev.Potential != nil {
		potentialFinal = ev.Potential.Final
	}
	var nineBox any
	if ev.NineBox != nil {
		nineBox = ev.NineBox.Position
	}

	out, err := scanEvaluation(s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (
      tenant_id, cycle_id, employee_id, evaluator_id, type, status,
      technical_score, behavioral_score, organizational_score, final_score, performance_label,
      potential_final, potential_label, nine_box_position,
      criteria_json, potential_json, submitted_at
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    ON CONFLICT (tenant_id, cycle_id, employee_id, type) DO UPDATE SET
      evaluator_id = EXCLUDED.evaluator_id,
      status = EXCLUDED.status,
      technical_score = EXCLUDED.technical_score,
      behavioral_score = EXCLUDED.behavioral_score,
      organizational_score = EXCLUDED.organizational_score,
      final_score = EXCLUDED.final_score,
      performance_label = EXCLUDED.performance_label,
      potential_final = EXCLUDED.potential_final,
      potential_label = EXCLUDED.potential_label,
      nine_box_position = EXCLUDED.nine_box_position,
      criteria_json = EXCLUDED.criteria_json,
      potential_json = EXCLUDED.potential_json,
      submitted_at = EXCLUDED.submitted_at,
      updated_at = now()
    WHERE evaluations.status <> 'completed'
    RETURNING `+evaluationColumns,
		tenantID, ev.CycleID, ev.EmployeeID, ev.EvaluatorID, string(ev.Type), string(ev.Status),
		ev.Scores.Technical, ev.Scores.Behavioral, ev.Scores.Organizational, ev.Scores.Final, ev.PerformanceLabel,
		potentialFinal, ev.PotentialLabel, nineBox,
		criteriaJSON, potentialJSON, ev.SubmittedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrEvaluationCompleted
	}
	return out, err
}

func (s *Store) ManagerIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error) {
	var managerID *string
	err := s.DB.QueryRow(ctx, "SELECT manager_id FROM employees WHERE tenant_id = $1 AND id = $2", tenantID, employeeID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil || managerID == nil {
		return "", err
	}
	return *managerID, nil
}

func (s *Store) EmployeeUserID(ctx context.Context, tenantID, employeeID string) (string, error) {
	var userID *string
	if err := s.DB.QueryRow(ctx, "SELECT user_id FROM employees WHERE tenant_id = $1 AND id = $2", tenantID, employeeID).Scan(&userID); err != nil {
		return "", err
	}
	if userID == nil {
		return "", nil
	}
	return *userID, nil
}
