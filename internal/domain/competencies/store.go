package competencies

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"talentreview/internal/domain/scoring"
)

const (
	kindCompetency = "competency"
	kindPotential  = "potential"
)

type StoreAPI interface {
	ListCriteria(ctx context.Context, tenantID, kind string) ([]Criterion, error)
	UpsertCriterion(ctx context.Context, tenantID, kind string, c Criterion) error
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListCriteria(ctx context.Context, tenantID, kind string) ([]Criterion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT key, name, description, COALESCE(category, ''), position
    FROM competencies
    WHERE tenant_id = $1 AND kind = $2 AND active = true
    ORDER BY position, name
  `, tenantID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		var c Criterion
		var category string
		if err := rows.Scan(&c.Key, &c.Name, &c.Description, &category, &c.Position); err != nil {
			return nil, err
		}
		c.Category = scoring.Category(category)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpsertCriterion(ctx context.Context, tenantID, kind string, c Criterion) error {
	var category any
	if c.Category != "" {
		category = string(c.Category)
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO competencies (tenant_id, kind, key, name, description, category, position)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (tenant_id, kind, key) DO NOTHING
  `, tenantID, kind, c.Key, c.Name, c.Description, category, c.Position)
	return err
}
