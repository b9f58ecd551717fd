package competencies

import (
	"context"
	"testing"

	"talentreview/internal/domain/scoring"
)

type memStore struct {
	rows map[string][]Criterion
}

func (m *memStore) ListCriteria(_ context.Context, _ string, kind string) ([]Criterion, error) {
	return m.rows[kind], nil
}

func (m *memStore) UpsertCriterion(_ context.Context, _ string, kind string, c Criterion) error {
	for _, existing := range m.rows[kind] {
		if existing.Key == c.Key {
			return nil
		}
	}
	m.rows[kind] = append(m.rows[kind], c)
	return nil
}

func TestDefaultCatalogCoversEveryCategory(t *testing.T) {
	competencies, potential := DefaultCatalog()
	sections := Sections(competencies)
	for _, s := range sections {
		if len(s.Items) == 0 {
			t.Fatalf("category %s has no criteria", s.Category)
		}
		if s.Weight != scoring.CategoryWeight(s.Category) {
			t.Fatalf("category %s has weight %v", s.Category, s.Weight)
		}
	}
	if len(potential) != 4 {
		t.Fatalf("expected 4 potential criteria, got %d", len(potential))
	}
}

func TestPotentialFormMapsRoles(t *testing.T) {
	_, potential := DefaultCatalog()
	form := PotentialForm(potential)
	if form.SuccessorPotential.ID != PotentialSuccessor || form.SystemicView.ID != PotentialSystemic {
		t.Fatalf("unexpected potential form: %+v", form)
	}
	if form.CulturalAlignment.Score.Defined() {
		t.Fatal("expected unscored form")
	}
}

func TestServiceSeedAndForm(t *testing.T) {
	store := &memStore{rows: map[string][]Criterion{}}
	svc := NewService(store)

	form, err := svc.Form(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored, total := scoring.Progress(form.Sections); scored != 0 || total == 0 {
		t.Fatalf("expected unscored default form, got %d/%d", scored, total)
	}

	if err := svc.SeedDefaults(context.Background(), "t1"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := svc.SeedDefaults(context.Background(), "t1"); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	competencies, _ := DefaultCatalog()
	if len(store.rows[kindCompetency]) != len(competencies) {
		t.Fatalf("expected seeding to be idempotent, got %d rows", len(store.rows[kindCompetency]))
	}
}
