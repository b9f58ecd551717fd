package competencies

import (
	"context"

	"talentreview/internal/domain/scoring"
)

// Form is an unscored evaluation form for a tenant.
type Form struct {
	Sections  []scoring.CategorySection `json:"sections"`
	Potential scoring.PotentialItems    `json:"potential"`
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Form returns the tenant catalog, falling back to the built-in catalog when
// the tenant has none stored.
func (s *Service) Form(ctx context.Context, tenantID string) (Form, error) {
	competencies, err := s.store.ListCriteria(ctx, tenantID, kindCompetency)
	if err != nil {
		return Form{}, err
	}
	potential, err := s.store.ListCriteria(ctx, tenantID, kindPotential)
	if err != nil {
		return Form{}, err
	}
	defComp, defPot := DefaultCatalog()
	if len(competencies) == 0 {
		competencies = defComp
	}
	if len(potential) == 0 {
		potential = defPot
	}
	return Form{Sections: Sections(competencies), Potential: PotentialForm(potential)}, nil
}

// SeedDefaults stores the built-in catalog for a tenant. Existing keys are
// left untouched.
func (s *Service) SeedDefaults(ctx context.Context, tenantID string) error {
	competencies, potential := DefaultCatalog()
	for _, c := range competencies {
		if err := s.store.UpsertCriterion(ctx, tenantID, kindCompetency, c); err != nil {
			return err
		}
	}
	for _, c := range potential {
		if err := s.store.UpsertCriterion(ctx, tenantID, kindPotential, c); err != nil {
			return err
		}
	}
	return nil
}
