package evaluations

import (
	"fmt"

	"talentreview/internal/domain/scoring"
)

// normalizeCriteria pins every section to its fixed category weight so a
// client can never change how categories contribute to the final score.
func normalizeCriteria(sections []scoring.CategorySection) ([]scoring.CategorySection, error) {
	out := make([]scoring.CategorySection, 0, len(sections))
	seen := map[scoring.Category]bool{}
	seenItems := map[string]bool{}
	for _, section := range sections {
		if !section.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, section.Category)
		}
		if seen[section.Category] {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidInput, section.Category)
		}
		seen[section.Category] = true
		section.Weight = scoring.CategoryWeight(section.Category)
		items := make([]scoring.CompetencyItem, len(section.Items))
		for i, item := range section.Items {
			if item.ID == "" {
				return nil, fmt.Errorf("%w: competency item id required", ErrInvalidInput)
			}
			if seenItems[item.ID] {
				return nil, fmt.Errorf("%w: duplicate competency %q", ErrInvalidInput, item.ID)
			}
			seenItems[item.ID] = true
			item.Category = section.Category
			items[i] = item
		}
		section.Items = items
		out = append(out, section)
	}
	if ids := scoring.InvalidItems(out); len(ids) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRating, ids)
	}
	return out, nil
}

// conformToCatalog lays the sent scores over the tenant form. Competencies
// the caller left out stay unscored, so they count against completeness.
// Sent ids must exist in the form under the same category.
func conformToCatalog(form, sent []scoring.CategorySection) ([]scoring.CategorySection, error) {
	known := map[string]scoring.Category{}
	for _, section := range form {
		for _, item := range section.Items {
			known[item.ID] = section.Category
		}
	}
	scores := map[string]scoring.Rating{}
	for _, section := range sent {
		for _, item := range section.Items {
			category, ok := known[item.ID]
			if !ok {
				return nil, fmt.Errorf("%w: unknown competency %q", ErrInvalidInput, item.ID)
			}
			if category != section.Category {
				return nil, fmt.Errorf("%w: competency %q belongs to %s", ErrInvalidInput, item.ID, category)
			}
			scores[item.ID] = item.Score
		}
	}

	out := make([]scoring.CategorySection, len(form))
	for i, section := range form {
		items := make([]scoring.CompetencyItem, len(section.Items))
		for j, item := range section.Items {
			item.Category = section.Category
			item.Score = scores[item.ID]
			items[j] = item
		}
		section.Items = items
		out[i] = section
	}
	return out, nil
}

// applyScores fills every derived field of ev from its criteria and
// potential items.
func applyScores(ev *Evaluation) {
	category := scoring.ComputeCategoryScores(ev.Criteria)
	ev.Scores = category.Scores()
	ev.PerformanceLabel = scoring.ClassifyPerformance(ev.Scores.Final)

	scored, total := scoring.Progress(ev.Criteria)
	complete := scoring.SectionsComplete(ev.Criteria)

	ev.Potential = nil
	ev.PotentialLabel = ""
	ev.NineBox = nil
	if ev.PotentialItems != nil {
		potential := scoring.ComputePotentialScores(*ev.PotentialItems)
		ev.Potential = &potential
		ev.PotentialLabel = scoring.ClassifyPotential(potential.Final)
		for _, item := range ev.PotentialItems.Items() {
			total++
			if item.Score.Defined() {
				scored++
			}
		}
		complete = complete && scoring.PotentialComplete(*ev.PotentialItems)
		box := scoring.NineBox(ev.Scores.Final, potential.Final)
		ev.NineBox = &box
	}
	ev.Progress = Progress{Scored: scored, Total: total, Complete: complete}
}

// Preview scores an input without touching storage.
func Preview(in SaveInput) (Evaluation, error) {
	criteria, err := normalizeCriteria(in.Criteria)
	if err != nil {
		return Evaluation{}, err
	}
	if in.Potential != nil && !scoring.PotentialValid(*in.Potential) {
		return Evaluation{}, ErrInvalidRating
	}
	ev := Evaluation{
		CycleID:        in.CycleID,
		EmployeeID:     in.EmployeeID,
		Type:           in.Type,
		Status:         StatusInProgress,
		Criteria:       criteria,
		PotentialItems: in.Potential,
	}
	applyScores(&ev)
	return ev, nil
}
