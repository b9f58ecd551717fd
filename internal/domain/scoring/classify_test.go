package scoring

import "testing"

func TestClassifyPerformance(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{4, LabelExcellent},
		{3.5, LabelExcellent},
		{3.49999, LabelGood},
		{2.5, LabelGood},
		{2.49, LabelRegular},
		{1.5, LabelRegular},
		{1.4, LabelNeedsImprovement},
		{0, LabelNeedsImprovement},
	}
	for _, tc := range cases {
		if got := ClassifyPerformance(tc.score); got != tc.want {
			t.Fatalf("ClassifyPerformance(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestClassifyPotential(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{3.5, LabelHighPotential},
		{3.49999, LabelMediumPotential},
		{2.5, LabelMediumPotential},
		{1.5, LabelDevelopingPotential},
		{1, LabelNeedsDevelopment},
	}
	for _, tc := range cases {
		if got := ClassifyPotential(tc.score); got != tc.want {
			t.Fatalf("ClassifyPotential(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestNineBox(t *testing.T) {
	cases := []struct {
		perf, pot float64
		position  int
		label     string
	}{
		{1, 1, 1, "Talent risk"},
		{3.2, 1.2, 2, "Effective professional"},
		{3.5, 2, 3, "Trusted professional"},
		{2, 3, 4, "Inconsistent player"},
		{3.2, 3.25, 5, "Core player"},
		{4, 2.5, 6, "High performer"},
		{1.5, 4, 7, "Rough diamond"},
		{2.5, 3.5, 8, "Future star"},
		{3.9, 3.75, 9, "Star"},
	}
	for _, tc := range cases {
		box := NineBox(tc.perf, tc.pot)
		if box.Position != tc.position || box.Label != tc.label {
			t.Fatalf("NineBox(%v, %v) = %+v, want position %d %q", tc.perf, tc.pot, box, tc.position, tc.label)
		}
	}
}

func TestProposeConsensus(t *testing.T) {
	self := []CategorySection{{
		Category: CategoryTechnical,
		Weight:   0.5,
		Items: []CompetencyItem{
			{ID: "t1", Score: 4},
			{ID: "t2", Score: 3},
			{ID: "t3", Score: 2},
		},
	}, {
		Category: CategoryBehavioral,
		Weight:   0.3,
		Items:    []CompetencyItem{{ID: "b1", Score: 3}},
	}}
	leader := []CategorySection{{
		Category: CategoryTechnical,
		Weight:   0.5,
		Items: []CompetencyItem{
			{ID: "t1", Score: 2},
			{ID: "t2", Score: RatingUnset},
			{ID: "t3", Score: 3},
		},
	}}

	proposal := ProposeConsensus(self, leader)

	if len(proposal.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(proposal.Sections))
	}
	tech := proposal.Sections[0].Items
	if tech[0].Score != 2 || tech[1].Score != 3 || tech[2].Score != 3 {
		t.Fatalf("unexpected technical proposal: %+v", tech)
	}
	if proposal.Sections[1].Category != CategoryBehavioral || proposal.Sections[1].Items[0].Score != 3 {
		t.Fatalf("expected self-only behavioral item carried over, got %+v", proposal.Sections[1])
	}
	if len(proposal.Divergences) != 1 || proposal.Divergences[0].ItemID != "t1" || proposal.Divergences[0].Gap != 2 {
		t.Fatalf("unexpected divergences: %+v", proposal.Divergences)
	}
}
