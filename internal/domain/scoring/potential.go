package scoring

type PotentialItem struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Score       Rating `json:"score" yaml:"score"`
}

// PotentialItems holds the four fixed potential criteria. Relationships is
// derived from CulturalAlignment and SystemicView together.
type PotentialItems struct {
	SuccessorPotential PotentialItem `json:"successorPotential" yaml:"successorPotential"`
	ContinuousLearning PotentialItem `json:"continuousLearning" yaml:"continuousLearning"`
	CulturalAlignment  PotentialItem `json:"culturalAlignment" yaml:"culturalAlignment"`
	SystemicView       PotentialItem `json:"systemicView" yaml:"systemicView"`
}

type PotentialScores struct {
	Results       float64 `json:"results"`
	Agility       float64 `json:"agility"`
	Relationships float64 `json:"relationships"`
	Final         float64 `json:"final"`
}

func (p PotentialItems) ratings() []Rating {
	return []Rating{
		p.SuccessorPotential.Score,
		p.ContinuousLearning.Score,
		p.CulturalAlignment.Score,
		p.SystemicView.Score,
	}
}

// Items returns the criteria in their canonical order.
func (p PotentialItems) Items() []PotentialItem {
	return []PotentialItem{p.SuccessorPotential, p.ContinuousLearning, p.CulturalAlignment, p.SystemicView}
}

// ComputePotentialScores derives the three named sub-scores and the overall
// mean. An unset criterion reads as 0 in its own sub-score but is left out of
// every mean.
func ComputePotentialScores(p PotentialItems) PotentialScores {
	return PotentialScores{
		Results:       float64(p.SuccessorPotential.Score),
		Agility:       float64(p.ContinuousLearning.Score),
		Relationships: meanDefined(p.CulturalAlignment.Score, p.SystemicView.Score),
		Final:         meanDefined(p.ratings()...),
	}
}

func PotentialComplete(p PotentialItems) bool {
	for _, r := range p.ratings() {
		if !r.Defined() {
			return false
		}
	}
	return true
}

// PotentialValid reports whether every defined criterion is within 1-4.
func PotentialValid(p PotentialItems) bool {
	for _, r := range p.ratings() {
		if r.Defined() && !r.Valid() {
			return false
		}
	}
	return true
}
