// Package scoring rolls competency and potential ratings up into category
// averages, a weighted final score and classification bands. Every function
// here is pure: incomplete input degrades to zero or partial values and is
// never an error.
package scoring

// Rating is a 1-4 score. RatingUnset marks an item no rater has scored yet.
type Rating int

const (
	RatingUnset Rating = 0
	RatingMin   Rating = 1
	RatingMax   Rating = 4
)

func (r Rating) Valid() bool {
	return r >= RatingMin && r <= RatingMax
}

// Defined reports whether a rater has selected a value.
func (r Rating) Defined() bool {
	return r != RatingUnset
}

type Category string

const (
	CategoryTechnical      Category = "technical"
	CategoryBehavioral     Category = "behavioral"
	CategoryOrganizational Category = "organizational"
)

// Categories lists the competency groups in display order.
var Categories = []Category{CategoryTechnical, CategoryBehavioral, CategoryOrganizational}

var categoryWeights = map[Category]float64{
	CategoryTechnical:      0.5,
	CategoryBehavioral:     0.3,
	CategoryOrganizational: 0.2,
}

// CategoryWeight returns the fixed contribution of a category to the final
// score, or 0 for an unknown category.
func CategoryWeight(c Category) float64 {
	return categoryWeights[c]
}

func (c Category) Valid() bool {
	_, ok := categoryWeights[c]
	return ok
}

type CompetencyItem struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    Category `json:"category" yaml:"category"`
	Score       Rating   `json:"score" yaml:"score"`
}

type CategorySection struct {
	Category Category         `json:"category" yaml:"category"`
	Weight   float64          `json:"weight" yaml:"weight"`
	Items    []CompetencyItem `json:"items" yaml:"items"`
}

// DefaultSections returns empty sections for every category with its fixed
// weight.
func DefaultSections() []CategorySection {
	sections := make([]CategorySection, 0, len(Categories))
	for _, c := range Categories {
		sections = append(sections, CategorySection{Category: c, Weight: CategoryWeight(c)})
	}
	return sections
}

type CategoryScores struct {
	PerCategory map[Category]float64 `json:"perCategory"`
	Final       float64              `json:"final"`
}

// Scores is the flattened form persisted alongside an evaluation.
type Scores struct {
	Technical      float64 `json:"technical"`
	Behavioral     float64 `json:"behavioral"`
	Organizational float64 `json:"organizational"`
	Final          float64 `json:"final"`
}

func (c CategoryScores) Scores() Scores {
	return Scores{
		Technical:      c.PerCategory[CategoryTechnical],
		Behavioral:     c.PerCategory[CategoryBehavioral],
		Organizational: c.PerCategory[CategoryOrganizational],
		Final:          c.Final,
	}
}

// ComputeCategoryScores averages the defined scores of each section and
// weights the averages into the final score. A section with no scored items
// averages to 0.
func ComputeCategoryScores(sections []CategorySection) CategoryScores {
	out := CategoryScores{PerCategory: make(map[Category]float64, len(sections))}
	for _, section := range sections {
		avg := sectionAverage(section)
		out.PerCategory[section.Category] = avg
		out.Final += avg * section.Weight
	}
	return out
}

func sectionAverage(section CategorySection) float64 {
	ratings := make([]Rating, 0, len(section.Items))
	for _, item := range section.Items {
		ratings = append(ratings, item.Score)
	}
	return meanDefined(ratings...)
}

// meanDefined averages the defined ratings; unset ratings are skipped.
func meanDefined(ratings ...Rating) float64 {
	var sum, n int
	for _, r := range ratings {
		if !r.Defined() {
			continue
		}
		sum += int(r)
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// SectionsComplete reports whether every item in every section is scored.
// Sections without any items have nothing to submit and are incomplete.
func SectionsComplete(sections []CategorySection) bool {
	scored, total := Progress(sections)
	return total > 0 && scored == total
}

// Progress counts scored and total items across all sections.
func Progress(sections []CategorySection) (scored, total int) {
	for _, section := range sections {
		for _, item := range section.Items {
			total++
			if item.Score.Defined() {
				scored++
			}
		}
	}
	return scored, total
}

// InvalidItems returns the ids of items whose score is set but outside 1-4.
func InvalidItems(sections []CategorySection) []string {
	var out []string
	for _, section := range sections {
		for _, item := range section.Items {
			if item.Score.Defined() && !item.Score.Valid() {
				out = append(out, item.ID)
			}
		}
	}
	return out
}
