package competencies

import "talentreview/internal/domain/scoring"

type Criterion struct {
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    scoring.Category `json:"category,omitempty"`
	Position    int              `json:"position"`
}

// Potential criterion keys. Their order matches scoring.PotentialItems.
const (
	PotentialSuccessor = "successor_potential"
	PotentialLearning  = "continuous_learning"
	PotentialCulture   = "cultural_alignment"
	PotentialSystemic  = "systemic_view"
)

var defaultCompetencies = []Criterion{
	{Key: "technical_knowledge", Category: scoring.CategoryTechnical, Name: "Technical knowledge", Description: "Masters the tools, methods and domain knowledge the role requires."},
	{Key: "quality_of_work", Category: scoring.CategoryTechnical, Name: "Quality of work", Description: "Delivers accurate, complete work that needs little rework."},
	{Key: "problem_solving", Category: scoring.CategoryTechnical, Name: "Problem solving", Description: "Analyses issues and proposes workable solutions."},
	{Key: "continuous_improvement", Category: scoring.CategoryTechnical, Name: "Continuous improvement", Description: "Improves processes and keeps skills up to date."},
	{Key: "communication", Category: scoring.CategoryBehavioral, Name: "Communication", Description: "Shares information clearly and listens actively."},
	{Key: "teamwork", Category: scoring.CategoryBehavioral, Name: "Teamwork", Description: "Collaborates and supports colleagues toward shared goals."},
	{Key: "ownership", Category: scoring.CategoryBehavioral, Name: "Ownership", Description: "Takes responsibility for commitments and outcomes."},
	{Key: "adaptability", Category: scoring.CategoryBehavioral, Name: "Adaptability", Description: "Responds constructively to change and feedback."},
	{Key: "goal_delivery", Category: scoring.CategoryOrganizational, Name: "Goal delivery", Description: "Meets agreed goals and deadlines."},
	{Key: "planning", Category: scoring.CategoryOrganizational, Name: "Planning and organisation", Description: "Prioritises and organises work effectively."},
	{Key: "customer_focus", Category: scoring.CategoryOrganizational, Name: "Customer focus", Description: "Keeps internal and external customer needs in view."},
}

var defaultPotential = []Criterion{
	{Key: PotentialSuccessor, Name: "Successor potential", Description: "Could take on a broader or more senior role."},
	{Key: PotentialLearning, Name: "Continuous learning", Description: "Learns quickly and seeks out development."},
	{Key: PotentialCulture, Name: "Cultural alignment", Description: "Acts on the company values and inspires others to."},
	{Key: PotentialSystemic, Name: "Systemic view", Description: "Understands how their work affects the wider organisation."},
}

// DefaultCatalog returns the built-in competency and potential criteria with
// positions assigned.
func DefaultCatalog() (competencies, potential []Criterion) {
	competencies = make([]Criterion, len(defaultCompetencies))
	for i, c := range defaultCompetencies {
		c.Position = i + 1
		competencies[i] = c
	}
	potential = make([]Criterion, len(defaultPotential))
	for i, c := range defaultPotential {
		c.Position = i + 1
		potential[i] = c
	}
	return competencies, potential
}

// Sections groups competency criteria into unscored rating sections in
// category order.
func Sections(criteria []Criterion) []scoring.CategorySection {
	sections := scoring.DefaultSections()
	for _, c := range criteria {
		for i := range sections {
			if sections[i].Category != c.Category {
				continue
			}
			sections[i].Items = append(sections[i].Items, scoring.CompetencyItem{
				ID:          c.Key,
				Name:        c.Name,
				Description: c.Description,
				Category:    c.Category,
			})
		}
	}
	return sections
}

// PotentialForm maps the potential criteria onto the named roles. Unknown
// keys are ignored.
func PotentialForm(criteria []Criterion) scoring.PotentialItems {
	var out scoring.PotentialItems
	for _, c := range criteria {
		item := scoring.PotentialItem{ID: c.Key, Name: c.Name, Description: c.Description}
		switch c.Key {
		case PotentialSuccessor:
			out.SuccessorPotential = item
		case PotentialLearning:
			out.ContinuousLearning = item
		case PotentialCulture:
			out.CulturalAlignment = item
		case PotentialSystemic:
			out.SystemicView = item
		}
	}
	return out
}
