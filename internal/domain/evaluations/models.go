package evaluations

import (
	"time"

	"talentreview/internal/domain/scoring"
)

type Evaluation struct {
	ID               string                    `json:"id"`
	CycleID          string                    `json:"cycleId"`
	EmployeeID       string                    `json:"employeeId"`
	EvaluatorID      string                    `json:"evaluatorId"`
	Type             Type                      `json:"type"`
	Status           Status                    `json:"status"`
	Scores           scoring.Scores            `json:"scores"`
	PerformanceLabel string                    `json:"performanceLabel"`
	Potential        *scoring.PotentialScores  `json:"potential,omitempty"`
	PotentialLabel   string                    `json:"potentialLabel,omitempty"`
	NineBox          *scoring.Box              `json:"nineBox,omitempty"`
	Criteria         []scoring.CategorySection `json:"criteria"`
	PotentialItems   *scoring.PotentialItems   `json:"potentialItems,omitempty"`
	Progress         Progress                  `json:"progress"`
	CreatedAt        time.Time                 `json:"createdAt"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
	SubmittedAt      *time.Time                `json:"submittedAt,omitempty"`
}

type Progress struct {
	Scored   int  `json:"scored"`
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
}

// Actor is the authenticated user performing a write.
type Actor struct {
	UserID     string
	EmployeeID string
	IsHR       bool
}

type SaveInput struct {
	CycleID    string                    `json:"cycleId"`
	EmployeeID string                    `json:"employeeId"`
	Type       Type                      `json:"type"`
	Criteria   []scoring.CategorySection `json:"criteria"`
	Potential  *scoring.PotentialItems   `json:"potential,omitempty"`
}

type Filter struct {
	CycleID    string
	EmployeeID string
	Type       Type
	Status     Status
	// Limit of zero means no limit.
	Limit  int
	Offset int
}

type Comparison struct {
	CycleID    string                     `json:"cycleId"`
	EmployeeID string                     `json:"employeeId"`
	Self       *Evaluation                `json:"self,omitempty"`
	Leader     *Evaluation                `json:"leader,omitempty"`
	Consensus  *Evaluation                `json:"consensus,omitempty"`
	Proposal   *scoring.ConsensusProposal `json:"proposal,omitempty"`
}

type Placement struct {
	EmployeeID   string      `json:"employeeId"`
	EvaluationID string      `json:"evaluationId"`
	Source       Type        `json:"source"`
	Performance  float64     `json:"performance"`
	Potential    float64     `json:"potential"`
	Box          scoring.Box `json:"box"`
}

type GridCell struct {
	Position  int         `json:"position"`
	Label     string      `json:"label"`
	Employees []Placement `json:"employees"`
}

type Grid struct {
	CycleID string     `json:"cycleId"`
	Cells   []GridCell `json:"cells"`
}

type Summary struct {
	CycleID           string         `json:"cycleId"`
	Total             int            `json:"total"`
	Completed         int            `json:"completed"`
	CompletionRate    float64        `json:"completionRate"`
	ByType            map[Type]int   `json:"byType"`
	LabelDistribution map[string]int `json:"labelDistribution"`
	AverageFinal      float64        `json:"averageFinal"`
}
