package evaluations

import (
	"context"

	"talentreview/internal/domain/competencies"
	"talentreview/internal/domain/cycles"
)

type StoreAPI interface {
	GetEvaluation(ctx context.Context, tenantID, evaluationID string) (Evaluation, error)
	FindEvaluation(ctx context.Context, tenantID, cycleID, employeeID string, evalType Type) (Evaluation, error)
	ListEvaluations(ctx context.Context, tenantID string, filter Filter) ([]Evaluation, error)
	CountEvaluations(ctx context.Context, tenantID string, filter Filter) (int, error)
	UpsertEvaluation(ctx context.Context, tenantID string, ev Evaluation) (Evaluation, error)
	ManagerIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error)
	EmployeeUserID(ctx context.Context, tenantID, employeeID string) (string, error)
}

type CycleSource interface {
	Get(ctx context.Context, tenantID, cycleID string) (cycles.Cycle, error)
}

type CatalogSource interface {
	Form(ctx context.Context, tenantID string) (competencies.Form, error)
}

type Notifier interface {
	Create(ctx context.Context, tenantID, userID, ntype, title, body string) error
}

type Recorder interface {
	EvaluationSaved(evalType, status string)
	CycleWriteRejected()
}
