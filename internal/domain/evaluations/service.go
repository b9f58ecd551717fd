package evaluations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"talentreview/internal/domain/cycles"
	"talentreview/internal/domain/notifications"
	"talentreview/internal/domain/scoring"
)

type Service struct {
	store   StoreAPI
	cycles  CycleSource
	guard   *cycles.Guard
	Catalog CatalogSource
	Notify  Notifier
	Metrics Recorder
	now     func() time.Time
}

func NewService(store StoreAPI, cycleSource CycleSource, guard *cycles.Guard) *Service {
	if guard == nil {
		guard = cycles.NewGuard()
	}
	return &Service{store: store, cycles: cycleSource, guard: guard, now: time.Now}
}

func (s *Service) Get(ctx context.Context, tenantID, evaluationID string) (Evaluation, error) {
	return s.store.GetEvaluation(ctx, tenantID, evaluationID)
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter) ([]Evaluation, error) {
	return s.store.ListEvaluations(ctx, tenantID, filter)
}

// Count ignores the filter's Limit and Offset.
func (s *Service) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	return s.store.CountEvaluations(ctx, tenantID, filter)
}

// SaveDraft stores work in progress. Incomplete ratings are accepted and
// scored as far as they go.
func (s *Service) SaveDraft(ctx context.Context, tenantID string, actor Actor, in SaveInput) (Evaluation, error) {
	return s.save(ctx, tenantID, actor, in, false)
}

// Submit finalises an evaluation. Every criterion must be scored and the
// evaluation cannot change afterwards.
func (s *Service) Submit(ctx context.Context, tenantID string, actor Actor, in SaveInput) (Evaluation, error) {
	return s.save(ctx, tenantID, actor, in, true)
}

func (s *Service) save(ctx context.Context, tenantID string, actor Actor, in SaveInput, submit bool) (Evaluation, error) {
	if !in.Type.Valid() {
		return Evaluation{}, fmt.Errorf("%w: unknown evaluation type %q", ErrInvalidInput, in.Type)
	}
	if in.CycleID == "" || in.EmployeeID == "" {
		return Evaluation{}, fmt.Errorf("%w: cycle and employee required", ErrInvalidInput)
	}
	if !in.Type.RatesPotential() {
		in.Potential = nil
	}

	ev, err := s.score(ctx, tenantID, in)
	if err != nil {
		return Evaluation{}, err
	}

	if err := s.authorize(ctx, tenantID, actor, in); err != nil {
		return Evaluation{}, err
	}

	cycle, err := s.cycles.Get(ctx, tenantID, in.CycleID)
	if err != nil {
		return Evaluation{}, err
	}
	if err := s.guard.CheckWritable(cycle); err != nil {
		if s.Metrics != nil {
			s.Metrics.CycleWriteRejected()
		}
		return Evaluation{}, err
	}

	existing, err := s.store.FindEvaluation(ctx, tenantID, in.CycleID, in.EmployeeID, in.Type)
	switch {
	case err == nil && existing.Status == StatusCompleted:
		return existing, ErrEvaluationCompleted
	case err != nil && !errors.Is(err, ErrNotFound):
		return Evaluation{}, err
	}

	if submit {
		if !ev.Progress.Complete || (in.Type.RatesPotential() && in.Potential == nil) {
			return ev, fmt.Errorf("%w: %d of %d scored", ErrIncomplete, ev.Progress.Scored, ev.Progress.Total)
		}
		now := s.now().UTC()
		ev.Status = StatusCompleted
		ev.SubmittedAt = &now
	}
	ev.EvaluatorID = actor.EmployeeID
	if ev.EvaluatorID == "" {
		ev.EvaluatorID = actor.UserID
	}

	saved, err := s.store.UpsertEvaluation(ctx, tenantID, ev)
	if err != nil {
		return Evaluation{}, err
	}
	if s.Metrics != nil {
		s.Metrics.EvaluationSaved(string(saved.Type), string(saved.Status))
	}
	if submit {
		s.notifySubmitted(ctx, tenantID, saved)
	}
	return saved, nil
}

// score previews in against the tenant competency form when a catalog is
// set, otherwise against the criteria as sent.
func (s *Service) score(ctx context.Context, tenantID string, in SaveInput) (Evaluation, error) {
	if s.Catalog == nil {
		return Preview(in)
	}
	if _, err := normalizeCriteria(in.Criteria); err != nil {
		return Evaluation{}, err
	}
	form, err := s.Catalog.Form(ctx, tenantID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("load competency form: %w", err)
	}
	in.Criteria, err = conformToCatalog(form.Sections, in.Criteria)
	if err != nil {
		return Evaluation{}, err
	}
	return Preview(in)
}

func (s *Service) authorize(ctx context.Context, tenantID string, actor Actor, in SaveInput) error {
	switch in.Type {
	case TypeSelf:
		if actor.EmployeeID == "" || actor.EmployeeID != in.EmployeeID {
			return ErrForbidden
		}
	case TypeLeader:
		if actor.EmployeeID == "" {
			return ErrForbidden
		}
		managerID, err := s.store.ManagerIDByEmployeeID(ctx, tenantID, in.EmployeeID)
		if errors.Is(err, ErrNotFound) {
			return ErrForbidden
		}
		if err != nil {
			return err
		}
		if managerID != actor.EmployeeID {
			return ErrForbidden
		}
	case TypeConsensus:
		if !actor.IsHR {
			return ErrForbidden
		}
		if _, err := s.store.ManagerIDByEmployeeID(ctx, tenantID, in.EmployeeID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrForbidden
			}
			return err
		}
	}
	return nil
}

// CanView reports whether actor may read the evaluations of employeeID. HR
// reads everything; otherwise only the employee and their manager.
func (s *Service) CanView(ctx context.Context, tenantID string, actor Actor, employeeID string) (bool, error) {
	if actor.IsHR {
		return true, nil
	}
	if actor.EmployeeID == "" {
		return false, nil
	}
	if actor.EmployeeID == employeeID {
		return true, nil
	}
	managerID, err := s.store.ManagerIDByEmployeeID(ctx, tenantID, employeeID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return managerID == actor.EmployeeID, nil
}

func (s *Service) notifySubmitted(ctx context.Context, tenantID string, ev Evaluation) {
	if s.Notify == nil {
		return
	}
	var recipientEmployeeID, ntype, title, body string
	switch ev.Type {
	case TypeSelf:
		managerID, err := s.store.ManagerIDByEmployeeID(ctx, tenantID, ev.EmployeeID)
		if err != nil {
			slog.Warn("self evaluation manager lookup failed", "employeeId", ev.EmployeeID, "err", err)
			return
		}
		recipientEmployeeID = managerID
		ntype = notifications.TypeSelfEvaluationSubmitted
		title = "Self evaluation submitted"
		body = "A member of your team submitted their self evaluation."
	case TypeLeader:
		recipientEmployeeID = ev.EmployeeID
		ntype = notifications.TypeLeaderEvaluationSubmitted
		title = "Leader evaluation submitted"
		body = "Your leader submitted your evaluation."
	case TypeConsensus:
		recipientEmployeeID = ev.EmployeeID
		ntype = notifications.TypeConsensusCompleted
		title = "Evaluation completed"
		body = "Your final evaluation for this cycle is available."
	default:
		return
	}
	if recipientEmployeeID == "" {
		return
	}
	userID, err := s.store.EmployeeUserID(ctx, tenantID, recipientEmployeeID)
	if err != nil {
		slog.Warn("evaluation notification user lookup failed", "employeeId", recipientEmployeeID, "err", err)
		return
	}
	if userID == "" {
		return
	}
	if err := s.Notify.Create(ctx, tenantID, userID, ntype, title, body); err != nil {
		slog.Warn("evaluation notification failed", "evaluationId", ev.ID, "err", err)
	}
}

// Compare gathers the evaluations of one employee in a cycle and proposes a
// consensus starting point when both self and leader ratings exist.
func (s *Service) Compare(ctx context.Context, tenantID, cycleID, employeeID string) (Comparison, error) {
	list, err := s.store.ListEvaluations(ctx, tenantID, Filter{CycleID: cycleID, EmployeeID: employeeID})
	if err != nil {
		return Comparison{}, err
	}
	out := Comparison{CycleID: cycleID, EmployeeID: employeeID}
	for i := range list {
		ev := list[i]
		switch ev.Type {
		case TypeSelf:
			out.Self = &ev
		case TypeLeader:
			out.Leader = &ev
		case TypeConsensus:
			out.Consensus = &ev
		}
	}
	if out.Self != nil && out.Leader != nil {
		proposal := scoring.ProposeConsensus(out.Self.Criteria, out.Leader.Criteria)
		out.Proposal = &proposal
	}
	return out, nil
}

// NineBoxGrid places every employee with a completed leader or consensus
// evaluation in the cycle. Consensus wins over leader for the same employee.
func (s *Service) NineBoxGrid(ctx context.Context, tenantID, cycleID string) (Grid, error) {
	list, err := s.store.ListEvaluations(ctx, tenantID, Filter{CycleID: cycleID, Status: StatusCompleted})
	if err != nil {
		return Grid{}, err
	}
	return buildGrid(cycleID, list), nil
}

func buildGrid(cycleID string, list []Evaluation) Grid {
	chosen := map[string]Evaluation{}
	for _, ev := range list {
		if ev.Status != StatusCompleted || ev.NineBox == nil || !ev.Type.RatesPotential() {
			continue
		}
		current, ok := chosen[ev.EmployeeID]
		if !ok || (current.Type == TypeLeader && ev.Type == TypeConsensus) {
			chosen[ev.EmployeeID] = ev
		}
	}

	grid := Grid{CycleID: cycleID, Cells: make([]GridCell, 9)}
	for i := range grid.Cells {
		grid.Cells[i].Position = i + 1
		grid.Cells[i].Label = labelForPosition(i + 1)
	}
	for _, ev := range chosen {
		cell := &grid.Cells[ev.NineBox.Position-1]
		cell.Employees = append(cell.Employees, Placement{
			EmployeeID:   ev.EmployeeID,
			EvaluationID: ev.ID,
			Source:       ev.Type,
			Performance:  ev.Scores.Final,
			Potential:    ev.Potential.Final,
			Box:          *ev.NineBox,
		})
	}
	for i := range grid.Cells {
		sort.Slice(grid.Cells[i].Employees, func(a, b int) bool {
			return grid.Cells[i].Employees[a].EmployeeID < grid.Cells[i].Employees[b].EmployeeID
		})
	}
	return grid
}

// labelForPosition resolves a cell label from a representative score pair
// for its tiers.
func labelForPosition(position int) string {
	tierScore := [3]float64{1, 3, 4}
	idx := position - 1
	return scoring.NineBox(tierScore[idx%3], tierScore[idx/3]).Label
}

func (s *Service) Summary(ctx context.Context, tenantID, cycleID string) (Summary, error) {
	list, err := s.store.ListEvaluations(ctx, tenantID, Filter{CycleID: cycleID})
	if err != nil {
		return Summary{}, err
	}
	return buildSummary(cycleID, list), nil
}

func buildSummary(cycleID string, list []Evaluation) Summary {
	summary := Summary{
		CycleID:           cycleID,
		Total:             len(list),
		ByType:            map[Type]int{},
		LabelDistribution: map[string]int{},
	}
	var finalSum float64
	for _, ev := range list {
		summary.ByType[ev.Type]++
		if ev.Status != StatusCompleted {
			continue
		}
		summary.Completed++
		finalSum += ev.Scores.Final
		summary.LabelDistribution[ev.PerformanceLabel]++
	}
	if summary.Total > 0 {
		summary.CompletionRate = float64(summary.Completed) / float64(summary.Total)
	}
	if summary.Completed > 0 {
		summary.AverageFinal = finalSum / float64(summary.Completed)
	}
	return summary
}
