package evaluationshandler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"talentreview/internal/domain/audit"
	"talentreview/internal/domain/auth"
	"talentreview/internal/domain/cycles"
	"talentreview/internal/domain/evaluations"
	"talentreview/internal/domain/scoring"
	"talentreview/internal/transport/http/middleware"
)

const (
	openCycleID   = "0b6f5c2a-1111-4c7e-9a11-000000000001"
	endedCycleID  = "0b6f5c2a-1111-4c7e-9a11-000000000002"
	employeeID    = "5d2c7e10-2222-4b1a-8c22-000000000001"
	managerID     = "5d2c7e10-2222-4b1a-8c22-000000000002"
	outsiderEmpID = "5d2c7e10-2222-4b1a-8c22-000000000003"
)

type memStore struct {
	evals map[string]evaluations.Evaluation
}

func key(cycleID, employeeID string, t evaluations.Type) string {
	return cycleID + "/" + employeeID + "/" + string(t)
}

func (m *memStore) GetEvaluation(_ context.Context, _, id string) (evaluations.Evaluation, error) {
	for _, ev := range m.evals {
		if ev.ID == id {
			return ev, nil
		}
	}
	return evaluations.Evaluation{}, evaluations.ErrNotFound
}

func (m *memStore) FindEvaluation(_ context.Context, _, cycleID, employeeID string, t evaluations.Type) (evaluations.Evaluation, error) {
	ev, ok := m.evals[key(cycleID, employeeID, t)]
	if !ok {
		return evaluations.Evaluation{}, evaluations.ErrNotFound
	}
	return ev, nil
}

func (m *memStore) matching(f evaluations.Filter) []evaluations.Evaluation {
	var out []evaluations.Evaluation
	for _, ev := range m.evals {
		if f.EmployeeID != "" && ev.EmployeeID != f.EmployeeID {
			continue
		}
		if f.CycleID != "" && ev.CycleID != f.CycleID {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListEvaluations(_ context.Context, _ string, f evaluations.Filter) ([]evaluations.Evaluation, error) {
	out := m.matching(f)
	if f.Limit > 0 {
		out = out[min(f.Offset, len(out)):min(f.Offset+f.Limit, len(out))]
	}
	return out, nil
}

func (m *memStore) CountEvaluations(_ context.Context, _ string, f evaluations.Filter) (int, error) {
	return len(m.matching(f)), nil
}

func (m *memStore) UpsertEvaluation(_ context.Context, _ string, ev evaluations.Evaluation) (evaluations.Evaluation, error) {
	k := key(ev.CycleID, ev.EmployeeID, ev.Type)
	ev.ID = "ev-" + string(ev.Type)
	m.evals[k] = ev
	return ev, nil
}

func (m *memStore) ManagerIDByEmployeeID(_ context.Context, _, id string) (string, error) {
	if id == employeeID {
		return managerID, nil
	}
	return "", evaluations.ErrNotFound
}

func (m *memStore) EmployeeUserID(context.Context, string, string) (string, error) {
	return "", nil
}

type cycleSource map[string]cycles.Cycle

func (c cycleSource) Get(_ context.Context, _, id string) (cycles.Cycle, error) {
	cycle, ok := c[id]
	if !ok {
		return cycles.Cycle{}, cycles.ErrNotFound
	}
	return cycle, nil
}

// rolePerms treats the role id as the role name.
type rolePerms struct{}

func (rolePerms) HasPermission(_ context.Context, roleID, perm string) (bool, error) {
	return auth.RoleAllows(roleID, perm), nil
}

type recordingAuditor struct {
	actions []string
}

func (a *recordingAuditor) Record(_ context.Context, e audit.Entry) error {
	a.actions = append(a.actions, e.Action)
	return nil
}

var (
	employeeUser = auth.UserContext{UserID: "u-emp", TenantID: "t1", RoleID: auth.RoleEmployee, RoleName: auth.RoleEmployee, EmployeeID: employeeID}
	managerUser  = auth.UserContext{UserID: "u-mgr", TenantID: "t1", RoleID: auth.RoleLeader, RoleName: auth.RoleLeader, EmployeeID: managerID}
	outsiderUser = auth.UserContext{UserID: "u-out", TenantID: "t1", RoleID: auth.RoleEmployee, RoleName: auth.RoleEmployee, EmployeeID: outsiderEmpID}
)

type fixture struct {
	router  http.Handler
	store   *memStore
	auditor *recordingAuditor
}

func newFixture() fixture {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	source := cycleSource{
		openCycleID:  {ID: openCycleID, Status: cycles.StatusOpen, StartDate: day(1), EndDate: day(31)},
		endedCycleID: {ID: endedCycleID, Status: cycles.StatusOpen, StartDate: day(1), EndDate: day(5)},
	}
	guard := cycles.NewGuard(cycles.WithClock(func() time.Time { return day(10).Add(9 * time.Hour) }))
	store := &memStore{evals: map[string]evaluations.Evaluation{}}
	auditor := &recordingAuditor{}

	h := NewHandler(evaluations.NewService(store, source, guard), rolePerms{}, auditor)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return fixture{router: r, store: store, auditor: auditor}
}

func (f fixture) do(user *auth.UserContext, method, target string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func criteria(score scoring.Rating) []scoring.CategorySection {
	return []scoring.CategorySection{
		{Category: scoring.CategoryTechnical, Items: []scoring.CompetencyItem{{ID: "t1", Score: score}}},
		{Category: scoring.CategoryBehavioral, Items: []scoring.CompetencyItem{{ID: "b1", Score: score}}},
		{Category: scoring.CategoryOrganizational, Items: []scoring.CompetencyItem{{ID: "o1", Score: score}}},
	}
}

func selfInput(cycleID string, score scoring.Rating) evaluations.SaveInput {
	return evaluations.SaveInput{CycleID: cycleID, EmployeeID: employeeID, Type: evaluations.TypeSelf, Criteria: criteria(score)}
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestDraftAndSubmit(t *testing.T) {
	f := newFixture()

	partial := selfInput(openCycleID, 3)
	partial.Criteria[1].Items[0].Score = scoring.RatingUnset
	if rec := f.do(&employeeUser, http.MethodPut, "/evaluations/draft", partial); rec.Code != http.StatusOK {
		t.Fatalf("expected draft saved, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := f.do(&employeeUser, http.MethodPost, "/evaluations/submit", partial)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for incomplete submit, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if body.Error.Code != "evaluation_incomplete" || body.Error.Details["progress"] == nil {
		t.Fatalf("unexpected incomplete body: %+v", body)
	}

	rec = f.do(&employeeUser, http.MethodPost, "/evaluations/submit", selfInput(openCycleID, 3))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected submit accepted, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(&employeeUser, http.MethodPut, "/evaluations/draft", selfInput(openCycleID, 1)); rec.Code != http.StatusConflict {
		t.Fatalf("expected completed evaluation frozen, got %d", rec.Code)
	}

	want := []string{audit.ActionEvaluationDraft, audit.ActionEvaluationSubmit}
	if strings.Join(f.auditor.actions, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected audit trail: %v", f.auditor.actions)
	}
}

func TestWriteOutsideWindowIsRejected(t *testing.T) {
	f := newFixture()

	rec := f.do(&employeeUser, http.MethodPut, "/evaluations/draft", selfInput(endedCycleID, 3))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if body.Error.Code != "cycle_not_writable" || !strings.Contains(body.Error.Message, "2026-03-05") {
		t.Fatalf("unexpected gate body: %+v", body)
	}
	if len(f.store.evals) != 0 {
		t.Fatal("expected nothing persisted")
	}
	if len(f.auditor.actions) != 1 || f.auditor.actions[0] != audit.ActionEvaluationRejected {
		t.Fatalf("expected rejected write audited, got %v", f.auditor.actions)
	}
}

func TestWritePermissions(t *testing.T) {
	f := newFixture()

	consensus := selfInput(openCycleID, 3)
	consensus.Type = evaluations.TypeConsensus
	if rec := f.do(&managerUser, http.MethodPut, "/evaluations/draft", consensus); rec.Code != http.StatusForbidden {
		t.Fatalf("expected leader denied consensus, got %d", rec.Code)
	}
	if rec := f.do(&outsiderUser, http.MethodPut, "/evaluations/draft", selfInput(openCycleID, 3)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected self evaluation for someone else denied, got %d", rec.Code)
	}
	if rec := f.do(nil, http.MethodPut, "/evaluations/draft", selfInput(openCycleID, 3)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected anonymous denied, got %d", rec.Code)
	}

	bad := selfInput("not-a-cycle", 3)
	rec := f.do(&employeeUser, http.MethodPut, "/evaluations/draft", bad)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Error.Code != "validation_error" {
		t.Fatalf("expected validation error, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReadVisibility(t *testing.T) {
	f := newFixture()
	if rec := f.do(&employeeUser, http.MethodPost, "/evaluations/submit", selfInput(openCycleID, 4)); rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %d %s", rec.Code, rec.Body.String())
	}

	if rec := f.do(&managerUser, http.MethodGet, "/evaluations/ev-self", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected manager to read, got %d", rec.Code)
	}
	if rec := f.do(&outsiderUser, http.MethodGet, "/evaluations/ev-self", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected outsider denied, got %d", rec.Code)
	}
	if rec := f.do(&outsiderUser, http.MethodGet, "/evaluations?employeeId="+employeeID, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected outsider list denied, got %d", rec.Code)
	}
	if rec := f.do(&employeeUser, http.MethodGet, "/evaluations/missing", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec := f.do(&employeeUser, http.MethodGet, "/evaluations/ev-self/pdf", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = f.do(&managerUser, http.MethodGet, "/cycles/"+openCycleID+"/employees/"+employeeID+"/comparison", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"self"`) {
		t.Fatalf("unexpected comparison %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListIsPaginated(t *testing.T) {
	f := newFixture()
	for _, cycleID := range []string{openCycleID, endedCycleID} {
		for _, typ := range []evaluations.Type{evaluations.TypeSelf, evaluations.TypeLeader} {
			k := key(cycleID, employeeID, typ)
			f.store.evals[k] = evaluations.Evaluation{ID: "ev-" + k, CycleID: cycleID, EmployeeID: employeeID, Type: typ}
		}
	}

	rec := f.do(&employeeUser, http.MethodGet, "/evaluations?limit=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected list, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Total-Count"); got != "4" {
		t.Fatalf("expected total 4, got %q", got)
	}
	var body struct {
		Data []evaluations.Evaluation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(body.Data) != 3 {
		t.Fatalf("expected 3 rows on the first page, got %d", len(body.Data))
	}

	rec = f.do(&employeeUser, http.MethodGet, "/evaluations?limit=3&offset=3", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(body.Data) != 1 || rec.Header().Get("X-Total-Count") != "4" {
		t.Fatalf("expected last row on the second page, got %d rows total %q", len(body.Data), rec.Header().Get("X-Total-Count"))
	}
}

func TestScorePreview(t *testing.T) {
	f := newFixture()
	in := evaluations.SaveInput{
		Type: evaluations.TypeSelf,
		Criteria: []scoring.CategorySection{
			{Category: scoring.CategoryTechnical, Items: []scoring.CompetencyItem{{ID: "t1", Score: 4}, {ID: "t2", Score: 3}}},
			{Category: scoring.CategoryBehavioral, Items: []scoring.CompetencyItem{{ID: "b1", Score: 2}, {ID: "b2", Score: 3}}},
			{Category: scoring.CategoryOrganizational, Items: []scoring.CompetencyItem{{ID: "o1", Score: 4}}},
		},
	}
	rec := f.do(&employeeUser, http.MethodPost, "/evaluations/score", in)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected preview, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data evaluations.Evaluation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if math.Abs(body.Data.Scores.Final-3.3) > 1e-9 || body.Data.PerformanceLabel != scoring.LabelGood {
		t.Fatalf("unexpected preview: %+v %q", body.Data.Scores, body.Data.PerformanceLabel)
	}
	if len(f.store.evals) != 0 {
		t.Fatal("preview must not persist")
	}

	in.Criteria[0].Items[0].Score = 9
	if rec := f.do(&employeeUser, http.MethodPost, "/evaluations/score", in); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid rating rejected, got %d", rec.Code)
	}
}
