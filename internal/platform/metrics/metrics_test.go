package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestCollectorExposesDomainMetrics(t *testing.T) {
	c := New()
	c.Record(http.MethodPost, "/api/v1/evaluations/submit", http.StatusConflict, 20*time.Millisecond)
	c.Record(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	c.EvaluationSaved("leader", "completed")
	c.CycleWriteRejected()
	c.JobRun("cycles.close_expired", "success")
	c.RateLimited("login_email")

	body := scrape(t, c)
	for _, want := range []string{
		`talentreview_http_requests_total{method="POST",route="/api/v1/evaluations/submit",status="409"} 1`,
		`talentreview_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		`talentreview_evaluations_saved_total{status="completed",type="leader"} 1`,
		`talentreview_cycles_write_rejections_total 1`,
		`talentreview_jobs_runs_total{job="cycles.close_expired",status="success"} 1`,
		`talentreview_http_rate_limited_total{scope="login_email"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in scrape output", want)
		}
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.CycleWriteRejected()
	if strings.Contains(scrape(t, b), "talentreview_cycles_write_rejections_total 1") {
		t.Fatal("expected separate registries")
	}
}
