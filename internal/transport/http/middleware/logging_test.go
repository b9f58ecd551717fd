package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type observation struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	seen []observation
}

func (f *fakeRecorder) Record(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, observation{method, route, status})
}

func TestLoggerRecordsRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	router := chi.NewRouter()
	router.Use(Logger(rec))
	router.Get("/cycles/{cycleID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cycles/abc", nil))

	if len(rec.seen) != 1 {
		t.Fatalf("expected one observation, got %d", len(rec.seen))
	}
	got := rec.seen[0]
	if got.route != "/cycles/{cycleID}" || got.status != http.StatusTeapot || got.method != http.MethodGet {
		t.Fatalf("unexpected observation: %+v", got)
	}
}
