package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talentreview/internal/domain/auth"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func loginRequest(email, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"`+email+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remote
	return req
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent())
	ctx := WithUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), auth.UserContext{TenantID: "tenant-1", UserID: "user-1"})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/evaluations/submit", nil).WithContext(ctx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/evaluations/submit", nil).WithContext(ctx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(noContent())

	rec1 := httptest.NewRecorder()
	limited.ServeHTTP(rec1, loginRequest("a@example.com", "192.0.2.20:1111"))
	if rec1.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec1.Code)
	}

	rec2 := httptest.NewRecorder()
	limited.ServeHTTP(rec2, loginRequest("a@example.com", "192.0.2.20:1111"))
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
	if rec2.Header().Get("Retry-After") == "" || rec2.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected retry metadata headers")
	}

	time.Sleep(50 * time.Millisecond)

	rec3 := httptest.NewRecorder()
	limited.ServeHTTP(rec3, loginRequest("a@example.com", "192.0.2.20:1111"))
	if rec3.Code != http.StatusNoContent {
		t.Fatalf("expected third request after window reset to pass, got %d", rec3.Code)
	}
}

func TestSensitiveMutationRateLimitScope(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent())

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cycles/c1/nine-box", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected read route request %d to bypass sensitive limits, got %d", i+1, rec.Code)
		}
	}

	ctx := WithUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), auth.UserContext{TenantID: "tenant-1", UserID: "hr-1"})
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cycles/c1/close", nil).WithContext(ctx)
		req.RemoteAddr = "198.51.100.41:9999"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if i < 2 && rec.Code != http.StatusNoContent {
			t.Fatalf("expected sensitive request %d to pass, got %d", i+1, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected third sensitive request to be throttled, got %d", rec.Code)
		}
	}
}

func TestSensitiveLoginLimitedByEmail(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent())

	// base 4 allows one login per ip and per email
	first := httptest.NewRecorder()
	limited.ServeHTTP(first, loginRequest("a@example.com", "203.0.113.1:1000"))
	if first.Code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", first.Code)
	}
	second := httptest.NewRecorder()
	limited.ServeHTTP(second, loginRequest("A@example.com", "203.0.113.2:1000"))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected same email from another ip to be throttled, got %d", second.Code)
	}
}

func TestRateLimitRejectHook(t *testing.T) {
	var scopes []string
	limited := RateLimit(1, time.Minute, WithRejectHook(func(scope string) { scopes = append(scopes, scope) }))(noContent())
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cycles", nil)
		req.RemoteAddr = "192.0.2.50:1000"
		limited.ServeHTTP(httptest.NewRecorder(), req)
	}
	if len(scopes) != 2 || scopes[0] != "api" {
		t.Fatalf("expected two api rejections, got %v", scopes)
	}
}

func TestWindowSweepsExpiredBuckets(t *testing.T) {
	wd := newWindow("api", 5, time.Minute, actorOrIPKey, nil)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	wd.take("ip:a", start)
	wd.take("ip:b", start)

	v := wd.take("ip:c", start.Add(2*time.Minute))
	if !v.allowed || v.remaining != 4 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if len(wd.buckets) != 1 {
		t.Fatalf("expected expired buckets swept, got %d", len(wd.buckets))
	}
}

func TestClassifyMutation(t *testing.T) {
	cases := []struct {
		method, path string
		want         mutationKind
	}{
		{http.MethodPost, "/api/v1/auth/login", mutationLogin},
		{http.MethodPut, "/api/v1/evaluations/draft", mutationReview},
		{http.MethodPost, "/api/v1/cycles/abc/open", mutationReview},
		{http.MethodGet, "/api/v1/cycles", mutationNone},
		{http.MethodPost, "/api/v1/evaluations/score", mutationNone},
	}
	for _, tc := range cases {
		if got := classifyMutation(httptest.NewRequest(tc.method, tc.path, nil)); got != tc.want {
			t.Errorf("%s %s: got %v, want %v", tc.method, tc.path, got, tc.want)
		}
	}
}
