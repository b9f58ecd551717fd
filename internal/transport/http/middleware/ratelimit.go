package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"talentreview/internal/transport/http/api"
	"talentreview/internal/transport/http/shared"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

type LimitOption func(*limitSettings)

type limitSettings struct {
	key      KeyFunc
	onReject func(scope string)
}

// WithKeyFunc replaces the default actor-or-IP key.
func WithKeyFunc(fn KeyFunc) LimitOption {
	return func(s *limitSettings) {
		if fn != nil {
			s.key = fn
		}
	}
}

// WithRejectHook is called with the limiter scope each time a request is
// throttled.
func WithRejectHook(fn func(scope string)) LimitOption {
	return func(s *limitSettings) {
		s.onReject = fn
	}
}

func applyLimitOptions(opts []LimitOption) limitSettings {
	s := limitSettings{key: actorOrIPKey}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// window is a fixed-window counter keyed by caller. Expired buckets are
// swept lazily so the map does not grow with every address ever seen.
type window struct {
	scope    string
	limit    int
	length   time.Duration
	key      KeyFunc
	onReject func(string)

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

type bucket struct {
	hits  int
	reset time.Time
}

func newWindow(scope string, limit int, length time.Duration, key KeyFunc, onReject func(string)) *window {
	return &window{
		scope:    scope,
		limit:    limit,
		length:   length,
		key:      key,
		onReject: onReject,
		buckets:  map[string]*bucket{},
	}
}

type verdict struct {
	allowed   bool
	remaining int
	resetIn   int
}

func (wd *window) take(key string, now time.Time) verdict {
	wd.mu.Lock()
	defer wd.mu.Unlock()

	if now.After(wd.nextSweep) {
		for k, b := range wd.buckets {
			if now.After(b.reset) {
				delete(wd.buckets, k)
			}
		}
		wd.nextSweep = now.Add(wd.length)
	}

	b, ok := wd.buckets[key]
	if !ok || now.After(b.reset) {
		b = &bucket{reset: now.Add(wd.length)}
		wd.buckets[key] = b
	}
	b.hits++
	return verdict{
		allowed:   b.hits <= wd.limit,
		remaining: max(wd.limit-b.hits, 0),
		resetIn:   ceilSeconds(b.reset.Sub(now)),
	}
}

// admit counts r and writes the rate limit headers. It answers 429 and
// returns false once the caller is over the limit.
func (wd *window) admit(w http.ResponseWriter, r *http.Request) bool {
	if wd.limit <= 0 {
		return true
	}
	key := wd.key(r)
	if key == "" {
		key = shared.ClientIP(r)
	}
	v := wd.take(key, time.Now())

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(wd.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(v.resetIn))
	if v.allowed {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(v.resetIn, 1)))
	slog.Warn("rate limit exceeded",
		"scope", wd.scope,
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", wd.limit,
	)
	if wd.onReject != nil {
		wd.onReject(wd.scope)
	}
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// RateLimit caps every API request per signed-in user, or per client IP for
// anonymous calls.
func RateLimit(limit int, length time.Duration, opts ...LimitOption) func(http.Handler) http.Handler {
	s := applyLimitOptions(opts)
	general := newWindow("api", limit, length, s.key, s.onReject)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if general.admit(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter limits to logins and to the writes
// that change evaluations or cycles. Logins get a quarter of base, counted
// both per IP and per email. Writes get half of base per user.
func SensitiveMutationRateLimit(base int, length time.Duration, opts ...LimitOption) func(http.Handler) http.Handler {
	s := applyLimitOptions(opts)
	loginByIP := newWindow("login_ip", max(base/4, 1), length, clientIPKey, s.onReject)
	loginByEmail := newWindow("login_email", max(base/4, 1), length, LoginEmailKey("email"), s.onReject)
	writes := newWindow("writes", max(base/2, 1), length, s.key, s.onReject)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classifyMutation(r) {
			case mutationLogin:
				if !loginByIP.admit(w, r) || !loginByEmail.admit(w, r) {
					return
				}
			case mutationReview:
				if !writes.admit(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginEmailKey keys a request by the lowercased email in its JSON body,
// falling back to the client IP. The body is restored for the handler.
func LoginEmailKey(field string) KeyFunc {
	if strings.TrimSpace(field) == "" {
		field = "email"
	}
	return func(r *http.Request) string {
		email := peekJSONString(r, field)
		if email == "" {
			return clientIPKey(r)
		}
		return "email:" + strings.ToLower(email)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.TenantID + ":" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}

func peekJSONString(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type mutationKind int

const (
	mutationNone mutationKind = iota
	mutationLogin
	mutationReview
)

var reviewWrites = map[string]bool{
	"/evaluations/draft":    true,
	"/evaluations/submit":   true,
	"/cycles":               true,
	"/cycles/close-expired": true,
}

func classifyMutation(r *http.Request) mutationKind {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return mutationNone
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	switch {
	case path == "/auth/login":
		return mutationLogin
	case reviewWrites[path]:
		return mutationReview
	case strings.HasPrefix(path, "/cycles/") && (strings.HasSuffix(path, "/open") || strings.HasSuffix(path, "/close")):
		return mutationReview
	}
	return mutationNone
}
