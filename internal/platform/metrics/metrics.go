package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "talentreview"

// Collector owns a private registry so tests and multiple servers in one
// process never collide on the default registerer.
type Collector struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	evaluationsSaved *prometheus.CounterVec
	cycleRejections  prometheus.Counter
	jobRuns          *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		evaluationsSaved: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluations",
			Name:      "saved_total",
			Help:      "Evaluation writes by evaluation type and resulting status.",
		}, []string{"type", "status"}),
		cycleRejections: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycles",
			Name:      "write_rejections_total",
			Help:      "Evaluation writes refused because the cycle was not writable.",
		}),
		jobRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Background job runs by job type and outcome.",
		}, []string{"job", "status"}),
		rateLimited: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests answered with 429 by limiter scope.",
		}, []string{"scope"}),
	}
}

// Record observes one finished HTTP request. route should be the router
// pattern, never the raw path, to keep label cardinality bounded.
func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) EvaluationSaved(evalType, status string) {
	c.evaluationsSaved.WithLabelValues(evalType, status).Inc()
}

func (c *Collector) CycleWriteRejected() {
	c.cycleRejections.Inc()
}

func (c *Collector) JobRun(job, status string) {
	c.jobRuns.WithLabelValues(job, status).Inc()
}

func (c *Collector) RateLimited(scope string) {
	c.rateLimited.WithLabelValues(scope).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
