package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del dominio sobre un registry propio.
// Todos los métodos aceptan receiver nil para que los servicios funcionen sin métricas.
type Metrics struct {
	Registry *prometheus.Registry

	adoptionTransitions *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	cascadeDeleted      *prometheus.CounterVec
	cascadeFailures     *prometheus.CounterVec
	retentionPurged     prometheus.Counter
	httpLatency         *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		adoptionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adoption_transitions_total",
			Help:      "Adoption request status changes by target status.",
		}, []string{"status"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Notifications created by type.",
		}, []string{"type"}),
		cascadeDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pet_cascade_records_total",
			Help:      "Dependent records cleaned up after a pet deletion, by category.",
		}, []string{"category"}),
		cascadeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pet_cascade_failures_total",
			Help:      "Cascade categories that failed after retries.",
		}, []string{"category"}),
		retentionPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_purged_requests_total",
			Help:      "Rejected adoption requests removed by the retention job.",
		}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.adoptionTransitions,
		m.notificationsTotal,
		m.cascadeDeleted,
		m.cascadeFailures,
		m.retentionPurged,
		m.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) AdoptionTransition(status string) {
	if m == nil {
		return
	}
	m.adoptionTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) NotificationCreated(kind string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) CascadeDeleted(category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cascadeDeleted.WithLabelValues(category).Add(float64(n))
}

func (m *Metrics) CascadeFailed(category string) {
	if m == nil {
		return
	}
	m.cascadeFailures.WithLabelValues(category).Inc()
}

func (m *Metrics) RetentionPurged(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.retentionPurged.Add(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware mide latencia usando el patrón de ruta de chi (no la URL cruda).
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpLatency.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
