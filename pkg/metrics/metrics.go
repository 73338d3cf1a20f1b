package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/amoylab/shopinspector/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests gin could not route, keeping raw paths out of the label set
const unmatchedRoute = "unmatched"

type Metrics struct {
	registry   *prometheus.Registry
	namespace  string
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec
	deleteCnt  *prometheus.CounterVec
	reportCnt  *prometheus.CounterVec
	reportDur  *prometheus.HistogramVec
	submitCnt  prometheus.Counter
	photoCnt   *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	// Register basic HTTP metrics
	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	// mode is guarded/force, outcome is deleted/blocked/not_found/failed
	deleteCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "entity_deletes_total"}, []string{"entity", "mode", "outcome"})
	r.MustRegister(deleteCnt)

	reportCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "reports_generated_total"}, []string{"status"})
	reportDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "report_generation_duration_seconds", Buckets: cfg.Buckets}, []string{"status"})
	r.MustRegister(reportCnt, reportDur)

	submitCnt := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "inspections_submitted_total"})
	photoCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "inspection_photos_total"}, []string{"status"})
	r.MustRegister(submitCnt, photoCnt)

	return &Metrics{
		registry:   r,
		namespace:  ns,
		httpReqCnt: httpReqCnt,
		httpDur:    httpDur,
		httpInfl:   httpInfl,
		deleteCnt:  deleteCnt,
		reportCnt:  reportCnt,
		reportDur:  reportDur,
		submitCnt:  submitCnt,
		photoCnt:   photoCnt,
	}
}

// DeleteDone counts one delete attempt
func (m *Metrics) DeleteDone(entity, mode, outcome string) {
	m.deleteCnt.WithLabelValues(entity, mode, outcome).Inc()
}

// ReportDone counts one report generation and its duration
func (m *Metrics) ReportDone(since time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reportCnt.WithLabelValues(status).Inc()
	m.reportDur.WithLabelValues(status).Observe(time.Since(since).Seconds())
}

// InspectionSubmitted counts one stored inspection and the fate of its photos
func (m *Metrics) InspectionSubmitted(photosSaved, photosSkipped int) {
	m.submitCnt.Inc()
	m.photoCnt.WithLabelValues("saved").Add(float64(photosSaved))
	m.photoCnt.WithLabelValues("skipped").Add(float64(photosSkipped))
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := httpStatus(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func httpStatus(code int) string { return strconv.Itoa(code) }
