package metricsvc

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/risingacademy/backend/core"
)

const namespace = "risingacademy"

// Collector records the domain events on its own registry.
type Collector struct {
	registry *prometheus.Registry

	submitted        *prometheus.CounterVec
	statusChanged    *prometheus.CounterVec
	deleted          prometheus.Counter
	settingsFallback prometheus.Counter
	signIns          *prometheus.CounterVec
	requests         *prometheus.CounterVec
	dbPing           prometheus.Histogram
}

var _ core.Metrics = (*Collector)(nil)

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "applications_submitted_total", Help: "Submitted applications",
		}, []string{"type"}),
		statusChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "applications_status_changed_total", Help: "Application decisions",
		}, []string{"status"}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "applications_deleted_total", Help: "Deleted applications",
		}),
		settingsFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "settings_fallback_total", Help: "Settings reads served from the defaults",
		}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sign_ins_total", Help: "Sign-in attempts",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "Handled HTTP requests",
		}, []string{"method", "code"}),
		dbPing: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "db_ping_seconds", Help: "DB ping latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.submitted, c.statusChanged, c.deleted, c.settingsFallback, c.signIns, c.requests, c.dbPing,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) ApplicationSubmitted(appType string) { c.submitted.WithLabelValues(appType).Inc() }

func (c *Collector) ApplicationStatusChanged(status string) {
	c.statusChanged.WithLabelValues(status).Inc()
}

func (c *Collector) ApplicationsDeleted(n int) { c.deleted.Add(float64(n)) }
func (c *Collector) SettingsFallback()         { c.settingsFallback.Inc() }
func (c *Collector) SignIn(result string)       { c.signIns.WithLabelValues(result).Inc() }

func (c *Collector) ObserveRequest(method, code string) {
	c.requests.WithLabelValues(method, code).Inc()
}

func (c *Collector) ObserveDBPing(d time.Duration) { c.dbPing.Observe(d.Seconds()) }
