package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "flowprof"

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	StageDuration *prometheus.HistogramVec // labels: stage, status
	StageErrors   *prometheus.CounterVec   // labels: stage
	ReportNodes   prometheus.Gauge
	ReportOps     prometheus.Gauge
	Crossings     prometheus.Gauge

	CacheEvents *prometheus.CounterVec // labels: key_type, result (hit, miss, set)
	CacheBytes  *prometheus.CounterVec // labels: key_type

	HTTPRequests *prometheus.CounterVec   // labels: method, route, code
	HTTPDuration *prometheus.HistogramVec // labels: method, route
	HTTPInFlight prometheus.Gauge
}

// NewPrometheus creates the collectors and registers them with reg.
// Registering twice with the same registry panics.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages by stage and status",
			Buckets:   durationBuckets,
		}, []string{"stage", "status"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Failed pipeline stages",
		}, []string{"stage"}),
		ReportNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "report",
			Name:      "nodes",
			Help:      "Topology nodes in the last built report",
		}),
		ReportOps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "report",
			Name:      "operators",
			Help:      "Log operators in the last built report",
		}),
		Crossings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "layout",
			Name:      "crossings",
			Help:      "Edge crossings in the last computed layout",
		}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache lookups and writes by key type and result",
		}, []string{"key_type", "result"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   durationBuckets,
		}, []string{"method", "route"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			p.StageDuration, p.StageErrors, p.ReportNodes, p.ReportOps, p.Crossings,
			p.CacheEvents, p.CacheBytes,
			p.HTTPRequests, p.HTTPDuration, p.HTTPInFlight,
		)
	}
	return p
}

func (p *Prometheus) observeStage(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		p.StageErrors.WithLabelValues(stage).Inc()
	}
	p.StageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
}

func (p *Prometheus) OnBuildStart(context.Context, string, string) {}

func (p *Prometheus) OnBuildComplete(_ context.Context, nodes, operators int, d time.Duration, err error) {
	p.observeStage("build", d, err)
	if err == nil {
		p.ReportNodes.Set(float64(nodes))
		p.ReportOps.Set(float64(operators))
	}
}

func (p *Prometheus) OnLayoutStart(context.Context, int) {}

func (p *Prometheus) OnLayoutComplete(_ context.Context, crossings int, d time.Duration, err error) {
	p.observeStage("layout", d, err)
	if err == nil {
		p.Crossings.Set(float64(crossings))
	}
}

func (p *Prometheus) OnRenderStart(context.Context, []string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	p.observeStage("render", d, err)
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheEvents.WithLabelValues(keyType, "set").Inc()
	p.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.HTTPInFlight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.HTTPInFlight.Dec()
	p.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
