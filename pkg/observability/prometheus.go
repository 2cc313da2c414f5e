package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface with Prometheus collectors.
// Register it with SetPipelineHooks, SetCacheHooks and SetHTTPHooks.
type Prometheus struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	layoutTotal    *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	layoutNodes    prometheus.Histogram
	renderTotal    *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderBytes    *prometheus.HistogramVec
	cacheTotal     *prometheus.CounterVec
	clientTotal    *prometheus.CounterVec
	clientDuration *prometheus.HistogramVec
	serverTotal    *prometheus.CounterVec
	serverDuration *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
// It panics if a collector is already registered, like
// prometheus.MustRegister.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineageflow_fetch_total",
			Help: "Lineage service queries by outcome",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineageflow_fetch_duration_seconds",
			Help:    "Time to fetch and build a lineage graph",
			Buckets: prometheus.DefBuckets,
		}),
		layoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineageflow_layout_total",
			Help: "Layout computations by outcome",
		}, []string{"outcome"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineageflow_layout_duration_seconds",
			Help:    "Time to compute a layout",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lineageflow_layout_nodes",
			Help:    "Number of nodes per layout request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		renderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineageflow_render_total",
			Help: "Renders by format and outcome",
		}, []string{"format", "outcome"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineageflow_render_duration_seconds",
			Help:    "Time to render a positioned graph",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
		renderBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineageflow_render_bytes",
			Help:    "Size of rendered artifacts",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineageflow_cache_operations_total",
			Help: "Cache operations by key type and result",
		}, []string{"key_type", "result"}),
		clientTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineageflow_client_requests_total",
			Help: "Requests sent to the lineage service by status",
		}, []string{"method", "host", "status"}),
		clientDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineageflow_client_request_duration_seconds",
			Help:    "Latency of requests to the lineage service",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
		serverTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineageflow_http_requests_total",
			Help: "API requests by route and status",
		}, []string{"method", "route", "status"}),
		serverDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lineageflow_http_request_duration_seconds",
			Help:    "API request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		p.fetchTotal, p.fetchDuration,
		p.layoutTotal, p.layoutDuration, p.layoutNodes,
		p.renderTotal, p.renderDuration, p.renderBytes,
		p.cacheTotal,
		p.clientTotal, p.clientDuration,
		p.serverTotal, p.serverDuration,
	)
	return p
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnFetchStart(context.Context, string) {}

func (p *Prometheus) OnFetchComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	p.fetchTotal.WithLabelValues(outcome(err)).Inc()
	p.fetchDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnLayoutStart(_ context.Context, nodeCount int) {
	p.layoutNodes.Observe(float64(nodeCount))
}

func (p *Prometheus) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	p.layoutTotal.WithLabelValues(outcome(err)).Inc()
	p.layoutDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnRenderStart(context.Context, string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	p.renderTotal.WithLabelValues(format, outcome(err)).Inc()
	p.renderDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		p.renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, _ int) {
	p.cacheTotal.WithLabelValues(keyType, "set").Inc()
}

func (p *Prometheus) OnCacheError(_ context.Context, keyType string, _ error) {
	p.cacheTotal.WithLabelValues(keyType, "error").Inc()
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	p.clientTotal.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	p.clientDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.clientTotal.WithLabelValues(method, host, "error").Inc()
}

func (p *Prometheus) OnServe(_ context.Context, method, route string, status int, d time.Duration) {
	p.serverTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.serverDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
