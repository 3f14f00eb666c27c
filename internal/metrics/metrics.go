// Package metrics exposes dashboard activity as prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ctrmdash"

type Metrics struct {
	registry *prometheus.Registry

	commands     *prometheus.CounterVec
	events       *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	subscribers  prometheus.Gauge
	trades       prometheus.Gauge
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	initFailures *prometheus.CounterVec
}

// New registers every collector on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "commands_total",
			Help: "Commands handled by the coordinator",
		}, []string{"command", "outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_published_total",
			Help: "Events broadcast to subscribers",
		}, []string{"type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_dropped_total",
			Help: "Events a slow subscriber missed",
		}, []string{"type"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "subscribers",
			Help: "Current event subscribers",
		}),
		trades: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "trades",
			Help: "Trades in the blotter",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "view_cache_lookups_total",
			Help: "View cache lookups by result",
		}, []string{"result"}),
		initFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "component_init_failures_total",
			Help: "Components that failed to initialise",
		}, []string{"component"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.commands,
		m.events,
		m.dropped,
		m.subscribers,
		m.trades,
		m.requests,
		m.latency,
		m.cacheLookups,
		m.initFailures,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) CommandHandled(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.commands.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) EventPublished(eventType string) { m.events.WithLabelValues(eventType).Inc() }
func (m *Metrics) EventDropped(eventType string)   { m.dropped.WithLabelValues(eventType).Inc() }
func (m *Metrics) Subscribers(n int)               { m.subscribers.Set(float64(n)) }
func (m *Metrics) SetTrades(n int)                 { m.trades.Set(float64(n)) }
func (m *Metrics) InitFailed(component string)     { m.initFailures.WithLabelValues(component).Inc() }

func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}
