// Package metrics collects and exposes Prometheus metrics for the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP middleware reports into.
type Recorder interface {
	RequestStarted()
	RequestFinished(method, route string, status int, duration time.Duration)
	LoginThrottled()
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	inFlight       prometheus.Gauge
	loginThrottled prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dieta_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dieta_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dieta_http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
		loginThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dieta_login_throttled_total",
			Help: "Login attempts rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(c.requests, c.duration, c.inFlight, c.loginThrottled)
	return c
}

func (c *Collector) RequestStarted() {
	c.inFlight.Inc()
}

// RequestFinished records one completed request. route is the matched
// route pattern, never the raw path, to keep label cardinality bounded.
func (c *Collector) RequestFinished(method, route string, status int, duration time.Duration) {
	c.inFlight.Dec()
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) LoginThrottled() {
	c.loginThrottled.Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything; used when metrics are disabled.
type Nop struct{}

func (Nop) RequestStarted() {}
func (Nop) RequestFinished(string, string, int, time.Duration) {}
func (Nop) LoginThrottled() {}
