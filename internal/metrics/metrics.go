package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector aggregates the client-side counters: outgoing requests by
// method and status, retry attempts, and cache effectiveness.
type Collector struct {
	requests    *prometheus.CounterVec
	requestTime prometheus.Histogram
	retries     prometheus.Counter
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classbook_requests_total",
			Help: "Outgoing API requests by method and status code.",
		}, []string{"method", "status"}),
		requestTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classbook_request_duration_seconds",
			Help:    "Outgoing API request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classbook_retries_total",
			Help: "Retry attempts issued by services.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classbook_cache_hits_total",
			Help: "Service cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classbook_cache_misses_total",
			Help: "Service cache misses.",
		}),
	}

	if reg != nil {
		reg.MustRegister(c.requests, c.requestTime, c.retries, c.cacheHits, c.cacheMisses)
	}
	return c
}

func (c *Collector) RecordRequest(method string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.requestTime.Observe(elapsed.Seconds())
}

func (c *Collector) RecordRetry() {
	if c == nil {
		return
	}
	c.retries.Inc()
}

func (c *Collector) RecordCacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

func (c *Collector) RecordCacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}
