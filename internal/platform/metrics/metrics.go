// Package metrics exposes Prometheus collectors for the fetch pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records fetch pipeline metrics. A nil *Recorder is a valid no-op.
type Recorder struct {
	registry  *prometheus.Registry
	cacheHits *prometheus.CounterVec
	cacheMiss *prometheus.CounterVec
	upstream  *prometheus.CounterVec
	queueWait prometheus.Histogram
}

// NewRecorder registers the collectors on a fresh registry under namespace.
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Result cache hits.",
		}, []string{"cache"}),
		cacheMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Result cache misses.",
		}, []string{"cache"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		queueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "wait_seconds",
			Help:      "Time a quote request spent queued before running.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
	}
	reg.MustRegister(
		r.cacheHits, r.cacheMiss, r.upstream, r.queueWait,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) CacheHit(cache string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(cache).Inc()
}

func (r *Recorder) CacheMiss(cache string) {
	if r == nil {
		return
	}
	r.cacheMiss.WithLabelValues(cache).Inc()
}

// Upstream counts one upstream call. outcome is an error kind or "ok".
func (r *Recorder) Upstream(endpoint, outcome string) {
	if r == nil {
		return
	}
	r.upstream.WithLabelValues(endpoint, outcome).Inc()
}

func (r *Recorder) QueueWait(d time.Duration) {
	if r == nil {
		return
	}
	r.queueWait.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
