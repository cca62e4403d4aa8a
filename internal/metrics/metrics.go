// Package metrics exposes Prometheus collectors for HTTP traffic and blog
// activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests and multiple servers do not collide on
// the global default registerer. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	likes    prometheus.Counter
	comments *prometheus.CounterVec
	uploads  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxablog",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voxablog",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		likes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxablog",
			Name:      "post_likes_total",
			Help:      "Accepted likes.",
		}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxablog",
			Name:      "comments_total",
			Help:      "Comment mutations by action.",
		}, []string{"action"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxablog",
			Name:      "media_uploads_total",
			Help:      "Media uploads by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.likes, m.comments, m.uploads,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) PostLiked() {
	if m == nil {
		return
	}
	m.likes.Inc()
}

func (m *Metrics) CommentAdded() {
	if m == nil {
		return
	}
	m.comments.WithLabelValues("added").Inc()
}

func (m *Metrics) CommentDeleted() {
	if m == nil {
		return
	}
	m.comments.WithLabelValues("deleted").Inc()
}

func (m *Metrics) MediaUploaded(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.uploads.WithLabelValues(result).Inc()
}
