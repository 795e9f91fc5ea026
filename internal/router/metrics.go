package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the request collectors of the combined server.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_http_requests_total",
			Help: "HTTP requests served, by function, method and status.",
		}, []string{"function", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gallery_http_request_duration_seconds",
			Help:    "HTTP request latency by function.",
			Buckets: prometheus.DefBuckets,
		}, []string{"function"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Middleware records every request that reaches function.
func (m *Metrics) Middleware(function string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.requests.WithLabelValues(function, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(function).Observe(time.Since(start).Seconds())
	}
}
