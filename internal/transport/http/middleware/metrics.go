package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "physician_http_requests_total", Help: "HTTP requests by surface, route and status"},
		[]string{"surface", "path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "physician_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"surface", "path", "method"},
	)
	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "physician_http_in_flight_requests", Help: "Requests currently being served"},
	)
	// 入口保护（限速/并发/请求体）直接拒绝的请求
	httpRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "physician_http_rejected_total", Help: "Requests rejected before reaching a handler"},
		[]string{"reason"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpInFlight, httpRejected) }

// 未命中路由统一归一个标签，避免任意 URL 撑爆基数
const unmatchedPath = "unmatched"

// surfaceOf REST 在 /api 下，GraphQL 在 /graphql
func surfaceOf(path string) string {
	switch {
	case path == "/api" || strings.HasPrefix(path, "/api/"):
		return "rest"
	case path == "/graphql":
		return "graphql"
	}
	return "other"
}

func rejectReason(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return "body_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "busy"
	}
	return ""
}

// Metrics 须挂在限速/并发/请求体中间件之前，才能统计到它们的拒绝
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		surface := surfaceOf(path)
		status := c.Writer.Status()
		httpReqTotal.WithLabelValues(surface, path, c.Request.Method, strconv.Itoa(status)).Inc()
		httpLatency.WithLabelValues(surface, path, c.Request.Method).Observe(time.Since(start).Seconds())
		if reason := rejectReason(status); reason != "" && c.IsAborted() {
			httpRejected.WithLabelValues(reason).Inc()
		}
	}
}
