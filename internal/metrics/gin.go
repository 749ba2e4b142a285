package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cmstheme",
			Subsystem: "ops_http",
			Name:      "request_duration_seconds",
			Help:      "运维 HTTP 请求耗时分布（秒）。",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmstheme",
			Subsystem: "ops_http",
			Name:      "requests_total",
			Help:      "运维 HTTP 请求总数。",
		},
		[]string{"path", "status"},
	)
)

// GinMiddleware 为 worker 的运维路由（/health、/metrics）采集 Prometheus 指标。
// 未匹配路由统一记为 "unmatched"，避免扫描请求撑大标签基数。
func GinMiddleware() gin.HandlerFunc {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal)
	})

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	}
}
