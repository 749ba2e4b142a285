package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 发布结果标签。
const (
	PublishOK              = "published"
	PublishMissingSections = "missing_sections"
	PublishError           = "error"
)

var (
	publishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmstheme",
			Subsystem: "pipeline",
			Name:      "publish_total",
			Help:      "主题发布次数，按结果区分。",
		},
		[]string{"result"},
	)

	compileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cmstheme",
			Subsystem: "pipeline",
			Name:      "compile_duration_seconds",
			Help:      "页面与主题部件编译耗时（秒）。",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"kind"},
	)

	sectionWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmstheme",
			Subsystem: "pipeline",
			Name:      "section_writes_total",
			Help:      "CSS 分区写入次数。",
		},
		[]string{"section"},
	)
)

// ObservePublish 记录一次发布结果。
func ObservePublish(result string) {
	publishTotal.WithLabelValues(result).Inc()
}

// ObserveCompile 记录一次编译耗时，kind 为 page 或 theme_part。
func ObserveCompile(kind string, start time.Time) {
	compileDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveSectionWrite 记录一次分区写入；模板分区统一记为 template。
func ObserveSectionWrite(section string) {
	sectionWritesTotal.WithLabelValues(section).Inc()
}
