// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 抽出パイプラインや公開オーケストレーターから利用する。
type MetricsCollector interface {
	RecordGenerationSuccess(kind string)
	RecordGenerationFailure(kind string)
	RecordGenerationLatency(duration time.Duration)
	RecordImageFallback(kind string)
	RecordFeedFetchSuccess()
	RecordFeedFetchFailure()
	RecordLimiterDenial(plan string)
	RecordPublish(kind string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	genSuccess     *prometheus.CounterVec
	genFail        *prometheus.CounterVec
	genLatency     prometheus.Histogram
	imageFallback  *prometheus.CounterVec
	feedSuccess    prometheus.Counter
	feedFail       prometheus.Counter
	limiterDenials *prometheus.CounterVec
	publishes      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		genSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curator_generation_success_total",
			Help: "AI生成成功の合計数（種別ごと）",
		}, []string{"kind"}),
		genFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curator_generation_fail_total",
			Help: "AI生成失敗の合計数（種別ごと）",
		}, []string{"kind"}),
		genLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "curator_generation_latency_seconds",
			Help:    "AI生成のレイテンシ（秒）",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}),
		imageFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curator_image_fallback_total",
			Help: "画像生成失敗でプレースホルダーへフォールバックした合計数",
		}, []string{"kind"}),
		feedSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curator_feed_fetch_success_total",
			Help: "フィード取得成功の合計数",
		}),
		feedFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curator_feed_fetch_fail_total",
			Help: "フィード取得失敗の合計数",
		}),
		limiterDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curator_limiter_denial_total",
			Help: "利用上限による拒否の合計数（プランごと）",
		}, []string{"plan"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curator_publish_total",
			Help: "公開操作の合計数（種別ごと）",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.genSuccess,
		c.genFail,
		c.genLatency,
		c.imageFallback,
		c.feedSuccess,
		c.feedFail,
		c.limiterDenials,
		c.publishes,
	)

	return c
}

// RecordGenerationSuccess はAI生成成功を記録する。
func (c *Collector) RecordGenerationSuccess(kind string) {
	c.genSuccess.WithLabelValues(kind).Inc()
}

// RecordGenerationFailure はAI生成失敗を記録する。
func (c *Collector) RecordGenerationFailure(kind string) {
	c.genFail.WithLabelValues(kind).Inc()
}

// RecordGenerationLatency はAI生成のレイテンシを記録する。
func (c *Collector) RecordGenerationLatency(duration time.Duration) {
	c.genLatency.Observe(duration.Seconds())
}

// RecordImageFallback はプレースホルダー画像へのフォールバックを記録する。
func (c *Collector) RecordImageFallback(kind string) {
	c.imageFallback.WithLabelValues(kind).Inc()
}

// RecordFeedFetchSuccess はフィード取得成功を記録する。
func (c *Collector) RecordFeedFetchSuccess() {
	c.feedSuccess.Inc()
}

// RecordFeedFetchFailure はフィード取得失敗を記録する。
func (c *Collector) RecordFeedFetchFailure() {
	c.feedFail.Inc()
}

// RecordLimiterDenial は利用上限による拒否を記録する。
func (c *Collector) RecordLimiterDenial(plan string) {
	c.limiterDenials.WithLabelValues(plan).Inc()
}

// RecordPublish は公開操作を記録する。
func (c *Collector) RecordPublish(kind string) {
	c.publishes.WithLabelValues(kind).Inc()
}

// NopCollector は何も記録しないMetricsCollectorの実装。テストで使用する。
type NopCollector struct{}

func (NopCollector) RecordGenerationSuccess(kind string)          {}
func (NopCollector) RecordGenerationFailure(kind string)          {}
func (NopCollector) RecordGenerationLatency(duration time.Duration) {}
func (NopCollector) RecordImageFallback(kind string)              {}
func (NopCollector) RecordFeedFetchSuccess()                      {}
func (NopCollector) RecordFeedFetchFailure()                      {}
func (NopCollector) RecordLimiterDenial(plan string)              {}
func (NopCollector) RecordPublish(kind string)                    {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
