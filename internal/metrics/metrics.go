// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・ワーカーから利用する。
type MetricsCollector interface {
	RecordIngestSuccess(posture string)
	RecordIngestFailure(code string)
	RecordAggregation(duration time.Duration)
	RecordAggregationFailure()
	RecordHTTPStatus(statusCode int)
	RecordSessionsSwept(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	ingestSuccess      *prometheus.CounterVec
	ingestFail         *prometheus.CounterVec
	aggregationTotal   prometheus.Counter
	aggregationFail    prometheus.Counter
	aggregationLatency prometheus.Histogram
	httpStatus         *prometheus.CounterVec
	sessionsSwept      prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ingestSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posturelog_ingest_success_total",
			Help: "姿勢区間の取り込み成功の合計数",
		}, []string{"posture"}),
		ingestFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posturelog_ingest_fail_total",
			Help: "姿勢区間の取り込み失敗の合計数",
		}, []string{"code"}),
		aggregationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posturelog_aggregation_total",
			Help: "日次集計クエリ実行の合計数",
		}),
		aggregationFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posturelog_aggregation_fail_total",
			Help: "日次集計クエリ失敗の合計数",
		}),
		aggregationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "posturelog_aggregation_latency_seconds",
			Help:    "日次集計クエリのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posturelog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posturelog_sessions_swept_total",
			Help: "スイーパーが強制クローズしたセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.ingestSuccess,
		c.ingestFail,
		c.aggregationTotal,
		c.aggregationFail,
		c.aggregationLatency,
		c.httpStatus,
		c.sessionsSwept,
	)

	return c
}

// RecordIngestSuccess は取り込み成功を姿勢ラベル付きで記録する。
func (c *Collector) RecordIngestSuccess(posture string) {
	c.ingestSuccess.WithLabelValues(posture).Inc()
}

// RecordIngestFailure は取り込み失敗をエラーコード付きで記録する。
func (c *Collector) RecordIngestFailure(code string) {
	c.ingestFail.WithLabelValues(code).Inc()
}

// RecordAggregation は集計の実行とレイテンシを記録する。
func (c *Collector) RecordAggregation(duration time.Duration) {
	c.aggregationTotal.Inc()
	c.aggregationLatency.Observe(duration.Seconds())
}

// RecordAggregationFailure は集計の失敗を記録する。
func (c *Collector) RecordAggregationFailure() {
	c.aggregationFail.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsSwept は強制クローズしたセッション数を記録する。
func (c *Collector) RecordSessionsSwept(count int64) {
	c.sessionsSwept.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
