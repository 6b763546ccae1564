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
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, path string, statusCode int)
	RecordRequestDuration(duration time.Duration)
	RecordSynthesis(provider string, success bool)
	RecordUpload(sizeBytes int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	requestDuration prometheus.Histogram
	synthesisTotal  *prometheus.CounterVec
	uploadsTotal    prometheus.Counter
	uploadBytes     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilespeak_http_requests_total",
			Help: "HTTPメソッド・パス・ステータスコード別のリクエスト数",
		}, []string{"method", "path", "status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tilespeak_request_duration_seconds",
			Help:    "リクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		synthesisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tilespeak_synthesis_total",
			Help: "プロバイダ・結果別の音声合成リクエスト数",
		}, []string{"provider", "result"}),
		uploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilespeak_uploads_total",
			Help: "オブジェクトストレージへのアップロードの合計数",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tilespeak_upload_bytes_total",
			Help: "アップロードされたバイト数の合計",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.requestDuration,
		c.synthesisTotal,
		c.uploadsTotal,
		c.uploadBytes,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの完了を記録する。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordSynthesis は音声合成リクエストの結果を記録する。
func (c *Collector) RecordSynthesis(provider string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.synthesisTotal.WithLabelValues(provider, result).Inc()
}

// RecordUpload はアップロードの完了を記録する。
func (c *Collector) RecordUpload(sizeBytes int) {
	c.uploadsTotal.Inc()
	c.uploadBytes.Add(float64(sizeBytes))
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
