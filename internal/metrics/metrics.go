// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute はどのルートにもマッチしなかったリクエストのラベル値。
const unmatchedRoute = "unmatched"

// Collector はPrometheusメトリクスを収集する実装。
// nilレシーバーでも安全に呼び出せる。
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	authEvents   *prometheus.CounterVec
	pageSaves    *prometheus.CounterVec
	comments     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miniwiki_http_requests_total",
			Help: "ルート・メソッド・ステータス別のHTTPリクエスト数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "miniwiki_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miniwiki_auth_events_total",
			Help: "ログイン・登録・ログアウトの結果別件数",
		}, []string{"event", "outcome"}),
		pageSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miniwiki_page_saves_total",
			Help: "ページ保存の結果別件数",
		}, []string{"outcome"}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "miniwiki_comments_total",
			Help: "コメント投稿の結果別件数",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.authEvents,
		c.pageSaves,
		c.comments,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = unmatchedRoute
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthEvent は認証イベントの結果を記録する。
// eventはlogin、register、logoutのいずれか。
func (c *Collector) RecordAuthEvent(event, outcome string) {
	if c == nil {
		return
	}
	c.authEvents.WithLabelValues(event, outcome).Inc()
}

// RecordPageSave はページ保存の結果を記録する。
func (c *Collector) RecordPageSave(outcome string) {
	if c == nil {
		return
	}
	c.pageSaves.WithLabelValues(outcome).Inc()
}

// RecordComment はコメント投稿の結果を記録する。
func (c *Collector) RecordComment(outcome string) {
	if c == nil {
		return
	}
	c.comments.WithLabelValues(outcome).Inc()
}

// statusWriter はレスポンスのステータスコードを記録する。
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Middleware はリクエストごとのメトリクスを記録するミドルウェアを返す。
// ラベルにはパスではなくchiのルートパターン（/wiki/{slug} など）を使い、カーディナリティを抑える。
// chiルーターのUseで登録すること。
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			c.RecordHTTPRequest(r.Method, route, status, time.Since(start))
		})
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
