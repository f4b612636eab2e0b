package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/miniwiki/internal/metrics"
	"github.com/hitoshi/miniwiki/internal/middleware"
	"github.com/hitoshi/miniwiki/internal/view"
	"github.com/prometheus/client_golang/prometheus"
)

// loginPath は未ログイン時のリダイレクト先。
const loginPath = "/login"

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger        *slog.Logger
	UserResolver  middleware.UserResolver
	RateLimiter   *middleware.RateLimiter
	Metrics       *metrics.Collector
	Gatherer      prometheus.Gatherer
	HealthChecker HealthChecker

	// 描画
	Renderer view.Renderer

	// 認証
	AuthService AuthServiceInterface
	Cookie      CookieConfig

	// Wiki
	WikiService WikiServiceInterface
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Recovery → SecurityHeaders → Metrics → Session → RateLimit(General)
//
// /health と /metrics はSession以降のチェーンの外に配置する。
// 静的ルートは /wiki/{slug} より優先してマッチするため、スラッグ new のページには到達できない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(deps.Metrics.Middleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.Renderer, deps.Cookie, deps.Metrics)
	wikiHandler := NewWikiHandler(deps.WikiService, deps.Renderer)

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.UserResolver))
		authLimit := func(next http.Handler) http.Handler { return next }
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			authLimit = deps.RateLimiter.AuthMiddleware()
		}

		// --- 認証 ---
		r.Get("/register", authHandler.ShowRegister)
		r.With(authLimit).Post("/register", authHandler.Register)
		r.Get("/login", authHandler.ShowLogin)
		r.With(authLimit).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// --- 一覧（匿名可） ---
		for _, path := range []string{"/", "/wiki"} {
			r.Get(path, wikiHandler.Index)
			r.Post(path, wikiHandler.Index)
		}

		// --- ログイン必須 ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireUserMiddleware(loginPath))

			r.Get("/wiki/new", wikiHandler.NewPageForm)
			r.Post("/wiki/new", wikiHandler.CreatePage)
			r.Get("/wiki/{slug}/edit", wikiHandler.Edit)
			r.Post("/wiki/{slug}/edit", wikiHandler.Save)
		})

		// --- 閲覧とコメント（POSTのログイン確認はハンドラー内でページ確認の後に行う） ---
		r.Get("/wiki/{slug}", wikiHandler.View)
		r.Post("/wiki/{slug}", wikiHandler.Comment)
	})

	return r
}
