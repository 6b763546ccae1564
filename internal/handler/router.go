package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tilespeak/internal/metrics"
	"github.com/hitoshi/tilespeak/internal/middleware"
)

// HealthChecker はDB疎通確認のためのインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.Authenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	MaxBodyBytes      int64

	// メトリクス（nilの場合は無効）
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// サービス
	AuthService        AuthServiceInterface
	ProjectService     ProjectServiceInterface
	PageService        PageServiceInterface
	TileService        TileServiceInterface
	UserService        UserServiceInterface
	ExploreService     ExploreServiceInterface
	SpeechService      SpeechServiceInterface
	ConjugationService ConjugationServiceInterface
	UploadService      UploadServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成した
// chi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Metrics → Logging → BodyLimit → CORS → Auth → RateLimit(General)
//
// 認証ミドルウェアは/api/v1/auth配下をAuthorizationヘッダなしの場合のみ素通しする。
// /（greeting）、/health、/metricsは認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(metrics.NewMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.MaxBodyBytes > 0 {
		r.Use(middleware.NewBodyLimitMiddleware(deps.MaxBodyBytes))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService)
	projectHandler := NewProjectHandler(deps.ProjectService)
	pageHandler := NewPageHandler(deps.PageService)
	tileHandler := NewTileHandler(deps.TileService)
	userHandler := NewUserHandler(deps.UserService)
	exploreHandler := NewExploreHandler(deps.ExploreService)
	speechHandler := NewSpeechHandler(deps.SpeechService)
	conjugationHandler := NewConjugationHandler(deps.ConjugationService)
	uploadHandler := NewUploadHandler(deps.UploadService)

	// --- 認証不要のルート ---

	r.Get("/", greetingHandler("🦄🌈✨👋🌎🌍🌏✨🌈🦄"))

	if deps.HealthChecker != nil {
		r.Get("/health", healthHandler(deps.HealthChecker))
	}
	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	// --- 認証が必要なルート ---
	// /api/v1/auth配下はAuthorizationヘッダがない場合に限りミドルウェアを素通りする
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/", greetingHandler("Tilespeak API V1 - 👋🌎🌍🌏"))

			// 認証
			r.Route("/auth", func(r chi.Router) {
				r.Post("/create", authHandler.Signup)
				r.Post("/login", authHandler.Login)
				r.Post("/validate-email", authHandler.ValidateEmail)
				r.Get("/me", authHandler.Me)
			})

			// プロジェクト管理
			r.Route("/project", func(r chi.Router) {
				r.Post("/create", projectHandler.Create)
				r.Post("/get", projectHandler.Get)
				r.Post("/update", projectHandler.Update)
				r.Post("/delete", projectHandler.Delete)
				r.Post("/clone", projectHandler.Clone)
			})

			// ページ管理
			r.Route("/page", func(r chi.Router) {
				r.Post("/create", pageHandler.Create)
				r.Post("/update", pageHandler.Update)
				r.Post("/delete", pageHandler.Delete)
			})

			// タイル管理
			r.Route("/tile", func(r chi.Router) {
				r.Post("/create", tileHandler.Create)
				r.Post("/update", tileHandler.Update)
				r.Post("/remove", tileHandler.Remove)
			})

			// ユーザー管理
			r.Route("/user", func(r chi.Router) {
				r.Post("/update", userHandler.Update)
				r.Post("/delete", userHandler.Delete)
			})

			// 公開プロジェクト探索
			r.Route("/explore", func(r chi.Router) {
				r.Post("/create", exploreHandler.Search)
				r.Post("/explore", exploreHandler.Explore)
			})

			// 音声合成
			r.Route("/tts", func(r chi.Router) {
				r.Post("/voices", speechHandler.Voices)

				// POST /api/v1/tts/synthesize - 外部プロバイダ呼び出しのため追加レート制限
				r.With(deps.RateLimiter.SynthesisMiddleware()).Post("/synthesize", speechHandler.Synthesize)
			})

			// 活用形生成
			r.Route("/openai", func(r chi.Router) {
				r.Post("/conjugate", conjugationHandler.Conjugate)
			})

			// ファイルアップロード
			r.Route("/s3", func(r chi.Router) {
				r.Post("/upload", uploadHandler.Upload)
			})
		})
	})

	return r
}

// greetingHandler は固定メッセージを返すハンドラーを生成する。
func greetingHandler(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを生成する。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
