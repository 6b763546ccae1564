// Package app はアプリケーションの起動とワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/tilespeak/internal/auth"
	"github.com/hitoshi/tilespeak/internal/awssign"
	"github.com/hitoshi/tilespeak/internal/config"
	"github.com/hitoshi/tilespeak/internal/conjugation"
	"github.com/hitoshi/tilespeak/internal/database"
	"github.com/hitoshi/tilespeak/internal/handler"
	"github.com/hitoshi/tilespeak/internal/logger"
	"github.com/hitoshi/tilespeak/internal/metrics"
	"github.com/hitoshi/tilespeak/internal/middleware"
	"github.com/hitoshi/tilespeak/internal/page"
	"github.com/hitoshi/tilespeak/internal/project"
	"github.com/hitoshi/tilespeak/internal/repository"
	"github.com/hitoshi/tilespeak/internal/security"
	"github.com/hitoshi/tilespeak/internal/speech"
	"github.com/hitoshi/tilespeak/internal/storage"
	"github.com/hitoshi/tilespeak/internal/tile"
	"github.com/hitoshi/tilespeak/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	tokenRepo := repository.NewPostgresAccessTokenRepo(db)
	projectRepo := repository.NewPostgresProjectRepo(db)
	pageRepo := repository.NewPostgresTilePageRepo(db)
	tileRepo := repository.NewPostgresTileRepo(db)
	resourceRepo := repository.NewPostgresStoredResourceRepo(db)

	// 3. セキュリティサービスの初期化
	sanitizer := security.NewTextSanitizer()

	// 4. ドメインサービスの初期化
	authService := auth.NewService(userRepo, tokenRepo, projectRepo, auth.ServiceConfig{
		TokenTTL: cfg.TokenTTL,
	})
	projectService := project.NewService(projectRepo, sanitizer)
	pageService := page.NewService(pageRepo, projectRepo, sanitizer)
	tileService := tile.NewService(tileRepo, pageRepo, sanitizer)
	userService := user.NewService(userRepo, sanitizer)

	// 5. 外部プロバイダクライアントの初期化
	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}

	azureClient := speech.NewAzureClient(providerClient, cfg.AzureSpeechKey, cfg.AzureSpeechRegion)
	googleClient := speech.NewGoogleClient(providerClient, cfg.GoogleTTSAPIKey)
	pollySigner := awssign.NewSigner(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.PollyRegion, "polly")
	pollyClient := speech.NewPollyClient(providerClient, pollySigner, cfg.PollyRegion)

	s3Signer := awssign.NewSigner(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.AWSRegion, "s3")
	s3Client := storage.NewS3Client(providerClient, s3Signer, cfg.AWSBucketName, cfg.AWSRegion)
	storageService := storage.NewService(s3Client, resourceRepo)

	speechService := speech.NewService(azureClient, googleClient, pollyClient, storageService)
	conjugationService := conjugation.NewService(
		conjugation.NewCompletionClient(providerClient, cfg.OpenAIAPIKey),
	)

	// 6. メトリクスの初期化
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 7. レート制限の初期化（configのRateLimitGeneralはreq/min単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 8. ルーターの構築
	deps := &handler.RouterDeps{
		Authenticator:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		Metrics:           collector,
		Gatherer:          reg,
		HealthChecker:     db,

		AuthService:        authService,
		ProjectService:     projectService,
		PageService:        pageService,
		TileService:        tileService,
		UserService:        userService,
		ExploreService:     projectService,
		SpeechService:      speechService,
		ConjugationService: conjugationService,
		UploadService:      storageService,
	}

	router := handler.NewRouter(deps)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:20] + "..."
	}
	return url
}
