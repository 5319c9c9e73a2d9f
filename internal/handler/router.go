package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/posturelog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	RecordHTTPStatus  func(statusCode int)

	// ヘルスチェック
	HealthChecker HealthChecker

	// ドメインサービス
	PostureService PostureServiceInterface
	StatsService   StatsServiceInterface
	EventService   EventServiceInterface

	// /metrics のPrometheusスクレイプハンドラー
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → LoggingMiddleware → MetricsMiddleware → RecoveryMiddleware → RateLimitMiddleware
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.RecordHTTPStatus != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.RecordHTTPStatus))
	}
	r.Use(middleware.NewRecoveryMiddleware())

	healthHandler := NewHealthHandler(deps.HealthChecker)
	postureHandler := NewPostureHandler(deps.PostureService)
	statsHandler := NewStatsHandler(deps.StatsService)
	eventHandler := NewEventHandler(deps.EventService)

	// --- 運用系ルート（レート制限なし）---

	r.Get("/health", healthHandler.Check)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		// 姿勢区間の取り込み
		r.Post("/api/postures", postureHandler.Ingest)

		// 日次集計
		r.Route("/api/stats", func(r chi.Router) {
			r.Get("/today", statsHandler.Today)
			r.Get("/daily", statsHandler.Daily)
		})

		// セッションライフサイクルイベント
		r.Post("/api/events", eventHandler.HandleEvent)
	})

	return r
}
