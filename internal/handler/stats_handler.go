package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/posturelog/internal/model"
)

// StatsServiceInterface は統計ハンドラーが必要とするサービスインターフェース。
type StatsServiceInterface interface {
	// Today は基準タイムゾーンにおける今日の姿勢サマリーを返す。
	Today(ctx context.Context, userID string) (*model.PostureSummary, error)
	// ForDate は指定した日付（YYYY-MM-DD）の姿勢サマリーを返す。
	ForDate(ctx context.Context, userID, date string) (*model.PostureSummary, error)
}

// StatsHandler は日次集計のHTTPハンドラー。
type StatsHandler struct {
	service StatsServiceInterface
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service StatsServiceInterface) *StatsHandler {
	return &StatsHandler{service: service}
}

// Today は今日の姿勢サマリーを取得する。
// GET /api/stats/today?user_id=xxx
func (h *StatsHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	summary, err := h.service.Today(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, summary)
}

// Daily は指定日の姿勢サマリーを取得する。
// GET /api/stats/daily?user_id=xxx&date=YYYY-MM-DD
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	date := r.URL.Query().Get("date")

	summary, err := h.service.ForDate(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, summary)
}
