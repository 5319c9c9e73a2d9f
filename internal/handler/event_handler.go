package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/posturelog/internal/event"
	"github.com/hitoshi/posturelog/internal/model"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// Login は新しいセッションを開始する。
	Login(ctx context.Context, userID string, ts time.Time) (*model.Session, error)
	// Logout は最新openセッションをクローズする。
	Logout(ctx context.Context, userID string, ts time.Time) (string, error)
}

// EventHandler はセッションライフサイクルイベントのHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{service: service}
}

// eventRequest はセッションイベントのリクエストボディ。
// tsは省略可能で、省略時はサーバー時刻を使用する。
type eventRequest struct {
	UserID string    `json:"user_id"`
	Type   string    `json:"type"`
	TS     time.Time `json:"ts"`
}

// eventResponse はセッションイベント成功時のレスポンス。
type eventResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// HandleEvent はログイン・ログアウトイベントを処理する。
// POST /api/events
func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Type {
	case event.TypeLogin:
		session, err := h.service.Login(r.Context(), req.UserID, req.TS)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, eventResponse{Status: "ok", SessionID: session.SessionID})

	case event.TypeLogout:
		sessionID, err := h.service.Logout(r.Context(), req.UserID, req.TS)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, eventResponse{Status: "ok", SessionID: sessionID})

	default:
		handleServiceError(w, model.NewInvalidEventError("type must be login or logout"))
	}
}
