package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/posturelog/internal/posture"
)

// PostureServiceInterface は姿勢ハンドラーが必要とするサービスインターフェース。
type PostureServiceInterface interface {
	// Ingest は姿勢区間を検証して保存し、解決されたセッションIDを返す。
	Ingest(ctx context.Context, req posture.IngestRequest) (string, error)
}

// PostureHandler は姿勢区間取り込みのHTTPハンドラー。
type PostureHandler struct {
	service PostureServiceInterface
}

// NewPostureHandler はPostureHandlerを生成する。
func NewPostureHandler(service PostureServiceInterface) *PostureHandler {
	return &PostureHandler{service: service}
}

// postureRequest は姿勢区間取り込みリクエストのボディ。
// タイムスタンプはRFC 3339で受け付ける。
type postureRequest struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Posture   string    `json:"posture"`
	StartTS   time.Time `json:"start_ts"`
	EndTS     time.Time `json:"end_ts"`
}

// postureResponse は姿勢区間取り込み成功時のレスポンス。
type postureResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// Ingest は姿勢区間を1件保存する。
// POST /api/postures
func (h *PostureHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req postureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID, err := h.service.Ingest(r.Context(), posture.IngestRequest{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Posture:   req.Posture,
		StartTS:   req.StartTS,
		EndTS:     req.EndTS,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, postureResponse{Status: "ok", SessionID: sessionID})
}
