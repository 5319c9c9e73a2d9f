package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/posturelog/internal/model"
)

// errorResponse はエラーレスポンスのボディ。
type errorResponse struct {
	Error string `json:"error"`
}

// writeError はエラーレスポンスを書き込む。
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeJSON は200でJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIErrorはすべてリクエスト起因のローカルなエラーとして400で返し（リトライさせない）、
// それ以外の想定外エラーは500にする。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeError(w, http.StatusBadRequest, apiErr.Message)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
