// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// いずれも呼び出し元に4xxで返すローカルなエラーであり、リトライしない。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, session, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingParameter  = "MISSING_PARAMETER"
	ErrCodeNoOpenSession     = "NO_OPEN_SESSION"
	ErrCodeInvalidInterval   = "INVALID_INTERVAL"
	ErrCodeAggregationFailed = "AGGREGATION_FAILED"
	ErrCodeInvalidEvent      = "INVALID_EVENT"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// NewMissingParameterError は必須パラメータ欠落エラーを生成する。
func NewMissingParameterError(param string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingParameter,
		Message:  fmt.Sprintf("%s is required", param),
		Category: "validation",
	}
}

// NewNoOpenSessionError はopenなセッションが見つからない場合のエラーを生成する。
// 書き込み操作の終端条件であり、暗黙のセッション作成は行わない。
func NewNoOpenSessionError() *APIError {
	return &APIError{
		Code:     ErrCodeNoOpenSession,
		Message:  "no open session found. provide session_id or send login event first",
		Category: "session",
	}
}

// NewInvalidIntervalError は姿勢区間が不正な場合のエラーを生成する。
func NewInvalidIntervalError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInterval,
		Message:  fmt.Sprintf("invalid interval: %s", reason),
		Category: "validation",
	}
}

// NewAggregationFailedError は集計クエリの失敗を表すエラーを生成する。
// 部分的な結果は返さない。
func NewAggregationFailedError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeAggregationFailed,
		Message:  fmt.Sprintf("aggregation failed: %v", cause),
		Category: "system",
	}
}

// NewInvalidEventError はセッションイベントが不正な場合のエラーを生成する。
func NewInvalidEventError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEvent,
		Message:  fmt.Sprintf("invalid event: %s", reason),
		Category: "validation",
	}
}
