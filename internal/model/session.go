// Package model はドメインモデルを定義する。
package model

import "time"

// Session はユーザーの連続的な利用期間を表す。
// EndTSがnil（open）のセッションは進行中を意味する。
// 1ユーザーにつきopenなセッションは高々1件であることを
// セッションリゾルバとイベント処理が保証する（ストレージ制約ではない）。
type Session struct {
	SessionID string
	UserID    string
	StartTS   time.Time
	EndTS     *time.Time // nil = open（進行中）
}

// IsOpen はセッションが進行中かどうかを返す。
func (s *Session) IsOpen() bool {
	return s.EndTS == nil
}
