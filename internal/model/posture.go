// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// AmbiguousPrefix は判定が曖昧な姿勢ラベルのプレフィックス規約。
// このプレフィックスを持つラベル（例: "ambiguous_phone"）は
// 集計時に設定によって除外できる。データレベルのタグ規約であり、
// 姿勢カテゴリのクローズドな列挙ではない。
const AmbiguousPrefix = "ambiguous"

// PostureInterval は1つの姿勢分類を保持していた連続区間を表す。
// 姿勢セグメントの終了時にappend-onlyで挿入され、以後更新・削除されない。
type PostureInterval struct {
	ID          int64
	SessionID   string
	Posture     string
	StartTS     time.Time
	EndTS       time.Time
	DurationSec int64 // EndTS - StartTS（秒、挿入時に導出）
}

// IsAmbiguous は姿勢ラベルがambiguousプレフィックスを持つかどうかを返す。
func (p *PostureInterval) IsAmbiguous() bool {
	return strings.HasPrefix(p.Posture, AmbiguousPrefix)
}

// DayWindow は基準タイムゾーンにおける1暦日に対応する
// 半開区間 [Start, End) を絶対時刻で表す。リクエストごとに導出され、
// 永続化されない。
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// Date はウィンドウ先頭時刻の暦日ラベル（"YYYY-MM-DD"）を返す。
// Startが基準タイムゾーンで構築されている前提で、そのゾーンの暦日になる。
func (w DayWindow) Date() string {
	return w.Start.Format("2006-01-02")
}

// Contains は区間 [start, end] がウィンドウに完全に含まれるかどうかを返す。
// 境界に一致する区間（start == Start、end == End）は含まれる。
func (w DayWindow) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// Overlaps は区間 (start, end) がウィンドウと重なるかどうかを返す。
func (w DayWindow) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}
