// Package model はドメインモデルを定義する。
package model

// PostureDuration は1つの姿勢ラベルの集計結果を表す。
type PostureDuration struct {
	Posture     string  `json:"posture"`
	DurationSec int64   `json:"duration_sec"`
	Ratio       float64 `json:"ratio"` // DurationSec / 合計（合計0のとき0）
}

// PostureSummary はユーザー・暦日ごとの姿勢集計結果を表す。
// ByPostureはDurationSec降順（同値はPosture昇順）でソートされる。
// リクエストごとに導出され、永続化されない。
type PostureSummary struct {
	UserID           string            `json:"user_id"`
	Date             string            `json:"date"` // 基準タイムゾーンの暦日 "YYYY-MM-DD"
	TotalDurationSec int64             `json:"total_duration_sec"`
	ByPosture        []PostureDuration `json:"by_posture"`
}
