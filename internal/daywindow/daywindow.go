// Package daywindow は基準タイムゾーンにおける「今日」に対応する
// 絶対時刻範囲の計算を提供する。
package daywindow

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hitoshi/posturelog/internal/model"
)

// ReferenceZone は集計の基準となる固定タイムゾーン（KST, UTC+9）。
// 固定オフセットとして扱うため、ウィンドウ終端は先頭+24時間で正確に
// 次の暦日午前0時になる。可変オフセットのゾーンに変更する場合、
// この前提（+24h）は成り立たない。
var ReferenceZone = time.FixedZone("KST", 9*60*60)

// Calculator は基準タイムゾーンの暦日ウィンドウを計算する。
// 時刻取得をclockwork.Clockに委譲し、テストで決定的に動作させられる。
type Calculator struct {
	clock clockwork.Clock
	loc   *time.Location
}

// NewCalculator はReferenceZoneを使用するCalculatorを生成する。
func NewCalculator(clock clockwork.Clock) *Calculator {
	return &Calculator{clock: clock, loc: ReferenceZone}
}

// At は指定時刻を含む基準タイムゾーンの暦日ウィンドウ [午前0時, 翌午前0時) を返す。
// 任意の入力時刻に対して常に成功する。
// 返されるウィンドウのStartは基準タイムゾーン付きの時刻であり、
// DayWindow.Date()がそのゾーンの暦日ラベルを返す。
func (c *Calculator) At(t time.Time) model.DayWindow {
	local := t.In(c.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
	return model.DayWindow{
		Start: start,
		End:   start.Add(24 * time.Hour),
	}
}

// Today は現在時刻を含む暦日ウィンドウを返す。
func (c *Calculator) Today() model.DayWindow {
	return c.At(c.clock.Now())
}

// ForDate は"YYYY-MM-DD"形式の暦日ラベルに対応するウィンドウを返す。
// ラベルは基準タイムゾーンの暦日として解釈する。
func (c *Calculator) ForDate(date string) (model.DayWindow, error) {
	t, err := time.ParseInLocation("2006-01-02", date, c.loc)
	if err != nil {
		return model.DayWindow{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return c.At(t), nil
}
