// Package stats は姿勢区間の日次集計のドメインロジックを提供する。
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/hitoshi/posturelog/internal/daywindow"
	"github.com/hitoshi/posturelog/internal/metrics"
	"github.com/hitoshi/posturelog/internal/model"
)

// DaySummarizer は日次集計に必要なリポジトリインターフェース。
// repository.PostureLogRepositoryの部分集合として定義する。
type DaySummarizer interface {
	SummarizeDay(ctx context.Context, userID string, window model.DayWindow, includeAmbiguous bool) ([]model.PostureDuration, error)
}

// Service は日次集計のサービス層。
// ウィンドウ計算・集計クエリ・比率計算・整列を組み合わせて
// PostureSummaryを構築する。読み取り専用でトランザクションを使用しない。
type Service struct {
	logs             DaySummarizer
	windows          *daywindow.Calculator
	includeAmbiguous bool
	metrics          metrics.MetricsCollector
	clock            clockwork.Clock
}

// NewService はServiceの新しいインスタンスを生成する。
// includeAmbiguousは設定のCOLLECT_AMBIGUOUSに対応し、falseの場合
// ambiguousプレフィックスの姿勢ラベルを集計から除外する。
func NewService(logs DaySummarizer, windows *daywindow.Calculator, includeAmbiguous bool, collector metrics.MetricsCollector, clock clockwork.Clock) *Service {
	return &Service{
		logs:             logs,
		windows:          windows,
		includeAmbiguous: includeAmbiguous,
		metrics:          collector,
		clock:            clock,
	}
}

// Today は基準タイムゾーンの今日のウィンドウで集計する。
// userIDが空の場合はMissingParameterエラーを返す。
func (s *Service) Today(ctx context.Context, userID string) (*model.PostureSummary, error) {
	if userID == "" {
		return nil, model.NewMissingParameterError("user_id")
	}
	return s.summarize(ctx, userID, s.windows.Today())
}

// ForDate は"YYYY-MM-DD"形式で指定された暦日のウィンドウで集計する。
// 日付が不正な場合はInvalidRequest相当のエラーを返す。
func (s *Service) ForDate(ctx context.Context, userID, date string) (*model.PostureSummary, error) {
	if userID == "" {
		return nil, model.NewMissingParameterError("user_id")
	}
	if date == "" {
		return nil, model.NewMissingParameterError("date")
	}

	window, err := s.windows.ForDate(date)
	if err != nil {
		return nil, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  fmt.Sprintf("invalid date format: %s (expected YYYY-MM-DD)", date),
			Category: "validation",
		}
	}
	return s.summarize(ctx, userID, window)
}

// summarize は指定ウィンドウの集計結果からPostureSummaryを構築する。
// 合計0の場合、by_postureは空ですべての比率は0。
// by_postureはduration_sec降順、同値はposture昇順で決定的に整列する。
func (s *Service) summarize(ctx context.Context, userID string, window model.DayWindow) (*model.PostureSummary, error) {
	start := s.clock.Now()

	groups, err := s.logs.SummarizeDay(ctx, userID, window, s.includeAmbiguous)
	if err != nil {
		s.metrics.RecordAggregationFailure()
		return nil, model.NewAggregationFailedError(err)
	}

	var total int64
	for _, g := range groups {
		total += g.DurationSec
	}

	byPosture := make([]model.PostureDuration, len(groups))
	copy(byPosture, groups)
	for i := range byPosture {
		if total > 0 {
			byPosture[i].Ratio = float64(byPosture[i].DurationSec) / float64(total)
		} else {
			byPosture[i].Ratio = 0
		}
	}

	sort.Slice(byPosture, func(i, j int) bool {
		if byPosture[i].DurationSec != byPosture[j].DurationSec {
			return byPosture[i].DurationSec > byPosture[j].DurationSec
		}
		return byPosture[i].Posture < byPosture[j].Posture
	})

	s.metrics.RecordAggregation(s.clock.Now().Sub(start))

	return &model.PostureSummary{
		UserID:           userID,
		Date:             window.Date(),
		TotalDurationSec: total,
		ByPosture:        byPosture,
	}, nil
}
