// Package posture は姿勢区間の取り込みのドメインロジックを提供する。
package posture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/posturelog/internal/metrics"
	"github.com/hitoshi/posturelog/internal/model"
)

// IntervalAppender は区間の追記に必要なリポジトリインターフェース。
// repository.PostureLogRepositoryの部分集合として定義する。
type IntervalAppender interface {
	AppendInterval(ctx context.Context, userID, sessionID string, interval *model.PostureInterval) (string, error)
}

// IngestRequest は姿勢区間の取り込みリクエストを表す。
// UserIDとSessionIDはどちらか一方があればよい。SessionIDが指定された場合は
// 検証なしにそのまま使用される（信頼境界）。
type IngestRequest struct {
	UserID    string
	SessionID string
	Posture   string
	StartTS   time.Time
	EndTS     time.Time
}

// Service は姿勢区間取り込みのサービス層。
// 入力検証の後、セッション解決と挿入を1トランザクションで実行する
// リポジトリに委譲する。
type Service struct {
	logs    IntervalAppender
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(logs IntervalAppender, collector metrics.MetricsCollector) *Service {
	return &Service{
		logs:    logs,
		metrics: collector,
	}
}

// Ingest は1つの姿勢区間を検証して追記し、紐付いたセッションIDを返す。
//
// posture、start_ts、end_tsは必須で、end_ts >= start_tsでなければならない。
// 違反した場合はInvalidIntervalエラーを返す。duration_secはend - startから
// 秒単位で導出する。セッション解決に失敗した場合はNoOpenSessionエラーが
// リポジトリから伝播し、区間は挿入されない。
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (string, error) {
	if err := validate(req); err != nil {
		s.recordFailure(err)
		return "", err
	}

	interval := &model.PostureInterval{
		Posture:     req.Posture,
		StartTS:     req.StartTS,
		EndTS:       req.EndTS,
		DurationSec: int64(req.EndTS.Sub(req.StartTS) / time.Second),
	}

	sessionID, err := s.logs.AppendInterval(ctx, req.UserID, req.SessionID, interval)
	if err != nil {
		s.recordFailure(err)
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return "", err
		}
		return "", fmt.Errorf("姿勢区間の追記に失敗しました: %w", err)
	}

	s.metrics.RecordIngestSuccess(req.Posture)
	return sessionID, nil
}

// validate は取り込みリクエストの必須項目と区間の妥当性を検証する。
func validate(req IngestRequest) error {
	if req.Posture == "" || req.StartTS.IsZero() || req.EndTS.IsZero() {
		return model.NewInvalidIntervalError("posture, start_ts and end_ts are required")
	}
	if req.EndTS.Before(req.StartTS) {
		return model.NewInvalidIntervalError("end_ts must not be before start_ts")
	}
	return nil
}

func (s *Service) recordFailure(err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		s.metrics.RecordIngestFailure(apiErr.Code)
		return
	}
	s.metrics.RecordIngestFailure("INTERNAL")
}
