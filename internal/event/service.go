// Package event はログイン・ログアウトに伴うセッションライフサイクルの
// ドメインロジックを提供する。
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/hitoshi/posturelog/internal/model"
)

// イベント種別
const (
	TypeLogin  = "login"
	TypeLogout = "logout"
)

// SessionStore はセッションライフサイクル操作に必要なリポジトリインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	FindOpenByUserID(ctx context.Context, userID string) (*model.Session, error)
	Close(ctx context.Context, sessionID string, endTS time.Time) error
	CloseAllOpenByUserID(ctx context.Context, userID string, endTS time.Time) (int64, error)
}

// Service はセッションライフサイクルのサービス層。
type Service struct {
	sessions SessionStore
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(sessions SessionStore, clock clockwork.Clock, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		clock:    clock,
		logger:   logger,
	}
}

// Login は新しいセッションを開始し、そのセッションIDを返す。
// 「1ユーザーにつきopenセッション高々1件」の不変条件を保つため、
// 既存のopenセッションを先にクローズする。
// tsがゼロ値の場合は現在時刻を使用する。
func (s *Service) Login(ctx context.Context, userID string, ts time.Time) (*model.Session, error) {
	if userID == "" {
		return nil, model.NewMissingParameterError("user_id")
	}
	if ts.IsZero() {
		ts = s.clock.Now()
	}

	closed, err := s.sessions.CloseAllOpenByUserID(ctx, userID, ts)
	if err != nil {
		return nil, fmt.Errorf("既存openセッションのクローズに失敗しました: %w", err)
	}
	if closed > 0 {
		s.logger.Info("closed dangling open sessions on login",
			slog.String("user_id", userID),
			slog.Int64("closed", closed),
		)
	}

	session := &model.Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		StartTS:   ts,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}

	return session, nil
}

// Logout はユーザーの最新openセッションをクローズし、そのセッションIDを返す。
// openセッションが存在しない場合はNoOpenSessionエラーを返す。
func (s *Service) Logout(ctx context.Context, userID string, ts time.Time) (string, error) {
	if userID == "" {
		return "", model.NewMissingParameterError("user_id")
	}
	if ts.IsZero() {
		ts = s.clock.Now()
	}

	open, err := s.sessions.FindOpenByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("openセッションの検索に失敗しました: %w", err)
	}
	if open == nil {
		return "", model.NewNoOpenSessionError()
	}

	if err := s.sessions.Close(ctx, open.SessionID, ts); err != nil {
		return "", fmt.Errorf("セッションのクローズに失敗しました: %w", err)
	}

	return open.SessionID, nil
}
