// Package cleanup はセッションの自動クローズジョブを提供する。
// 最大滞留時間（デフォルト24時間）を超えてopenのままのセッションを
// 定期バッチで強制クローズする。ログアウトイベントが届かなかった
// セッションのタイムアウト処理に相当する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hitoshi/posturelog/internal/metrics"
)

// SessionCloser はスイーパーが必要とするリポジトリインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionCloser interface {
	CloseStale(ctx context.Context, olderThan, endTS time.Time) (int64, error)
}

// SweepJob は滞留openセッションの強制クローズジョブ。
// 定期実行のバッチジョブとして設計されており、冪等なクローズ処理を保証する。
type SweepJob struct {
	sessions SessionCloser
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  metrics.MetricsCollector
	MaxAge   time.Duration // openセッションの最大滞留時間（デフォルト: 24時間）
}

// NewSweepJob は新しいSweepJobを生成する。
// デフォルトの最大滞留時間は24時間。
func NewSweepJob(sessions SessionCloser, clock clockwork.Clock, logger *slog.Logger, collector metrics.MetricsCollector) *SweepJob {
	return &SweepJob{
		sessions: sessions,
		clock:    clock,
		logger:   logger,
		metrics:  collector,
		MaxAge:   24 * time.Hour,
	}
}

// Run はMaxAgeを超えてopenのままのセッションを強制クローズする。
// end_tsには実行時点の時刻を設定する。
// 冪等: 対象がない場合でもエラーにならない。
func (j *SweepJob) Run(ctx context.Context) error {
	now := j.clock.Now()
	olderThan := now.Add(-j.MaxAge)

	closed, err := j.sessions.CloseStale(ctx, olderThan, now)
	if err != nil {
		j.logger.Error("セッションスイープジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Duration("max_age", j.MaxAge),
		)
		return fmt.Errorf("セッションスイープの実行に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsSwept(closed)
	}

	j.logger.Info("セッションスイープジョブが完了しました",
		slog.Int64("closed_count", closed),
		slog.Duration("max_age", j.MaxAge),
	)

	return nil
}

// Start はctxがキャンセルされるまでintervalごとにRunを繰り返す。
// 起動直後に1回実行する。個々の実行エラーはログに残してループを継続する。
func (j *SweepJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("session sweep failed", slog.String("error", err.Error()))
	}

	ticker := j.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := j.Run(ctx); err != nil {
				j.logger.Error("session sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
