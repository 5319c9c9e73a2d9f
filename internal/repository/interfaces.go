// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/posturelog/internal/model"
)

// Querier は*sql.DBと*sql.Txの共通部分集合。
// トランザクション内外の両方で動作するクエリに使用する。
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// FindOpenByUserID は指定ユーザーのopenなセッション（end_ts IS NULL）のうち
	// 最新のものを取得する。start_ts降順、同時刻の場合はsession_id降順で
	// 決定的に1件を選択する。見つからない場合はnilを返す。
	FindOpenByUserID(ctx context.Context, userID string) (*model.Session, error)

	// Close は指定セッションのend_tsを設定する。
	Close(ctx context.Context, sessionID string, endTS time.Time) error

	// CloseAllOpenByUserID は指定ユーザーの全openセッションをクローズし、
	// クローズした件数を返す。ログイン時の「openセッション高々1件」不変条件の
	// 維持に使用する。
	CloseAllOpenByUserID(ctx context.Context, userID string, endTS time.Time) (int64, error)

	// CloseStale はstart_tsがolderThanより古い全openセッションをクローズし、
	// クローズした件数を返す。セッションタイムアウトのスイーパーが使用する。
	CloseStale(ctx context.Context, olderThan, endTS time.Time) (int64, error)
}

// PostureLogRepository は姿勢区間データの永続化インターフェース。
// posture_logsはappend-onlyであり、更新・削除操作は提供しない。
type PostureLogRepository interface {
	// AppendInterval はセッション解決と区間挿入を1トランザクションで実行し、
	// 解決されたセッションIDを返す。sessionIDが空の場合はuserIDのopenな
	// セッションを解決する。解決できない場合はNoOpenSessionエラーを返し、
	// 区間は挿入されない（all-or-nothing）。
	AppendInterval(ctx context.Context, userID, sessionID string, interval *model.PostureInterval) (string, error)

	// SummarizeDay は指定ユーザー・ウィンドウの姿勢ラベルごとの合計秒数を返す。
	// ウィンドウと重なり（start_ts < End AND end_ts > Start）かつ
	// 完全に含まれる（start_ts >= Start AND end_ts <= End）区間のみを数える。
	// 日境界をまたぐ区間は両隣の日のどちらにも数えない。
	// includeAmbiguousがfalseの場合、ambiguousプレフィックスのラベルを除外する。
	// 返り値の順序は不定で、Ratioは未設定。
	SummarizeDay(ctx context.Context, userID string, window model.DayWindow, includeAmbiguous bool) ([]model.PostureDuration, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
