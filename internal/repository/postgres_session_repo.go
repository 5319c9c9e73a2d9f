package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/posturelog/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, start_ts, end_ts)
		 VALUES ($1, $2, $3, $4)`,
		session.SessionID, session.UserID, session.StartTS, nullTime(session.EndTS),
	)
	if err != nil {
		return fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	var endTS sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, start_ts, end_ts
		 FROM sessions WHERE session_id = $1`,
		id,
	).Scan(&session.SessionID, &session.UserID, &session.StartTS, &endTS)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}

	if endTS.Valid {
		session.EndTS = &endTS.Time
	}
	return session, nil
}

// FindOpenByUserID は指定ユーザーの最新のopenセッションを取得する。
// start_ts降順、同時刻はsession_id降順で決定的に1件を選ぶ。
// 見つからない場合はnilを返す。
func (r *PostgresSessionRepo) FindOpenByUserID(ctx context.Context, userID string) (*model.Session, error) {
	session := &model.Session{}

	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, start_ts
		 FROM sessions
		 WHERE user_id = $1 AND end_ts IS NULL
		 ORDER BY start_ts DESC, session_id DESC
		 LIMIT 1`,
		userID,
	).Scan(&session.SessionID, &session.UserID, &session.StartTS)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("openセッションの検索に失敗しました: %w", err)
	}

	return session, nil
}

// Close は指定セッションのend_tsを設定する。
func (r *PostgresSessionRepo) Close(ctx context.Context, sessionID string, endTS time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET end_ts = $2 WHERE session_id = $1 AND end_ts IS NULL`,
		sessionID, endTS,
	)
	if err != nil {
		return fmt.Errorf("セッションのクローズに失敗しました: %w", err)
	}
	return nil
}

// CloseAllOpenByUserID は指定ユーザーの全openセッションをクローズする。
func (r *PostgresSessionRepo) CloseAllOpenByUserID(ctx context.Context, userID string, endTS time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET end_ts = $2 WHERE user_id = $1 AND end_ts IS NULL`,
		userID, endTS,
	)
	if err != nil {
		return 0, fmt.Errorf("openセッションの一括クローズに失敗しました: %w", err)
	}

	closed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("クローズ件数の取得に失敗しました: %w", err)
	}
	return closed, nil
}

// CloseStale はstart_tsがolderThanより古い全openセッションをクローズする。
func (r *PostgresSessionRepo) CloseStale(ctx context.Context, olderThan, endTS time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET end_ts = $2 WHERE end_ts IS NULL AND start_ts < $1`,
		olderThan, endTS,
	)
	if err != nil {
		return 0, fmt.Errorf("staleセッションのクローズに失敗しました: %w", err)
	}

	closed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("クローズ件数の取得に失敗しました: %w", err)
	}
	return closed, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
