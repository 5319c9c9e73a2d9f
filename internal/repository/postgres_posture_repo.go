package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/posturelog/internal/model"
)

// PostgresPostureLogRepo はPostgreSQLを使用した姿勢区間リポジトリ。
// posture_logsはappend-onlyで、挿入と読み取り集計のみを提供する。
type PostgresPostureLogRepo struct {
	db       *sql.DB
	resolver *SessionResolver
}

// NewPostgresPostureLogRepo はPostgresPostureLogRepoを生成する。
func NewPostgresPostureLogRepo(db *sql.DB, resolver *SessionResolver) *PostgresPostureLogRepo {
	return &PostgresPostureLogRepo{db: db, resolver: resolver}
}

// AppendInterval はセッション解決と区間挿入を1トランザクションで実行する。
// 解決と挿入のどちらが失敗してもロールバックし、部分的な区間を残さない。
// 解決されたセッションIDを返す。
func (r *PostgresPostureLogRepo) AppendInterval(ctx context.Context, userID, sessionID string, interval *model.PostureInterval) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	resolved, err := r.resolver.Resolve(ctx, tx, userID, sessionID)
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO posture_logs (session_id, posture, start_ts, end_ts, duration_sec)
		 VALUES ($1, $2, $3, $4, $5)`,
		resolved, interval.Posture, interval.StartTS, interval.EndTS, interval.DurationSec,
	)
	if err != nil {
		return "", fmt.Errorf("姿勢区間の挿入に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return resolved, nil
}

// SummarizeDay は指定ユーザー・ウィンドウの姿勢ラベルごとの合計秒数を返す。
//
// 選択条件は「ウィンドウと重なる」かつ「ウィンドウに完全に含まれる」の両方。
// 日境界をまたぐ区間はクリップせず、両隣の日のどちらの合計にも入れない。
// 境界に一致する区間（start_ts == Start、end_ts == End）は含まれる。
func (r *PostgresPostureLogRepo) SummarizeDay(ctx context.Context, userID string, window model.DayWindow, includeAmbiguous bool) ([]model.PostureDuration, error) {
	query := `
		SELECT p.posture, COALESCE(SUM(p.duration_sec), 0) AS duration_sec
		FROM posture_logs p
		JOIN sessions s ON s.session_id = p.session_id
		WHERE s.user_id = $1
		  AND p.start_ts < $3 AND p.end_ts > $2
		  AND p.start_ts >= $2 AND p.end_ts <= $3`
	if !includeAmbiguous {
		query += `
		  AND p.posture NOT LIKE '` + model.AmbiguousPrefix + `%'`
	}
	query += `
		GROUP BY p.posture`

	rows, err := r.db.QueryContext(ctx, query, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("日次集計クエリの実行に失敗しました: %w", err)
	}
	defer rows.Close()

	var groups []model.PostureDuration
	for rows.Next() {
		var g model.PostureDuration
		if err := rows.Scan(&g.Posture, &g.DurationSec); err != nil {
			return nil, fmt.Errorf("集計結果の読み取りに失敗しました: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("集計結果の走査に失敗しました: %w", err)
	}

	return groups, nil
}

// compile-time interface check
var _ PostureLogRepository = (*PostgresPostureLogRepo)(nil)
