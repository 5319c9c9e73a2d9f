package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/posturelog/internal/model"
)

// SessionResolver は区間の帰属先セッションを決定する。
// 書き込みパスに埋め込まれていたセッション照合ロジックを独立させたもので、
// トランザクション内（*sql.Tx）でもプール直（*sql.DB）でも動作する。
type SessionResolver struct{}

// NewSessionResolver はSessionResolverを生成する。
func NewSessionResolver() *SessionResolver {
	return &SessionResolver{}
}

// Resolve は区間を紐付けるセッションIDを返す。
//
// explicitSessionIDが指定されている場合はそのまま返す。所有権の検証は
// 行わない（呼び出し元が正しさに責任を持つ信頼境界）。
// 未指定の場合はuserIDのopenなセッション（end_ts IS NULL）のうち
// start_tsが最新のものを選ぶ。start_tsが同時刻の場合はsession_id降順で
// 決定的にタイブレークする。
//
// explicitSessionIDもuserIDも空、またはopenなセッションが存在しない場合は
// NoOpenSessionエラーを返す。リトライも暗黙のセッション作成も行わない。
func (sr *SessionResolver) Resolve(ctx context.Context, q Querier, userID, explicitSessionID string) (string, error) {
	if explicitSessionID != "" {
		return explicitSessionID, nil
	}
	if userID == "" {
		return "", model.NewNoOpenSessionError()
	}

	var sessionID string
	err := q.QueryRowContext(ctx,
		`SELECT session_id FROM sessions
		 WHERE user_id = $1 AND end_ts IS NULL
		 ORDER BY start_ts DESC, session_id DESC
		 LIMIT 1`,
		userID,
	).Scan(&sessionID)

	if err == sql.ErrNoRows {
		return "", model.NewNoOpenSessionError()
	}
	if err != nil {
		return "", fmt.Errorf("セッションの解決に失敗しました: %w", err)
	}

	return sessionID, nil
}
