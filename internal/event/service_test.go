package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hitoshi/posturelog/internal/model"
)

// --- モック ---

type mockSessionStore struct {
	createFn             func(ctx context.Context, session *model.Session) error
	findOpenByUserIDFn   func(ctx context.Context, userID string) (*model.Session, error)
	closeFn              func(ctx context.Context, sessionID string, endTS time.Time) error
	closeAllOpenByUserFn func(ctx context.Context, userID string, endTS time.Time) (int64, error)
}

func (m *mockSessionStore) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionStore) FindOpenByUserID(ctx context.Context, userID string) (*model.Session, error) {
	if m.findOpenByUserIDFn != nil {
		return m.findOpenByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockSessionStore) Close(ctx context.Context, sessionID string, endTS time.Time) error {
	if m.closeFn != nil {
		return m.closeFn(ctx, sessionID, endTS)
	}
	return nil
}

func (m *mockSessionStore) CloseAllOpenByUserID(ctx context.Context, userID string, endTS time.Time) (int64, error) {
	if m.closeAllOpenByUserFn != nil {
		return m.closeAllOpenByUserFn(ctx, userID, endTS)
	}
	return 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// --- テスト ---

// ログインで既存openセッションがクローズされ、新規セッションが作られることを検証
func TestLogin_ClosesExistingAndCreatesNew(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	var created *model.Session
	closeAllCalled := false

	store := &mockSessionStore{
		closeAllOpenByUserFn: func(ctx context.Context, userID string, endTS time.Time) (int64, error) {
			closeAllCalled = true
			if !endTS.Equal(now) {
				t.Errorf("endTS = %v, want %v", endTS, now)
			}
			return 1, nil
		},
		createFn: func(ctx context.Context, session *model.Session) error {
			created = session
			return nil
		},
	}
	svc := NewService(store, clockwork.NewFakeClockAt(now), testLogger())

	session, err := svc.Login(context.Background(), "u1", time.Time{})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if !closeAllCalled {
		t.Error("existing open sessions should be closed on login")
	}
	if created == nil {
		t.Fatal("session was not created")
	}
	if created.SessionID == "" {
		t.Error("session_id should be generated")
	}
	if created.UserID != "u1" {
		t.Errorf("user_id = %q, want u1", created.UserID)
	}
	if !created.StartTS.Equal(now) {
		t.Errorf("start_ts = %v, want %v", created.StartTS, now)
	}
	if !created.IsOpen() {
		t.Error("new session should be open")
	}
	if session.SessionID != created.SessionID {
		t.Errorf("returned session = %q, want %q", session.SessionID, created.SessionID)
	}
}

// ログインで生成されるセッションIDが毎回ユニークであることを検証
func TestLogin_GeneratesUniqueSessionIDs(t *testing.T) {
	store := &mockSessionStore{}
	svc := NewService(store, clockwork.NewRealClock(), testLogger())

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		session, err := svc.Login(context.Background(), "u1", time.Time{})
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if seen[session.SessionID] {
			t.Fatalf("duplicate session_id: %s", session.SessionID)
		}
		seen[session.SessionID] = true
	}
}

// user_idなしのログインがMissingParameterになることを検証
func TestLogin_MissingUserID(t *testing.T) {
	svc := NewService(&mockSessionStore{}, clockwork.NewRealClock(), testLogger())

	_, err := svc.Login(context.Background(), "", time.Time{})
	if err == nil {
		t.Fatal("expected MissingParameter error")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeMissingParameter {
		t.Errorf("error = %v, want MISSING_PARAMETER", err)
	}
}

// ログアウトで最新openセッションがクローズされることを検証
func TestLogout_ClosesOpenSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	var closedID string

	store := &mockSessionStore{
		findOpenByUserIDFn: func(ctx context.Context, userID string) (*model.Session, error) {
			return &model.Session{SessionID: "s1", UserID: userID, StartTS: now.Add(-8 * time.Hour)}, nil
		},
		closeFn: func(ctx context.Context, sessionID string, endTS time.Time) error {
			closedID = sessionID
			if !endTS.Equal(now) {
				t.Errorf("endTS = %v, want %v", endTS, now)
			}
			return nil
		},
	}
	svc := NewService(store, clockwork.NewFakeClockAt(now), testLogger())

	sid, err := svc.Logout(context.Background(), "u1", time.Time{})
	if err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if sid != "s1" || closedID != "s1" {
		t.Errorf("closed session = %q/%q, want s1", sid, closedID)
	}
}

// openセッションがない状態でのログアウトがNoOpenSessionになることを検証
func TestLogout_NoOpenSession(t *testing.T) {
	svc := NewService(&mockSessionStore{}, clockwork.NewRealClock(), testLogger())

	_, err := svc.Logout(context.Background(), "u1", time.Time{})
	if err == nil {
		t.Fatal("expected NoOpenSession error")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNoOpenSession {
		t.Errorf("error = %v, want NO_OPEN_SESSION", err)
	}
}

// 明示的なタイムスタンプ指定が優先されることを検証
func TestLogin_ExplicitTimestamp(t *testing.T) {
	explicit := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	var created *model.Session

	store := &mockSessionStore{
		createFn: func(ctx context.Context, session *model.Session) error {
			created = session
			return nil
		},
	}
	svc := NewService(store, clockwork.NewRealClock(), testLogger())

	if _, err := svc.Login(context.Background(), "u1", explicit); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !created.StartTS.Equal(explicit) {
		t.Errorf("start_ts = %v, want %v", created.StartTS, explicit)
	}
}
