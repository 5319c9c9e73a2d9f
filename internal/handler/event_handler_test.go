package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/posturelog/internal/model"
)

// --- モック定義 ---

// mockEventService はEventServiceInterfaceのモック実装。
type mockEventService struct {
	loginFn  func(ctx context.Context, userID string, ts time.Time) (*model.Session, error)
	logoutFn func(ctx context.Context, userID string, ts time.Time) (string, error)
}

func (m *mockEventService) Login(ctx context.Context, userID string, ts time.Time) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, userID, ts)
	}
	return &model.Session{SessionID: "s-1", UserID: userID}, nil
}

func (m *mockEventService) Logout(ctx context.Context, userID string, ts time.Time) (string, error) {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, userID, ts)
	}
	return "s-1", nil
}

func postEvent(t *testing.T, h *EventHandler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h.HandleEvent(rec, req)
	return rec
}

// --- POST /api/events テスト ---

func TestEventHandler_Login_Success(t *testing.T) {
	svc := &mockEventService{
		loginFn: func(ctx context.Context, userID string, ts time.Time) (*model.Session, error) {
			if userID != "user-123" {
				t.Errorf("userID = %q, want user-123", userID)
			}
			if !ts.IsZero() {
				t.Errorf("ts = %v, want zero (omitted)", ts)
			}
			return &model.Session{SessionID: "session-new", UserID: userID}, nil
		},
	}

	h := NewEventHandler(svc)
	rec := postEvent(t, h, map[string]any{"user_id": "user-123", "type": "login"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp eventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID != "session-new" {
		t.Errorf("session_id = %q, want session-new", resp.SessionID)
	}
}

func TestEventHandler_Login_ExplicitTimestamp(t *testing.T) {
	want := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := &mockEventService{
		loginFn: func(ctx context.Context, userID string, ts time.Time) (*model.Session, error) {
			if !ts.Equal(want) {
				t.Errorf("ts = %v, want %v", ts, want)
			}
			return &model.Session{SessionID: "s-1", UserID: userID}, nil
		},
	}

	h := NewEventHandler(svc)
	rec := postEvent(t, h, map[string]any{
		"user_id": "user-123",
		"type":    "login",
		"ts":      want.Format(time.RFC3339),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestEventHandler_Logout_Success(t *testing.T) {
	svc := &mockEventService{
		logoutFn: func(ctx context.Context, userID string, ts time.Time) (string, error) {
			return "session-closed", nil
		},
	}

	h := NewEventHandler(svc)
	rec := postEvent(t, h, map[string]any{"user_id": "user-123", "type": "logout"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp eventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID != "session-closed" {
		t.Errorf("session_id = %q, want session-closed", resp.SessionID)
	}
}

func TestEventHandler_Logout_NoOpenSession(t *testing.T) {
	svc := &mockEventService{
		logoutFn: func(ctx context.Context, userID string, ts time.Time) (string, error) {
			return "", model.NewNoOpenSessionError()
		},
	}

	h := NewEventHandler(svc)
	rec := postEvent(t, h, map[string]any{"user_id": "user-123", "type": "logout"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEventHandler_UnknownType(t *testing.T) {
	h := NewEventHandler(&mockEventService{})
	rec := postEvent(t, h, map[string]any{"user_id": "user-123", "type": "suspend"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error == "" {
		t.Error("error message should not be empty")
	}
}
