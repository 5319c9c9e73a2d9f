package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// mockSessionCloser はSessionCloserのモック実装。
type mockSessionCloser struct {
	closeStaleFn func(ctx context.Context, olderThan, endTS time.Time) (int64, error)
}

func (m *mockSessionCloser) CloseStale(ctx context.Context, olderThan, endTS time.Time) (int64, error) {
	if m.closeStaleFn != nil {
		return m.closeStaleFn(ctx, olderThan, endTS)
	}
	return 0, nil
}

// recordingMetrics はスイープ件数の記録を検証するためのコレクター。
type recordingMetrics struct {
	swept []int64
}

func (r *recordingMetrics) RecordIngestSuccess(posture string)       {}
func (r *recordingMetrics) RecordIngestFailure(code string)          {}
func (r *recordingMetrics) RecordAggregation(duration time.Duration) {}
func (r *recordingMetrics) RecordAggregationFailure()                {}
func (r *recordingMetrics) RecordHTTPStatus(statusCode int)          {}

func (r *recordingMetrics) RecordSessionsSwept(count int64) {
	r.swept = append(r.swept, count)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// MaxAgeを超えたセッションだけが対象になる境界時刻を渡すことを検証
func TestSweepJob_Run_PassesCutoffAndNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	var gotOlderThan, gotEndTS time.Time
	sessions := &mockSessionCloser{
		closeStaleFn: func(ctx context.Context, olderThan, endTS time.Time) (int64, error) {
			gotOlderThan = olderThan
			gotEndTS = endTS
			return 3, nil
		},
	}

	m := &recordingMetrics{}
	job := NewSweepJob(sessions, clock, testLogger(), m)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantCutoff := now.Add(-24 * time.Hour)
	if !gotOlderThan.Equal(wantCutoff) {
		t.Errorf("olderThan = %v, want %v", gotOlderThan, wantCutoff)
	}
	if !gotEndTS.Equal(now) {
		t.Errorf("endTS = %v, want %v", gotEndTS, now)
	}
	if len(m.swept) != 1 || m.swept[0] != 3 {
		t.Errorf("swept = %v, want [3]", m.swept)
	}
}

func TestSweepJob_Run_CustomMaxAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	var gotOlderThan time.Time
	sessions := &mockSessionCloser{
		closeStaleFn: func(ctx context.Context, olderThan, endTS time.Time) (int64, error) {
			gotOlderThan = olderThan
			return 0, nil
		},
	}

	job := NewSweepJob(sessions, clock, testLogger(), nil)
	job.MaxAge = 2 * time.Hour

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantCutoff := now.Add(-2 * time.Hour)
	if !gotOlderThan.Equal(wantCutoff) {
		t.Errorf("olderThan = %v, want %v", gotOlderThan, wantCutoff)
	}
}

func TestSweepJob_Run_StorageError(t *testing.T) {
	sessions := &mockSessionCloser{
		closeStaleFn: func(ctx context.Context, olderThan, endTS time.Time) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}

	job := NewSweepJob(sessions, clockwork.NewFakeClock(), testLogger(), nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("Run() should return error on storage failure")
	}
}

// Startがtickごとに実行し、ctxキャンセルで停止することを検証
func TestSweepJob_Start_TicksAndStops(t *testing.T) {
	clock := clockwork.NewFakeClock()

	runs := make(chan struct{}, 10)
	sessions := &mockSessionCloser{
		closeStaleFn: func(ctx context.Context, olderThan, endTS time.Time) (int64, error) {
			runs <- struct{}{}
			return 0, nil
		},
	}

	job := NewSweepJob(sessions, clock, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, 10*time.Minute)
		close(done)
	}()

	// 起動直後の1回
	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("initial run did not happen")
	}

	// tickで1回
	clock.BlockUntil(1)
	clock.Advance(10 * time.Minute)
	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("tick run did not happen")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not stop after cancel")
	}
}
