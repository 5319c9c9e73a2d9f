package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// 取り込みカウンタがラベル付きでインクリメントされることを検証
func TestCollector_RecordIngest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordIngestSuccess("sitting")
	c.RecordIngestSuccess("sitting")
	c.RecordIngestSuccess("standing")
	c.RecordIngestFailure("NO_OPEN_SESSION")

	if got := testutil.ToFloat64(c.ingestSuccess.WithLabelValues("sitting")); got != 2 {
		t.Errorf("ingest_success{posture=sitting} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.ingestSuccess.WithLabelValues("standing")); got != 1 {
		t.Errorf("ingest_success{posture=standing} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ingestFail.WithLabelValues("NO_OPEN_SESSION")); got != 1 {
		t.Errorf("ingest_fail{code=NO_OPEN_SESSION} = %v, want 1", got)
	}
}

// 集計カウンタとスイープカウンタが記録されることを検証
func TestCollector_RecordAggregationAndSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAggregation(150 * time.Millisecond)
	c.RecordAggregation(50 * time.Millisecond)
	c.RecordAggregationFailure()
	c.RecordSessionsSwept(3)

	if got := testutil.ToFloat64(c.aggregationTotal); got != 2 {
		t.Errorf("aggregation_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.aggregationFail); got != 1 {
		t.Errorf("aggregation_fail_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.sessionsSwept); got != 3 {
		t.Errorf("sessions_swept_total = %v, want 3", got)
	}
}

// /metricsエンドポイントが登録済みメトリクスを公開することを検証
func TestSetupMetricsRoute_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPStatus(200)

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "posturelog_http_status_total") {
		t.Errorf("metrics output should contain posturelog_http_status_total:\n%s", body)
	}
}
