package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mohammed-shakir/vakuf-map/internal/core/observability"
)

func assertHasMetricLine(t *testing.T, body, metric string, wantLabels ...string) {
	t.Helper()
	for ln := range strings.SplitSeq(body, "\n") {
		if !strings.HasPrefix(ln, metric+"{") {
			continue
		}
		ok := true
		for _, s := range wantLabels {
			if !strings.Contains(ln, s) {
				ok = false
				break
			}
		}
		if ok && (len(ln) > 0 && ln[len(ln)-1] >= '0' && ln[len(ln)-1] <= '9') {
			return
		}
	}
	t.Fatalf("expected a %s line with labels %v; got:\n%s", metric, wantLabels, body)
}

func Test_CoreMetrics_CustomRegistry_Smoke(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Version: "test"}})
	observability.Init(p.Registerer())

	observability.ObserveFilter("apply", 12)
	observability.IncViewportFit("bounds")
	observability.IncRecordStore("remote", "ok")
	observability.ObserveCacheOp("get", nil, 0.002)
	observability.ObserveInvalidation("update", 3*time.Millisecond, errors.New("x"))
	observability.IncKafkaConsumerError("decode")
	observability.SetActiveSessions(4)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	mustContain := []string{
		`filter_visible_records_bucket`,
		`redis_operation_duration_seconds_count`,
		`search_sessions_active 4`,
		`kafka_consumer_errors_total{kind="decode"} `,
	}
	for _, s := range mustContain {
		if !strings.Contains(body, s) {
			t.Fatalf("expected metrics to contain %q;\n---\n%s", s, body)
		}
	}

	assertHasMetricLine(t, body, "filter_runs_total", `kind="apply"`)
	assertHasMetricLine(t, body, "record_store_results_total", `source="remote"`, `outcome="ok"`)
	assertHasMetricLine(t, body, "invalidations_total", `op="update"`, `result="error"`)
	assertHasMetricLine(t, body, "app_build_info", `version="test"`)
}

func TestProvider_DefaultPath(t *testing.T) {
	if p := Init(Config{}); p.Path() != DefaultPath {
		t.Fatalf("path=%q", p.Path())
	}
	if p := Init(Config{Path: "/m"}); p.Path() != "/m" {
		t.Fatalf("path=%q", p.Path())
	}
}
