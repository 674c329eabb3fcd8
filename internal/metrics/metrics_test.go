package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ammankit/amman-go/internal/metrics"
)

func TestRegistryExposesMetrics(t *testing.T) {
	metrics.EmitBuildInfo()
	metrics.SetValidatorUp(true)
	metrics.IncValidatorStarts()
	metrics.IncValidatorKills("owned")
	metrics.ObserveReadinessWait(250 * time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status code from metrics handler: %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "amman_validator_up 1") {
		t.Fatalf("expected validator up gauge in body:\n%s", body)
	}
	if !strings.Contains(body, "amman_validator_starts_total 1") {
		t.Fatalf("expected starts counter in body:\n%s", body)
	}
	if !strings.Contains(body, `amman_validator_kills_total{path="owned"} 1`) {
		t.Fatalf("expected kills counter in body:\n%s", body)
	}
	if !strings.Contains(body, "amman_readiness_wait_seconds_count 1") {
		t.Fatalf("expected readiness wait histogram in body:\n%s", body)
	}
	if !strings.Contains(body, "amman_build_info{") {
		t.Fatalf("expected build info metric in body:\n%s", body)
	}
}
