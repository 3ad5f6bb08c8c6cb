package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Counts(t *testing.T) {
	p := NewPrometheusRecorder(nil)

	p.IncLookup("google", LookupMiss)
	p.IncLookup("maven_central", LookupHit)
	p.IncLookup("maven_central", LookupHit)
	p.IncPlanOutcome(Outcome(nil))
	p.IncCleanOutcome(Outcome(errors.New("denied")))
	p.ObservePlanDuration(120 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.lookups.WithLabelValues("google", LookupMiss)))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.lookups.WithLabelValues("maven_central", LookupHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.planOutcome.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.cleanOutcome.WithLabelValues("failed")))
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	p := NewPrometheusRecorder(nil)
	p.IncLookup("flutter", LookupHit)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `buildplan_repository_lookups_total{outcome="hit",repository="flutter"} 1`)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var p *PrometheusRecorder
	assert.NotPanics(t, func() {
		p.IncLookup("google", LookupHit)
		p.IncPlanOutcome("success")
		p.IncCleanOutcome("success")
		p.ObservePlanDuration(time.Second)
	})
}
