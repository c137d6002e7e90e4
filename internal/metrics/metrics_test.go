package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/report"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/samples/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/samples/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/samples/{id}", http.MethodGet, "404")))
}

func TestReportCounters(t *testing.T) {
	m := New()
	m.ReportRendered(domain.ReportTypeMeat, report.ActionDownload, 120*time.Millisecond)
	m.ReportRendered(domain.ReportTypeMeat, report.ActionDownload, 80*time.Millisecond)
	m.ReportFailed(domain.ReportTypeWater)
	m.SetOverduePending(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportsRendered.WithLabelValues("meat", "download")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportFailures.WithLabelValues("water")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.pendingSamples))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.SetOverduePending(2)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "overdue_pending_samples 2"))
}
