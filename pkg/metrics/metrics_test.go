package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileharbor/fileharbor/pkg/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_TransferCounters(t *testing.T) {
	t.Parallel()
	m := metrics.New()

	m.BytesUploaded(100)
	m.BytesUploaded(50)
	m.BytesDownloaded(7)

	body := scrape(t, m)
	assert.Contains(t, body, "fileharbor_storage_bytes_uploaded_total 150")
	assert.Contains(t, body, "fileharbor_storage_bytes_downloaded_total 7")
}

func TestMetrics_Middleware(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files/list", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	body := scrape(t, m)
	assert.Contains(t, body, `fileharbor_http_requests_total{method="GET",path="/api/files/list",status="418"} 1`)
	assert.Contains(t, body, "fileharbor_http_request_duration_seconds_count")
}

func TestMetrics_AuthAndSearch(t *testing.T) {
	t.Parallel()
	m := metrics.New()

	m.RecordAuthAttempt(true)
	m.RecordAuthAttempt(false)
	m.RecordAuthAttempt(false)
	m.RecordSearch(25 * time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `fileharbor_auth_attempts_total{result="success"} 1`)
	assert.Contains(t, body, `fileharbor_auth_attempts_total{result="failure"} 2`)
	assert.Contains(t, body, "fileharbor_search_duration_seconds_count 1")
}

func TestMetrics_IndependentInstances(t *testing.T) {
	t.Parallel()

	// Each instance owns its registry, so parallel construction never
	// trips duplicate registration.
	a := metrics.New()
	b := metrics.New()
	a.BytesUploaded(10)

	assert.Contains(t, scrape(t, a), "fileharbor_storage_bytes_uploaded_total 10")
	assert.Contains(t, scrape(t, b), "fileharbor_storage_bytes_uploaded_total 0")
}
