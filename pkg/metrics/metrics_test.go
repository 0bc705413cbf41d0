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

func TestObserveComputation(t *testing.T) {
	m := New()

	m.ObserveComputation(50*time.Millisecond, nil)
	m.ObserveComputation(10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.computationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computationErrors))
}

func TestRecordRanking(t *testing.T) {
	m := New()

	m.RecordRanking(120, 3, 2)
	assert.Equal(t, 120.0, testutil.ToFloat64(m.studentsRanked))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rowsSkipped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fallbackLookups))

	// Gauge tracks the latest run, counters accumulate
	m.RecordRanking(80, 1, 0)
	assert.Equal(t, 80.0, testutil.ToFloat64(m.studentsRanked))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.rowsSkipped))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "campus_http_requests_total")
}
