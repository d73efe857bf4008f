package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSamplesRecordedCounter(t *testing.T) {
	before := testutil.ToFloat64(SamplesRecorded.WithLabelValues("Position"))
	SamplesRecorded.WithLabelValues("Position").Add(3)

	assert.Equal(t, before+3, testutil.ToFloat64(SamplesRecorded.WithLabelValues("Position")))
}

func TestHandlerExposesReplayMetrics(t *testing.T) {
	SearchMisses.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "replay_search_misses_total")
}
