package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsTotal.WithLabelValues(OutcomeFallback))
	RecordRecommendation(true)
	assert.Equal(t, before+1, testutil.ToFloat64(RecommendationsTotal.WithLabelValues(OutcomeFallback)))

	before = testutil.ToFloat64(RecommendationsTotal.WithLabelValues(OutcomeAI))
	RecordRecommendation(false)
	assert.Equal(t, before+1, testutil.ToFloat64(RecommendationsTotal.WithLabelValues(OutcomeAI)))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/likes", "GET", "401"))
	RecordHTTPRequest("/api/likes", "GET", 401, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/likes", "GET", "401")))
}

func TestRecordTaskRun(t *testing.T) {
	RecordTaskRun("history_prune", nil)
	RecordTaskRun("history_prune", errors.New("boom"))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ScheduledTaskRuns.WithLabelValues("history_prune", "success")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(ScheduledTaskRuns.WithLabelValues("history_prune", "error")), 1.0)
}
