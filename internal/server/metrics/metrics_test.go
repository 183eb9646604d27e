package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/timelines", "200"))
	RecordAPIRequest("GET", "/api/timelines", 200, 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/timelines", "200"))
	assert.Equal(t, before+1, after)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordImportSkip(t *testing.T) {
	before := testutil.ToFloat64(ImportSkippedTotal.WithLabelValues("event"))
	RecordImportSkip("event")
	RecordImportSkip("event")
	assert.Equal(t, before+2, testutil.ToFloat64(ImportSkippedTotal.WithLabelValues("event")))
}
