package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1bu/FORBETRA-sub000/internal/app"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/alert"
)

func TestCollectors_Record(t *testing.T) {
	c := New()

	c.AlertRaised(alert.KindOverdue, alert.SeverityHigh)
	c.AlertRaised(alert.KindOverdue, alert.SeverityHigh)
	c.AlertRaised(alert.KindLowEngagement, alert.SeverityMedium)
	c.DigestDelivered(true)
	c.DigestDelivered(false)
	c.DigestDelivered(true)
	c.DigestRunFinished(app.DigestStats{Clients: 5, Failures: 1}, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.alertsRaised.WithLabelValues("overdue", "high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.alertsRaised.WithLabelValues("low_engagement", "medium")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.digestsDelivered.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.digestsDelivered.WithLabelValues("failed")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.lastRunClients))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.lastRunFailures))
}

func TestCollectors_Handler(t *testing.T) {
	c := New()
	c.DigestDelivered(true)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `coaching_digests_delivered_total{result="sent"} 1`)
}
