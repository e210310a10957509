package metricsvc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.ApplicationSubmitted("coding")
	c.ApplicationSubmitted("coding")
	c.ApplicationSubmitted("language")
	c.ApplicationStatusChanged("approved")
	c.ApplicationsDeleted(2)
	c.ApplicationsDeleted(0)
	c.SettingsFallback()
	c.SignIn("bootstrap")
	c.ObserveRequest(http.MethodPost, "201")
	c.ObserveDBPing(3 * time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.submitted.WithLabelValues("coding")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.submitted.WithLabelValues("language")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.statusChanged.WithLabelValues("approved")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.deleted))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.settingsFallback))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.signIns.WithLabelValues("bootstrap")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.requests.WithLabelValues(http.MethodPost, "201")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.dbPing))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `risingacademy_applications_submitted_total{type="coding"} 2`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCollector_isolated(t *testing.T) {
	// each collector owns its registry
	c1, c2 := NewCollector(), NewCollector()
	c1.ApplicationsDeleted(1)
	assert.Equal(t, float64(0), testutil.ToFloat64(c2.deleted))
}
