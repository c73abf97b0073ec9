package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(checks map[string]Check) (*gin.Engine, *prometheus.Registry) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	r := gin.New()
	NewHandler(checks, reg).RegisterRoutes(r.Group("/api/v1"))
	return r, reg
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReadiness(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	r, _ := setup(map[string]Check{"database": up, "redis": up})
	w := get(r, "/api/v1/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP","checks":{"database":"UP","redis":"UP"}}`, w.Body.String())

	r, _ = setup(map[string]Check{"database": up, "redis": down})
	w = get(r, "/api/v1/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"DOWN","checks":{"database":"UP","redis":"DOWN"}}`, w.Body.String())
}

func TestLiveness(t *testing.T) {
	r, _ := setup(nil)

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/health/live").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/health").Code)
}

func TestMetricsExposesRegistry(t *testing.T) {
	r, reg := setup(nil)
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "dental_appointments_created_total", Help: "test"})
	require.NoError(t, reg.Register(counter))
	counter.Inc()

	w := get(r, "/api/v1/health/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dental_appointments_created_total 1")
}
