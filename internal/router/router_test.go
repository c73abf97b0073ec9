package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/handler/health"
	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

type panicking struct{}

func (panicking) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()

	checks := map[string]health.Check{
		"database": func(context.Context) error { return nil },
	}
	r, err := NewRouter(logger.Nop(), middleware.NewHTTPMetrics("dental", reg), RouterConfig{
		AllowedOrigins: []string{"https://sonrisa.test"},
	}, health.NewHandler(checks, reg), panicking{})
	require.NoError(t, err)
	r.Setup()
	return r.Engine()
}

func TestSetupMountsHandlersUnderAPIPrefix(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	req.Header.Set("Origin", "https://sonrisa.test")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, APIVersion, w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "https://sonrisa.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestUnknownRouteIs404(t *testing.T) {
	engine := newTestRouter(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPanicsAreRecovered(t *testing.T) {
	engine := newTestRouter(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}
