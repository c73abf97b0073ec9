package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-api/pkg/logger"
)

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterIsPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := gin.New()
	r.POST("/requests", rl.RateLimit(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	from := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/requests", nil)
		req.RemoteAddr = addr
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusCreated, from("203.0.113.7:4000"))
	assert.Equal(t, http.StatusCreated, from("203.0.113.7:4001"))
	assert.Equal(t, http.StatusTooManyRequests, from("203.0.113.7:4002"))
	assert.Equal(t, http.StatusCreated, from("198.51.100.20:4000"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, strings.Repeat("x", 100))
	w = serve(r, req)
	assert.Len(t, w.Body.String(), 36)
}

func TestRecoveryReturnsJSON500(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: &buf, JSON: true})

	r := gin.New()
	r.Use(Recovery(log))
	r.GET("/boom", func(c *gin.Context) {
		panic("nil map")
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Internal server error"}`, w.Body.String())
	assert.Contains(t, buf.String(), "panic: nil map")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig("https://clinic.test")))
	r.GET("/appointments", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/appointments", nil)
	req.Header.Set("Origin", "https://clinic.test")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://clinic.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPMetricsUseRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics("dental", reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/appointments/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/appointments/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/appointments/2", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/appointments/:id", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.errorTotal.WithLabelValues(http.MethodGet, "/appointments/:id", "client")))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/requests", BodyLimit(16), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(strings.Repeat("a", 32))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader("{}")))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRegisterValidatorsEnablesHHMM(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type body struct {
		Time string `json:"time" binding:"required,hhmm"`
	}
	r := gin.New()
	r.POST("/t", func(c *gin.Context) {
		var b body
		if err := c.ShouldBindJSON(&b); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/t", strings.NewReader(`{"time":"09:30"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	w = serve(r, httptest.NewRequest(http.MethodPost, "/t", strings.NewReader(`{"time":"25:00"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
