package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	rid := w.Header().Get(KeyRequestID)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))
	assert.Equal(t, "abc", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(rate.Every(time.Hour), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "too many requests")
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(rate.Every(time.Hour), 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}
	assert.Equal(t, http.StatusNoContent, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, from("10.0.0.2"))
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"0123456789"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestConcurrencyLimit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	r.GET("/", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusNoContent)
	})

	done := make(chan int)
	go func() { done <- serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	assert.Equal(t, http.StatusNoContent, <-done)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), TimeoutMsg)

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestSimpleRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(SimpleRecovery(zap.New(core)))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}

func TestAccessLogMasksPersonalData(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/api", func(c *gin.Context) { c.String(http.StatusOK, "hello") })

	serve(r, httptest.NewRequest(http.MethodGet, "/api?lastname=Alpha&plz=761", nil))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, int64(5), fields["size"])
	assert.Equal(t, "/api", fields["path"])
	q := fields["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["lastname"])
	assert.Equal(t, []string{"761"}, q["plz"])
	assert.NotEmpty(t, fields["rid"])
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics(), RateLimit(rate.Every(time.Hour), 1))
	r.GET("/api/physicians/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/graphql", func(c *gin.Context) { c.Status(http.StatusOK) })

	ok := httpReqTotal.WithLabelValues("rest", "/api/physicians/:id", http.MethodGet, "204")
	limited := httpReqTotal.WithLabelValues("graphql", "/graphql", http.MethodPost, "429")
	rejected := httpRejected.WithLabelValues("rate_limited")
	unmatched := httpReqTotal.WithLabelValues("other", unmatchedPath, http.MethodGet, "429")
	okBefore, limitedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(limited)
	rejectedBefore, unmatchedBefore := testutil.ToFloat64(rejected), testutil.ToFloat64(unmatched)

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/api/physicians/42", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodPost, "/graphql", nil)).Code)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, limitedBefore+1, testutil.ToFloat64(limited))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(rejected))
	assert.Equal(t, unmatchedBefore, testutil.ToFloat64(unmatched))
	assert.Zero(t, testutil.ToFloat64(httpInFlight))
}

func TestSurfaceOf(t *testing.T) {
	assert.Equal(t, "rest", surfaceOf("/api/physicians"))
	assert.Equal(t, "graphql", surfaceOf("/graphql"))
	assert.Equal(t, "other", surfaceOf("/apix"))
	assert.Equal(t, "other", surfaceOf(unmatchedPath))
}
