package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"physician-service/internal/core/server"
	mdw "physician-service/internal/transport/http/middleware"
)

// Limits 入口保护参数，零值项不启用
type Limits struct {
	RatePerSec     float64
	Burst          int
	MaxConcurrent  int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// NewAPIEngine 业务端：REST 挂在 /api，GraphQL 等根模块挂在引擎根
func NewAPIEngine(l *zap.Logger, lim Limits) *gin.Engine {
	r := server.NewRouter(l)

	r.Use(mdw.RequestID(), mdw.Metrics())
	if lim.RatePerSec > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.RatePerSec), max(1, lim.Burst)))
	}
	if lim.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.RequestTimeout > 0 {
		r.Use(mdw.Timeout(lim.RequestTimeout))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	MountAllAPI(r.Group("/api"))
	MountAllRoot(r)
	return r
}
