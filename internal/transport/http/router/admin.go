package router

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	mdw "physician-service/internal/transport/http/middleware"
)

// Check 就绪探针的一项依赖检查（DB ping、redis ping）
type Check func(ctx context.Context) error

// NewAdminEngine 管理端：健康/就绪/指标 + /admin/v1 下的管理模块
func NewAdminEngine(l *zap.Logger, checks map[string]Check) *gin.Engine {
	r := gin.New()
	r.Use(
		mdw.RequestID(),
		mdw.SimpleRecovery(l),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/ready", readiness(checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	MountAllAdmin(r.Group("/admin/v1"))
	return r
}

func readiness(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for n := range checks {
		names = append(names, n)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := gin.H{}
		for _, n := range names {
			if err := checks[n](ctx); err != nil {
				status = http.StatusServiceUnavailable
				out[n] = err.Error()
				continue
			}
			out[n] = "ok"
		}
		c.JSON(status, out)
	}
}
