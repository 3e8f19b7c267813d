package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resp "physician-service/internal/transport/http/response"
)

// TimeoutMsg 超时统一文案
const TimeoutMsg = "a timeout occurred"

// Timeout 整个请求的截止时间；处理器未写响应时补 500
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, TimeoutMsg))
		}
	}
}
