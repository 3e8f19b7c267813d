package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"physician-service/internal/core/logger"
)

// NewRouter 基础引擎：zap 访问日志 + panic 恢复 + CORS。
// ETag/Location 需要暴露给浏览器端。
func NewRouter(l *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.GinzapWithConfig(l, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health"},
	}))
	r.Use(ginzap.RecoveryWithZap(l, true))

	cc := cors.DefaultConfig()
	cc.AllowAllOrigins = true
	cc.AllowHeaders = append(cc.AllowHeaders, "If-Match", "If-None-Match", "X-Request-ID")
	cc.ExposeHeaders = []string{"ETag", "Location", "X-Request-ID"}
	r.Use(cors.New(cc))
	return r
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration, l *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	if l != nil {
		if el, err := logger.ToStdLogger(l, zapcore.WarnLevel); err == nil {
			srv.ErrorLog = el
		}
	}
	return srv
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// BaseURL 启动日志里打印可点击地址
func BaseURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}
