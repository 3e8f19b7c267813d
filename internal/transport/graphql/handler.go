package graphql

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"go.uber.org/zap"
)

//go:embed schema.graphql
var schemaSDL string

// zapPanicLogger resolver panic 写入 zap
type zapPanicLogger struct{ l *zap.Logger }

func (z zapPanicLogger) LogPanic(_ context.Context, value interface{}) {
	z.l.Error("graphql resolver panic", zap.Any("panic", value), zap.Stack("stack"))
}

// NewSchema 解析 SDL 并绑定解析器；SDL 与解析器不匹配时 panic
func NewSchema(r *Resolver) *gql.Schema {
	return gql.MustParseSchema(schemaSDL, r,
		gql.MaxDepth(8),
		gql.Logger(zapPanicLogger{l: r.log}),
	)
}

// Module 挂到 API 引擎根路径：POST /graphql
type Module struct {
	h http.Handler
}

func NewModule(r *Resolver) *Module {
	return &Module{h: &relay.Handler{Schema: NewSchema(r)}}
}

func (m *Module) MountRoot(r gin.IRoutes) {
	r.POST("/graphql", gin.WrapH(m.h))
}
