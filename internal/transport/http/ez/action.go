package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "physician-service/internal/transport/http/response"
)

// EZ 对 RouterGroup 的轻封装：一个 Action 一行注册
type EZ struct{ g gin.IRoutes }

func New(g gin.IRoutes) EZ { return EZ{g: g} }

// Binder 入参绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindURI   Binder = "uri"   // 从路径参数绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.Query 取
)

// AErr 统一错误对象；Code 即 HTTP 状态码
type AErr struct {
	Code    int
	Msg     string
	Details any // 随响应体返回，如校验错误列表
	Err     error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string, details any) error {
	return &AErr{Code: http.StatusBadRequest, Msg: msg, Details: details}
}

// NotFound 404 不带响应体
func NotFound() error { return &AErr{Code: http.StatusNotFound} }

// NotModified 304，配合 If-None-Match
func NotModified() error { return &AErr{Code: http.StatusNotModified} }

func PreconditionFailed(msg string) error {
	return &AErr{Code: http.StatusPreconditionFailed, Msg: msg}
}

func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// StatusOnly 作为 O 时只写状态码不写响应体；Code 为 0 时是 204
type StatusOnly struct{ Code int }

// Action I 入参，O 出参（成功时原样序列化为 JSON）
type Action[I any, O any] struct {
	Method  string // GET / POST / PUT / DELETE
	Path    string // 例："/:id"
	Binder  Binder
	Status  int // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		default:
		}
		if bindErr != nil {
			var mbe *http.MaxBytesError
			if errors.As(bindErr, &mbe) {
				c.JSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeTooLarge, "request body too large"))
				return
			}
			c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			WriteError(c, err)
			return
		}
		if so, ok := any(out).(StatusOnly); ok {
			if so.Code == 0 {
				so.Code = http.StatusNoContent
			}
			c.Status(so.Code)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// WriteError 错误映射：*AErr 按 Code 输出，304/404 不带响应体，其余一律 500
func WriteError(c *gin.Context, err error) {
	var ae *AErr
	if !errors.As(err, &ae) {
		ae = &AErr{Code: http.StatusInternalServerError, Err: err}
	}
	if ae.Err != nil {
		_ = c.Error(ae.Err)
	}
	if ae.Code == http.StatusNotFound || ae.Code == http.StatusNotModified {
		c.Status(ae.Code)
		return
	}
	msg := ae.Msg
	if ae.Code >= http.StatusInternalServerError && msg == "" {
		msg = resp.CodeMsgMap[resp.CodeServerError]
	}
	c.JSON(ae.Code, resp.ErrorWith(ae.Code, msg, ae.Details))
}
