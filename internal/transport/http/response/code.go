package response

// 错误码直接沿用 HTTP 语义
const (
	CodeOK                 = 0
	CodeBadRequest         = 400
	CodeNotFound           = 404
	CodePreconditionFailed = 412
	CodeTooLarge           = 413
	CodeTooManyRequests    = 429
	CodeServerError        = 500
	CodeUnavailable        = 503
)

// CodeMsgMap 集中管理 code -> msg
var CodeMsgMap = map[int]string{
	CodeOK:                 "OK",
	CodeBadRequest:         "Bad Request",
	CodeNotFound:           "Not Found",
	CodePreconditionFailed: "Precondition Failed",
	CodeTooLarge:           "Request Entity Too Large",
	CodeTooManyRequests:    "Too Many Requests",
	CodeServerError:        "Internal Server Error",
	CodeUnavailable:        "Service Unavailable",
}
