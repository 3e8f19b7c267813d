package response

// Resp 错误响应体；成功响应直接返回资源本身
type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New 保证 data 不为 null
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error customMsg 为空时用默认文案
func Error(code int, customMsg string) Resp {
	return ErrorWith(code, customMsg, nil)
}

// ErrorWith 附带明细（如校验错误列表）
func ErrorWith(code int, customMsg string, details any) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, details)
}
