package transport

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 业务码：0 成功，1~499 业务拒绝，>=500 系统错误。
const (
	OK                BizCode = 0
	InvalidParam      BizCode = 1
	SessionInvalid    BizCode = 2
	PermissionDenied  BizCode = 3
	InvalidAction     BizCode = 4
	RoomNotFound      BizCode = 5
	RoomStateConflict BizCode = 6
	GenerationFailed  BizCode = 7
	RouteNotFound     BizCode = 8
	SystemError       BizCode = 500
	Unavailable       BizCode = 503
)

var bizCodeText = map[BizCode]string{
	OK:                "ok",
	InvalidParam:      "invalid param",
	SessionInvalid:    "session invalid",
	PermissionDenied:  "permission denied",
	InvalidAction:     "invalid action",
	RoomNotFound:      "room not found",
	RoomStateConflict: "room state conflict",
	GenerationFailed:  "maze generation failed",
	RouteNotFound:     "route not found",
	SystemError:       "system error",
	Unavailable:       "service unavailable",
}

func (c BizCode) String() string {
	if s, ok := bizCodeText[c]; ok {
		return s
	}
	return "unknown"
}

func (c BizCode) IsSystem() bool {
	return c >= SystemError
}
