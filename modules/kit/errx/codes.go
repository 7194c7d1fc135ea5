package errx

// 跨服务统一的系统类错误码。
//
// 约束：业务域错误码（例如 INVALID_ACTION）由各业务包自行定义，不集中在 kit。

const (
	// CodeInternal 服务内部不可预期错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 依赖不可用（DB/Mongo/actor 运行时等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout 请求/依赖调用超时。
	CodeTimeout Code = "TIMEOUT"
	// CodeTransport 连接层收发失败，不影响业务状态。
	CodeTransport Code = "TRANSPORT_ERROR"
	// CodeReqParamError 请求参数错误。
	CodeReqParamError Code = "CODE_REQ_PARAM_ERROR"
)

// 统一系统类哨兵错误（通过 WithData/WithCause 派生新对象，不要原地修改）。
var (
	ErrInternal    = NewSys(CodeInternal, "服务器内部错误")
	ErrUnavailable = NewSys(CodeUnavailable, "服务不可用")
	ErrTimeout     = NewSys(CodeTimeout, "请求超时")
	ErrTransport   = NewSys(CodeTransport, "连接层故障")
	ErrReqParamERR = NewBiz(CodeReqParamError, "请求参数错误")
)
