package transport

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Labyrinth/modules/kit/logx"
	"Labyrinth/modules/kit/tracex"
)

// AccessLog 一次 ws 路由或 http 请求的访问记录，handler 在处理过程中回填结果。
type AccessLog struct {
	BizCode     BizCode
	ErrorReason string

	action string
	start  time.Time
}

type accessLogKey struct{}

func NewContext(action string) context.Context {
	return NewContextWithParent(context.Background(), action)
}

// NewContextWithParent 挂上 AccessLog 并确保有 trace id；业务码初始为 SystemError，handler 漏设时不会记成成功。
func NewContextWithParent(parent context.Context, action string) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	if action == "" {
		action = "unknown"
	}
	al := &AccessLog{BizCode: SystemError, action: action, start: time.Now()}
	return context.WithValue(tracex.Ensure(parent), accessLogKey{}, al)
}

func FromContext(ctx context.Context) *AccessLog {
	if ctx == nil {
		return nil
	}
	al, _ := ctx.Value(accessLogKey{}).(*AccessLog)
	return al
}

func SetBizCode(ctx context.Context, code BizCode) {
	if al := FromContext(ctx); al != nil {
		al.BizCode = code
	}
}

// SetErrorReason 记录拒绝原因（NOT_YOUR_TURN、ROSTER_FULL 等），空串忽略。
func SetErrorReason(ctx context.Context, reason string) {
	if al := FromContext(ctx); al != nil && reason != "" {
		al.ErrorReason = reason
	}
}

func (al *AccessLog) fields() []zap.Field {
	fs := []zap.Field{zap.Duration("latency", time.Since(al.start))}
	if al.BizCode == OK {
		return append(fs, zap.String("result", "success"))
	}
	fs = append(fs, zap.String("result", "failure"), zap.String("biz_text", al.BizCode.String()))
	if al.ErrorReason != "" {
		fs = append(fs, zap.String("error_reason", al.ErrorReason))
	}
	return fs
}

// WriteAccessLog 请求结束时调用一次。
func WriteAccessLog(ctx context.Context, log logx.Logger) {
	al := FromContext(ctx)
	if al == nil || log == nil {
		return
	}
	logx.ReportAccessWithLoggerContext(ctx, log, al.action, int(al.BizCode), al.fields()...)
}
