package logx

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// BizLog 业务拒绝（非本回合、没有箭、房间已满……）。
type BizLog struct {
	Action  string
	Reason  string
	Message string
	Data    map[string]any
}

// SysLog 技术错误（仓储、actor 超时、连接故障）。
type SysLog struct {
	Action string
	Err    error
}

func NewBizLog(action, reason, message string) BizLog {
	return BizLog{Action: action, Reason: reason, Message: message}
}

func NewSysLog(action string, err error) SysLog {
	return SysLog{Action: action, Err: err}
}

// ReportAccessWithLoggerContext 每个 ws 路由 / http 请求一条：
// biz_code 0 记 INFO，1~499 记 WARN，>=500 记 ERROR。
func ReportAccessWithLoggerContext(ctx context.Context, l Logger, action string, bizCode int, fields ...zap.Field) {
	if l == nil {
		return
	}
	fs := append([]zap.Field{
		zap.String("log_type", "access"),
		zap.String("action", action),
		zap.Int("biz_code", bizCode),
	}, fields...)
	lc := l.WithContext(ctx)
	switch {
	case bizCode == 0:
		lc.Info("access", fs...)
	case bizCode >= 500:
		lc.Error("access", fs...)
	default:
		lc.Warn("access", fs...)
	}
}

// ReportBizWithLoggerContext 业务拒绝记 INFO，不带栈。
func ReportBizWithLoggerContext(ctx context.Context, l Logger, biz BizLog, fields ...zap.Field) {
	if l == nil {
		return
	}
	action := biz.Action
	if action == "" {
		action = "biz_reject"
	}
	fs := []zap.Field{
		zap.String("err_type", "biz"),
		zap.String("action", action),
	}
	if biz.Reason != "" {
		fs = append(fs, zap.String("reason", biz.Reason))
	}
	if biz.Message != "" {
		fs = append(fs, zap.String("biz_message", biz.Message))
	}
	if len(biz.Data) != 0 {
		fs = append(fs, zap.Any("error_data", biz.Data))
	}
	fs = append(fs, fields...)
	l.WithContext(ctx).Info(summary(action, "reason", biz.Reason, "msg", biz.Message), fs...)
}

// ReportSysErrorWithLoggerContext 技术错误记 ERROR，带 cause 链与发生处的栈。
func ReportSysErrorWithLoggerContext(ctx context.Context, l Logger, sys SysLog, fields ...zap.Field) {
	if sys.Err == nil || l == nil {
		return
	}
	action := sys.Action
	if action == "" {
		action = "sys_error"
	}
	meta := BuildErrorLog(sys.Err)
	fs := []zap.Field{
		zap.String("err_type", "sys"),
		zap.String("action", action),
	}
	if meta.Code != "" {
		fs = append(fs, zap.String("error_code", meta.Code))
	}
	if meta.Reason != "" {
		fs = append(fs, zap.String("reason", meta.Reason))
	}
	if len(meta.CauseChain) != 0 {
		fs = append(fs, zap.Strings("cause_chain", meta.CauseChain))
	}
	if len(meta.Data) != 0 {
		fs = append(fs, zap.Any("error_data", meta.Data))
	}
	if meta.Origin != "" {
		fs = append(fs, zap.String("origin_caller", meta.Origin), zap.String("stack_origin", meta.Stack))
	}
	fs = append(fs, fields...)
	l.WithContext(ctx).Error(summary(action, "reason", meta.Reason, "error", meta.Error), fs...)
}

// ReportErrorWithLoggerContext 按错误类型分流到 biz / sys。
func ReportErrorWithLoggerContext(ctx context.Context, l Logger, action string, err error, fields ...zap.Field) {
	if err == nil || l == nil {
		return
	}
	meta := BuildErrorLog(err)
	if !meta.Biz {
		ReportSysErrorWithLoggerContext(ctx, l, NewSysLog(action, err), fields...)
		return
	}
	if meta.Code != "" {
		fields = append(fields, zap.String("error_code", meta.Code))
	}
	biz := NewBizLog(action, meta.Reason, meta.Msg)
	biz.Data = meta.Data
	ReportBizWithLoggerContext(ctx, l, biz, fields...)
}

// summary 拼出 "action, k1:v1, k2:v2"，空值跳过。
func summary(action string, kv ...string) string {
	var b strings.Builder
	b.WriteString(action)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		b.WriteString(", ")
		b.WriteString(kv[i])
		b.WriteString(":")
		b.WriteString(kv[i+1])
	}
	return b.String()
}
