package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 服务内统一的日志接口：结构化字段，WithContext 带上 trace/room/player。
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	WithContext(ctx context.Context) Logger
}

// Or 在 l 为空时返回丢弃一切的 logger，组件构造时用它代替到处判空。
func Or(l Logger) Logger {
	if l == nil {
		return NewZapLogger(nil)
	}
	return l
}
