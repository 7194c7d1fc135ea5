package logx

import (
	"context"

	"Labyrinth/modules/kit/tracex"

	"go.uber.org/zap"
)

// ZapLogger 直接借用 zap 的 Info/Warn/Error/Debug。
type ZapLogger struct {
	*zap.Logger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{Logger: l}
}

// ctxFields 上下文里能带进日志的字段。
var ctxFields = []struct {
	key string
	get func(context.Context) (string, bool)
}{
	{"trace_id", tracex.TraceIDFrom},
	{"span_id", tracex.SpanIDFrom},
	{"room_id", tracex.RoomFrom},
	{"player", tracex.PlayerFrom},
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if z == nil {
		return NewZapLogger(nil)
	}
	var fs []zap.Field
	for _, f := range ctxFields {
		if v, ok := f.get(ctx); ok {
			fs = append(fs, zap.String(f.key, v))
		}
	}
	if len(fs) == 0 {
		return z
	}
	return z.With(fs...)
}

func (z *ZapLogger) With(fields ...zap.Field) *ZapLogger {
	if z == nil {
		return NewZapLogger(nil)
	}
	return &ZapLogger{Logger: z.Logger.With(fields...)}
}

// With 给任意 Logger 挂固定字段；不是 zap 实现时原样返回。
func With(l Logger, fields ...zap.Field) Logger {
	if zl, ok := l.(*ZapLogger); ok {
		return zl.With(fields...)
	}
	return l
}
