package tracex

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type traceIDKey struct{}
type spanIDKey struct{}
type roomKey struct{}
type playerKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, traceIDKey{})
}

func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey{}, spanID)
}

func SpanIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, spanIDKey{})
}

// WithRoom 在 ctx 上挂房间 id，日志会自动带上 room_id 字段。
func WithRoom(ctx context.Context, roomID string) context.Context {
	return context.WithValue(ctx, roomKey{}, roomID)
}

func RoomFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, roomKey{})
}

// WithPlayer 在 ctx 上挂玩家名。
func WithPlayer(ctx context.Context, player string) context.Context {
	return context.WithValue(ctx, playerKey{}, player)
}

func PlayerFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, playerKey{})
}

// Ensure 没有 trace_id 时补一个新的，并始终生成新的 span_id。
func Ensure(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := TraceIDFrom(ctx); !ok {
		ctx = WithTraceID(ctx, NewTraceID())
	}
	return WithSpanID(ctx, NewSpanID())
}

// NewTraceID 生成 16 字节随机 trace_id（hex）。
func NewTraceID() string {
	return randomHex(16)
}

// NewSpanID 生成 8 字节随机 span_id（hex）。
func NewSpanID() string {
	return randomHex(8)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

func stringFrom(ctx context.Context, key any) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(key).(string)
	return s, ok && s != ""
}
