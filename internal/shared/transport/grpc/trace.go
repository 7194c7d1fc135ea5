package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"Labyrinth/modules/kit/logx"
	"Labyrinth/modules/kit/tracex"
)

// carried 随 metadata 透传的上下文字段。
var carried = []struct {
	header string
	get    func(context.Context) (string, bool)
	set    func(context.Context, string) context.Context
}{
	{"x-trace-id", tracex.TraceIDFrom, tracex.WithTraceID},
	{"x-span-id", tracex.SpanIDFrom, tracex.WithSpanID},
	{"x-room-id", tracex.RoomFrom, tracex.WithRoom},
	{"x-player", tracex.PlayerFrom, tracex.WithPlayer},
}

func injectTraceToOutgoing(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	var kv []string
	for _, c := range carried {
		if v, ok := c.get(ctx); ok {
			kv = append(kv, c.header, v)
		}
	}
	if len(kv) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

func extractTraceFromIncoming(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	for _, c := range carried {
		if vs := md.Get(c.header); len(vs) > 0 && vs[0] != "" {
			ctx = c.set(ctx, vs[0])
		}
	}
	return ctx
}

func UnaryClientTraceInterceptor() gogrpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *gogrpc.ClientConn,
		invoker gogrpc.UnaryInvoker, opts ...gogrpc.CallOption) error {
		return invoker(injectTraceToOutgoing(ctx), method, req, reply, cc, opts...)
	}
}

func StreamClientTraceInterceptor() gogrpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *gogrpc.StreamDesc, cc *gogrpc.ClientConn, method string,
		streamer gogrpc.Streamer, opts ...gogrpc.CallOption) (gogrpc.ClientStream, error) {
		return streamer(injectTraceToOutgoing(ctx), desc, cc, method, opts...)
	}
}

func UnaryServerTraceInterceptor() gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		return handler(extractTraceFromIncoming(ctx), req)
	}
}

// tracedStream 替换 stream 的 Context。
type tracedStream struct {
	gogrpc.ServerStream
	ctx context.Context
}

func (s *tracedStream) Context() context.Context { return s.ctx }

func StreamServerTraceInterceptor() gogrpc.StreamServerInterceptor {
	return func(srv any, ss gogrpc.ServerStream, _ *gogrpc.StreamServerInfo, handler gogrpc.StreamHandler) error {
		return handler(srv, &tracedStream{ServerStream: ss, ctx: extractTraceFromIncoming(ss.Context())})
	}
}

// UnaryServerAccessInterceptor 成功记 DEBUG（健康探针很频繁），失败记 WARN；panic 转成 Internal。
func UnaryServerAccessInterceptor(log logx.Logger) gogrpc.UnaryServerInterceptor {
	log = logx.Or(log)
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (resp any, err error) {
		ctx = tracex.Ensure(ctx)
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				err = status.Errorf(codes.Internal, "panic: %v", r)
			}
			lc := log.WithContext(ctx)
			fs := []zap.Field{
				zap.String("log_type", "access"),
				zap.String("action", info.FullMethod),
				zap.Duration("latency", time.Since(start)),
				zap.Stringer("grpc_code", status.Code(err)),
			}
			if err != nil {
				lc.Warn("grpc access", append(fs, zap.Error(err))...)
				return
			}
			lc.Debug("grpc access", fs...)
		}()
		return handler(ctx, req)
	}
}
