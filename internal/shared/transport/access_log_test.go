package transport

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"Labyrinth/modules/kit/logx"
	"Labyrinth/modules/kit/tracex"
)

func TestAccessLog_默认系统错误(t *testing.T) {
	ctx := NewContext("game.action")
	if al := FromContext(ctx); al == nil || al.BizCode != SystemError {
		t.Fatalf("未设置业务码时应默认 SystemError got=%+v", al)
	}
	if _, ok := tracex.TraceIDFrom(ctx); !ok {
		t.Fatalf("应生成 trace_id")
	}
}

func TestAccessLog_写日志(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logx.NewZapLogger(zap.New(core))

	ctx := NewContextWithParent(context.Background(), "game.action")
	SetBizCode(ctx, InvalidAction)
	SetErrorReason(ctx, "NO_BOMBS")
	WriteAccessLog(ctx, l)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条 access 日志 got=%d", len(entries))
	}
	m := entries[0].ContextMap()
	if m["result"] != "failure" || m["error_reason"] != "NO_BOMBS" || m["biz_code"] != int64(InvalidAction) {
		t.Fatalf("access 日志字段错误 %v", m)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("业务拒绝应为 WARN got=%v", entries[0].Level)
	}
}

func TestBizCode_String(t *testing.T) {
	if OK.String() != "ok" || BizCode(999).String() != "unknown" {
		t.Fatalf("业务码文本错误")
	}
	if !SystemError.IsSystem() || InvalidAction.IsSystem() {
		t.Fatalf("IsSystem 判断错误")
	}
}
