package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const (
	maxCauseDepth = 20
	maxStackDepth = 32
)

// ErrorLog 从错误链上提取出的可打印信息。
// 字段通过小接口读取，logx 不依赖 errx。
type ErrorLog struct {
	Error      string
	Code       string
	Msg        string
	Reason     string
	Biz        bool
	Data       map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}
	out := ErrorLog{Error: err.Error()}

	if v, ok := as[interface{ CodeText() string }](err); ok {
		out.Code = v.CodeText()
	}
	if v, ok := as[interface{ Msg() string }](err); ok {
		out.Msg = v.Msg()
	}
	if v, ok := as[interface{ Data() map[string]any }](err); ok {
		out.Data = v.Data()
	}
	if v, ok := as[interface{ Reason() string }](err); ok {
		out.Reason = v.Reason()
	}
	if v, ok := as[interface{ IsBiz() bool }](err); ok {
		out.Biz = v.IsBiz()
	}
	// 业务拒绝不带栈
	if v, ok := as[interface{ Stack() []uintptr }](err); ok && !out.Biz {
		out.Origin, out.Stack = formatStack(v.Stack())
	}
	out.CauseChain = causeChain(err)
	return out
}

func as[T any](err error) (T, bool) {
	var v T
	ok := errors.As(err, &v)
	return v, ok
}

func causeChain(err error) []string {
	var out []string
	cur := errors.Unwrap(err)
	for i := 0; i < maxCauseDepth && cur != nil; i++ {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
		cur = errors.Unwrap(cur)
	}
	return out
}

func formatStack(pcs []uintptr) (origin, stack string) {
	if len(pcs) == 0 {
		return "", ""
	}
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, 8)
	for i := 0; i < maxStackDepth; i++ {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" {
			break
		}
		line := fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line)
		if origin == "" {
			origin = line
		}
		lines = append(lines, line)
		if !more {
			break
		}
	}
	return origin, strings.Join(lines, "\n")
}
