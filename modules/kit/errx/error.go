package errx

import (
	"errors"
	"maps"
	"runtime"
	"slices"
	"strings"
)

// Code 对外语义的稳定标识，例如 INVALID_ACTION。
type Code string

// Reason 细分原因，例如 NOT_YOUR_TURN、NO_ARROWS。
type Reason interface {
	ReasonCode() string
}

// Error 不可变：With* 总是派生新对象，包级哨兵可以放心共享。
// biz 是规则拒绝，sys 是技术故障；只有 sys 在挂 cause 时捕获栈。
type Error struct {
	code   Code
	msg    string
	reason string
	data   map[string]any
	cause  error
	stack  []uintptr
	biz    bool
}

func NewBiz(code Code, msg string) *Error {
	return &Error{code: code, msg: msg, biz: true}
}

func NewSys(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Error 形如 CODE(REASON): msg: cause，缺的部分省略。
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(string(e.code))
	if e.reason != "" {
		b.WriteString("(" + e.reason + ")")
	}
	if e.msg != "" {
		b.WriteString(": " + e.msg)
	}
	if e.cause != nil {
		b.WriteString(": " + e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is 同 code 即视为同一种错误。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && e.code == t.code
}

func (e *Error) CodeText() string {
	if e == nil {
		return ""
	}
	return string(e.code)
}

func (e *Error) Msg() string {
	if e == nil {
		return ""
	}
	return e.msg
}

func (e *Error) Reason() string {
	if e == nil {
		return ""
	}
	return e.reason
}

func (e *Error) IsBiz() bool {
	return e != nil && e.biz
}

// Data 返回拷贝。
func (e *Error) Data() map[string]any {
	if e == nil {
		return nil
	}
	return maps.Clone(e.data)
}

func (e *Error) Stack() []uintptr {
	if e == nil {
		return nil
	}
	return slices.Clone(e.stack)
}

func (e *Error) derive() *Error {
	next := *e
	next.data = maps.Clone(e.data)
	return &next
}

func (e *Error) WithData(key string, value any) *Error {
	next := e.derive()
	if next.data == nil {
		next.data = make(map[string]any, 1)
	}
	next.data[key] = value
	return next
}

func (e *Error) WithReason(r Reason) *Error {
	next := e.derive()
	next.reason = ""
	if r != nil {
		next.reason = r.ReasonCode()
	}
	return next
}

// WithMsg 替换给客户端看的提示。
func (e *Error) WithMsg(msg string) *Error {
	next := e.derive()
	next.msg = msg
	return next
}

// WithCause 下层已带栈时不再重复捕获。
func (e *Error) WithCause(cause error) *Error {
	next := e.derive()
	next.cause = cause
	if !next.biz && cause != nil && next.stack == nil && !hasStackInChain(cause) {
		next.stack = captureStack(3)
	}
	return next
}

// CodeOf 错误链上第一个 *Error 的 code。
func CodeOf(err error) Code {
	if e, ok := first(err); ok {
		return e.code
	}
	return ""
}

func IsBiz(err error) bool {
	e, ok := first(err)
	return ok && e.biz
}

func first(err error) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return nil, false
	}
	return e, true
}

func captureStack(skip int) []uintptr {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}
	return pcs[:n]
}

func hasStackInChain(err error) bool {
	for depth := 0; depth < 32 && err != nil; depth++ {
		if s, ok := err.(interface{ Stack() []uintptr }); ok && len(s.Stack()) > 0 {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
