package errs

import "fmt"

type Kind string

const (
	KindUnknown Kind = "unknown"
	KindInfra   Kind = "infra"
	// KindCodec 落库前后的编解码失败，重试无意义。
	KindCodec Kind = "codec"
)

// Error 仓储层错误：记录发生位置与关键参数，保留根因。
type Error struct {
	Op    string
	Kind  Kind
	Meta  map[string]any
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func Wrap(op string, kind Kind, cause error, meta map[string]any) error {
	if cause == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Cause: cause, Meta: meta}
}
