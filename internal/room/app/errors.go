package app

import (
	"errors"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/entity"
	"Labyrinth/modules/kit/errx"
)

const (
	CodeRoomNotFound   errx.Code = "ROOM_NOT_FOUND"
	CodeSessionInvalid errx.Code = "SESSION_INVALID"
)

var (
	// ErrUnavailable 房间运行时或仓储不可用。
	ErrUnavailable = errx.ErrUnavailable
	// ErrInternalServer 房间服务内部技术错误。
	ErrInternalServer = errx.ErrInternal
	ErrReqParam       = errx.ErrReqParamERR

	ErrRoomNotFound      = errx.NewBiz(CodeRoomNotFound, "房间不存在")
	ErrSessionInvalid    = errx.NewBiz(CodeSessionInvalid, "房间凭证无效")
	ErrRoomStateConflict = entity.ErrRoomStateConflict

	ErrInvalidAction    = domain.ErrInvalidAction
	ErrPermissionDenied = domain.ErrPermissionDenied
	ErrGeneration       = domain.ErrGeneration
	ErrInvalidRules     = domain.ErrInvalidRules
)

// IsBizRejectedError 规则层面的拒绝，客户端可以看到具体提示。
func IsBizRejectedError(err error) bool {
	return errx.IsBiz(err)
}

func GetErrorReasonCode(err error) string {
	var rp interface{ Reason() string }
	if !errors.As(err, &rp) {
		return ""
	}
	return rp.Reason()
}

func GetErrorMessage(err error) string {
	var mp interface{ Msg() string }
	if !errors.As(err, &mp) {
		return ""
	}
	return mp.Msg()
}
