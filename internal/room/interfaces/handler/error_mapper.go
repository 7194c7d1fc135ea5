package handler

import (
	"context"
	"fmt"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/app"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/shared/transport"
	"Labyrinth/modules/kit/errx"
)

const sysBusyMsg = "系统繁忙，请稍后重试"

func mapBizCodeToClientCode(code errx.Code) transport.BizCode {
	switch code {
	case domain.CodeInvalidAction:
		return transport.InvalidAction
	case domain.CodePermissionDenied:
		return transport.PermissionDenied
	case domain.CodeGenerationFailed:
		return transport.GenerationFailed
	case domain.CodeInvalidRules, errx.CodeReqParamError:
		return transport.InvalidParam
	case app.CodeRoomNotFound:
		return transport.RoomNotFound
	case entity.CodeRoomStateConflict:
		return transport.RoomStateConflict
	case app.CodeSessionInvalid:
		return transport.SessionInvalid
	default:
		return transport.SystemError
	}
}

func mapTechErrToClientCode(err error) transport.BizCode {
	switch errx.CodeOf(err) {
	case errx.CodeUnavailable, errx.CodeTimeout, domain.CodeTransport:
		return transport.Unavailable
	default:
		return transport.SystemError
	}
}

// HandleError 把错误换成客户端业务码与提示，并把 reason 记到访问日志。
func HandleError(ctx context.Context, err error) (transport.BizCode, string) {
	reason := app.GetErrorReasonCode(err)
	if reason != "" {
		transport.SetErrorReason(ctx, reason)
	}

	if app.IsBizRejectedError(err) {
		code := mapBizCodeToClientCode(errx.CodeOf(err))
		msg := app.GetErrorMessage(err)
		if reason != "" {
			msg = fmt.Sprintf("%s: %s", msg, reason)
		}
		return code, msg
	}

	return mapTechErrToClientCode(err), sysBusyMsg
}
