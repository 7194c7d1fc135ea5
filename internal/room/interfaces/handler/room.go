package handler

import (
	"context"

	"Labyrinth/internal/room/app"
	"Labyrinth/internal/shared/session"
	"Labyrinth/internal/shared/transport"
	"Labyrinth/modules/kit/logx"
)

// Room 接口层共享的依赖：连接登记表与房间服务。
type Room struct {
	Session     session.Manager
	RoomService *app.RoomService
	log         logx.Logger
}

func NewRoom(s session.Manager, svc *app.RoomService, log logx.Logger) *Room {
	return &Room{
		Session:     s,
		RoomService: svc,
		log:         log,
	}
}

// Report 记录错误并返回客户端业务码；业务拒绝记 INFO，技术错误记 ERROR。
func (r *Room) Report(ctx context.Context, action string, err error) (transport.BizCode, string) {
	logx.ReportErrorWithLoggerContext(ctx, r.log, action, err)
	return HandleError(ctx, err)
}
