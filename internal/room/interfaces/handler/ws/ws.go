package ws

import (
	"context"

	"Labyrinth/internal/room/app"
	"Labyrinth/internal/room/app/model"
	"Labyrinth/internal/room/interfaces/handler"
	"Labyrinth/internal/shared/transport"
	"Labyrinth/internal/shared/transport/ws"
)

const badParamMsg = "参数有误"

type WsHandler struct {
	room *handler.Room
}

func NewWsHandler(r *handler.Room) *WsHandler {
	return &WsHandler{room: r}
}

func (h *WsHandler) RegisterRoutes(r *ws.Router) {
	gameGroup := r.Group("game")
	gameGroup.Handle("join", h.join)
	gameGroup.Handle("action", h.action)
	gameGroup.Handle("get_allowed_abilities", h.allowed)

	roomGroup := r.Group("room")
	roomGroup.Handle("join", h.join)
	roomGroup.Handle("set_spawn", h.setSpawn)
	roomGroup.Handle("leave", h.leave)
}

// join 校验房间凭证，把连接登记到房间，再让房间补发 join 与出生点/行动权推送。
func (h *WsHandler) join(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if !valid(wsReq, wsResp) {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	var req model.EnterReq
	if err := ws.BindJSON(wsReq, &req); err != nil || req.Token == "" {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	id, err := h.room.RoomService.Authenticate(req)
	if err != nil {
		h.error(ctx, wsResp, "ws.join", err)
		return
	}

	h.room.Session.Bind(id.RoomID, id.Player, wsReq.Conn)
	info, err := h.room.RoomService.Attach(ctx, *id)
	if err != nil {
		h.room.Session.UnbindConn(wsReq.Conn)
		h.error(ctx, wsResp, "ws.join", err)
		return
	}
	h.ok(wsResp, info)
}

func (h *WsHandler) action(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if !valid(wsReq, wsResp) {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	var req model.ActionReq
	if err := ws.BindJSON(wsReq, &req); err != nil || req.Action == "" {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	id, ok := h.identity(ctx, wsReq, wsResp, req.RoomID)
	if !ok {
		return
	}

	info, err := h.room.RoomService.Act(ctx, id, req.Action, req.Direction)
	if err != nil {
		h.error(ctx, wsResp, "ws.action", err)
		return
	}
	h.ok(wsResp, info)
}

func (h *WsHandler) allowed(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if !valid(wsReq, wsResp) {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	var req model.RoomReq
	if err := ws.BindJSON(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	id, ok := h.identity(ctx, wsReq, wsResp, req.RoomID)
	if !ok {
		return
	}

	view, err := h.room.RoomService.Allowed(ctx, id)
	if err != nil {
		h.error(ctx, wsResp, "ws.allowed", err)
		return
	}
	h.ok(wsResp, view)
}

func (h *WsHandler) setSpawn(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if !valid(wsReq, wsResp) {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	var req model.SpawnReq
	if err := ws.BindJSON(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	id, ok := h.identity(ctx, wsReq, wsResp, req.Room)
	if !ok {
		return
	}

	info, err := h.room.RoomService.SetSpawn(ctx, id, req.Spawn)
	if err != nil {
		h.error(ctx, wsResp, "ws.set_spawn", err)
		return
	}
	h.ok(wsResp, info)
}

func (h *WsHandler) leave(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if !valid(wsReq, wsResp) {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	var req model.RoomReq
	if err := ws.BindJSON(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, badParamMsg)
		return
	}

	id, ok := h.identity(ctx, wsReq, wsResp, req.RoomID)
	if !ok {
		return
	}

	res, err := h.room.RoomService.Leave(ctx, id)
	if err != nil {
		h.error(ctx, wsResp, "ws.leave", err)
		return
	}
	h.room.Session.UnbindConn(wsReq.Conn)
	h.ok(wsResp, res)
}

// identity 连接必须先 join；请求里带了房间号时要和连接身份一致。
func (h *WsHandler) identity(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp, roomID string) (model.Identity, bool) {
	room, player, ok := h.room.Session.Identity(wsReq.Conn)
	if !ok {
		h.error(ctx, wsResp, "ws.identity", app.ErrSessionInvalid.WithReason(app.ReasonNotAttached))
		return model.Identity{}, false
	}
	if roomID != "" && roomID != room {
		h.error(ctx, wsResp, "ws.identity", app.ErrSessionInvalid.WithReason(app.ReasonTokenMismatch))
		return model.Identity{}, false
	}
	return model.Identity{RoomID: room, Player: player}, true
}

func valid(wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) bool {
	return wsReq != nil && wsReq.Body != nil && wsReq.Conn != nil && wsResp != nil && wsResp.Body != nil
}

func (h *WsHandler) ok(resp *ws.WsMsgResp, data any) {
	ws.SetOK(resp, data)
}

func (h *WsHandler) fail(resp *ws.WsMsgResp, code transport.BizCode, msg string) {
	ws.SetError(resp, code, msg)
}

func (h *WsHandler) error(ctx context.Context, resp *ws.WsMsgResp, action string, err error) {
	code, msg := h.room.Report(ctx, action, err)
	h.fail(resp, code, msg)
}
