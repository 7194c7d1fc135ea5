package actors

import (
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/room/app"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/shared/actor/messages"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// 推送给客户端的事件名。
const (
	PushJoin      = "join"
	PushTurnInfo  = "turn_info"
	PushWin       = "win_msg"
	PushAllowed   = "set_allowed_abilities"
	PushGetSpawn  = "get_spawn"
	PushRoomState = "room_info"
)

var (
	errRoomOffline = app.ErrUnavailable.WithMsg("房间未就绪")
	errNilRequest  = app.ErrReqParam.WithMsg("空请求")
	errNoHandler   = app.ErrInternalServer.WithMsg("房间请求没有处理器")
)

type RoomHandler struct{}

var RH = &RoomHandler{}

func reply(ctx actor.Context, data any, err error) {
	if err != nil {
		ctx.Respond(&messages.RHReply{Err: err})
		return
	}
	ctx.Respond(&messages.RHReply{Data: data})
}

func (h *RoomHandler) HandleJoin(ctx actor.Context, p *RoomActor, req *messages.HRJoinRoom) {
	if err := p.room.Join(req.PlayerName(), time.Now()); err != nil {
		reply(ctx, nil, err)
		return
	}
	view := p.room.View()
	p.publish(PushRoomState, view)
	reply(ctx, view, nil)
}

func (h *RoomHandler) HandleLeave(ctx actor.Context, p *RoomActor, req *messages.HRLeaveRoom) {
	empty, err := p.room.Leave(req.PlayerName(), time.Now())
	if err != nil {
		reply(ctx, nil, err)
		return
	}
	reply(ctx, messages.RHLeave{Empty: empty}, nil)
	if empty {
		p.log.Info("room empty, closing")
		p.close(ctx)
		return
	}
	p.publish(PushRoomState, p.room.View())
}

// HandleAttach 玩家连接已绑定：全房间广播 join，再按阶段推送出生点或可用动作。
func (h *RoomHandler) HandleAttach(ctx actor.Context, p *RoomActor, req *messages.HRAttach) {
	player := req.PlayerName()
	if !p.room.IsMember(player) {
		reply(ctx, nil, domain.ErrPermissionDenied.WithReason(domain.ReasonUnknownPlayer).WithData("player", player))
		return
	}
	info := p.room.JoinInfo(player)
	p.publish(PushJoin, info)
	if p.room.Status() == entity.StatusCreated {
		p.sendTo(player, PushGetSpawn, p.room.SpawnInfo(player))
	} else {
		p.pushAllowed(player)
	}
	reply(ctx, info, nil)
}

func (h *RoomHandler) HandleSetSpawn(ctx actor.Context, p *RoomActor, req *messages.HRSetSpawn) {
	player := req.PlayerName()
	records, err := p.room.SetSpawn(player, req.Pos, time.Now())
	if err != nil {
		reply(ctx, nil, err)
		return
	}
	if len(records) == 0 {
		reply(ctx, p.room.SpawnInfo(player), nil)
		return
	}
	p.log.Info("game started", zap.Strings("players", p.room.Members()))
	stat := p.room.PlayersStat()
	for _, rec := range records {
		p.publish(PushTurnInfo, entity.NewTurnInfo(rec, stat))
	}
	p.pushAllowedAll()
	reply(ctx, p.room.SpawnInfo(player), nil)
	p.flush()
}

// HandleAct 被拒绝的动作只回给行动者，不广播。推送先于应答发出。
func (h *RoomHandler) HandleAct(ctx actor.Context, p *RoomActor, req *messages.HRAct) {
	rec, err := p.room.Act(req.PlayerName(), req.Action, req.Direction, time.Now())
	if err != nil {
		reply(ctx, nil, err)
		return
	}
	info := entity.NewTurnInfo(rec, p.room.PlayersStat())
	p.publish(PushTurnInfo, info)

	if p.room.Status() != entity.StatusEnded {
		p.pushAllowedAll()
		reply(ctx, info, nil)
		return
	}
	winner := p.room.Winner()
	p.log.Info("game ended", zap.String("winner", winner), zap.Int("turns", rec.Seq))
	p.publish(PushWin, entity.WinInfo{WinnerName: winner})
	reply(ctx, info, nil)
	p.flush()
	ctx.SetReceiveTimeout(p.endedIdle)
}

func (h *RoomHandler) HandleAllowed(ctx actor.Context, p *RoomActor, req *messages.HRAllowed) {
	v, err := p.room.Allowed(req.PlayerName())
	reply(ctx, v, err)
}

func (h *RoomHandler) HandleGameData(ctx actor.Context, p *RoomActor, req *messages.HRGameData) {
	reply(ctx, p.room.GameData(), nil)
}

func (h *RoomHandler) HandlePlayersStat(ctx actor.Context, p *RoomActor, req *messages.HRPlayersStat) {
	reply(ctx, p.room.PlayersStat(), nil)
}

func (h *RoomHandler) HandleFieldReview(ctx actor.Context, p *RoomActor, req *messages.HRFieldReview) {
	reply(ctx, p.room.Review(), nil)
}

func (h *RoomHandler) HandleRoomInfo(ctx actor.Context, p *RoomActor, req *messages.HRRoomInfo) {
	reply(ctx, p.room.View(), nil)
}

func (p *RoomActor) publish(name string, data any) {
	if p.hub == nil {
		return
	}
	p.hub.Publish(p.room.ID(), name, data)
}

func (p *RoomActor) sendTo(player, name string, data any) {
	if p.hub == nil {
		return
	}
	p.hub.SendTo(p.room.ID(), player, name, data)
}

func (p *RoomActor) pushAllowed(player string) {
	v, err := p.room.Allowed(player)
	if err != nil {
		// 已淘汰的玩家没有可用动作
		return
	}
	p.sendTo(player, PushAllowed, v)
}

// pushAllowedAll 每个玩家收到自己的可用动作，当前行动者 is_active 为 true。
func (p *RoomActor) pushAllowedAll() {
	for _, name := range p.room.Members() {
		p.pushAllowed(name)
	}
}
