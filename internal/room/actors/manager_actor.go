package actors

import (
	"time"

	"Labyrinth/internal/room/app"
	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/shared/actor/messages"
	"Labyrinth/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type RoomID = entity.RoomID

// roomClosed 房间 actor 请求管理 actor 把自己移除（空房或结束后闲置）。
type roomClosed struct {
	RoomID RoomID
}

// Options 房间 actor 的运行参数。
type Options struct {
	FlushEvery time.Duration
	// EndedIdle 对局结束后无请求多久释放房间，之后只能从归档查询。
	EndedIdle time.Duration
}

// ManagerActor 只做路由：按房间号转发请求，按需创建房间 actor。
type ManagerActor struct {
	repo  port.RoomRepository
	hub   port.Broadcaster
	opts  Options
	log   logx.Logger
	rooms map[RoomID]*actor.PID
	byPID map[string]RoomID
}

func NewManagerActor(repo port.RoomRepository, hub port.Broadcaster, opts Options, log logx.Logger) *ManagerActor {
	return &ManagerActor{
		repo:  repo,
		hub:   hub,
		opts:  opts,
		log:   logx.Or(log),
		rooms: make(map[RoomID]*actor.PID),
		byPID: make(map[string]RoomID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *messages.HRCreateRoom:
		m.create(ctx, msg)
	case *roomClosed:
		if pid, ok := m.rooms[msg.RoomID]; ok {
			m.remove(msg.RoomID, pid)
			ctx.Stop(pid)
		}
	case *actor.Terminated:
		if id, ok := m.byPID[msg.Who.String()]; ok {
			m.remove(id, msg.Who)
		}
	case messages.RoomMessage:
		if msg == nil {
			ctx.Respond(&messages.RHReply{Err: app.ErrReqParam})
			return
		}
		pid, ok := m.rooms[msg.RoomID()]
		if !ok {
			ctx.Respond(&messages.RHReply{Err: app.ErrRoomNotFound.WithData("room_id", msg.RoomID())})
			return
		}
		ctx.Forward(pid)
	}
}

// create 房间实体在这里构造，构造失败不会留下空 actor。
func (m *ManagerActor) create(ctx actor.Context, msg *messages.HRCreateRoom) {
	if _, ok := m.rooms[msg.RoomID()]; ok {
		ctx.Respond(&messages.RHReply{Err: app.ErrRoomStateConflict.WithData("room_id", msg.RoomID())})
		return
	}
	room, err := entity.NewRoom(msg.RoomID(), msg.Name, msg.PlayerName(), msg.Rules, msg.Field, msg.Treasures, time.Now())
	if err != nil {
		ctx.Respond(&messages.RHReply{Err: err})
		return
	}
	m.getOrSpawn(ctx, room)
	m.log.Info("room created",
		zap.String("room_id", room.ID()),
		zap.String("creator", room.Creator()),
		zap.Int64("seed", msg.Rules.Generator.Seed),
	)
	ctx.Respond(&messages.RHReply{Data: room.View()})
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, room *entity.Room) *actor.PID {
	if pid, ok := m.rooms[room.ID()]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewRoomActor(room, m.repo, m.hub, m.opts, m.log)
	})
	pid := ctx.Spawn(props)
	m.rooms[room.ID()] = pid
	m.byPID[pid.String()] = room.ID()
	return pid
}

func (m *ManagerActor) remove(id RoomID, pid *actor.PID) {
	delete(m.rooms, id)
	if pid != nil {
		delete(m.byPID, pid.String())
	}
}
