package actors

import (
	"context"
	"time"

	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/dc"
	"Labyrinth/internal/room/entity"
	"Labyrinth/internal/shared/actor/messages"
	"Labyrinth/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

const defaultEndedIdle = 10 * time.Minute

// RoomActor 一个房间一个 actor，邮箱保证同一房间的请求串行执行。
type RoomActor struct {
	state      State
	room       *entity.Room
	dc         *dc.RoomDC
	hub        port.Broadcaster
	dispatcher *Dispatcher
	flushStop  chan struct{}
	endedIdle  time.Duration
	log        logx.Logger
}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

func NewRoomActor(room *entity.Room, repo port.RoomRepository, hub port.Broadcaster, opts Options, log logx.Logger) *RoomActor {
	log = logx.With(logx.Or(log), zap.String("room_id", room.ID()))
	idle := opts.EndedIdle
	if idle <= 0 {
		idle = defaultEndedIdle
	}
	return &RoomActor{
		state:      None,
		room:       room,
		dc:         dc.NewRoomDC(repo, opts.FlushEvery, log),
		hub:        hub,
		dispatcher: NewDispatcher(),
		endedIdle:  idle,
		log:        log,
	}
}

func (p *RoomActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.stopFlushLoop()
		closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := p.dc.Close(closeCtx); err != nil {
			p.log.Error("room dc close failed", zap.Error(err))
		}
		p.state = Stopping
		return
	case *actor.Stopped:
		p.stopFlushLoop()
		p.state = Offline
		p.log.Info("room actor stopped")
		return
	case *actor.Restarting:
		p.stopFlushLoop()
		p.state = Init
		return
	case *actor.ReceiveTimeout:
		if p.room.Status() == entity.StatusEnded {
			ctx.CancelReceiveTimeout()
			p.close(ctx)
		}
		return
	case flushTick:
		if p.state != Online {
			return
		}
		p.flush()
		return
	case messages.RoomMessage:
		if p.state != Online {
			ctx.Respond(&messages.RHReply{Err: errRoomOffline})
			return
		}
		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

func (p *RoomActor) init(ctx actor.Context) {
	p.dc.Attach(p.room)
	p.state = Online
	p.flush()
	p.startFlushLoop(ctx)
}

func (p *RoomActor) Room() *entity.Room {
	return p.room
}

func (p *RoomActor) DC() *dc.RoomDC {
	return p.dc
}

func (p *RoomActor) flush() {
	if err := p.dc.Flush(context.TODO()); err != nil {
		p.log.Error("room flush failed", zap.Error(err))
	}
}

// close 通知管理 actor 移除本房间，由管理 actor 负责停止。
func (p *RoomActor) close(ctx actor.Context) {
	p.flush()
	if parent := ctx.Parent(); parent != nil {
		ctx.Send(parent, &roomClosed{RoomID: p.room.ID()})
		return
	}
	ctx.Stop(ctx.Self())
}

func (p *RoomActor) startFlushLoop(ctx actor.Context) {
	if p.flushStop != nil {
		return
	}
	interval := p.dc.FlushEvery()
	if interval <= 0 {
		return
	}
	p.flushStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root

	go func(stop <-chan struct{}, every time.Duration) {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				root.Send(self, flushTick{})
			case <-stop:
				return
			}
		}
	}(p.flushStop, interval)
}

func (p *RoomActor) stopFlushLoop() {
	if p.flushStop == nil {
		return
	}
	close(p.flushStop)
	p.flushStop = nil
}
