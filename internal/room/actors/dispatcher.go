package actors

import (
	"fmt"

	"Labyrinth/internal/shared/actor/messages"

	"github.com/asynkron/protoactor-go/actor"
)

type handleFunc func(ctx actor.Context, p *RoomActor, req messages.RoomMessage)

// Dispatcher 按请求的具体类型找房间处理器。
type Dispatcher struct {
	handlers map[string]handleFunc
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]handleFunc)}
	register(d, RH.HandleJoin)
	register(d, RH.HandleLeave)
	register(d, RH.HandleAttach)
	register(d, RH.HandleSetSpawn)
	register(d, RH.HandleAct)
	register(d, RH.HandleAllowed)
	register(d, RH.HandleGameData)
	register(d, RH.HandlePlayersStat)
	register(d, RH.HandleFieldReview)
	register(d, RH.HandleRoomInfo)
	return d
}

func typeKey(v any) string {
	return fmt.Sprintf("%T", v)
}

// register 同一请求类型重复注册视为编程错误。
func register[Req messages.RoomMessage](d *Dispatcher, fn func(ctx actor.Context, p *RoomActor, req Req)) {
	var zero Req
	key := typeKey(zero)
	if _, dup := d.handlers[key]; dup {
		panic("duplicate room handler for " + key)
	}
	d.handlers[key] = func(ctx actor.Context, p *RoomActor, req messages.RoomMessage) {
		fn(ctx, p, req.(Req))
	}
}

func (d *Dispatcher) Dispatch(ctx actor.Context, p *RoomActor, req messages.RoomMessage) {
	if req == nil {
		ctx.Respond(&messages.RHReply{Err: errNilRequest})
		return
	}
	h, ok := d.handlers[typeKey(req)]
	if !ok {
		ctx.Respond(&messages.RHReply{Err: errNoHandler.WithData("type", typeKey(req))})
		return
	}
	h(ctx, p, req)
}
