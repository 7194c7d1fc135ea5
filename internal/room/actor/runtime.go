package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Labyrinth/internal/room/actors"
	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/shared/actor/messages"
	"Labyrinth/modules/kit/errx"
	"Labyrinth/modules/kit/logx"

	protoactor "github.com/asynkron/protoactor-go/actor"
)

const defaultAskTimeout = 3 * time.Second

var (
	errNotStarted = errx.ErrUnavailable.WithMsg("房间运行时未启动")
	errBadReply   = errx.ErrInternal.WithMsg("房间应答类型错误")
)

// Runtime 一个管理 actor 负责路由，房间 actor 按需创建。
type Runtime struct {
	system  *protoactor.ActorSystem
	manager *protoactor.PID
	timeout time.Duration
}

func NewRuntime(repo port.RoomRepository, hub port.Broadcaster, opts actors.Options, askTimeout time.Duration, log logx.Logger) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}
	system := protoactor.NewActorSystem()
	manager := system.Root.Spawn(protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(repo, hub, opts, log)
	}))
	return &Runtime{system: system, manager: manager, timeout: askTimeout}
}

// Ask 超时映射为 TIMEOUT，其余投递失败为 SERVICE_UNAVAILABLE；房间自己的拒绝原样返回。
func (r *Runtime) Ask(ctx context.Context, msg messages.RoomMessage) (any, error) {
	if r == nil || r.system == nil || r.manager == nil {
		return nil, errNotStarted
	}
	res, err := r.system.Root.RequestFuture(r.manager, msg, r.budget(ctx)).Result()
	switch {
	case errors.Is(err, protoactor.ErrTimeout):
		return nil, errx.ErrTimeout.WithData("message", messageName(msg)).WithCause(err)
	case err != nil:
		return nil, errx.ErrUnavailable.WithData("message", messageName(msg)).WithCause(err)
	}
	rep, ok := res.(*messages.RHReply)
	if !ok || rep == nil {
		return nil, errBadReply.WithData("message", messageName(msg))
	}
	if rep.Err != nil {
		return nil, rep.Err
	}
	return rep.Data, nil
}

// Shutdown 先停管理 actor，房间 actor 作为子 actor 随之停止并落盘。
func (r *Runtime) Shutdown() {
	if r == nil || r.system == nil {
		return
	}
	if r.manager != nil {
		_ = r.system.Root.StopFuture(r.manager).Wait()
	}
	r.system.Shutdown()
}

// budget 取配置超时与 ctx 剩余时间中较小者，至少 1ms。
func (r *Runtime) budget(ctx context.Context) time.Duration {
	d := r.timeout
	if ctx == nil {
		return d
	}
	if deadline, ok := ctx.Deadline(); ok {
		d = min(d, time.Until(deadline))
	}
	return max(d, time.Millisecond)
}

func messageName(msg messages.RoomMessage) string {
	return fmt.Sprintf("%T", msg)
}

var _ port.RoomRuntime = (*Runtime)(nil)
