package ws

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"Labyrinth/internal/shared/transport"
	"Labyrinth/modules/kit/logx"
	"Labyrinth/modules/kit/tracex"
)

type HandlerFunc func(ctx context.Context, req *WsMsgReq, resp *WsMsgResp)

// Router 消息名形如 group.handler，例如 game.action、room.join。
type Router struct {
	routes map[string]HandlerFunc
	groups map[string]bool
	log    logx.Logger
}

// Group 只负责给处理器名加前缀。
type Group struct {
	r      *Router
	prefix string
}

func NewRouter(l logx.Logger) *Router {
	return &Router{
		routes: make(map[string]HandlerFunc),
		groups: make(map[string]bool),
		log:    logx.Or(l),
	}
}

func (r *Router) Group(prefix string) *Group {
	r.groups[prefix] = true
	return &Group{r: r, prefix: prefix}
}

func (g *Group) Handle(name string, h HandlerFunc) {
	g.r.routes[g.prefix+"."+name] = h
}

// Dispatch 在读循环里同步调用。resp 先置为 SystemError，处理器漏设结果时不会被当成成功。
func (r *Router) Dispatch(req *WsMsgReq, resp *WsMsgResp) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code, resp.Body.Msg = int(transport.SystemError), nil

	ctx := dispatchContext(req)
	defer func() {
		if p := recover(); p != nil {
			r.log.WithContext(ctx).Error("ws handler panic", zap.String("panic", fmt.Sprint(p)), zap.Stack("stack"))
			SetError(resp, transport.SystemError, "系统繁忙，请稍后重试")
		}
		transport.SetBizCode(ctx, transport.BizCode(resp.Body.Code))
		transport.WriteAccessLog(ctx, r.log)
	}()

	if req == nil || req.Body == nil {
		SetError(resp, transport.InvalidParam, "参数有误")
		return
	}
	h, code, msg := r.lookup(req.Body.Name)
	if h == nil {
		SetError(resp, code, msg)
		return
	}
	h(ctx, req, resp)
}

func dispatchContext(req *WsMsgReq) context.Context {
	if req == nil || req.Body == nil {
		return transport.NewContext("WS unknown")
	}
	ctx := transport.NewContext("WS " + req.Body.Name)
	if room := PropString(req.Conn, ConnKeyRoom); room != "" {
		ctx = tracex.WithRoom(ctx, room)
	}
	if player := PropString(req.Conn, ConnKeyPlayer); player != "" {
		ctx = tracex.WithPlayer(ctx, player)
	}
	return ctx
}

func (r *Router) lookup(name string) (HandlerFunc, transport.BizCode, string) {
	prefix, rest, ok := strings.Cut(name, ".")
	if !ok || prefix == "" || rest == "" || strings.Contains(rest, ".") {
		return nil, transport.InvalidParam, "路由参数有误"
	}
	if !r.groups[prefix] {
		return nil, transport.RouteNotFound, "路由组不存在"
	}
	if h := r.routes[name]; h != nil {
		return h, transport.OK, ""
	}
	return nil, transport.RouteNotFound, "路由处理器不存在"
}

func SetOK(resp *WsMsgResp, msg any) {
	SetError(resp, transport.OK, msg)
}

// SetError msg 是给客户端看的提示。
func SetError(resp *WsMsgResp, code transport.BizCode, msg any) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = int(code)
	resp.Body.Msg = msg
}

// Registrar 业务模块向 ws 路由注册自己的处理器。
type Registrar interface {
	WsRegister(r *Router)
}
