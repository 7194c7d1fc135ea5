package interfaces

import (
	"Labyrinth/internal/room/app"
	"Labyrinth/internal/room/interfaces/handler"
	"Labyrinth/internal/room/interfaces/handler/http"
	ws2 "Labyrinth/internal/room/interfaces/handler/ws"
	"Labyrinth/internal/shared/session"
	transporthttp "Labyrinth/internal/shared/transport/http"
	"Labyrinth/internal/shared/transport/ws"
	"Labyrinth/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

type Module struct {
	wsHandler   *ws2.WsHandler
	httpHandler *http.HttpHandler
}

func New(s session.Manager, svc *app.RoomService, log logx.Logger) *Module {
	room := handler.NewRoom(s, svc, log)
	return &Module{
		wsHandler:   ws2.NewWsHandler(room),
		httpHandler: http.NewHttpHandler(room),
	}
}

func (m *Module) WsRegister(r *ws.Router) {
	m.wsHandler.RegisterRoutes(r)
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

var _ ws.Registrar = (*Module)(nil)
var _ transporthttp.Registrar = (*Module)(nil)
