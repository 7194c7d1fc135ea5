package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Labyrinth/modules/kit/logx"
)

type Server struct {
	router     *Router
	log        logx.Logger
	needSecret bool
	upgrader   websocket.Upgrader
}

// NewServer needSecret 为 true 时走握手 + AES + gzip 的二进制帧，否则收发明文 JSON 文本帧。
func NewServer(r *Router, l logx.Logger, needSecret bool) *Server {
	return &Server{
		router:     r,
		log:        l,
		needSecret: needSecret,
		upgrader: websocket.Upgrader{
			// 允许所有CORS跨域请求
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	wsConn, err := s.upgrader.Upgrade(resp, req, nil)
	if err != nil {
		s.log.Error("websocket upgrade error", zap.Error(err))
		return
	}

	wsServer := NewWsServer(wsConn, s.log, s.needSecret)
	s.log.Info("websocket upgrade success", zap.String("conn_id", wsServer.ID()), zap.String("addr", wsServer.Addr()))
	wsServer.Router(s.router)
	if s.needSecret {
		wsServer.handshake()
	}
	wsServer.Run()
}
