package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"Labyrinth/internal/shared/transport/http/middleware"
	"Labyrinth/modules/kit/logx"
)

type Server struct {
	engine *gin.Engine
	api    *gin.RouterGroup
	srv    *nethttp.Server
}

// NewHttpServer 创建 gin 服务：CORS、访问日志、/healthz，业务路由挂在 /api 下。
func NewHttpServer(addr string, engine *gin.Engine, logger logx.Logger) *Server {
	if engine == nil {
		engine = gin.New()
		engine.Use(gin.Recovery())
	}
	engine.Use(middleware.Cors())
	engine.Use(middleware.AccessLog(logger))
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		engine: engine,
		api:    engine.Group("/api"),
		srv: &nethttp.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start 启动 HTTP 服务（阻塞）。关闭时会返回 net/http.ErrServerClosed。
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// API 返回 /api 路由组。
func (s *Server) API() *gin.RouterGroup {
	return s.api
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Handler() nethttp.Handler {
	return s.engine
}

// Registrar 业务模块向 /api 路由组注册自己的接口。
type Registrar interface {
	HttpRegister(g *gin.RouterGroup)
}
