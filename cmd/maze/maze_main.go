package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	roomactor "Labyrinth/internal/room/actor"
	"Labyrinth/internal/room/actors"
	"Labyrinth/internal/room/app"
	"Labyrinth/internal/room/interfaces"
	"Labyrinth/internal/shared/logs"
	"Labyrinth/internal/shared/security"
	"Labyrinth/internal/shared/serverconfig"
	"Labyrinth/internal/shared/session"
	"Labyrinth/internal/shared/transport/grpc"
	transporthttp "Labyrinth/internal/shared/transport/http"
	"Labyrinth/internal/shared/transport/ws"
	"Labyrinth/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "config file, default configs/conf.yml searched upward")
	flag.Parse()

	if err := serverconfig.Load(*cfgPath); err != nil {
		panic(err)
	}
	conf := serverconfig.Conf
	if err := logs.Init("maze", conf.Log); err != nil {
		panic(err)
	}
	defer logs.Sync()
	logs.Info("conf", zap.Any("conf", conf))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepo(ctx, conf)
	if err != nil {
		logs.Fatal("open room repository failed", zap.String("driver", conf.Storage.Driver), zap.Error(err))
	}
	defer closeRepo()

	baseLogger := logx.NewZapLogger(logs.Logger())
	sessMgr := session.NewSessMgr()

	runtime := roomactor.NewRuntime(repo, sessMgr, actors.Options{
		FlushEvery: time.Duration(conf.GameServer.FlushIntervalMs) * time.Millisecond,
		EndedIdle:  time.Duration(conf.GameServer.RoomIdleSec) * time.Second,
	}, time.Duration(conf.GameServer.AskTimeoutMs)*time.Millisecond, baseLogger)

	roomService := app.NewRoomService(runtime, repo, security.RoomTokens{}, conf.Game, baseLogger)
	roomModule := interfaces.New(sessMgr, roomService, baseLogger)

	wsRouter := ws.NewRouter(baseLogger)
	wsModules := []ws.Registrar{
		roomModule,
	}
	for _, m := range wsModules {
		m.WsRegister(wsRouter)
	}

	gameHost := conf.GameServer.Host
	if gameHost == "" {
		gameHost = "0.0.0.0"
	}
	gameServerAddr := fmt.Sprintf("%s:%d", gameHost, conf.GameServer.Port)

	httpServer := transporthttp.NewHttpServer(gameServerAddr, nil, baseLogger)
	httpModules := []transporthttp.Registrar{
		roomModule,
	}
	for _, m := range httpModules {
		m.HttpRegister(httpServer.API())
	}

	wsServer := ws.NewServer(wsRouter, baseLogger, conf.GameServer.NeedSecret)
	httpServer.Engine().Any("/ws", gin.WrapH(wsServer))
	httpServer.Engine().Any("/ws/*any", gin.WrapH(wsServer))

	grpcAddr := fmt.Sprintf("%s:%d", conf.GRPCServer.Host, conf.GRPCServer.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logs.Fatal("grpc listen failed", zap.String("addr", grpcAddr), zap.Error(err))
	}
	grpcServer := grpc.NewServer(baseLogger)

	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("maze server start failed: %w", err)
			return
		}
		errCh <- nil
	}()
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server failed: %w", err)
		}
	}()
	grpcServer.SetServing(true)
	logs.Info("maze server started",
		zap.String("http", gameServerAddr),
		zap.String("grpc", grpcAddr),
		zap.String("storage", conf.Storage.Driver),
	)

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	grpcServer.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logs.Warn("http shutdown failed", zap.Error(err))
	}
	grpcServer.Stop()
	// 房间 actor 停止时会把最后一份快照落库，必须在关闭仓储之前
	runtime.Shutdown()
}
