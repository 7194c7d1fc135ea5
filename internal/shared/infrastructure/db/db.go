package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	drivermysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Labyrinth/internal/shared/logs"
	"Labyrinth/internal/shared/serverconfig"
)

const (
	slowSQL      = 200 * time.Millisecond
	connLifetime = 30 * time.Minute
	pingTimeout  = 3 * time.Second
)

// DSN 时间列按 UTC 解析，房间和回合的时间戳都以 UTC 落库。
func DSN(cfg serverconfig.MySQLConfig) string {
	c := drivermysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	c.DBName = cfg.DBName
	c.ParseTime = true
	c.Loc = time.UTC
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	c.Params = map[string]string{"charset": charset}
	return c.FormatDSN()
}

// Open 连接并 ping MySQL，gorm 日志接到 logs。
func Open(ctx context.Context, cfg serverconfig.MySQLConfig) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.ShowSQL {
		level = logger.Info
	}
	gdb, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{Logger: logs.NewGormLogger(level, slowSQL)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(connLifetime)

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql %s: %w", cfg.Host, err)
	}

	logs.Info("open db success",
		zap.String("addr", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))),
		zap.String("db", cfg.DBName),
	)
	return gdb, nil
}

// Close 释放连接池。
func Close(gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
