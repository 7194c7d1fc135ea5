package serverconfig

import (
	"os"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/internal/shared/config"
)

const defaultConfigRelPath = "configs/conf.yml"

var Conf Config

// Load 读取全局配置，未配置的项使用默认值。
func Load(path string) error {
	if path == "" {
		path = defaultConfigRelPath
	}
	Conf = Default()
	if err := config.Load(path, &Conf); err != nil {
		return err
	}
	// 环境变量优先；若未设置则回填配置中的 jwt_secret，兼容本地开发场景。
	if os.Getenv("JWT_SECRET") == "" && Conf.JWTSecret != "" {
		_ = os.Setenv("JWT_SECRET", Conf.JWTSecret)
	}
	return nil
}

func Default() Config {
	return Config{
		GameServer: GameServerConfig{
			Host:            "0.0.0.0",
			Port:            8004,
			AskTimeoutMs:    3000,
			FlushIntervalMs: 2000,
			RoomIdleSec:     600,
		},
		GRPCServer: GRPCServerConfig{Host: "0.0.0.0", Port: 9004},
		Storage:    StorageConfig{Driver: StorageMemory},
		SQLite:     SQLiteConfig{Path: "labyrinth.db"},
		Log:        LogConfig{Level: "info"},
		Game:       domain.DefaultRules(),
	}
}
