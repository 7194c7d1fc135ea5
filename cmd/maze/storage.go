package main

import (
	"context"
	"fmt"

	"Labyrinth/internal/room/app/port"
	"Labyrinth/internal/room/infra/persistence/memory"
	mongorepo "Labyrinth/internal/room/infra/persistence/mongodb"
	mysqlrepo "Labyrinth/internal/room/infra/persistence/mysql"
	sqliterepo "Labyrinth/internal/room/infra/persistence/sqlite"
	"Labyrinth/internal/shared/infrastructure/db"
	infmongo "Labyrinth/internal/shared/infrastructure/mongo"
	infsqlite "Labyrinth/internal/shared/infrastructure/sqlite"
	"Labyrinth/internal/shared/logs"
	"Labyrinth/internal/shared/serverconfig"

	"go.uber.org/zap"
)

// openRepo 按 storage.driver 打开房间仓储，返回的 closer 在退出时释放连接。
func openRepo(ctx context.Context, conf serverconfig.Config) (port.RoomRepository, func(), error) {
	nop := func() {}
	switch conf.Storage.Driver {
	case "", serverconfig.StorageMemory:
		return memory.NewRoomRepository(), nop, nil

	case serverconfig.StorageMySQL:
		gdb, err := db.Open(ctx, conf.MySQL)
		if err != nil {
			return nil, nop, fmt.Errorf("open mysql: %w", err)
		}
		repo := mysqlrepo.NewRoomRepo(gdb)
		if err := repo.AutoMigrate(ctx); err != nil {
			db.Close(gdb)
			return nil, nop, fmt.Errorf("migrate mysql: %w", err)
		}
		return repo, func() { db.Close(gdb) }, nil

	case serverconfig.StorageMongoDB:
		client, mdb, err := infmongo.Open(ctx, conf.MongoDB, logs.Logger())
		if err != nil {
			return nil, nop, fmt.Errorf("open mongodb: %w", err)
		}
		repo := mongorepo.NewRoomRepository(mdb)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nop, fmt.Errorf("mongodb indexes: %w", err)
		}
		closer := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logs.Warn("mongodb disconnect failed", zap.Error(err))
			}
		}
		return repo, closer, nil

	case serverconfig.StorageSQLite:
		sdb, err := infsqlite.Open(ctx, conf.SQLite, logs.Logger())
		if err != nil {
			return nil, nop, fmt.Errorf("open sqlite: %w", err)
		}
		repo := sqliterepo.NewRoomRepo(sdb)
		if err := repo.Migrate(ctx); err != nil {
			_ = sdb.Close()
			return nil, nop, fmt.Errorf("migrate sqlite: %w", err)
		}
		return repo, func() { _ = sdb.Close() }, nil
	}
	return nil, nop, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
}
