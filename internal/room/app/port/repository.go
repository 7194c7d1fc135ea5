package port

import (
	"context"
	"errors"

	"Labyrinth/internal/room/entity"
)

// ErrNotFound 仓储里没有这个房间。
var ErrNotFound = errors.New("room archive not found")

// RoomRepository 房间与回合历史的归档存储，只在房间 DC 的写协程和只读查询里使用。
type RoomRepository interface {
	// Save 覆盖房间行并追加回合；回合按 (room_id, seq) 幂等。
	Save(ctx context.Context, s *entity.RoomPersistSnapshot) error
	Load(ctx context.Context, roomID entity.RoomID) (*entity.Archive, error)
}
