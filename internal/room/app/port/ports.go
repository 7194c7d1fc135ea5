package port

import (
	"context"

	"Labyrinth/internal/shared/actor/messages"
)

// Broadcaster 房间推送通道；推送不阻塞调用方，离线玩家直接丢弃。
type Broadcaster interface {
	Publish(roomID, name string, data any)
	SendTo(roomID, player, name string, data any) bool
}

// RoomRuntime 房间 actor 的请求入口。
type RoomRuntime interface {
	Ask(ctx context.Context, msg messages.RoomMessage) (any, error)
}

// TokenIssuer 房间凭证的签发与校验。
type TokenIssuer interface {
	Award(roomID, player string) (string, error)
	Parse(token string) (roomID, player string, err error)
}
