package messages

import "Labyrinth/internal/maze/domain"

// RoomMessage 发往房间 actor 的请求，管理 actor 按 RoomID 路由。
type RoomMessage interface {
	RoomID() string
	PlayerName() string
}

type RoomBaseMessage struct {
	RoomId string
	Player string
}

func (m RoomBaseMessage) RoomID() string {
	return m.RoomId
}

func (m RoomBaseMessage) PlayerName() string {
	return m.Player
}

// HRCreateRoom 创建房间，Player 为创建者。Field 交给房间后调用方不得再使用。
type HRCreateRoom struct {
	RoomBaseMessage
	Name      string
	Rules     domain.Rules
	Field     *domain.Field
	Treasures []domain.Treasure
}

type HRJoinRoom struct {
	RoomBaseMessage
}

type HRLeaveRoom struct {
	RoomBaseMessage
}

// HRAttach 玩家的实时连接已绑定，房间向其推送当前进度。
type HRAttach struct {
	RoomBaseMessage
}

type HRSetSpawn struct {
	RoomBaseMessage
	Pos domain.Position
}

type HRAct struct {
	RoomBaseMessage
	Action    domain.Action
	Direction *domain.Direction
}

type HRAllowed struct {
	RoomBaseMessage
}

type HRGameData struct {
	RoomBaseMessage
}

type HRPlayersStat struct {
	RoomBaseMessage
}

type HRFieldReview struct {
	RoomBaseMessage
}

type HRRoomInfo struct {
	RoomBaseMessage
}

// RHReply 房间 actor 的统一应答。
type RHReply struct {
	Data any
	Err  error
}

// RHLeave 离开房间的结果，Empty 表示房间已被移除。
type RHLeave struct {
	Empty bool
}
