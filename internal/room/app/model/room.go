package model

import "Labyrinth/internal/maze/domain"

type CreateRoomReq struct {
	Name    string        `json:"name"`
	Creator string        `json:"creator"`
	Rules   *domain.Rules `json:"rules"`
}

type CreateRoomResp struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type JoinRoomReq struct {
	RoomID string `json:"room_id"`
	Player string `json:"player"`
}

type JoinRoomResp struct {
	RoomID string `json:"room_id"`
	Player string `json:"player"`
	Token  string `json:"token"`
}

// EnterReq 实时连接进入房间（game.join / room.join）。
type EnterReq struct {
	RoomID string `json:"room_id"`
	Token  string `json:"token"`
}

// ReviewReq 整图复盘。对局结束前需要创建者的凭证。
type ReviewReq struct {
	RoomID string `json:"room_id"`
	Token  string `json:"token"`
}

type Identity struct {
	RoomID string `json:"room_id"`
	Player string `json:"player"`
}

type ActionReq struct {
	RoomID    string `json:"room_id"`
	Action    string `json:"action"`
	Direction string `json:"direction"`
}

type SpawnReq struct {
	Room  string          `json:"room"`
	Spawn domain.Position `json:"spawn"`
}

type RoomReq struct {
	RoomID string `json:"room_id"`
}
