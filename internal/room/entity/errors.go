package entity

import "Labyrinth/modules/kit/errx"

const (
	CodeRoomStateConflict errx.Code = "ROOM_STATE_CONFLICT"
)

var ErrRoomStateConflict = errx.NewBiz(CodeRoomStateConflict, "房间状态不允许该操作")

type Reason string

func (r Reason) ReasonCode() string { return string(r) }

const (
	ReasonIllegalTransition Reason = "ILLEGAL_TRANSITION"
	ReasonNotWaiting        Reason = "ROOM_NOT_WAITING"
	ReasonRoomEmpty         Reason = "ROOM_EMPTY"
)
