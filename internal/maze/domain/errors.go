package domain

import "Labyrinth/modules/kit/errx"

// Code 迷宫领域错误码。
//
// 约定：
// - 业务拒绝（规则不允许）全部是 biz 错误，不带栈
// - 具体原因用 WithReason 挂上，便于日志检索与客户端提示
type Code = errx.Code

const (
	CodeGenerationFailed Code = "MAZE_GENERATION_FAILED"
	CodeInvalidRules     Code = "MAZE_INVALID_RULES"
	CodeInvalidAction    Code = "INVALID_ACTION"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeTransport        Code = errx.CodeTransport
)

type Error = errx.Error

var (
	ErrGeneration       = errx.NewBiz(CodeGenerationFailed, "maze generation failed")
	ErrInvalidRules     = errx.NewBiz(CodeInvalidRules, "invalid rules")
	ErrInvalidAction    = errx.NewBiz(CodeInvalidAction, "invalid action")
	ErrPermissionDenied = errx.NewBiz(CodePermissionDenied, "permission denied")
	// ErrTransport 连接层故障，不影响任何游戏状态；由 ws 连接上报。
	ErrTransport = errx.ErrTransport
)

type Reason string

func (r Reason) ReasonCode() string { return string(r) }

const (
	// 生成
	ReasonBadSize         Reason = "BAD_SIZE"
	ReasonCapacity        Reason = "CAPACITY_EXCEEDED"
	ReasonRiverNotLaid    Reason = "RIVER_NOT_LAID"
	ReasonExitNotPlaced   Reason = "EXIT_NOT_PLACED"
	ReasonDisconnected    Reason = "FIELD_DISCONNECTED"
	ReasonPlayersAmount   Reason = "PLAYERS_AMOUNT"
	ReasonRiverTooShort   Reason = "RIVER_TOO_SHORT"
	ReasonNegativeCount   Reason = "NEGATIVE_COUNT"
	ReasonBadDensity      Reason = "BAD_WALL_DENSITY"
	ReasonBadPlayerStat   Reason = "BAD_PLAYER_STAT"
	ReasonUnknownAction   Reason = "UNKNOWN_ACTION"
	ReasonNoDirection     Reason = "DIRECTION_REQUIRED"
	ReasonOuterWall       Reason = "OUTER_WALL"
	ReasonNoArrows        Reason = "NO_ARROWS"
	ReasonNoBombs         Reason = "NO_BOMBS"
	ReasonNoSwapTarget    Reason = "NO_SWAP_TARGET"
	ReasonNotYourTurn     Reason = "NOT_YOUR_TURN"
	ReasonUnknownPlayer   Reason = "UNKNOWN_PLAYER"
	ReasonEliminated      Reason = "PLAYER_ELIMINATED"
	ReasonGameOver        Reason = "GAME_OVER"
	ReasonNotStarted      Reason = "GAME_NOT_STARTED"
	ReasonNotSpawned      Reason = "PLAYER_NOT_SPAWNED"
	ReasonBadSpawn        Reason = "BAD_SPAWN"
	ReasonDuplicatePlayer Reason = "DUPLICATE_PLAYER"
	ReasonRosterFull      Reason = "ROSTER_FULL"
	ReasonReservedName    Reason = "RESERVED_NAME"
	ReasonNameTooLong     Reason = "NAME_TOO_LONG"
)
