package domain

import (
	"strings"
	"time"
)

type Action string

const (
	ActionMove         Action = "move"
	ActionShootBow     Action = "shoot_bow"
	ActionThrowBomb    Action = "throw_bomb"
	ActionSwapTreasure Action = "swap_treasure"
	ActionSkip         Action = "skip"
	// ActionInfo 只由系统产生（玩家入场播报）。
	ActionInfo Action = "info"
)

// SystemPlayer 系统产生的回合记录使用的玩家名。
const SystemPlayer = "system"

func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionMove, ActionShootBow, ActionThrowBomb, ActionSwapTreasure, ActionSkip:
		return a, true
	default:
		return "", false
	}
}

// NeedsDirection 需要方向参数的动作。
func (a Action) NeedsDirection() bool {
	return a == ActionMove || a == ActionShootBow || a == ActionThrowBomb
}

// TurnRecord 一条不可变的回合记录。
type TurnRecord struct {
	Seq       int       `json:"seq" bson:"seq"`
	Player    string    `json:"player" bson:"player"`
	Action    Action    `json:"action" bson:"action"`
	Direction string    `json:"direction" bson:"direction"`
	Response  string    `json:"response" bson:"response"`
	At        time.Time `json:"at" bson:"at"`
}
