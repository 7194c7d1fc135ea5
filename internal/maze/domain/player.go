package domain

import (
	"unicode/utf8"

	"Labyrinth/modules/kit/errx"
)

// 名称长度按字符计，与存储列宽一致。
const (
	MaxPlayerName = 64
	MaxRoomName   = 100
)

// CheckPlayerName 拒绝保留名与超长名；空名由调用方先处理。
func CheckPlayerName(name string) error {
	if name == SystemPlayer {
		return errx.ErrReqParamERR.WithReason(ReasonReservedName).WithData("player", name)
	}
	if n := utf8.RuneCountInString(name); n > MaxPlayerName {
		return errx.ErrReqParamERR.WithReason(ReasonNameTooLong).WithData("length", n)
	}
	return nil
}

func CheckRoomName(name string) error {
	if n := utf8.RuneCountInString(name); n > MaxRoomName {
		return errx.ErrReqParamERR.WithReason(ReasonNameTooLong).WithData("length", n)
	}
	return nil
}

// NoTreasure 表示玩家手里没有宝藏。
const NoTreasure = -1

type Player struct {
	Name     string
	Index    int // 注册顺序，也是回合顺序与同时结算的顺序
	Cell     int // -1 表示尚未选择出生点
	Health   int
	Arrows   int
	Bombs    int
	Treasure int
	Alive    bool
}

func NewPlayer(name string, index int, stat PlayerStat) Player {
	return Player{
		Name:     name,
		Index:    index,
		Cell:     -1,
		Health:   stat.MaxHealth,
		Arrows:   stat.MaxArrows,
		Bombs:    stat.MaxBombs,
		Treasure: NoTreasure,
		Alive:    true,
	}
}

func (p Player) Spawned() bool {
	return p.Cell >= 0
}

func (p Player) HasTreasure() bool {
	return p.Treasure != NoTreasure
}

type PlayerView struct {
	Name        string `json:"name"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Health      int    `json:"health"`
	Arrows      int    `json:"arrows"`
	Bombs       int    `json:"bombs"`
	HasTreasure bool   `json:"has_treasure"`
}
