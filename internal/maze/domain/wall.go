package domain

import "fmt"

type WallType uint8

const (
	WallEmpty WallType = iota
	WallConcrete
	WallRubber
	WallOuter
	WallExit
)

var wallNames = [...]string{"empty", "concrete", "rubber", "outer", "exit"}

func (t WallType) String() string {
	if int(t) >= len(wallNames) {
		return fmt.Sprintf("wall(%d)", uint8(t))
	}
	return wallNames[t]
}

func (t WallType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *WallType) UnmarshalText(b []byte) error {
	for i, name := range wallNames {
		if name == string(b) {
			*t = WallType(i)
			return nil
		}
	}
	return fmt.Errorf("invalid wall type %q", string(b))
}

// Passable 玩家可以穿过：空墙与出口墙。
func (t WallType) Passable() bool {
	return t == WallEmpty || t == WallExit
}

// BlocksShot 箭矢只能穿过空墙。
func (t WallType) BlocksShot() bool {
	return t != WallEmpty
}

// Breakable 炸弹能否摧毁。外墙与出口墙永远不可摧毁。
func (t WallType) Breakable(concreteBreakable bool) bool {
	switch t {
	case WallRubber:
		return true
	case WallConcrete:
		return concreteBreakable
	default:
		return false
	}
}

// Wall 是竞技场里的一条边，A/B 为两侧格子 id，-1 表示迷宫外（或空洞）。
type Wall struct {
	Type WallType
	A    int
	B    int
}

func (w Wall) other(cellID int) int {
	if w.A == cellID {
		return w.B
	}
	return w.A
}
