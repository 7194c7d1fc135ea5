package domain

import (
	"fmt"
	"strings"
)

// Direction 四个方向，取值顺序与 Cell.Walls 下标一致。
type Direction uint8

const (
	Top Direction = iota
	Right
	Bottom
	Left
)

var Directions = [4]Direction{Top, Right, Bottom, Left}

var directionNames = [4]string{"top", "right", "bottom", "left"}

func (d Direction) Valid() bool {
	return d <= Left
}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Delta 返回坐标增量，y 轴向下。
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Top:
		return 0, -1
	case Right:
		return 1, 0
	case Bottom:
		return 0, 1
	default:
		return -1, 0
	}
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
	return directionNames[d]
}

func ParseDirection(s string) (Direction, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range directionNames {
		if name == s {
			return Direction(i), true
		}
	}
	return 0, false
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("invalid direction %q", string(b))
	}
	*d = v
	return nil
}

type Position struct {
	X int `json:"x" mapstructure:"x"`
	Y int `json:"y" mapstructure:"y"`
}

func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}
