package domain

import "fmt"

type TreasureKind uint8

const (
	TreasureGenuine TreasureKind = iota
	TreasureSpurious
	TreasureMined
)

var treasureNames = [...]string{"genuine", "spurious", "mined"}

func (k TreasureKind) String() string {
	if int(k) >= len(treasureNames) {
		return fmt.Sprintf("treasure(%d)", uint8(k))
	}
	return treasureNames[k]
}

func (k TreasureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TreasureKind) UnmarshalText(b []byte) error {
	for i, name := range treasureNames {
		if name == string(b) {
			*k = TreasureKind(i)
			return nil
		}
	}
	return fmt.Errorf("invalid treasure kind %q", string(b))
}

// Treasure 在地上时 Cell 为所在格子；被玩家拿着时 Cell 为 -1。
// Gone 表示已被带出迷宫或被引爆，不再参与游戏。
type Treasure struct {
	ID   int
	Kind TreasureKind
	Cell int
	Gone bool
}

func (t Treasure) OnGround() bool {
	return !t.Gone && t.Cell >= 0
}

type TreasureView struct {
	ID      int          `json:"id"`
	Kind    TreasureKind `json:"kind"`
	X       int          `json:"x"`
	Y       int          `json:"y"`
	Carried bool         `json:"carried"`
}
