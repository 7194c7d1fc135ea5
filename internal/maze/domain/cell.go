package domain

import "fmt"

type CellType uint8

const (
	CellGround CellType = iota
	CellRiver
	CellRiverMouth
	CellExit
	CellClinic
	CellArmory
	CellArmoryWeapon
	CellArmoryExplosive
)

var cellNames = [...]string{
	"ground",
	"river",
	"river_mouth",
	"exit",
	"clinic",
	"armory",
	"armory_weapon",
	"armory_explosive",
}

func (t CellType) String() string {
	if int(t) >= len(cellNames) {
		return fmt.Sprintf("cell(%d)", uint8(t))
	}
	return cellNames[t]
}

func (t CellType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *CellType) UnmarshalText(b []byte) error {
	for i, name := range cellNames {
		if name == string(b) {
			*t = CellType(i)
			return nil
		}
	}
	return fmt.Errorf("invalid cell type %q", string(b))
}

func (t CellType) IsRiver() bool {
	return t == CellRiver || t == CellRiverMouth
}

// IsArmory 包含合并军械库与两种分离军械库。
func (t CellType) IsArmory() bool {
	return t == CellArmory || t == CellArmoryWeapon || t == CellArmoryExplosive
}

// Cell 只保存墙的下标，墙本身存放在 Field.walls 中，相邻格子共享同一条墙。
type Cell struct {
	ID       int
	Pos      Position
	Type     CellType
	Walls    [4]int
	River    int // 所属河流下标，-1 表示不是河流
	RiverIdx int // 在河流中的位置，0 为源头
}

// WallsView 是墙在对外协议里的形态。
type WallsView struct {
	Top    WallType `json:"top"`
	Right  WallType `json:"right"`
	Bottom WallType `json:"bottom"`
	Left   WallType `json:"left"`
}

type CellView struct {
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Type     CellType  `json:"type"`
	Walls    WallsView `json:"walls"`
	RiverDir string    `json:"river_dir,omitempty"`
}
