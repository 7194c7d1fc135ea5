package domain

// Rules 是一局游戏的全部规则，随房间创建一起固定下来。
type Rules struct {
	PlayersAmount int            `json:"players_amount" mapstructure:"players_amount"`
	Generator     GeneratorRules `json:"generator_rules" mapstructure:"generator_rules"`
	Gameplay      GameplayRules  `json:"gameplay_rules" mapstructure:"gameplay_rules"`
	PlayerStat    PlayerStat     `json:"player_stat" mapstructure:"player_stat"`
}

type GeneratorRules struct {
	Seed       int64         `json:"seed" mapstructure:"seed"`
	Rows       int           `json:"rows" mapstructure:"rows"`
	Cols       int           `json:"cols" mapstructure:"cols"`
	IsRect     bool          `json:"is_rect" mapstructure:"is_rect"`
	RiverRules []int         `json:"river_rules" mapstructure:"river_rules"`
	Armory     ArmoryRules   `json:"armory" mapstructure:"armory"`
	Clinics    int           `json:"clinics" mapstructure:"clinics"`
	Treasures  TreasureRules `json:"treasures" mapstructure:"treasures"`
	Walls      WallRules     `json:"walls" mapstructure:"walls"`
}

// ArmoryRules Separated 为 true 时每套军械库拆成武器库与炸药库两格。
type ArmoryRules struct {
	Amount    int  `json:"amount" mapstructure:"amount"`
	Separated bool `json:"separated" mapstructure:"separated"`
}

// Cells 军械库占用的格子数。
func (a ArmoryRules) Cells() int {
	if a.Separated {
		return a.Amount * 2
	}
	return a.Amount
}

type TreasureRules struct {
	Genuine  int `json:"genuine" mapstructure:"genuine"`
	Spurious int `json:"spurious" mapstructure:"spurious"`
	Mined    int `json:"mined" mapstructure:"mined"`
}

func (t TreasureRules) Total() int {
	return t.Genuine + t.Spurious + t.Mined
}

// WallRules Density 为生成树之外的边变成墙的概率。
type WallRules struct {
	HasWalls          bool    `json:"has_walls" mapstructure:"has_walls"`
	Concrete          bool    `json:"concrete" mapstructure:"concrete"`
	Rubber            bool    `json:"rubber" mapstructure:"rubber"`
	Density           float64 `json:"density" mapstructure:"density"`
	ConcreteBreakable bool    `json:"concrete_breakable" mapstructure:"concrete_breakable"`
}

type GameplayRules struct {
	RiverDrift bool `json:"river_drift" mapstructure:"river_drift"`
}

type PlayerStat struct {
	MaxHealth int `json:"max_health" mapstructure:"max_health"`
	MaxArrows int `json:"max_arrows" mapstructure:"max_arrows"`
	MaxBombs  int `json:"max_bombs" mapstructure:"max_bombs"`
}

const (
	MinPlayers = 1
	MaxPlayers = 10
	MinSide    = 2
	MaxSide    = 64
)

func DefaultRules() Rules {
	return Rules{
		PlayersAmount: 2,
		Generator: GeneratorRules{
			Rows:       4,
			Cols:       5,
			IsRect:     false,
			RiverRules: []int{5, 3},
			Armory:     ArmoryRules{Amount: 1, Separated: true},
			Clinics:    1,
			Treasures:  TreasureRules{Genuine: 1, Spurious: 1, Mined: 0},
			Walls: WallRules{
				HasWalls:          true,
				Concrete:          true,
				Rubber:            false,
				Density:           0.3,
				ConcreteBreakable: true,
			},
		},
		Gameplay: GameplayRules{RiverDrift: true},
		PlayerStat: PlayerStat{
			MaxHealth: 2,
			MaxArrows: 3,
			MaxBombs:  3,
		},
	}
}

// Clone 拷贝切片字段，避免多个房间共享同一份 RiverRules。
func (r Rules) Clone() Rules {
	r.Generator.RiverRules = append([]int(nil), r.Generator.RiverRules...)
	return r
}

// SpecialCells 河流、军械库、诊所、宝藏一共需要的格子数。
func (g GeneratorRules) SpecialCells() int {
	n := g.Armory.Cells() + g.Clinics + g.Treasures.Total()
	for _, l := range g.RiverRules {
		n += l
	}
	return n
}

// Validate 校验与地图容量无关的规则，容量问题在生成时报告。
func (r Rules) Validate() error {
	if r.PlayersAmount < MinPlayers || r.PlayersAmount > MaxPlayers {
		return ErrInvalidRules.WithReason(ReasonPlayersAmount).
			WithData("players_amount", r.PlayersAmount)
	}
	g := r.Generator
	if g.Rows < MinSide || g.Cols < MinSide || g.Rows > MaxSide || g.Cols > MaxSide {
		return ErrInvalidRules.WithReason(ReasonBadSize).
			WithData("rows", g.Rows).WithData("cols", g.Cols)
	}
	if err := g.Validate(ErrInvalidRules); err != nil {
		return err
	}
	s := r.PlayerStat
	if s.MaxHealth < 1 || s.MaxArrows < 0 || s.MaxBombs < 0 {
		return ErrInvalidRules.WithReason(ReasonBadPlayerStat)
	}
	return nil
}

// Validate 校验河流长度、各类数量与墙密度，kind 决定报成哪一类错误。
func (g GeneratorRules) Validate(kind *Error) error {
	for _, l := range g.RiverRules {
		if l < 2 {
			return kind.WithReason(ReasonRiverTooShort).WithData("length", l)
		}
	}
	if g.Armory.Amount < 0 || g.Clinics < 0 ||
		g.Treasures.Genuine < 0 || g.Treasures.Spurious < 0 || g.Treasures.Mined < 0 {
		return kind.WithReason(ReasonNegativeCount)
	}
	if g.Walls.Density < 0 || g.Walls.Density > 1 {
		return kind.WithReason(ReasonBadDensity).WithData("density", g.Walls.Density)
	}
	return nil
}
