package engine

import "Labyrinth/internal/maze/domain"

type Abilities struct {
	Move         bool `json:"move"`
	ShootBow     bool `json:"shoot_bow"`
	ThrowBomb    bool `json:"throw_bomb"`
	SwapTreasure bool `json:"swap_treasure"`
	Skip         bool `json:"skip"`
}

// Allowed 计算玩家当前可用的动作，纯函数。
// 非当前行动玩家全部为 false；已淘汰或不存在的玩家返回 PermissionError。
func Allowed(s *State, name string) (Abilities, error) {
	p, idx, ok := s.Player(name)
	if !ok {
		return Abilities{}, domain.ErrPermissionDenied.WithReason(domain.ReasonUnknownPlayer).WithData("player", name)
	}
	if !p.Alive {
		return Abilities{}, domain.ErrPermissionDenied.WithReason(domain.ReasonEliminated).WithData("player", name)
	}
	if s.Over || idx != s.Active {
		return Abilities{}, nil
	}
	return Abilities{
		Move:         true,
		ShootBow:     p.Arrows > 0,
		ThrowBomb:    p.Bombs > 0,
		SwapTreasure: swapTarget(s, idx) >= 0,
		Skip:         true,
	}, nil
}
