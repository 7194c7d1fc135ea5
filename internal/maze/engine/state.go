package engine

import (
	"fmt"
	"time"

	"Labyrinth/internal/maze/domain"
)

const (
	ArrowDamage = 1
	BombDamage  = 1
	MinePenalty = 1

	// RiverEntryDrift 从河外进入河流时被冲走的格数。
	RiverEntryDrift = 2
	// RiverIdleDrift 回合结束仍停在河里时被冲走的格数。
	RiverIdleDrift = 1
)

// State 一个房间的权威游戏状态。
//
// 约束：只有 Resolve 会产生新的 State（先校验、再在克隆体上应用），
// 其余方法要么是开局前的名单操作，要么是只读访问。
type State struct {
	Field     *domain.Field
	Rules     domain.Rules
	Treasures []domain.Treasure // 下标即 id
	Players   []domain.Player   // 注册顺序
	Active    int               // 当前行动玩家下标，开局前为 -1
	Round     int
	History   []domain.TurnRecord
	Winner    string
	Over      bool
}

func NewState(field *domain.Field, treasures []domain.Treasure, rules domain.Rules) *State {
	return &State{
		Field:     field,
		Rules:     rules.Clone(),
		Treasures: append([]domain.Treasure(nil), treasures...),
		Active:    -1,
	}
}

func (s *State) Started() bool {
	return s.Active >= 0
}

// AddPlayer 开局前登记玩家，注册顺序即回合顺序。
func (s *State) AddPlayer(name string) error {
	if s.Started() {
		return domain.ErrPermissionDenied.WithReason(domain.ReasonGameOver)
	}
	if _, _, ok := s.Player(name); ok {
		return domain.ErrInvalidAction.WithReason(domain.ReasonDuplicatePlayer).WithData("player", name)
	}
	s.Players = append(s.Players, domain.NewPlayer(name, len(s.Players), s.Rules.PlayerStat))
	return nil
}

// RemovePlayer 开局前移除玩家并重排注册顺序。
func (s *State) RemovePlayer(name string) bool {
	if s.Started() {
		return false
	}
	_, idx, ok := s.Player(name)
	if !ok {
		return false
	}
	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
	for i := range s.Players {
		s.Players[i].Index = i
	}
	return true
}

// Spawn 开局前选择出生点，只能选网格内的格子，可重复选择。
func (s *State) Spawn(name string, pos domain.Position) error {
	if s.Started() {
		return domain.ErrPermissionDenied.WithReason(domain.ReasonGameOver)
	}
	_, idx, ok := s.Player(name)
	if !ok {
		return domain.ErrPermissionDenied.WithReason(domain.ReasonUnknownPlayer).WithData("player", name)
	}
	cell, ok := s.Field.CellAt(pos)
	if !ok {
		return domain.ErrInvalidAction.WithReason(domain.ReasonBadSpawn).
			WithData("x", pos.X).WithData("y", pos.Y)
	}
	s.Players[idx].Cell = cell
	return nil
}

func (s *State) SpawnPoint(name string) (domain.Position, bool) {
	p, _, ok := s.Player(name)
	if !ok || !p.Spawned() {
		return domain.Position{}, false
	}
	return s.Field.MustCell(p.Cell).Pos, true
}

func (s *State) AllSpawned() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if !p.Spawned() {
			return false
		}
	}
	return true
}

// Start 开局：第一个注册的玩家先手，并为每个玩家记录一条入场播报。
func (s *State) Start(now time.Time) ([]domain.TurnRecord, error) {
	if s.Started() {
		return nil, domain.ErrPermissionDenied.WithReason(domain.ReasonGameOver)
	}
	if !s.AllSpawned() {
		return nil, domain.ErrPermissionDenied.WithReason(domain.ReasonNotSpawned)
	}
	s.Active = 0
	out := make([]domain.TurnRecord, 0, len(s.Players))
	for _, p := range s.Players {
		pos := s.Field.MustCell(p.Cell).Pos
		rec := domain.TurnRecord{
			Seq:      len(s.History) + 1,
			Player:   domain.SystemPlayer,
			Action:   domain.ActionInfo,
			Response: fmt.Sprintf("%s entered the maze at (%d,%d): %s", p.Name, pos.X, pos.Y, s.describeCell(p.Cell)),
			At:       now,
		}
		s.History = append(s.History, rec)
		out = append(out, rec)
	}
	return out, nil
}

func (s *State) Player(name string) (domain.Player, int, bool) {
	for i, p := range s.Players {
		if p.Name == name {
			return p, i, true
		}
	}
	return domain.Player{}, -1, false
}

func (s *State) ActivePlayer() (domain.Player, bool) {
	if s.Over || s.Active < 0 || s.Active >= len(s.Players) {
		return domain.Player{}, false
	}
	return s.Players[s.Active], true
}

func (s *State) AliveCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

// TreasuresOn 返回格子上的宝藏 id，升序。
func (s *State) TreasuresOn(cell int) []int {
	var out []int
	for _, t := range s.Treasures {
		if t.OnGround() && t.Cell == cell {
			out = append(out, t.ID)
		}
	}
	return out
}

// Clone 深拷贝，Resolve 在克隆体上应用动作。
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	return &State{
		Field:     s.Field.Clone(),
		Rules:     s.Rules.Clone(),
		Treasures: append([]domain.Treasure(nil), s.Treasures...),
		Players:   append([]domain.Player(nil), s.Players...),
		Active:    s.Active,
		Round:     s.Round,
		History:   append([]domain.TurnRecord(nil), s.History...),
		Winner:    s.Winner,
		Over:      s.Over,
	}
}

func (s *State) playerView(p domain.Player) domain.PlayerView {
	v := domain.PlayerView{
		Name:        p.Name,
		X:           -1,
		Y:           -1,
		Health:      p.Health,
		Arrows:      p.Arrows,
		Bombs:       p.Bombs,
		HasTreasure: p.HasTreasure(),
	}
	if p.Spawned() {
		pos := s.Field.MustCell(p.Cell).Pos
		v.X, v.Y = pos.X, pos.Y
	}
	return v
}

// PlayersStat 按注册顺序返回全部玩家（包括已淘汰的）。
func (s *State) PlayersStat() []domain.PlayerView {
	out := make([]domain.PlayerView, 0, len(s.Players))
	for _, p := range s.Players {
		out = append(out, s.playerView(p))
	}
	return out
}

// Snapshot 是对外只读快照，不与 State 共享任何可变内存。
type Snapshot struct {
	Field      domain.FieldView      `json:"field"`
	Treasures  []domain.TreasureView `json:"treasures"`
	Players    []domain.PlayerView   `json:"players"`
	Turns      []domain.TurnRecord   `json:"turns"`
	NextPlayer string                `json:"next_player,omitempty"`
	Winner     string                `json:"winner_name,omitempty"`
	IsEnded    bool                  `json:"is_ended"`
}

func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Field:   s.Field.View(),
		Players: s.PlayersStat(),
		Turns:   append([]domain.TurnRecord(nil), s.History...),
		Winner:  s.Winner,
		IsEnded: s.Over,
	}
	for _, t := range s.Treasures {
		if t.Gone {
			continue
		}
		v := domain.TreasureView{ID: t.ID, Kind: t.Kind, Carried: !t.OnGround()}
		cell := t.Cell
		if !t.OnGround() {
			for _, p := range s.Players {
				if p.Treasure == t.ID {
					cell = p.Cell
				}
			}
		}
		if cell >= 0 {
			pos := s.Field.MustCell(cell).Pos
			v.X, v.Y = pos.X, pos.Y
		}
		snap.Treasures = append(snap.Treasures, v)
	}
	if p, ok := s.ActivePlayer(); ok {
		snap.NextPlayer = p.Name
	}
	return snap
}
