package engine

import (
	"fmt"
	"strings"
	"time"

	"Labyrinth/internal/maze/domain"
)

// Resolve 校验并执行当前行动玩家的一个动作。
//
// 先在原状态上做全部校验，通过后才在克隆体上应用；被拒绝的动作不会改变输入状态，
// 也不会推进回合。dir 对不需要方向的动作会被忽略。
func Resolve(s *State, actor string, action domain.Action, dir *domain.Direction, now time.Time) (*State, domain.TurnRecord, error) {
	idx, err := checkActor(s, actor)
	if err != nil {
		return nil, domain.TurnRecord{}, err
	}
	if err := checkAction(s, idx, action, dir); err != nil {
		return nil, domain.TurnRecord{}, err
	}

	ns := s.Clone()
	t := &turn{s: ns, idx: idx}
	switch action {
	case domain.ActionMove:
		t.move(*dir)
	case domain.ActionShootBow:
		t.shoot(*dir)
		t.idle()
	case domain.ActionThrowBomb:
		t.bomb(*dir)
		t.idle()
	case domain.ActionSwapTreasure:
		t.swap()
		t.idle()
	case domain.ActionSkip:
		t.say("skipped")
		t.idle()
	}
	t.cellMechanics()
	t.checkElimination()
	if !ns.Over {
		ns.advance()
	}

	rec := domain.TurnRecord{
		Seq:      len(ns.History) + 1,
		Player:   actor,
		Action:   action,
		Response: t.narrative(),
		At:       now,
	}
	if dir != nil && action.NeedsDirection() {
		rec.Direction = dir.String()
	}
	ns.History = append(ns.History, rec)
	return ns, rec, nil
}

func checkActor(s *State, actor string) (int, error) {
	if s.Over {
		return -1, domain.ErrPermissionDenied.WithReason(domain.ReasonGameOver)
	}
	if !s.Started() {
		return -1, domain.ErrPermissionDenied.WithReason(domain.ReasonNotStarted)
	}
	p, idx, ok := s.Player(actor)
	if !ok {
		return -1, domain.ErrPermissionDenied.WithReason(domain.ReasonUnknownPlayer).WithData("player", actor)
	}
	if !p.Alive {
		return -1, domain.ErrPermissionDenied.WithReason(domain.ReasonEliminated).WithData("player", actor)
	}
	if idx != s.Active {
		return -1, domain.ErrPermissionDenied.WithReason(domain.ReasonNotYourTurn).
			WithData("player", actor).WithData("active", s.Players[s.Active].Name)
	}
	return idx, nil
}

func checkAction(s *State, idx int, action domain.Action, dir *domain.Direction) error {
	if _, ok := domain.ParseAction(string(action)); !ok {
		return domain.ErrInvalidAction.WithReason(domain.ReasonUnknownAction).WithData("action", string(action))
	}
	if action.NeedsDirection() && (dir == nil || !dir.Valid()) {
		return domain.ErrInvalidAction.WithReason(domain.ReasonNoDirection).WithData("action", string(action))
	}
	p := s.Players[idx]
	switch action {
	case domain.ActionMove:
		if s.Field.WallType(p.Cell, *dir) == domain.WallOuter {
			return domain.ErrInvalidAction.WithReason(domain.ReasonOuterWall).WithData("direction", dir.String())
		}
	case domain.ActionShootBow:
		if p.Arrows <= 0 {
			return domain.ErrInvalidAction.WithReason(domain.ReasonNoArrows)
		}
	case domain.ActionThrowBomb:
		if p.Bombs <= 0 {
			return domain.ErrInvalidAction.WithReason(domain.ReasonNoBombs)
		}
	case domain.ActionSwapTreasure:
		if swapTarget(s, idx) < 0 {
			return domain.ErrInvalidAction.WithReason(domain.ReasonNoSwapTarget)
		}
	}
	return nil
}

// swapTarget 同格或隔着可通行墙相邻的格子上，按注册顺序第一个持有宝藏的存活玩家。
func swapTarget(s *State, idx int) int {
	me := s.Players[idx]
	if !me.Spawned() {
		return -1
	}
	for i, p := range s.Players {
		if i == idx || !p.Alive || !p.HasTreasure() || !p.Spawned() {
			continue
		}
		if p.Cell == me.Cell || s.Field.Open(me.Cell, p.Cell) {
			return i
		}
	}
	return -1
}

// turn 是一次动作的执行现场，负责收集叙述文本与淘汰信息。
type turn struct {
	s          *State
	idx        int
	parts      []string
	eliminated bool
}

func (t *turn) me() *domain.Player {
	return &t.s.Players[t.idx]
}

func (t *turn) say(format string, args ...any) {
	t.parts = append(t.parts, fmt.Sprintf(format, args...))
}

func (t *turn) narrative() string {
	return strings.Join(t.parts, ", ")
}

func (t *turn) drift() bool {
	return t.s.Rules.Gameplay.RiverDrift
}

func (t *turn) move(d domain.Direction) {
	p := t.me()
	from := p.Cell
	wt := t.s.Field.WallType(from, d)
	if !wt.Passable() {
		t.say("moved %s, hit a %s wall", d, wt)
		t.idle()
		return
	}
	to, _ := t.s.Field.Neighbour(from, d)
	t.say("moved %s to %s", d, t.s.Field.MustCell(to).Type)
	final := to
	if t.drift() && t.s.Field.MustCell(to).Type.IsRiver() && !t.s.Field.SameRiverNeighbours(from, to) {
		final = t.s.Field.RiverAdvance(to, RiverEntryDrift)
	}
	if final != to {
		t.say("carried downstream to %s", t.s.Field.MustCell(final).Type)
	}
	p.Cell = final
}

// idle 玩家本回合没有离开格子：停在河里会被冲向下游一格。
func (t *turn) idle() {
	p := t.me()
	if !p.Alive || !t.drift() {
		return
	}
	if next := t.s.Field.RiverAdvance(p.Cell, RiverIdleDrift); next != p.Cell {
		p.Cell = next
		t.say("drifted downstream to %s", t.s.Field.MustCell(next).Type)
	}
}

func (t *turn) shoot(d domain.Direction) {
	t.me().Arrows--
	cur := t.me().Cell
	for {
		if victims := t.othersOn(cur); len(victims) > 0 {
			t.say("shot %s and hit %s", d, t.names(victims))
			t.damage(victims, ArrowDamage)
			return
		}
		if t.s.Field.WallType(cur, d).BlocksShot() {
			t.say("shot %s and missed", d)
			return
		}
		next, ok := t.s.Field.Neighbour(cur, d)
		if !ok {
			t.say("shot %s and missed", d)
			return
		}
		cur = next
	}
}

func (t *turn) bomb(d domain.Direction) {
	t.me().Bombs--
	cell := t.me().Cell
	wt := t.s.Field.WallType(cell, d)
	switch {
	case wt.Breakable(t.s.Rules.Generator.Walls.ConcreteBreakable):
		t.s.Field.SetWall(cell, d, domain.WallEmpty)
		t.say("threw a bomb %s and destroyed a %s wall", d, wt)
	case wt == domain.WallEmpty:
		t.say("threw a bomb %s", d)
	default:
		t.say("threw a bomb %s, the %s wall held", d, wt)
		return
	}
	if n, ok := t.s.Field.Neighbour(cell, d); ok {
		if victims := t.othersOn(n); len(victims) > 0 {
			t.say("blast hit %s", t.names(victims))
			t.damage(victims, BombDamage)
		}
	}
}

func (t *turn) swap() {
	target := swapTarget(t.s, t.idx)
	me, other := t.me(), &t.s.Players[target]
	if me.HasTreasure() {
		t.say("swapped treasure with %s", other.Name)
	} else {
		t.say("took treasure from %s", other.Name)
	}
	me.Treasure, other.Treasure = other.Treasure, me.Treasure
}

// cellMechanics 执行玩家最终所在格子的效果，然后尝试拾取宝藏。
func (t *turn) cellMechanics() {
	p := t.me()
	if !p.Alive {
		return
	}
	stat := t.s.Rules.PlayerStat
	cell := t.s.Field.MustCell(p.Cell)
	switch cell.Type {
	case domain.CellExit:
		t.leaveMaze()
		return
	case domain.CellClinic:
		p.Health = stat.MaxHealth
		t.say("healed")
	case domain.CellArmory:
		p.Arrows, p.Bombs = stat.MaxArrows, stat.MaxBombs
		t.say("restocked arrows and bombs")
	case domain.CellArmoryWeapon:
		p.Arrows = stat.MaxArrows
		t.say("restocked arrows")
	case domain.CellArmoryExplosive:
		p.Bombs = stat.MaxBombs
		t.say("restocked bombs")
	}
	t.pickUp()
	t.say("%s", t.s.describeCell(p.Cell))
}

func (t *turn) leaveMaze() {
	p := t.me()
	if !p.HasTreasure() {
		t.say("reached the exit empty-handed")
		return
	}
	tr := &t.s.Treasures[p.Treasure]
	tr.Gone, tr.Cell = true, -1
	p.Treasure = domain.NoTreasure
	if tr.Kind == domain.TreasureGenuine {
		t.s.Over, t.s.Winner = true, p.Name
		t.say("carried the genuine treasure out of the maze and won")
		return
	}
	t.say("carried a %s treasure out of the maze", tr.Kind)
}

// pickUp 满血且空手时自动拾取格子上 id 最小的宝藏；地雷宝藏当场爆炸并消失。
func (t *turn) pickUp() {
	p := t.me()
	if p.HasTreasure() || p.Health < t.s.Rules.PlayerStat.MaxHealth {
		return
	}
	ids := t.s.TreasuresOn(p.Cell)
	if len(ids) == 0 {
		return
	}
	tr := &t.s.Treasures[ids[0]]
	if tr.Kind == domain.TreasureMined {
		tr.Gone, tr.Cell = true, -1
		t.say("picked up a mined treasure and it exploded")
		t.damage([]int{t.idx}, MinePenalty)
		return
	}
	tr.Cell = -1
	p.Treasure = tr.ID
	t.say("picked up a treasure")
}

func (t *turn) othersOn(cell int) []int {
	var out []int
	for i, p := range t.s.Players {
		if i != t.idx && p.Alive && p.Cell == cell {
			out = append(out, i)
		}
	}
	return out
}

func (t *turn) names(idxs []int) string {
	names := make([]string, 0, len(idxs))
	for _, i := range idxs {
		names = append(names, t.s.Players[i].Name)
	}
	return strings.Join(names, " and ")
}

// damage 按注册顺序结算伤害。
// 生命降到最大值一半及以下会掉落宝藏，降到 0 被淘汰。
func (t *turn) damage(idxs []int, amount int) {
	half := t.s.Rules.PlayerStat.MaxHealth / 2
	for _, i := range idxs {
		p := &t.s.Players[i]
		p.Health -= amount
		if p.Health <= 0 {
			p.Health = 0
			p.Alive = false
			t.dropTreasure(p)
			t.eliminated = true
			t.say("%s was eliminated", p.Name)
			continue
		}
		if p.Health <= half && p.HasTreasure() {
			t.dropTreasure(p)
			t.say("%s dropped the treasure", p.Name)
		}
	}
}

func (t *turn) dropTreasure(p *domain.Player) {
	if !p.HasTreasure() {
		return
	}
	tr := &t.s.Treasures[p.Treasure]
	tr.Cell = p.Cell
	p.Treasure = domain.NoTreasure
}

// checkElimination 有人被淘汰后只剩不超过一名存活玩家时游戏结束，
// 剩下的那名玩家获胜；无人存活则没有赢家。
func (t *turn) checkElimination() {
	if !t.eliminated || t.s.Over {
		return
	}
	if t.s.AliveCount() > 1 {
		return
	}
	t.s.Over = true
	for _, p := range t.s.Players {
		if p.Alive {
			t.s.Winner = p.Name
			t.say("%s is the last one standing", p.Name)
		}
	}
}

// advance 轮到下一个存活玩家；回合顺序绕回开头时，河里的宝藏顺流漂一格。
func (s *State) advance() {
	n := len(s.Players)
	if s.AliveCount() == 0 {
		s.Over = true
		return
	}
	next := s.Active
	for step := 1; step <= n; step++ {
		i := (s.Active + step) % n
		if s.Players[i].Alive {
			next = i
			break
		}
	}
	if next <= s.Active {
		s.endRound()
	}
	s.Active = next
}

func (s *State) endRound() {
	s.Round++
	if !s.Rules.Gameplay.RiverDrift {
		return
	}
	for i := range s.Treasures {
		t := &s.Treasures[i]
		if t.OnGround() {
			t.Cell = s.Field.RiverAdvance(t.Cell, RiverIdleDrift)
		}
	}
}

// describeCell 格子说明：类型、地上的宝藏数量。
func (s *State) describeCell(cell int) string {
	c := s.Field.MustCell(cell)
	desc := "on " + strings.ReplaceAll(c.Type.String(), "_", " ")
	if n := len(s.TreasuresOn(cell)); n > 0 {
		desc += fmt.Sprintf(", treasure (%d)", n)
	}
	return desc
}
