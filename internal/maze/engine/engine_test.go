package engine

import (
	"errors"
	"testing"
	"time"

	"Labyrinth/internal/maze/domain"
	"Labyrinth/modules/kit/errx"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// newTestState 3 行 4 列、无内墙的矩形地图，出口在 (3,0) 右侧。
func newTestState(t *testing.T, names ...string) *State {
	t.Helper()
	f := domain.NewField(3, 4, nil)
	corner, _ := f.CellAt(domain.Position{X: 3, Y: 0})
	if _, err := f.AttachExit(corner, domain.Right); err != nil {
		t.Fatalf("AttachExit err=%v", err)
	}
	rules := domain.DefaultRules()
	rules.PlayersAmount = len(names)
	s := NewState(f, nil, rules)
	for i, n := range names {
		if err := s.AddPlayer(n); err != nil {
			t.Fatalf("AddPlayer err=%v", err)
		}
		if err := s.Spawn(n, domain.Position{X: i, Y: 2}); err != nil {
			t.Fatalf("Spawn err=%v", err)
		}
	}
	if _, err := s.Start(now); err != nil {
		t.Fatalf("Start err=%v", err)
	}
	return s
}

func cellAt(t *testing.T, s *State, x, y int) int {
	t.Helper()
	id, ok := s.Field.CellAt(domain.Position{X: x, Y: y})
	if !ok {
		t.Fatalf("(%d,%d) 不在网格内", x, y)
	}
	return id
}

func place(t *testing.T, s *State, name string, x, y int) {
	t.Helper()
	_, idx, ok := s.Player(name)
	if !ok {
		t.Fatalf("player %s 不存在", name)
	}
	s.Players[idx].Cell = cellAt(t, s, x, y)
}

func dir(d domain.Direction) *domain.Direction { return &d }

func reasonOf(err error) string {
	var e *errx.Error
	if errors.As(err, &e) {
		return e.Reason()
	}
	return ""
}

func TestStart_每个玩家一条入场播报(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	if len(s.History) != 2 {
		t.Fatalf("history=%d want=2", len(s.History))
	}
	for _, rec := range s.History {
		if rec.Player != domain.SystemPlayer || rec.Action != domain.ActionInfo {
			t.Fatalf("入场播报格式错误 %+v", rec)
		}
	}
	if p, _ := s.ActivePlayer(); p.Name != "alice" {
		t.Fatalf("先手应为 alice got=%s", p.Name)
	}
}

func TestResolve_穿越外墙被拒绝且状态不变(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	place(t, s, "alice", 0, 0)
	before := s.Players[0].Cell

	_, _, err := Resolve(s, "alice", domain.ActionMove, dir(domain.Top), now)
	if !errors.Is(err, domain.ErrInvalidAction) || reasonOf(err) != string(domain.ReasonOuterWall) {
		t.Fatalf("期望 InvalidAction(OUTER_WALL) got=%v", err)
	}
	if s.Players[0].Cell != before || s.Active != 0 || len(s.History) != 2 {
		t.Fatalf("被拒绝的动作改变了状态")
	}
}

func TestResolve_撞到普通墙消耗回合(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	a := cellAt(t, s, 1, 1)
	place(t, s, "alice", 1, 1)
	s.Field.SetWall(a, domain.Right, domain.WallConcrete)

	ns, rec, err := Resolve(s, "alice", domain.ActionMove, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Players[0].Cell != a {
		t.Fatalf("撞墙后不应移动")
	}
	if ns.Active != 1 {
		t.Fatalf("撞墙应消耗回合 active=%d", ns.Active)
	}
	if rec.Direction != "right" || rec.Action != domain.ActionMove {
		t.Fatalf("记录错误 %+v", rec)
	}
}

func TestResolve_不修改输入状态(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	place(t, s, "alice", 1, 1)
	before := s.Players[0].Cell
	ns, _, err := Resolve(s, "alice", domain.ActionMove, dir(domain.Top), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if s.Players[0].Cell != before || s.Active != 0 || len(s.History) != 2 {
		t.Fatalf("Resolve 修改了输入状态")
	}
	if ns.Players[0].Cell != cellAt(t, s, 1, 0) || len(ns.History) != 3 {
		t.Fatalf("新状态未生效")
	}
}

func TestResolve_射箭扣一支箭并命中(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	place(t, s, "alice", 0, 1)
	place(t, s, "bob", 3, 1)

	ns, _, err := Resolve(s, "alice", domain.ActionShootBow, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got := ns.Players[0].Arrows; got != s.Players[0].Arrows-1 {
		t.Fatalf("arrows=%d want=%d", got, s.Players[0].Arrows-1)
	}
	if got := ns.Players[1].Health; got != s.Players[1].Health-ArrowDamage {
		t.Fatalf("bob health=%d", got)
	}
}

func TestResolve_墙挡住箭矢(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	place(t, s, "alice", 0, 1)
	place(t, s, "bob", 3, 1)
	s.Field.SetWall(cellAt(t, s, 1, 1), domain.Right, domain.WallRubber)

	ns, rec, err := Resolve(s, "alice", domain.ActionShootBow, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Players[1].Health != s.Players[1].Health {
		t.Fatalf("墙后的玩家不应受伤")
	}
	if ns.Players[0].Arrows != s.Players[0].Arrows-1 {
		t.Fatalf("未命中也要消耗箭")
	}
	if rec.Response == "" {
		t.Fatalf("叙述不能为空")
	}
}

func TestResolve_没有炸弹被拒绝且回合不推进(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	s.Players[0].Bombs = 0
	snapshot := s.Clone()

	_, _, err := Resolve(s, "alice", domain.ActionThrowBomb, dir(domain.Top), now)
	if !errors.Is(err, domain.ErrInvalidAction) || reasonOf(err) != string(domain.ReasonNoBombs) {
		t.Fatalf("期望 InvalidAction(NO_BOMBS) got=%v", err)
	}
	if s.Active != snapshot.Active || len(s.History) != len(snapshot.History) || s.Players[0] != snapshot.Players[0] {
		t.Fatalf("被拒绝的动作改变了状态")
	}
}

func TestResolve_缺少方向(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	if _, _, err := Resolve(s, "alice", domain.ActionMove, nil, now); reasonOf(err) != string(domain.ReasonNoDirection) {
		t.Fatalf("期望 DIRECTION_REQUIRED got=%v", err)
	}
}

func TestResolve_非当前玩家被拒绝(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	_, _, err := Resolve(s, "bob", domain.ActionSkip, nil, now)
	if !errors.Is(err, domain.ErrPermissionDenied) || reasonOf(err) != string(domain.ReasonNotYourTurn) {
		t.Fatalf("期望 PermissionDenied(NOT_YOUR_TURN) got=%v", err)
	}
	if _, _, err := Resolve(s, "mallory", domain.ActionSkip, nil, now); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("非成员应被拒绝 got=%v", err)
	}
}

func TestResolve_炸毁共享墙并波及邻格(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	a := cellAt(t, s, 1, 1)
	b := cellAt(t, s, 2, 1)
	place(t, s, "alice", 1, 1)
	place(t, s, "bob", 2, 1)
	s.Field.SetWall(a, domain.Right, domain.WallRubber)

	ns, _, err := Resolve(s, "alice", domain.ActionThrowBomb, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Field.WallType(b, domain.Left) != domain.WallEmpty {
		t.Fatalf("邻格一侧的墙也应被炸毁")
	}
	if ns.Players[1].Health != s.Players[1].Health-BombDamage {
		t.Fatalf("邻格玩家应受到爆炸伤害")
	}
	if s.Field.WallType(a, domain.Right) != domain.WallRubber {
		t.Fatalf("原状态的墙不应改变")
	}
}

func TestResolve_外墙炸不掉(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	place(t, s, "alice", 0, 1)
	ns, _, err := Resolve(s, "alice", domain.ActionThrowBomb, dir(domain.Left), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Field.WallType(cellAt(t, s, 0, 1), domain.Left) != domain.WallOuter {
		t.Fatalf("外墙不应被炸毁")
	}
}

func TestResolve_持有真宝藏走出出口获胜(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	s.Treasures = []domain.Treasure{{ID: 0, Kind: domain.TreasureGenuine, Cell: -1}}
	place(t, s, "alice", 3, 0)
	s.Players[0].Treasure = 0

	ns, _, err := Resolve(s, "alice", domain.ActionMove, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !ns.Over || ns.Winner != "alice" {
		t.Fatalf("期望 alice 获胜 over=%v winner=%q", ns.Over, ns.Winner)
	}
	if ns.Players[0].Cell != ns.Field.Exit() {
		t.Fatalf("alice 应在出口格")
	}
	if _, _, err := Resolve(ns, "alice", domain.ActionSkip, nil, now); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("结束后不应再接受动作 got=%v", err)
	}
	if _, _, err := Resolve(ns, "bob", domain.ActionSkip, nil, now); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("结束后不应再接受动作 got=%v", err)
	}
}

func TestResolve_假宝藏带出迷宫不获胜(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	s.Treasures = []domain.Treasure{{ID: 0, Kind: domain.TreasureSpurious, Cell: -1}}
	place(t, s, "alice", 3, 0)
	s.Players[0].Treasure = 0

	ns, _, err := Resolve(s, "alice", domain.ActionMove, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Over || ns.Players[0].HasTreasure() || !ns.Treasures[0].Gone {
		t.Fatalf("假宝藏应被带走且游戏继续")
	}
}

func TestResolve_淘汰玩家移出回合顺序(t *testing.T) {
	s := newTestState(t, "alice", "bob", "carol")
	s.Treasures = []domain.Treasure{{ID: 0, Kind: domain.TreasureGenuine, Cell: -1}}
	place(t, s, "alice", 0, 1)
	place(t, s, "bob", 2, 1)
	place(t, s, "carol", 0, 0)
	s.Players[1].Health = 1
	s.Players[1].Treasure = 0

	ns, _, err := Resolve(s, "alice", domain.ActionShootBow, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	bob := ns.Players[1]
	if bob.Alive || bob.Health != 0 {
		t.Fatalf("bob 应被淘汰 %+v", bob)
	}
	if bob.HasTreasure() || ns.Treasures[0].Cell != cellAt(t, s, 2, 1) {
		t.Fatalf("bob 的宝藏应掉在原地")
	}
	if p, _ := ns.ActivePlayer(); p.Name != "carol" {
		t.Fatalf("应跳过 bob 轮到 carol got=%s", p.Name)
	}
	if ns.Over {
		t.Fatalf("还剩两名玩家不应结束")
	}
	if _, err := Allowed(ns, "bob"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("被淘汰玩家查询能力应报错 got=%v", err)
	}
}

func TestResolve_只剩一人时游戏结束(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	place(t, s, "alice", 0, 1)
	place(t, s, "bob", 1, 1)
	s.Players[1].Health = 1

	ns, _, err := Resolve(s, "alice", domain.ActionShootBow, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !ns.Over || ns.Winner != "alice" {
		t.Fatalf("期望 alice 作为最后幸存者获胜 over=%v winner=%q", ns.Over, ns.Winner)
	}
}

func TestResolve_受伤过半掉落宝藏(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	s.Treasures = []domain.Treasure{{ID: 0, Kind: domain.TreasureGenuine, Cell: -1}}
	place(t, s, "alice", 0, 1)
	place(t, s, "bob", 1, 1)
	s.Players[1].Treasure = 0

	ns, _, err := Resolve(s, "alice", domain.ActionShootBow, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Players[1].HasTreasure() || !ns.Treasures[0].OnGround() {
		t.Fatalf("生命降到一半应掉落宝藏")
	}
}

func TestResolve_满血空手自动拾取宝藏(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	target := cellAt(t, s, 1, 0)
	s.Treasures = []domain.Treasure{{ID: 0, Kind: domain.TreasureGenuine, Cell: target}}
	place(t, s, "alice", 1, 1)

	ns, _, err := Resolve(s, "alice", domain.ActionMove, dir(domain.Top), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Players[0].Treasure != 0 || ns.Treasures[0].OnGround() {
		t.Fatalf("应拾取宝藏")
	}
}

func TestResolve_地雷宝藏爆炸(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	target := cellAt(t, s, 1, 0)
	s.Treasures = []domain.Treasure{{ID: 0, Kind: domain.TreasureMined, Cell: target}}
	place(t, s, "alice", 1, 1)

	ns, _, err := Resolve(s, "alice", domain.ActionMove, dir(domain.Top), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Players[0].Health != s.Players[0].Health-MinePenalty || ns.Players[0].HasTreasure() || !ns.Treasures[0].Gone {
		t.Fatalf("地雷应造成伤害并消失 %+v %+v", ns.Players[0], ns.Treasures[0])
	}
}

func TestResolve_交换宝藏(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	s.Treasures = []domain.Treasure{
		{ID: 0, Kind: domain.TreasureSpurious, Cell: -1},
		{ID: 1, Kind: domain.TreasureGenuine, Cell: -1},
	}
	place(t, s, "alice", 1, 1)
	place(t, s, "bob", 2, 1)
	s.Players[0].Treasure = 0
	s.Players[1].Treasure = 1

	ab, err := Allowed(s, "alice")
	if err != nil || !ab.SwapTreasure {
		t.Fatalf("相邻持宝玩家应允许交换 ab=%+v err=%v", ab, err)
	}
	ns, _, err := Resolve(s, "alice", domain.ActionSwapTreasure, nil, now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Players[0].Treasure != 1 || ns.Players[1].Treasure != 0 {
		t.Fatalf("交换结果错误 alice=%d bob=%d", ns.Players[0].Treasure, ns.Players[1].Treasure)
	}
}

func TestResolve_隔墙不能交换(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	s.Treasures = []domain.Treasure{{ID: 0, Kind: domain.TreasureGenuine, Cell: -1}}
	place(t, s, "alice", 1, 1)
	place(t, s, "bob", 2, 1)
	s.Players[1].Treasure = 0
	s.Field.SetWall(cellAt(t, s, 1, 1), domain.Right, domain.WallConcrete)

	if _, _, err := Resolve(s, "alice", domain.ActionSwapTreasure, nil, now); reasonOf(err) != string(domain.ReasonNoSwapTarget) {
		t.Fatalf("期望 NO_SWAP_TARGET got=%v", err)
	}
}

func TestResolve_河流漂移(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	river := []int{cellAt(t, s, 0, 0), cellAt(t, s, 1, 0), cellAt(t, s, 2, 0), cellAt(t, s, 3, 0)}
	s.Field.AddRiver(river)

	// 从河外进入：被冲下游两格
	place(t, s, "alice", 0, 1)
	ns, _, err := Resolve(s, "alice", domain.ActionMove, dir(domain.Top), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Players[0].Cell != river[2] {
		t.Fatalf("进入河流应漂两格 got=%d want=%d", ns.Players[0].Cell, river[2])
	}

	// 沿同一条河移动到相邻河格：不额外漂移
	s2 := newTestState(t, "alice", "bob")
	s2.Field.AddRiver(river)
	place(t, s2, "alice", 0, 0)
	ns2, _, err := Resolve(s2, "alice", domain.ActionMove, dir(domain.Right), now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns2.Players[0].Cell != river[1] {
		t.Fatalf("同河相邻移动不应漂移 got=%d", ns2.Players[0].Cell)
	}

	// 停在河里：漂一格；河口不漂
	s3 := newTestState(t, "alice", "bob")
	s3.Field.AddRiver(river)
	place(t, s3, "alice", 1, 0)
	ns3, _, err := Resolve(s3, "alice", domain.ActionSkip, nil, now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns3.Players[0].Cell != river[2] {
		t.Fatalf("停在河里应漂一格 got=%d", ns3.Players[0].Cell)
	}
	place(t, s3, "alice", 3, 0)
	ns4, _, err := Resolve(s3, "alice", domain.ActionSkip, nil, now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns4.Players[0].Cell != river[3] {
		t.Fatalf("河口不应漂移")
	}
}

func TestAdvance_回合绕回时河中宝藏漂流(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	river := []int{cellAt(t, s, 0, 0), cellAt(t, s, 1, 0), cellAt(t, s, 2, 0)}
	s.Field.AddRiver(river)
	s.Treasures = []domain.Treasure{{ID: 0, Kind: domain.TreasureSpurious, Cell: river[0]}}
	place(t, s, "alice", 0, 2)
	place(t, s, "bob", 1, 2)

	ns, _, err := Resolve(s, "alice", domain.ActionSkip, nil, now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Treasures[0].Cell != river[0] {
		t.Fatalf("回合未绕回时宝藏不应漂流")
	}
	ns, _, err = Resolve(ns, "bob", domain.ActionSkip, nil, now)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ns.Treasures[0].Cell != river[1] || ns.Round != 1 {
		t.Fatalf("绕回后宝藏应漂一格 cell=%d round=%d", ns.Treasures[0].Cell, ns.Round)
	}
}

func TestAllowed(t *testing.T) {
	s := newTestState(t, "alice", "bob")
	s.Players[0].Arrows = 0
	ab, err := Allowed(s, "alice")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if ab.ShootBow || !ab.Move || !ab.Skip || !ab.ThrowBomb || ab.SwapTreasure {
		t.Fatalf("alice 能力错误 %+v", ab)
	}
	other, err := Allowed(s, "bob")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if other != (Abilities{}) {
		t.Fatalf("非当前玩家应全部为 false %+v", other)
	}
	if _, err := Allowed(s, "nobody"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("未知玩家应报错 got=%v", err)
	}
}

func TestSpawn_只能选网格内格子(t *testing.T) {
	f := domain.NewField(2, 2, nil)
	s := NewState(f, nil, domain.DefaultRules())
	if err := s.AddPlayer("alice"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := s.AddPlayer("alice"); err == nil {
		t.Fatalf("重名应被拒绝")
	}
	if err := s.Spawn("alice", domain.Position{X: 5, Y: 5}); reasonOf(err) != string(domain.ReasonBadSpawn) {
		t.Fatalf("期望 BAD_SPAWN got=%v", err)
	}
	if _, err := s.Start(now); err == nil {
		t.Fatalf("未选出生点不能开局")
	}
	if err := s.Spawn("alice", domain.Position{X: 1, Y: 1}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if !s.AllSpawned() {
		t.Fatalf("应全部出生")
	}
}
